package convert

// Result is returned by pre-converters.
type Result int

const (
	// Continue runs the field conversion.
	Continue Result = iota
	// Skip bypasses field conversion and the post-converters.
	Skip
)

// PreConverter runs before the fields of an object are converted.
type PreConverter interface {
	PreToDomain(src, dst any, tags []string) (Result, error)
	PreToTransfer(src, dst any, tags []string) (Result, error)
}

// PostConverter runs after the fields of an object are converted.
type PostConverter interface {
	PostToDomain(src, dst any, tags []string) error
	PostToTransfer(src, dst any, tags []string) error
}

// PreFunc is a pre-converter hook function.
type PreFunc func(src, dst any, tags []string) (Result, error)

// PostFunc is a post-converter hook function.
type PostFunc func(src, dst any, tags []string) error

type preHook struct {
	name       string
	toDomain   PreFunc
	toTransfer PreFunc
}

// NewPre builds a named pre-converter. A nil function continues.
func NewPre(name string, toDomain, toTransfer PreFunc) PreConverter {
	return &preHook{name: name, toDomain: toDomain, toTransfer: toTransfer}
}

func (h *preHook) Name() string { return h.name }

func (h *preHook) PreToDomain(src, dst any, tags []string) (Result, error) {
	if h.toDomain == nil {
		return Continue, nil
	}
	return h.toDomain(src, dst, tags)
}

func (h *preHook) PreToTransfer(src, dst any, tags []string) (Result, error) {
	if h.toTransfer == nil {
		return Continue, nil
	}
	return h.toTransfer(src, dst, tags)
}

type postHook struct {
	name       string
	toDomain   PostFunc
	toTransfer PostFunc
}

// NewPost builds a named post-converter. A nil function does nothing.
func NewPost(name string, toDomain, toTransfer PostFunc) PostConverter {
	return &postHook{name: name, toDomain: toDomain, toTransfer: toTransfer}
}

func (h *postHook) Name() string { return h.name }

func (h *postHook) PostToDomain(src, dst any, tags []string) error {
	if h.toDomain == nil {
		return nil
	}
	return h.toDomain(src, dst, tags)
}

func (h *postHook) PostToTransfer(src, dst any, tags []string) error {
	if h.toTransfer == nil {
		return nil
	}
	return h.toTransfer(src, dst, tags)
}

// PreChain combines pre-converters. The first Skip wins.
type PreChain []PreConverter

func (c PreChain) PreToDomain(src, dst any, tags []string) (Result, error) {
	for _, p := range c {
		res, err := p.PreToDomain(src, dst, tags)
		if err != nil || res == Skip {
			return res, err
		}
	}
	return Continue, nil
}

func (c PreChain) PreToTransfer(src, dst any, tags []string) (Result, error) {
	for _, p := range c {
		res, err := p.PreToTransfer(src, dst, tags)
		if err != nil || res == Skip {
			return res, err
		}
	}
	return Continue, nil
}

// PostChain combines post-converters in order.
type PostChain []PostConverter

func (c PostChain) PostToDomain(src, dst any, tags []string) error {
	for _, p := range c {
		if err := p.PostToDomain(src, dst, tags); err != nil {
			return err
		}
	}
	return nil
}

func (c PostChain) PostToTransfer(src, dst any, tags []string) error {
	for _, p := range c {
		if err := p.PostToTransfer(src, dst, tags); err != nil {
			return err
		}
	}
	return nil
}

// Chain is the continuation handed to an interceptor.
type Chain func(src, dst any, dir Direction, tags []string) (any, error)

// Interceptor wraps a conversion. It may act before and after calling next,
// replace the arguments it passes on or replace the result.
type Interceptor interface {
	Intercept(src, dst any, dir Direction, tags []string, next Chain) (any, error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(src, dst any, dir Direction, tags []string, next Chain) (any, error)

func (f InterceptorFunc) Intercept(src, dst any, dir Direction, tags []string, next Chain) (any, error) {
	return f(src, dst, dir, tags, next)
}

// BuildChain nests interceptors around core so that the first interceptor is
// the outermost one.
func BuildChain(core Chain, interceptors []Interceptor) Chain {
	chain := core
	for i := len(interceptors) - 1; i >= 0; i-- {
		next, ic := chain, interceptors[i]
		chain = func(src, dst any, dir Direction, tags []string) (any, error) {
			return ic.Intercept(src, dst, dir, tags, next)
		}
	}
	return chain
}
