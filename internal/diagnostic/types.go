package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"tomapper/internal/common"
)

// Severity of a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Codes reported by the mapping checker.
const (
	CodeTransferNotFound = "transfer_not_found"
	CodeDomainNotFound   = "domain_not_found"
	CodeDelegateNotFound = "delegate_not_found"
	CodeNotStruct        = "not_a_struct"
	CodeFieldNotFound    = "field_not_found"
	CodeTargetNotFound   = "target_not_found"
	CodeNotWritable      = "not_writable"
	CodeNoConverter      = "no_builtin_converter"
	CodeUnknownConverter = "unknown_converter"
	CodeDuplicateTag     = "duplicate_tag"
	CodeUnmapped         = "unmapped_field"
	CodeDuplicateMapping = "duplicate_mapping"
)

// Diagnostic is one finding about a mapping.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	// Mapping is the transfer type of the mapping concerned, if any.
	Mapping string
	// Field is the transfer field concerned, if any.
	Field       string
	Suggestions []string
}

func (d Diagnostic) String() string {
	var b strings.Builder

	if d.Mapping != "" {
		b.WriteString(d.Mapping)

		if d.Field != "" {
			b.WriteByte('.')
			b.WriteString(d.Field)
		}

		b.WriteString(": ")
	}

	fmt.Fprintf(&b, "[%s] %s", d.Code, d.Message)

	if len(d.Suggestions) > 0 {
		b.WriteString(" (did you mean ")
		b.WriteString(strings.Join(d.Suggestions, ", "))
		b.WriteString("?)")
	}

	return b.String()
}

// Diagnostics collects findings by severity.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Add records d under its severity.
func (ds *Diagnostics) Add(d Diagnostic) {
	switch d.Severity {
	case SeverityError:
		ds.Errors = append(ds.Errors, d)
	case SeverityWarning:
		ds.Warnings = append(ds.Warnings, d)
	default:
		ds.Infos = append(ds.Infos, d)
	}
}

func (ds *Diagnostics) AddError(code, msg, mapping, field string, suggestions ...string) {
	ds.Add(Diagnostic{SeverityError, code, msg, mapping, field, suggestions})
}

func (ds *Diagnostics) AddWarning(code, msg, mapping, field string, suggestions ...string) {
	ds.Add(Diagnostic{SeverityWarning, code, msg, mapping, field, suggestions})
}

func (ds *Diagnostics) AddInfo(code, msg, mapping, field string) {
	ds.Add(Diagnostic{SeverityInfo, code, msg, mapping, field, nil})
}

func (ds *Diagnostics) HasErrors() bool { return len(ds.Errors) > 0 }

// All returns every diagnostic, errors first, each group ordered by mapping
// and field.
func (ds *Diagnostics) All() []Diagnostic {
	var out []Diagnostic
	for _, group := range [][]Diagnostic{ds.Errors, ds.Warnings, ds.Infos} {
		g := append([]Diagnostic(nil), group...)
		sort.SliceStable(g, func(i, j int) bool {
			if g[i].Mapping != g[j].Mapping {
				return g[i].Mapping < g[j].Mapping
			}

			return g[i].Field < g[j].Field
		})
		out = append(out, g...)
	}

	return out
}

// Codes lists the codes of all diagnostics in All order.
func (ds *Diagnostics) Codes() []string {
	all := ds.All()

	out := make([]string, len(all))
	for i, d := range all {
		out[i] = d.Code
	}

	return out
}

// Err joins the error diagnostics, or returns nil.
func (ds *Diagnostics) Err() error {
	if !ds.HasErrors() {
		return nil
	}

	errs := make([]error, len(ds.Errors))
	for i, d := range ds.Errors {
		errs[i] = errors.New(d.String())
	}

	return errors.Join(errs...)
}
