package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tomapper/maperr"
)

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, maperr.New(maperr.PhaseLoad, maperr.KindInvalidConfig).
			Detail("read mapping file " + path).
			Cause(err).
			Build()
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, maperr.New(maperr.PhaseLoad, maperr.KindInvalidConfig).
			Detail("parse mapping YAML").
			Cause(err).
			Build()
	}

	applyDefaults(&f)

	return &f, nil
}

func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// WriteFile writes a File to the given path.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}

// LoadFile reads a mapping file and registers every mapping in it.
func (c *Catalog) LoadFile(path string) error {
	f, err := LoadFile(path)
	if err != nil {
		return err
	}

	return c.Apply(f)
}

// Apply registers the mappings of f. Transfer and delegate names must be
// bound already; domain names are resolved when a plan is built.
func (c *Catalog) Apply(f *File) error {
	for i := range f.Mappings {
		tm, err := c.typeMapping(&f.Mappings[i])
		if err != nil {
			return err
		}

		if err := c.Register(tm); err != nil {
			return err
		}
	}

	return nil
}

func (c *Catalog) typeMapping(spec *TypeSpec) (*TypeMapping, error) {
	transfer, ok := c.Resolve(spec.Transfer)
	if !ok {
		return nil, unresolved(spec.Transfer, "transfer type")
	}

	tm := &TypeMapping{
		Transfer:   transfer,
		DomainName: spec.Domain,
		Ignore:     []string(spec.Ignore),
		Fields:     make(map[string]FieldMapping, len(spec.Fields)),
	}

	for _, name := range spec.Delegates {
		d, ok := c.Resolve(name)
		if !ok {
			return nil, unresolved(name, "delegate of "+spec.Transfer)
		}

		tm.Delegates = append(tm.Delegates, d)
	}

	for _, name := range spec.Pre {
		tm.Pre = append(tm.Pre, PreRef{Name: name})
	}

	for _, name := range spec.Post {
		tm.Post = append(tm.Post, PostRef{Name: name})
	}

	for name, fs := range spec.Fields {
		tm.Fields[name] = fs.Mapping()
	}

	return tm, nil
}

func unresolved(name, what string) error {
	return maperr.New(maperr.PhaseLoad, maperr.KindUnresolvedType).
		Type(name).
		Detail(what + " is not bound").
		Build()
}
