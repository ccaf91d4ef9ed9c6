package mapping

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"tomapper/internal/common"
)

// File is the root of a YAML mapping file.
type File struct {
	// Version of the schema, "1" when omitted.
	Version  string     `yaml:"version,omitempty"`
	Mappings []TypeSpec `yaml:"mappings"`
}

// TypeSpec is the YAML form of a TypeMapping. Type names are resolved
// through Catalog.Bind.
type TypeSpec struct {
	Transfer  string               `yaml:"transfer"`
	Domain    string               `yaml:"domain,omitempty"`
	Delegates StringOrArray        `yaml:"delegates,omitempty"`
	Pre       StringOrArray        `yaml:"pre,omitempty"`
	Post      StringOrArray        `yaml:"post,omitempty"`
	Ignore    StringOrArray        `yaml:"ignore,omitempty"`
	Fields    map[string]FieldSpec `yaml:"fields,omitempty"`
}

// FieldSpec is the YAML form of a FieldMapping.
type FieldSpec struct {
	Target    string    `yaml:"target,omitempty"`
	Path      string    `yaml:"path,omitempty"`
	Converter string    `yaml:"converter,omitempty"`
	ReadOnly  bool      `yaml:"readonly,omitempty"`
	Exclude   bool      `yaml:"exclude,omitempty"`
	Tags      []TagSpec `yaml:"tags,omitempty"`
}

// TagSpec is one tag rule: either a scalar like "zzz:readonly" or a map
// with per-tag overrides.
type TagSpec struct {
	Tag       string `yaml:"tag"`
	ReadOnly  bool   `yaml:"readonly,omitempty"`
	Exclude   bool   `yaml:"exclude,omitempty"`
	Target    string `yaml:"target,omitempty"`
	Path      string `yaml:"path,omitempty"`
	Converter string `yaml:"converter,omitempty"`
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// First returns the first element or empty string if empty.
func (s StringOrArray) First() string {
	if v, ok := common.First(s); ok {
		return v
	}

	return ""
}

func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}

// UnmarshalYAML accepts "tag", "tag:readonly" or a full mapping.
func (t *TagSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		rule, err := parseTagRule(str)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}

		*t = TagSpec{Tag: rule.Tag, ReadOnly: rule.ReadOnly, Exclude: rule.Exclude}

		return nil

	case yaml.MappingNode:
		type plain TagSpec

		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}

		if p.Tag == "" {
			return fmt.Errorf("line %d: tag rule without tag", node.Line)
		}

		*t = TagSpec(p)

		return nil

	default:
		return fmt.Errorf("expected tag string or map, got %v", node.Kind)
	}
}

// MarshalYAML writes rules without overrides in their scalar form.
func (t TagSpec) MarshalYAML() (any, error) {
	if t.Target != "" || t.Path != "" || t.Converter != "" {
		type plain TagSpec
		return plain(t), nil
	}

	s := t.Tag
	if t.ReadOnly {
		s += ":readonly"
	}

	if t.Exclude {
		s += ":exclude"
	}

	return s, nil
}

// Rule converts t into a TagRule.
func (t TagSpec) Rule() TagRule {
	return TagRule{
		Tag:       t.Tag,
		ReadOnly:  t.ReadOnly,
		Exclude:   t.Exclude,
		Target:    t.Target,
		Path:      splitPath(t.Path),
		Converter: t.Converter,
	}
}

// Mapping converts f into a FieldMapping.
func (f FieldSpec) Mapping() FieldMapping {
	fm := FieldMapping{
		Target:    f.Target,
		Path:      splitPath(f.Path),
		Converter: f.Converter,
		ReadOnly:  f.ReadOnly,
		Exclude:   f.Exclude,
	}

	for _, t := range f.Tags {
		fm.Tags = append(fm.Tags, t.Rule())
	}

	return fm
}
