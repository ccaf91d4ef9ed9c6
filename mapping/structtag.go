package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"tomapper/maperr"
)

// Struct tag keys read from transfer types.
const (
	StructTag     = "tomap"
	StructTagTags = "tomaptags"
)

// FromStructTags reads the tomap and tomaptags tags of the transfer struct t.
//
//	Name    string `tomap:"FullName,path=Details,converter=upper,readonly"`
//	Secret  string `tomap:"-"`
//	Comment string `tomaptags:"admin,zzz:readonly,*"`
//
// Non-struct types yield an empty mapping.
func FromStructTags(t reflect.Type) (*TypeMapping, error) {
	tm := &TypeMapping{Transfer: t, Fields: map[string]FieldMapping{}}
	if t.Kind() != reflect.Struct {
		return tm, nil
	}

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous {
			continue
		}

		raw, hasMap := f.Tag.Lookup(StructTag)
		rawTags, hasTags := f.Tag.Lookup(StructTagTags)

		if !hasMap && !hasTags {
			continue
		}

		if strings.TrimSpace(raw) == "-" {
			tm.Ignore = appendNew(tm.Ignore, f.Name)
			continue
		}

		var fm FieldMapping
		if hasMap {
			var err error
			if fm, err = ParseFieldTag(raw); err != nil {
				return nil, tagError(t, f.Name, raw, err)
			}
		}

		if hasTags {
			rules, err := ParseTagRules(rawTags)
			if err != nil {
				return nil, tagError(t, f.Name, rawTags, err)
			}

			fm.Tags = rules
		}

		tm.Fields[f.Name] = fm
	}

	return tm, nil
}

// ParseFieldTag parses the value of a tomap tag other than "-".
func ParseFieldTag(raw string) (FieldMapping, error) {
	var fm FieldMapping

	parts := strings.Split(raw, ",")
	fm.Target = strings.TrimSpace(parts[0])

	for _, opt := range parts[1:] {
		opt = strings.TrimSpace(opt)
		key, value, _ := strings.Cut(opt, "=")

		switch key {
		case "":
		case "readonly":
			fm.ReadOnly = true
		case "exclude":
			fm.Exclude = true
		case "path":
			fm.Path = splitPath(value)
		case "converter":
			fm.Converter = value
		default:
			return FieldMapping{}, &unknownOptionError{opt: opt}
		}
	}

	return fm, nil
}

// ParseTagRules parses a comma separated rule list such as
// "admin,zzz:readonly,*". Each rule may carry the flags readonly and
// exclude, separated by colons.
func ParseTagRules(raw string) ([]TagRule, error) {
	var rules []TagRule

	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		rule, err := parseTagRule(part)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func parseTagRule(s string) (TagRule, error) {
	fields := strings.Split(s, ":")
	rule := TagRule{Tag: strings.TrimSpace(fields[0])}

	if rule.Tag == "" {
		return TagRule{}, &unknownOptionError{opt: s}
	}

	for _, flag := range fields[1:] {
		switch strings.TrimSpace(flag) {
		case "readonly":
			rule.ReadOnly = true
		case "exclude":
			rule.Exclude = true
		default:
			return TagRule{}, &unknownOptionError{opt: flag}
		}
	}

	return rule, nil
}

type unknownOptionError struct {
	opt string
}

func (e *unknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q", e.opt)
}

func tagError(t reflect.Type, field, raw string, cause error) error {
	return maperr.New(maperr.PhaseConfig, maperr.KindInvalidConfig).
		Type(t.String()).
		Path(field).
		Detail(fmt.Sprintf("bad struct tag %q", raw)).
		Cause(cause).
		Build()
}
