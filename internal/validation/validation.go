// Package validation checks decoded request payloads against declarative
// schemas. A Schema is an ordered list of fields, each holding an ordered list
// of rules. Every field is checked; within a field the first failing rule
// produces the field's message.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// Payload is a decoded JSON object or a flattened query string.
type Payload map[string]any

// FromQuery flattens q. A key given once maps to its string; a repeated key
// maps to a []any of its values, which string rules reject.
func FromQuery(q url.Values) Payload {
	p := make(Payload, len(q))
	for k, vs := range q {
		switch len(vs) {
		case 0:
		case 1:
			p[k] = vs[0]
		default:
			all := make([]any, len(vs))
			for i, v := range vs {
				all[i] = v
			}
			p[k] = all
		}
	}
	return p
}

// String returns the string stored under key, or "" if absent or not a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Rule is one predicate of a field. Message renders the default text for
// the field name and can be overridden per field by Code.
type Rule struct {
	Code    string
	Test    func(value any, p Payload) bool
	Message func(field string) string
}

type Field struct {
	Name     string
	Optional bool
	Rules    []Rule
	// Messages overrides default messages by rule code.
	Messages map[string]string
}

func (f Field) check(p Payload) (string, bool) {
	v, ok := p[f.Name]
	if !ok {
		if f.Optional {
			return "", true
		}
		return f.message(CodeRequired, requiredMessage), false
	}
	for _, r := range f.Rules {
		if !r.Test(v, p) {
			return f.message(r.Code, r.Message), false
		}
	}
	return "", true
}

func (f Field) message(code string, def func(string) string) string {
	if m, ok := f.Messages[code]; ok {
		return m
	}
	return def(f.Name)
}

type Schema struct {
	Name         string
	Fields       []Field
	AllowUnknown bool
}

// Validate returns nil or an *Error listing one message per failing field in
// declaration order, followed by one message per unknown key in sorted order.
func (s Schema) Validate(p Payload) error {
	var errs error
	for _, f := range s.Fields {
		if msg, ok := f.check(p); !ok {
			errs = multierr.Append(errs, errors.New(msg))
		}
	}
	if !s.AllowUnknown {
		for _, k := range s.unknown(p) {
			errs = multierr.Append(errs, fmt.Errorf("%q is not allowed", k))
		}
	}
	if errs == nil {
		return nil
	}
	return newError(errs)
}

func (s Schema) unknown(p Payload) []string {
	var out []string
	for k := range p {
		if !slices.ContainsFunc(s.Fields, func(f Field) bool { return f.Name == k }) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Error is returned by Schema.Validate.
type Error struct {
	Messages []string
	err      error
}

func newError(errs error) *Error {
	all := multierr.Errors(errs)
	msgs := make([]string, len(all))
	for i, e := range all {
		msgs[i] = e.Error()
	}
	return &Error{Messages: msgs, err: errs}
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, ", ")
}

func (e *Error) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Messages returns the violation messages carried by err, or nil.
func Messages(err error) []string {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Messages
	}
	return nil
}
