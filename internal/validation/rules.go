package validation

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rule codes. Field.Messages is keyed by these.
const (
	CodeRequired = "any.required"
	CodeOnly     = "any.only"
	CodeString   = "string.base"
	CodeEmpty    = "string.empty"
	CodeNull     = "string.null"
	CodeMin      = "string.min"
	CodeEmail    = "string.email"
	CodeDate     = "date.base"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func requiredMessage(field string) string {
	return fmt.Sprintf("%q is required", field)
}

func String() Rule {
	return Rule{
		Code: CodeString,
		Test: func(v any, _ Payload) bool {
			_, ok := v.(string)
			return ok
		},
		Message: func(f string) string { return fmt.Sprintf("%q must be a string", f) },
	}
}

// NotEmpty must follow String.
func NotEmpty() Rule {
	return Rule{
		Code:    CodeEmpty,
		Test:    func(v any, _ Payload) bool { return v.(string) != "" },
		Message: func(f string) string { return fmt.Sprintf("%q is not allowed to be empty", f) },
	}
}

// NoNull rejects strings holding U+0000, which Postgres text columns refuse.
// It must follow String.
func NoNull() Rule {
	return Rule{
		Code:    CodeNull,
		Test:    func(v any, _ Payload) bool { return !strings.ContainsRune(v.(string), 0) },
		Message: func(f string) string { return fmt.Sprintf("%q must not contain null characters", f) },
	}
}

// MinLength counts characters, not bytes. It must follow String.
func MinLength(n int) Rule {
	tag := fmt.Sprintf("min=%d", n)
	return Rule{
		Code: CodeMin,
		Test: func(v any, _ Payload) bool {
			return validate.Var(v.(string), tag) == nil
		},
		Message: func(f string) string {
			return fmt.Sprintf("%q length must be at least %d characters long", f, n)
		},
	}
}

// Email must follow String.
func Email() Rule {
	return Rule{
		Code: CodeEmail,
		Test: func(v any, _ Payload) bool {
			return validate.Var(v.(string), "email") == nil
		},
		Message: func(f string) string { return fmt.Sprintf("%q must be a valid email", f) },
	}
}

func Date() Rule {
	return Rule{
		Code: CodeDate,
		Test: func(v any, _ Payload) bool {
			_, ok := ParseDate(v)
			return ok
		},
		Message: func(f string) string { return fmt.Sprintf("%q must be a valid date", f) },
	}
}

// OneOf accepts only the listed strings, compared case-sensitively.
func OneOf(values ...string) Rule {
	tag := "oneof=" + strings.Join(values, " ")
	return Rule{
		Code: CodeOnly,
		Test: func(v any, _ Payload) bool {
			s, ok := v.(string)
			return ok && s != "" && validate.Var(s, tag) == nil
		},
		Message: func(f string) string {
			return fmt.Sprintf("%q must be one of [%s]", f, strings.Join(values, ", "))
		},
	}
}

// EqualsField requires the value to equal the payload's other field.
func EqualsField(other string) Rule {
	return Rule{
		Code: CodeOnly,
		Test: func(v any, p Payload) bool {
			ov, ok := p[other]
			return ok && reflect.DeepEqual(v, ov)
		},
		Message: func(f string) string { return fmt.Sprintf("%q must be [ref:%s]", f, other) },
	}
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate accepts ISO 8601 dates and timestamps, or milliseconds since the
// Unix epoch.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(d)).UTC(), true
	}
	return time.Time{}, false
}
