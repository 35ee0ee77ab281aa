// Package coerce converts raw argument tokens into typed values
// according to an option definition. Coercers are pure: same option and
// token always produce the same value or the same error.
package coerce

import (
	"fmt"
	"strings"

	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/domain/mention"
)

// Code classifies why a token was rejected.
type Code string

const (
	CodeType   Code = "type"   // token does not parse as the option type
	CodeRange  Code = "range"  // number outside [min, max]
	CodeChoice Code = "choice" // value not in the allowed set
	CodeCustom Code = "custom" // caller-supplied coerce func rejected it
)

// Error describes one rejected token. Message is user-facing.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Apply coerces raw for opt and returns the typed Value.
// Options reaching here were validated by schema.Build, so the
// type/constraint combinations are trusted.
func Apply(opt schema.Option, raw string) (Value, *Error) {
	v := Value{Name: opt.Name, Type: opt.Type, Raw: raw, Set: true}

	switch opt.Type {
	case schema.OptionTypeString:
		if len(opt.Choices) > 0 && !stringChoice(opt.Choices, raw) {
			return Unset(opt), &Error{Code: CodeChoice, Message: choicesMessage(opt.Choices)}
		}
		v.Str = raw

	case schema.OptionTypeNumber:
		n, err := schema.ParseNumber(raw)
		if err != nil {
			return Unset(opt), &Error{Code: CodeType, Message: "must be a number"}
		}
		if opt.Min != nil && n < *opt.Min {
			return Unset(opt), &Error{Code: CodeRange, Message: fmt.Sprintf("must be at least %v", *opt.Min)}
		}
		if opt.Max != nil && n > *opt.Max {
			return Unset(opt), &Error{Code: CodeRange, Message: fmt.Sprintf("must be at most %v", *opt.Max)}
		}
		if len(opt.Choices) > 0 && !numberChoice(opt.Choices, n) {
			return Unset(opt), &Error{Code: CodeChoice, Message: choicesMessage(opt.Choices)}
		}
		v.Num = n

	case schema.OptionTypeBoolean:
		b, ok := ParseBool(raw)
		if !ok {
			return Unset(opt), &Error{
				Code:    CodeType,
				Message: "must be a boolean: true/yes/on/1 or false/no/off/0",
			}
		}
		v.Bool = b

	case schema.OptionTypeMentionable:
		ref, err := mention.Parse(raw)
		if err != nil {
			return Unset(opt), &Error{
				Code:    CodeType,
				Message: "must be a user, role or channel mention",
			}
		}
		v.Mention = &ref

	case schema.OptionTypeCustom:
		if opt.Coerce == nil {
			return Unset(opt), &Error{Code: CodeCustom, Message: "option has no coerce function"}
		}
		val, err := opt.Coerce(raw)
		if err != nil {
			return Unset(opt), &Error{Code: CodeCustom, Message: err.Error()}
		}
		v.Any = val

	default:
		return Unset(opt), &Error{Code: CodeType, Message: fmt.Sprintf("unknown option type %q", opt.Type)}
	}

	return v, nil
}

// Unset returns the placeholder Value for an option no token matched.
func Unset(opt schema.Option) Value {
	return Value{Name: opt.Name, Type: opt.Type}
}

// Truthy and falsy literal sets for boolean options.
// Matching is case-insensitive.
var (
	truthy = map[string]bool{"true": true, "yes": true, "on": true, "1": true}
	falsy  = map[string]bool{"false": true, "no": true, "off": true, "0": true}
)

// ParseBool parses a boolean literal. The second return reports whether
// raw belongs to the accepted set.
func ParseBool(raw string) (value, ok bool) {
	s := strings.ToLower(raw)
	if truthy[s] {
		return true, true
	}
	if falsy[s] {
		return false, true
	}
	return false, false
}

// Canonical renders a boolean as a literal ParseBool accepts, so values
// round-trip through formatting.
func Canonical(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func stringChoice(choices []string, raw string) bool {
	for _, c := range choices {
		if c == raw {
			return true
		}
	}
	return false
}

// numberChoice compares parsed values, so "7" matches the choice "7.0".
func numberChoice(choices []string, n float64) bool {
	for _, c := range choices {
		v, err := schema.ParseNumber(c)
		if err == nil && v == n {
			return true
		}
	}
	return false
}

func choicesMessage(choices []string) string {
	return fmt.Sprintf("must be one of: %s", strings.Join(choices, ", "))
}
