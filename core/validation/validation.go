// Package validation matches raw argument text against a command
// definition and coerces every matched token. All input problems are
// collected into one Result; nothing short-circuits except a failed
// tokenization, which leaves no tokens to continue with.
//
// The engine is stateless and safe for concurrent use over shared
// Commands.
package validation

import (
	"fmt"
	"strings"

	"github.com/artpar/cmdgate/core/coerce"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/token"
)

// Engine error codes. Coercion failures carry the coerce.Code values
// (type, range, choice, custom) instead.
const (
	CodeSyntax   = "syntax"   // input failed to tokenize
	CodeRequired = "required" // required option had no token
	CodeArity    = "arity"    // more tokens than options
)

// Error describes one input problem.
type Error struct {
	// Option names the option the problem belongs to. It is empty for
	// whole-input problems (syntax, arity).
	Option string `json:"option,omitempty"`

	// Raw is the offending token, when there is one.
	Raw string `json:"raw,omitempty"`

	// Code classifies the problem.
	Code string `json:"code"`

	// Message is user-facing.
	Message string `json:"message"`
}

func (e Error) Error() string {
	if e.Option == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Option, e.Message)
}

// Result aggregates everything one validation pass found.
//
// Options always has exactly one slot per schema option, positionally
// aligned with the definition. Slots for skipped optional options and
// for tokens that failed to coerce are unset. Slots are filled
// best-effort even when Errors is non-empty, so callers must check OK
// before trusting the values.
type Result struct {
	Command string         `json:"command"`
	Errors  []Error        `json:"errors,omitempty"`
	Options []coerce.Value `json:"options"`
}

// OK reports whether the input matched the definition completely.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

// Get returns the coerced value for the named option. ok is false when
// the option was absent from the input or its token failed to coerce.
func (r Result) Get(name string) (coerce.Value, bool) {
	for _, v := range r.Options {
		if v.Name == name {
			return v, v.IsSet()
		}
	}
	return coerce.Value{}, false
}

// Error returns all error messages joined with "; ".
func (r Result) Error() string {
	if r.OK() {
		return ""
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) addError(option, raw, code, message string) {
	r.Errors = append(r.Errors, Error{Option: option, Raw: raw, Code: code, Message: message})
}

// Validate runs one pass over the argument text of a command
// invocation: tokenize, match tokens to options positionally, coerce
// each match, aggregate every problem.
//
// raw is the input after the channel prefix and command name are
// stripped (see token.CutCommand). Errors appear in option declaration
// order; an arity error for excess tokens comes last.
func Validate(cmd *schema.Command, raw string) Result {
	result := Result{
		Command: cmd.Name,
		Options: make([]coerce.Value, len(cmd.Options)),
	}
	for i, opt := range cmd.Options {
		result.Options[i] = coerce.Unset(opt)
	}

	tokens, err := token.Split(raw)
	if err != nil {
		result.addError("", raw, CodeSyntax, "unterminated quote")
		return result
	}

	for i, opt := range cmd.Options {
		if i >= len(tokens) {
			if opt.Required {
				result.addError(opt.Name, "", CodeRequired, "option is required")
			}
			continue
		}

		v, cerr := coerce.Apply(opt, tokens[i].Value)
		if cerr != nil {
			result.addError(opt.Name, tokens[i].Value, string(cerr.Code), cerr.Message)
			continue
		}
		result.Options[i] = v
	}

	if len(tokens) > len(cmd.Options) {
		result.addError("", "", CodeArity, fmt.Sprintf(
			"too many arguments: got %d, expected at most %d",
			len(tokens), len(cmd.Options)))
	}

	return result
}
