package schema

import (
	"fmt"
	"regexp"
	"strconv"
)

// OptionType identifies the coercion applied to an option's raw token.
type OptionType string

const (
	OptionTypeString      OptionType = "string"
	OptionTypeNumber      OptionType = "number"
	OptionTypeBoolean     OptionType = "boolean"
	OptionTypeMentionable OptionType = "mentionable"
	OptionTypeCustom      OptionType = "custom"
)

// CoerceFunc converts the raw token of a custom option into a
// caller-defined value. A non-nil error marks the token invalid and the
// error message is reported to the user verbatim.
type CoerceFunc func(raw string) (any, error)

// Option describes one positional argument of a command.
// Options are matched against input tokens in declaration order.
type Option struct {
	// Name identifies the option within its command.
	Name string `json:"name"`

	// Description is the human-readable purpose, shown in help output.
	Description string `json:"description"`

	// Type selects the coercer applied to the matched token.
	Type OptionType `json:"type"`

	// Required options must be present in the input. Options are
	// required unless Optional was called on their builder; Build
	// rejects a required option that follows an optional one.
	Required bool `json:"required"`

	// Min and Max bound number options inclusively.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Choices restricts string and number options to a fixed set.
	// String options compare the raw token exactly; number options
	// compare the parsed value.
	Choices []string `json:"choices,omitempty"`

	// Coerce is the conversion applied to custom options.
	Coerce CoerceFunc `json:"-"`
}

// numberPattern is the grammar for number option tokens and choices:
// optional sign, decimal digits, optional fractional part.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ParseNumber parses raw using the numeric grammar accepted by number
// options. Exponents, hex floats, Inf and NaN are not part of the
// grammar; tokens with trailing characters are rejected.
func ParseNumber(raw string) (float64, error) {
	if !numberPattern.MatchString(raw) {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return strconv.ParseFloat(raw, 64)
}
