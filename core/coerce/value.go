package coerce

import (
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/domain/mention"
)

// Value is the typed result for one option slot. Type tags which
// payload field is meaningful; the As* accessors enforce the tag.
// The zero Value is an unset placeholder.
type Value struct {
	// Name of the option this value fills.
	Name string `json:"name"`

	// Type of the option, tagging the payload.
	Type schema.OptionType `json:"type"`

	// Raw is the token the value was coerced from.
	Raw string `json:"raw,omitempty"`

	// Set is false for placeholder slots: optional options the input
	// skipped, or options whose token failed to coerce.
	Set bool `json:"set"`

	Str     string       `json:"str,omitempty"`
	Num     float64      `json:"num,omitempty"`
	Bool    bool         `json:"bool,omitempty"`
	Mention *mention.Ref `json:"mention,omitempty"`
	Any     any          `json:"any,omitempty"`
}

// IsSet reports whether the slot holds a coerced value.
func (v Value) IsSet() bool {
	return v.Set
}

// AsString returns the string payload of a set string value.
func (v Value) AsString() (string, bool) {
	if !v.Set || v.Type != schema.OptionTypeString {
		return "", false
	}
	return v.Str, true
}

// AsNumber returns the numeric payload of a set number value.
func (v Value) AsNumber() (float64, bool) {
	if !v.Set || v.Type != schema.OptionTypeNumber {
		return 0, false
	}
	return v.Num, true
}

// AsBool returns the boolean payload of a set boolean value.
func (v Value) AsBool() (bool, bool) {
	if !v.Set || v.Type != schema.OptionTypeBoolean {
		return false, false
	}
	return v.Bool, true
}

// AsMention returns the mention payload of a set mentionable value.
func (v Value) AsMention() (mention.Ref, bool) {
	if !v.Set || v.Type != schema.OptionTypeMentionable || v.Mention == nil {
		return mention.Ref{}, false
	}
	return *v.Mention, true
}

// AsAny returns the payload of a set custom value.
func (v Value) AsAny() (any, bool) {
	if !v.Set || v.Type != schema.OptionTypeCustom {
		return nil, false
	}
	return v.Any, true
}
