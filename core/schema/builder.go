package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// ConfigError reports a mistake in a command definition. It is the
// build-time error class: Build returns it, MustBuild panics with it,
// and it is never produced by user input.
type ConfigError struct {
	Command string `json:"command"`
	Option  string `json:"option,omitempty"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("command %q: option %q: %s", e.Command, e.Option, e.Message)
	}
	return fmt.Sprintf("command %q: %s", e.Command, e.Message)
}

// Builder assembles a Command. Methods chain; Build validates the whole
// definition and reports the first violation.
type Builder struct {
	cmd Command
}

// New starts a command definition with the given name.
func New(name string) *Builder {
	b := &Builder{}
	b.cmd.Name = name
	return b
}

// SetName replaces the command name.
func (b *Builder) SetName(name string) *Builder {
	b.cmd.Name = name
	return b
}

// SetDescription sets the command description.
func (b *Builder) SetDescription(desc string) *Builder {
	b.cmd.Description = desc
	return b
}

// AddAlias adds an alternate invocation name.
func (b *Builder) AddAlias(alias string) *Builder {
	b.cmd.Aliases = append(b.cmd.Aliases, alias)
	return b
}

// AddStringOption appends a string option configured by fn.
func (b *Builder) AddStringOption(fn func(*OptionBuilder)) *Builder {
	return b.addOption(OptionTypeString, nil, fn)
}

// AddNumberOption appends a number option configured by fn.
func (b *Builder) AddNumberOption(fn func(*OptionBuilder)) *Builder {
	return b.addOption(OptionTypeNumber, nil, fn)
}

// AddBooleanOption appends a boolean option configured by fn.
func (b *Builder) AddBooleanOption(fn func(*OptionBuilder)) *Builder {
	return b.addOption(OptionTypeBoolean, nil, fn)
}

// AddMentionableOption appends a mentionable option configured by fn.
func (b *Builder) AddMentionableOption(fn func(*OptionBuilder)) *Builder {
	return b.addOption(OptionTypeMentionable, nil, fn)
}

// AddCustomOption appends an option coerced by the caller-supplied
// function, configured by fn.
func (b *Builder) AddCustomOption(coerce CoerceFunc, fn func(*OptionBuilder)) *Builder {
	return b.addOption(OptionTypeCustom, coerce, fn)
}

func (b *Builder) addOption(t OptionType, coerce CoerceFunc, fn func(*OptionBuilder)) *Builder {
	ob := &OptionBuilder{opt: Option{Type: t, Required: true, Coerce: coerce}}
	if fn != nil {
		fn(ob)
	}
	b.cmd.Options = append(b.cmd.Options, ob.opt)
	return b
}

// Build validates the definition and returns the finalized Command.
// The returned Command does not share state with the builder.
func (b *Builder) Build() (*Command, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	cmd := Command{
		Name:        b.cmd.Name,
		Description: b.cmd.Description,
		Aliases:     append([]string(nil), b.cmd.Aliases...),
		Options:     append([]Option(nil), b.cmd.Options...),
	}
	return &cmd, nil
}

// MustBuild is Build that panics on a definition mistake. Use for
// command sets assembled at program start.
func (b *Builder) MustBuild() *Command {
	cmd, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cmd
}

func (b *Builder) validate() *ConfigError {
	if err := validName(b.cmd.Name); err != "" {
		return b.errorf("", "name %s", err)
	}
	if strings.TrimSpace(b.cmd.Description) == "" {
		return b.errorf("", "description must not be empty")
	}

	seenAliases := map[string]bool{}
	for _, alias := range b.cmd.Aliases {
		if err := validName(alias); err != "" {
			return b.errorf("", "alias %s", err)
		}
		if alias == b.cmd.Name {
			return b.errorf("", "alias %q duplicates the command name", alias)
		}
		if seenAliases[alias] {
			return b.errorf("", "duplicate alias %q", alias)
		}
		seenAliases[alias] = true
	}

	seenNames := map[string]bool{}
	seenOptional := false
	for _, opt := range b.cmd.Options {
		if err := b.validateOption(opt, seenNames, seenOptional); err != nil {
			return err
		}
		seenNames[opt.Name] = true
		if !opt.Required {
			seenOptional = true
		}
	}
	return nil
}

func (b *Builder) validateOption(opt Option, seen map[string]bool, seenOptional bool) *ConfigError {
	if err := validName(opt.Name); err != "" {
		return b.errorf(opt.Name, "name %s", err)
	}
	if strings.TrimSpace(opt.Description) == "" {
		return b.errorf(opt.Name, "description must not be empty")
	}
	if seen[opt.Name] {
		return b.errorf(opt.Name, "duplicate option name")
	}
	if opt.Required && seenOptional {
		return b.errorf(opt.Name, "required option follows an optional option")
	}

	if (opt.Min != nil || opt.Max != nil) && opt.Type != OptionTypeNumber {
		return b.errorf(opt.Name, "min/max apply only to number options")
	}
	if opt.Min != nil && opt.Max != nil && *opt.Min > *opt.Max {
		return b.errorf(opt.Name, "min %v is greater than max %v", *opt.Min, *opt.Max)
	}

	if opt.Choices != nil {
		if opt.Type != OptionTypeString && opt.Type != OptionTypeNumber {
			return b.errorf(opt.Name, "choices apply only to string and number options")
		}
		if len(opt.Choices) == 0 {
			return b.errorf(opt.Name, "choices must not be empty")
		}
		if opt.Type == OptionTypeNumber {
			for _, choice := range opt.Choices {
				if _, err := ParseNumber(choice); err != nil {
					return b.errorf(opt.Name, "choice %q is not a valid number", choice)
				}
			}
		}
	}

	if opt.Type == OptionTypeCustom && opt.Coerce == nil {
		return b.errorf(opt.Name, "custom option requires a coerce function")
	}
	return nil
}

func (b *Builder) errorf(option, format string, args ...any) *ConfigError {
	return &ConfigError{
		Command: b.cmd.Name,
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

// validName returns a problem description, or "" when name is usable:
// non-empty with no whitespace.
func validName(name string) string {
	if name == "" {
		return "must not be empty"
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "must not contain whitespace"
	}
	return ""
}

// OptionBuilder configures a single option inside an Add*Option call.
type OptionBuilder struct {
	opt Option
}

// SetName sets the option name.
func (o *OptionBuilder) SetName(name string) *OptionBuilder {
	o.opt.Name = name
	return o
}

// SetDescription sets the option description.
func (o *OptionBuilder) SetDescription(desc string) *OptionBuilder {
	o.opt.Description = desc
	return o
}

// Optional marks the option as skippable. Optional options must come
// after every required one.
func (o *OptionBuilder) Optional() *OptionBuilder {
	o.opt.Required = false
	return o
}

// SetMin sets the inclusive lower bound for a number option.
func (o *OptionBuilder) SetMin(min float64) *OptionBuilder {
	o.opt.Min = &min
	return o
}

// SetMax sets the inclusive upper bound for a number option.
func (o *OptionBuilder) SetMax(max float64) *OptionBuilder {
	o.opt.Max = &max
	return o
}

// SetChoices restricts the option to the given values.
func (o *OptionBuilder) SetChoices(choices ...string) *OptionBuilder {
	o.opt.Choices = append([]string(nil), choices...)
	return o
}
