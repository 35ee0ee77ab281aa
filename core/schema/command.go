package schema

// Command is a finalized command definition produced by Build.
// It is immutable; share freely across goroutines.
type Command struct {
	// Name invokes the command (without the channel prefix).
	Name string `json:"name"`

	// Description for help output and catalogs.
	Description string `json:"description"`

	// Aliases are alternate invocation names. Uniqueness across
	// commands is the registry's job; uniqueness within one command
	// is enforced by Build.
	Aliases []string `json:"aliases,omitempty"`

	// Options in positional matching order.
	Options []Option `json:"options,omitempty"`
}

// Option returns the named option.
func (c *Command) Option(name string) (Option, bool) {
	for _, opt := range c.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return Option{}, false
}

// MinArgs returns how many tokens the command requires.
func (c *Command) MinArgs() int {
	n := 0
	for _, opt := range c.Options {
		if opt.Required {
			n++
		}
	}
	return n
}

// MaxArgs returns how many tokens the command accepts.
func (c *Command) MaxArgs() int {
	return len(c.Options)
}

// Names returns the command name followed by its aliases.
func (c *Command) Names() []string {
	names := make([]string, 0, len(c.Aliases)+1)
	names = append(names, c.Name)
	names = append(names, c.Aliases...)
	return names
}
