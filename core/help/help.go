// Package help renders human-readable usage text from command
// definitions. Output is plain text; callers that want color apply it
// themselves.
package help

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/artpar/cmdgate/core/schema"
)

// Usage renders the one-line invocation form of a command: the prefix,
// the name, then each option as <name> when required or [name] when
// optional.
func Usage(prefix string, cmd *schema.Command) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(cmd.Name)
	for _, opt := range cmd.Options {
		b.WriteByte(' ')
		b.WriteString(placeholder(opt))
	}
	return b.String()
}

// Render produces the full help text for one command: usage line,
// description, aliases and an aligned option table.
func Render(prefix string, cmd *schema.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s\n", Usage(prefix, cmd))
	if cmd.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", cmd.Description)
	}
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "\nAliases: %s\n", strings.Join(cmd.Aliases, ", "))
	}
	if len(cmd.Options) > 0 {
		b.WriteString("\nOptions:\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		for _, opt := range cmd.Options {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", placeholder(opt), opt.Type, detail(opt))
		}
		tw.Flush()
	}
	return b.String()
}

// Overview renders an aligned directory of commands for the top-level
// help listing. Callers pass commands in the order they want shown.
func Overview(prefix string, cmds []*schema.Command) string {
	if len(cmds) == 0 {
		return "No commands registered.\n"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, cmd := range cmds {
		fmt.Fprintf(tw, "  %s%s\t%s\n", prefix, cmd.Name, cmd.Description)
	}
	tw.Flush()
	return b.String()
}

// Constraints summarizes an option's value restrictions, or "" when
// the option accepts any value of its type.
func Constraints(opt schema.Option) string {
	if len(opt.Choices) > 0 {
		return "one of: " + strings.Join(opt.Choices, ", ")
	}
	switch {
	case opt.Min != nil && opt.Max != nil:
		return fmt.Sprintf("%s to %s", formatBound(*opt.Min), formatBound(*opt.Max))
	case opt.Min != nil:
		return "at least " + formatBound(*opt.Min)
	case opt.Max != nil:
		return "at most " + formatBound(*opt.Max)
	}
	return ""
}

func detail(opt schema.Option) string {
	s := opt.Description
	if c := Constraints(opt); c != "" {
		s += " (" + c + ")"
	}
	return s
}

func placeholder(opt schema.Option) string {
	if opt.Required {
		return "<" + opt.Name + ">"
	}
	return "[" + opt.Name + "]"
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
