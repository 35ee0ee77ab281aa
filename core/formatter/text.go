package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/validation"
)

// TextFormatter formats output as aligned plain text.
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Name returns the formatter name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Description returns the formatter description.
func (f *TextFormatter) Description() string {
	return "Aligned plain text output"
}

// FormatCommands formats a command catalog as a table.
func (f *TextFormatter) FormatCommands(w io.Writer, prefix string, cmds []*schema.Command, opts FormatOptions) error {
	if len(cmds) == 0 {
		fmt.Fprintln(w, "No commands registered.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !opts.NoHeader {
		fmt.Fprintln(tw, "COMMAND\tALIASES\tARGS\tDESCRIPTION")
	}

	for _, cmd := range cmds {
		aliases := strings.Join(cmd.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		desc := f.truncate(cmd.Description, opts.MaxWidth)
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", prefix, cmd.Name, aliases, argSpan(cmd), desc)
	}

	return tw.Flush()
}

// FormatCommand formats one command as full help text.
func (f *TextFormatter) FormatCommand(w io.Writer, prefix string, cmd *schema.Command, opts FormatOptions) error {
	if cmd == nil {
		fmt.Fprintln(w, "Command not found.")
		return nil
	}
	_, err := io.WriteString(w, help.Render(prefix, cmd))
	return err
}

// FormatResult formats a validation outcome: resolved values on
// success, one line per problem on failure.
func (f *TextFormatter) FormatResult(w io.Writer, res validation.Result, opts FormatOptions) error {
	if res.OK() {
		fmt.Fprintf(w, "%s: ok\n", res.Command)
		if len(res.Options) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if !opts.NoHeader {
			fmt.Fprintln(tw, "  OPTION\tTYPE\tVALUE")
		}
		for _, v := range res.Options {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", v.Name, v.Type, displayValue(v))
		}
		return tw.Flush()
	}

	fmt.Fprintf(w, "%s: %d problem(s)\n", res.Command, len(res.Errors))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !opts.NoHeader {
		fmt.Fprintln(tw, "  OPTION\tCODE\tMESSAGE")
	}
	for _, e := range res.Errors {
		opt := e.Option
		if opt == "" {
			opt = "-"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", opt, e.Code, e.Message)
	}
	return tw.Flush()
}

// FormatError formats an error message.
func (f *TextFormatter) FormatError(w io.Writer, err error) error {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
	return nil
}

// argSpan renders the accepted argument count: "2" for exactly two,
// "1-3" for a range.
func argSpan(cmd *schema.Command) string {
	min, max := cmd.MinArgs(), cmd.MaxArgs()
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d-%d", min, max)
}

// truncate shortens a string to maxWidth runes.
func (f *TextFormatter) truncate(s string, maxWidth int) string {
	if maxWidth > 0 && len(s) > maxWidth {
		return s[:maxWidth-3] + "..."
	}
	return s
}

func init() {
	Register(NewTextFormatter())
}
