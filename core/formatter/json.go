package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/validation"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the formatter name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Description returns the formatter description.
func (f *JSONFormatter) Description() string {
	return "JSON output format"
}

// FormatCommands formats a command catalog as JSON.
func (f *JSONFormatter) FormatCommands(w io.Writer, prefix string, cmds []*schema.Command, opts FormatOptions) error {
	output := map[string]any{
		"prefix":   prefix,
		"count":    len(cmds),
		"commands": cmds,
	}

	return f.encode(w, output, opts.Compact)
}

// FormatCommand formats a single command as JSON.
func (f *JSONFormatter) FormatCommand(w io.Writer, prefix string, cmd *schema.Command, opts FormatOptions) error {
	if cmd == nil {
		output := map[string]any{
			"command": nil,
		}
		return f.encode(w, output, opts.Compact)
	}

	output := map[string]any{
		"usage":   help.Usage(prefix, cmd),
		"command": cmd,
	}

	return f.encode(w, output, opts.Compact)
}

// FormatResult formats a validation outcome as JSON.
func (f *JSONFormatter) FormatResult(w io.Writer, res validation.Result, opts FormatOptions) error {
	output := map[string]any{
		"command": res.Command,
		"ok":      res.OK(),
		"errors":  res.Errors,
		"options": res.Options,
	}

	return f.encode(w, output, opts.Compact)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output, false)
}

// encode writes JSON to the writer.
func (f *JSONFormatter) encode(w io.Writer, data any, compact bool) error {
	encoder := json.NewEncoder(w)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

func init() {
	if err := Register(NewJSONFormatter()); err != nil {
		fmt.Printf("failed to register json formatter: %v\n", err)
	}
}
