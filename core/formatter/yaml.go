package formatter

import (
	"fmt"
	"io"

	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/validation"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Name returns the formatter name.
func (f *YAMLFormatter) Name() string {
	return "yaml"
}

// Description returns the formatter description.
func (f *YAMLFormatter) Description() string {
	return "YAML output format"
}

// yamlCommand mirrors schema.Command without the coerce function,
// which the YAML encoder cannot marshal.
type yamlCommand struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Aliases     []string     `yaml:"aliases,omitempty"`
	Options     []yamlOption `yaml:"options,omitempty"`
}

type yamlOption struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Type        string   `yaml:"type"`
	Required    bool     `yaml:"required"`
	Min         *float64 `yaml:"min,omitempty"`
	Max         *float64 `yaml:"max,omitempty"`
	Choices     []string `yaml:"choices,omitempty"`
}

type yamlValue struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Raw   string `yaml:"raw,omitempty"`
	Set   bool   `yaml:"set"`
	Value string `yaml:"value,omitempty"`
}

type yamlError struct {
	Option  string `yaml:"option,omitempty"`
	Raw     string `yaml:"raw,omitempty"`
	Code    string `yaml:"code"`
	Message string `yaml:"message"`
}

// FormatCommands formats a command catalog as YAML.
func (f *YAMLFormatter) FormatCommands(w io.Writer, prefix string, cmds []*schema.Command, opts FormatOptions) error {
	docs := make([]yamlCommand, len(cmds))
	for i, cmd := range cmds {
		docs[i] = commandDoc(cmd)
	}

	output := map[string]any{
		"prefix":   prefix,
		"count":    len(docs),
		"commands": docs,
	}

	return f.encode(w, output)
}

// FormatCommand formats a single command as YAML.
func (f *YAMLFormatter) FormatCommand(w io.Writer, prefix string, cmd *schema.Command, opts FormatOptions) error {
	if cmd == nil {
		output := map[string]any{
			"command": nil,
		}
		return f.encode(w, output)
	}

	output := map[string]any{
		"usage":   help.Usage(prefix, cmd),
		"command": commandDoc(cmd),
	}

	return f.encode(w, output)
}

// FormatResult formats a validation outcome as YAML.
func (f *YAMLFormatter) FormatResult(w io.Writer, res validation.Result, opts FormatOptions) error {
	errs := make([]yamlError, len(res.Errors))
	for i, e := range res.Errors {
		errs[i] = yamlError{Option: e.Option, Raw: e.Raw, Code: e.Code, Message: e.Message}
	}
	vals := make([]yamlValue, len(res.Options))
	for i, v := range res.Options {
		vals[i] = yamlValue{Name: v.Name, Type: string(v.Type), Raw: v.Raw, Set: v.Set}
		if v.Set {
			vals[i].Value = displayValue(v)
		}
	}

	output := map[string]any{
		"command": res.Command,
		"ok":      res.OK(),
		"errors":  errs,
		"options": vals,
	}

	return f.encode(w, output)
}

// FormatError formats an error as YAML.
func (f *YAMLFormatter) FormatError(w io.Writer, err error) error {
	output := map[string]any{
		"error": err.Error(),
	}
	return f.encode(w, output)
}

// encode writes YAML to the writer.
func (f *YAMLFormatter) encode(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(data)
}

func commandDoc(cmd *schema.Command) yamlCommand {
	doc := yamlCommand{
		Name:        cmd.Name,
		Description: cmd.Description,
		Aliases:     cmd.Aliases,
		Options:     make([]yamlOption, len(cmd.Options)),
	}
	for i, opt := range cmd.Options {
		doc.Options[i] = yamlOption{
			Name:        opt.Name,
			Description: opt.Description,
			Type:        string(opt.Type),
			Required:    opt.Required,
			Min:         opt.Min,
			Max:         opt.Max,
			Choices:     opt.Choices,
		}
	}
	return doc
}

func init() {
	if err := Register(NewYAMLFormatter()); err != nil {
		fmt.Printf("failed to register yaml formatter: %v\n", err)
	}
}
