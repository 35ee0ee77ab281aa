// Package formatter provides a pluggable output formatting system.
// Formatters render command catalogs and validation results to various
// output formats (text, json, yaml).
package formatter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/artpar/cmdgate/core/coerce"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/validation"
)

// Formatter renders command definitions and validation outcomes in a
// specific output format.
type Formatter interface {
	// Name returns the formatter name (e.g., "text", "json", "yaml").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// FormatCommands formats a command catalog.
	FormatCommands(w io.Writer, prefix string, cmds []*schema.Command, opts FormatOptions) error

	// FormatCommand formats a single command definition.
	FormatCommand(w io.Writer, prefix string, cmd *schema.Command, opts FormatOptions) error

	// FormatResult formats a validation outcome.
	FormatResult(w io.Writer, res validation.Result, opts FormatOptions) error

	// FormatError formats an error.
	FormatError(w io.Writer, err error) error
}

// FormatOptions configures formatting behavior.
type FormatOptions struct {
	// NoHeader disables the header row for tabular formats.
	NoHeader bool

	// Compact minimizes whitespace (for json).
	Compact bool

	// MaxWidth truncates long values (0 = no limit).
	MaxWidth int
}

// Registry maps formatter names to implementations. The built-in
// formatters register themselves into DefaultRegistry at init time.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry creates an empty formatter registry.
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[string]Formatter)}
}

// Register adds a formatter, rejecting duplicate names.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Name()]; exists {
		return fmt.Errorf("formatter %q already registered", f.Name())
	}
	r.formatters[f.Name()] = f
	return nil
}

// Get returns a formatter by name.
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[name]
	return f, ok
}

// List returns the registered formatter names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(f Formatter) error {
	return DefaultRegistry.Register(f)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List returns all formatter names from the default registry, sorted.
func List() []string {
	return DefaultRegistry.List()
}

// displayValue renders a coerced value as a display string.
func displayValue(v coerce.Value) string {
	if !v.Set {
		return "-"
	}
	switch v.Type {
	case schema.OptionTypeString:
		return v.Str
	case schema.OptionTypeNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case schema.OptionTypeBoolean:
		return coerce.Canonical(v.Bool)
	case schema.OptionTypeMentionable:
		if v.Mention == nil {
			return "-"
		}
		return v.Mention.String()
	default:
		return fmt.Sprintf("%v", v.Any)
	}
}
