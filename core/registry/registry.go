// Package registry manages command registration and name conflict
// detection. A command claims its name and every alias; the registry
// guarantees each claim resolves to exactly one command.
package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/tidwall/btree"

	"github.com/artpar/cmdgate/core/schema"
)

// Registry holds registered commands and their name claims.
type Registry struct {
	mu sync.RWMutex

	// commands by canonical name, ordered for stable listings
	commands *btree.Map[string, *schema.Command]

	// claims maps every invocation name (command name or alias) to
	// the canonical command name
	claims map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		commands: btree.NewMap[string, *schema.Command](0),
		claims:   make(map[string]string),
	}
}

// Register adds a command. It fails with a ConflictError when the
// command name or any alias is already claimed, leaving the registry
// unchanged.
func (r *Registry) Register(cmd *schema.Command) error {
	if cmd == nil {
		return fmt.Errorf("register: nil command")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var conflicts []Conflict
	for _, name := range cmd.Names() {
		if owner, exists := r.claims[name]; exists {
			conflicts = append(conflicts, Conflict{
				Name:     name,
				Existing: owner,
				Incoming: cmd.Name,
			})
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}

	r.commands.Set(cmd.Name, cmd)
	for _, name := range cmd.Names() {
		r.claims[name] = cmd.Name
	}
	return nil
}

// RegisterAll registers every command, collecting all failures so a
// startup with several bad registrations reports them at once.
func (r *Registry) RegisterAll(cmds ...*schema.Command) error {
	var errs *multierror.Error
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Unregister removes a command and releases its claims.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, exists := r.commands.Get(name)
	if !exists {
		return fmt.Errorf("command %q not registered", name)
	}

	for _, claim := range cmd.Names() {
		delete(r.claims, claim)
	}
	r.commands.Delete(name)
	return nil
}

// Lookup resolves a command by name or alias.
func (r *Registry) Lookup(nameOrAlias string) (*schema.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.claims[nameOrAlias]
	if !ok {
		return nil, false
	}
	return r.commands.Get(canonical)
}

// List returns all commands ordered by name.
func (r *Registry) List() []*schema.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]*schema.Command, 0, r.commands.Len())
	r.commands.Scan(func(_ string, cmd *schema.Command) bool {
		cmds = append(cmds, cmd)
		return true
	})
	return cmds
}

// Len returns how many commands are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands.Len()
}

// Suggest returns up to three canonical command names starting with
// prefix, for "unknown command" hints.
func (r *Registry) Suggest(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	r.commands.Ascend(prefix, func(name string, _ *schema.Command) bool {
		if !strings.HasPrefix(name, prefix) {
			return false
		}
		names = append(names, name)
		return len(names) < 3
	})
	return names
}

// Conflict is one colliding name claim.
type Conflict struct {
	Name     string `json:"name"`
	Existing string `json:"existing"`
	Incoming string `json:"incoming"`
}

func (c Conflict) Error() string {
	return fmt.Sprintf("name %q already claimed by command %q (requested by %q)",
		c.Name, c.Existing, c.Incoming)
}

// ConflictError reports every name collision found during one Register.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("name conflicts detected:\n  - %s", strings.Join(msgs, "\n  - "))
}
