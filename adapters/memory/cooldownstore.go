// Package memory provides in-memory implementations of storage ports.
package memory

import (
	"context"
	"sync"

	"github.com/artpar/cmdgate/domain/cooldown"
	"github.com/artpar/cmdgate/ports"
)

// CooldownStore is an in-memory implementation of ports.CooldownStore.
type CooldownStore struct {
	mu    sync.RWMutex
	state map[string]cooldown.State
}

// NewCooldownStore creates a new in-memory cooldown store.
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		state: make(map[string]cooldown.State),
	}
}

// Get retrieves the current window state for a command/author pair.
func (s *CooldownStore) Get(ctx context.Context, command, author string) (cooldown.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[pairKey(command, author)], nil
}

// Set updates the window state for a command/author pair.
func (s *CooldownStore) Set(ctx context.Context, command, author string, state cooldown.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[pairKey(command, author)] = state
	return nil
}

// Clear removes all state (for testing).
func (s *CooldownStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = make(map[string]cooldown.State)
}

// pairKey joins command and author with a separator neither can contain
// (command names reject whitespace and control characters are not
// produced by the tokenizer).
func pairKey(command, author string) string {
	return command + "\x00" + author
}

// Ensure interface compliance.
var _ ports.CooldownStore = (*CooldownStore)(nil)
