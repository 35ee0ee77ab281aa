// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/artpar/cmdgate/core/events"
	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/token"
	"github.com/artpar/cmdgate/core/validation"
	"github.com/artpar/cmdgate/domain/cooldown"
	"github.com/artpar/cmdgate/domain/message"
	"github.com/artpar/cmdgate/domain/usage"
	"github.com/artpar/cmdgate/ports"
)

// Handler executes a validated invocation and returns the reply text.
// A returned error marks the dispatch failed; it is not shown to the
// author verbatim.
type Handler func(ctx context.Context, inv *Invocation) (string, error)

// Invocation is everything a handler gets about one dispatch.
type Invocation struct {
	ID      string             // unique dispatch identifier
	Command *schema.Command    // the matched definition
	Message message.Message    // the triggering message
	Result  *validation.Result // coerced options, OK by construction
	At      time.Time          // dispatch time
}

// DispatchService routes chat messages to command handlers. Every
// user-input failure mode (unknown command, cooldown, invalid
// arguments) is data: a Reply describing the problem, never a panic.
type DispatchService struct {
	registry  *registry.Registry
	cooldowns ports.CooldownStore
	usage     ports.UsageRecorder
	clock     ports.Clock
	idGen     ports.IDGenerator
	bus       *events.Bus

	mu       sync.RWMutex
	handlers map[string]Handler

	// Static configuration (requires restart)
	prefix string

	// Dynamic configuration (hot-reloadable)
	dynamicCfg atomic.Pointer[DynamicConfig]
}

// DynamicConfig holds the hot-reloadable dispatch settings.
type DynamicConfig struct {
	Cooldown cooldown.Config
}

// DispatchDeps contains dependencies for DispatchService.
type DispatchDeps struct {
	Registry  *registry.Registry
	Cooldowns ports.CooldownStore
	Usage     ports.UsageRecorder
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Bus       *events.Bus
}

// DispatchConfig contains configuration for DispatchService.
type DispatchConfig struct {
	Prefix   string          // channel command prefix, e.g. "!"
	Cooldown cooldown.Config // per command+author limit; zero disables
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(deps DispatchDeps, cfg DispatchConfig) *DispatchService {
	s := &DispatchService{
		registry:  deps.Registry,
		cooldowns: deps.Cooldowns,
		usage:     deps.Usage,
		clock:     deps.Clock,
		idGen:     deps.IDGen,
		bus:       deps.Bus,
		handlers:  make(map[string]Handler),
		prefix:    cfg.Prefix,
	}
	s.dynamicCfg.Store(&DynamicConfig{Cooldown: cfg.Cooldown})
	return s
}

// UpdateConfig swaps the hot-reloadable settings. In-flight dispatches
// keep the configuration they started with.
func (s *DispatchService) UpdateConfig(cd cooldown.Config) {
	s.dynamicCfg.Store(&DynamicConfig{Cooldown: cd})
}

// getDynamicConfig returns the current dynamic configuration.
func (s *DispatchService) getDynamicConfig() *DynamicConfig {
	return s.dynamicCfg.Load()
}

// Registration pairs a command definition with its handler.
type Registration struct {
	Command *schema.Command
	Handler Handler
}

// Register adds a command and its handler. The registry enforces name
// and alias uniqueness; a conflict leaves the service unchanged.
func (s *DispatchService) Register(cmd *schema.Command, h Handler) error {
	if h == nil {
		return fmt.Errorf("command %q: nil handler", cmd.Name)
	}
	if err := s.registry.Register(cmd); err != nil {
		return err
	}

	s.mu.Lock()
	s.handlers[cmd.Name] = h
	s.mu.Unlock()
	return nil
}

// RegisterAll registers every pair, collecting all failures so startup
// reports every conflicting definition at once.
func (s *DispatchService) RegisterAll(regs ...Registration) error {
	var errs *multierror.Error
	for _, reg := range regs {
		if err := s.Register(reg.Command, reg.Handler); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Prefix returns the configured command prefix.
func (s *DispatchService) Prefix() string {
	return s.prefix
}

// Dispatch processes one chat message.
//
// A nil Reply with nil error means the message was not a command for
// this service. A non-nil error reports a handler or store failure;
// the Reply beside it is still safe to show the author.
func (s *DispatchService) Dispatch(ctx context.Context, msg message.Message) (*message.Reply, error) {
	now := s.clock.Now()

	// Get current dynamic config (hot-reloadable)
	dynCfg := s.getDynamicConfig()

	// 1. Prefix gate (PURE)
	if !msg.IsCommand(s.prefix) {
		return nil, nil
	}

	// 2. Split command name from argument text (PURE)
	line := strings.TrimPrefix(msg.Content, s.prefix)
	name, rest := token.CutCommand(line)
	if name == "" {
		return nil, nil
	}

	// 3. Lookup (registry read)
	cmd, ok := s.registry.Lookup(name)
	if !ok {
		return s.unknown(ctx, msg, name, now), nil
	}

	// 4. Cooldown check (PURE + I/O for state)
	if dynCfg.Cooldown.Enabled() {
		state, err := s.cooldowns.Get(ctx, cmd.Name, msg.Author)
		if err != nil {
			return s.failed(ctx, msg, cmd, now, 0, fmt.Errorf("cooldown state: %w", err))
		}
		check, newState := cooldown.Check(state, dynCfg.Cooldown, now)
		if err := s.cooldowns.Set(ctx, cmd.Name, msg.Author, newState); err != nil {
			return s.failed(ctx, msg, cmd, now, 0, fmt.Errorf("cooldown state: %w", err))
		}
		if !check.Allowed {
			return s.throttled(ctx, msg, cmd, check, now), nil
		}
	}

	// 5. Validate and coerce arguments (PURE)
	result := validation.Validate(cmd, rest)
	if !result.OK() {
		return s.rejected(ctx, msg, cmd, result, now), nil
	}

	// 6. Run the handler
	s.mu.RLock()
	handler := s.handlers[cmd.Name]
	s.mu.RUnlock()
	if handler == nil {
		return s.failed(ctx, msg, cmd, now, 0, fmt.Errorf("command %q: no handler", cmd.Name))
	}

	inv := &Invocation{
		ID:      s.idGen.New(),
		Command: cmd,
		Message: msg,
		Result:  &result,
		At:      now,
	}
	out, err := handler(ctx, inv)
	latencyMs := s.clock.Now().Sub(now).Milliseconds()
	if err != nil {
		return s.failed(ctx, msg, cmd, now, latencyMs, err)
	}

	// 7. Record the successful dispatch (async I/O)
	s.record(msg, cmd.Name, usage.StatusDispatched, 0, latencyMs, now)
	s.publish(ctx, events.Dispatched, msg, cmd.Name, map[string]any{
		"latency_ms": latencyMs,
	})

	return &message.Reply{Text: out}, nil
}

// unknown builds the reply for a name no command claims.
func (s *DispatchService) unknown(ctx context.Context, msg message.Message, name string, now time.Time) *message.Reply {
	suggestions := s.registry.Suggest(name)

	text := fmt.Sprintf("unknown command %q", name)
	if len(suggestions) > 0 {
		prefixed := make([]string, len(suggestions))
		for i, sug := range suggestions {
			prefixed[i] = s.prefix + sug
		}
		text += fmt.Sprintf(". did you mean: %s?", strings.Join(prefixed, ", "))
	}

	s.record(msg, name, usage.StatusUnknown, 0, 0, now)
	s.publish(ctx, events.Unknown, msg, name, map[string]any{
		"suggestions": suggestions,
	})
	return &message.Reply{Text: text}
}

// throttled builds the cooldown-denial reply.
func (s *DispatchService) throttled(ctx context.Context, msg message.Message, cmd *schema.Command, check cooldown.Result, now time.Time) *message.Reply {
	secs := int64(math.Ceil(check.RetryAfter.Seconds()))
	text := fmt.Sprintf("%s%s is on cooldown, retry in %ds", s.prefix, cmd.Name, secs)

	s.record(msg, cmd.Name, usage.StatusThrottled, 0, 0, now)
	s.publish(ctx, events.Throttled, msg, cmd.Name, map[string]any{
		"retry_after_ms": check.RetryAfter.Milliseconds(),
	})
	return &message.Reply{Text: text}
}

// rejected builds the reply listing every validation error.
func (s *DispatchService) rejected(ctx context.Context, msg message.Message, cmd *schema.Command, result validation.Result, now time.Time) *message.Reply {
	lines := make([]string, len(result.Errors))
	codes := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		lines[i] = e.Error()
		codes[i] = e.Code
	}
	text := fmt.Sprintf("invalid arguments:\n  - %s\nusage: %s",
		strings.Join(lines, "\n  - "), help.Usage(s.prefix, cmd))

	s.record(msg, cmd.Name, usage.StatusRejected, len(result.Errors), 0, now)
	s.publish(ctx, events.Rejected, msg, cmd.Name, map[string]any{
		"codes": codes,
	})
	return &message.Reply{Text: text}
}

// failed handles handler and store errors: the author gets a generic
// reply, the caller gets the error.
func (s *DispatchService) failed(ctx context.Context, msg message.Message, cmd *schema.Command, now time.Time, latencyMs int64, err error) (*message.Reply, error) {
	s.record(msg, cmd.Name, usage.StatusFailed, 0, latencyMs, now)
	s.publish(ctx, events.Failed, msg, cmd.Name, map[string]any{
		"error": err.Error(),
	})
	text := fmt.Sprintf("%s%s failed, try again later", s.prefix, cmd.Name)
	return &message.Reply{Text: text}, err
}

func (s *DispatchService) record(msg message.Message, command string, status usage.Status, errorCount int, latencyMs int64, now time.Time) {
	s.usage.Record(usage.NewRecord(
		s.idGen.New(), command, msg.Channel, msg.Author,
		status, errorCount, latencyMs, now,
	))
}

func (s *DispatchService) publish(ctx context.Context, name string, msg message.Message, command string, data map[string]any) {
	s.bus.Publish(ctx, events.Event{
		Name:    name,
		Command: command,
		Channel: msg.Channel,
		Author:  msg.Author,
		Data:    data,
	})
}
