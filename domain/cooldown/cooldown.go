// Package cooldown provides pure per-invoker command cooldown checks.
// All functions are deterministic: same input always produces the same
// output. Persisting state between checks is the caller's job.
package cooldown

import "time"

// State tracks one (command, invoker) window (value type).
type State struct {
	Count     int       // Invocations in the current window
	WindowEnd time.Time // When the current window ends
}

// Config bounds how often a command may run (value type).
type Config struct {
	Uses   int           // Invocations allowed per window
	Window time.Duration // Window duration
}

// Enabled reports whether the config limits anything at all.
func (c Config) Enabled() bool {
	return c.Uses > 0 && c.Window > 0
}

// Result reports the outcome of a cooldown check (value type).
type Result struct {
	Allowed    bool
	Remaining  int           // Invocations left in the window
	RetryAfter time.Duration // How long to wait when denied
	ResetAt    time.Time     // When the window resets
}

// Check performs a cooldown check. The window opens on first use and
// runs for cfg.Window. Returns the result and the updated state; the
// caller persists the state if it wants the check to stick.
func Check(state State, cfg Config, now time.Time) (Result, State) {
	if !cfg.Enabled() {
		return Result{Allowed: true}, state
	}

	if state.WindowEnd.IsZero() || now.After(state.WindowEnd) {
		state = State{WindowEnd: now.Add(cfg.Window)}
	}

	if state.Count < cfg.Uses {
		state.Count++
		return Result{
			Allowed:   true,
			Remaining: cfg.Uses - state.Count,
			ResetAt:   state.WindowEnd,
		}, state
	}

	return Result{
		Allowed:    false,
		RetryAfter: retryAfter(state.WindowEnd, now),
		ResetAt:    state.WindowEnd,
	}, state
}

func retryAfter(resetAt, now time.Time) time.Duration {
	d := resetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
