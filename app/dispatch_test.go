package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/artpar/cmdgate/adapters/clock"
	"github.com/artpar/cmdgate/adapters/idgen"
	"github.com/artpar/cmdgate/adapters/memory"
	"github.com/artpar/cmdgate/app"
	"github.com/artpar/cmdgate/core/events"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/domain/cooldown"
	"github.com/artpar/cmdgate/domain/message"
	"github.com/artpar/cmdgate/domain/usage"
	"github.com/rs/zerolog"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestDispatchService_Dispatch_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	// Act
	msg := message.Message{
		ID:      "m-1",
		Channel: "general",
		Author:  "mod-1",
		Content: "!ban <@42> spamming 3",
	}
	reply, err := svc.Dispatch(ctx, msg)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply == nil {
		t.Fatal("expected a reply")
	}
	if reply.Text != "banned <@42>: spamming (3 days)" {
		t.Errorf("reply = %q, want %q", reply.Text, "banned <@42>: spamming (3 days)")
	}

	// Verify usage was recorded
	records := stores.usage.Drain()
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}
	rec := records[0]
	if rec.Command != "ban" {
		t.Errorf("record command = %s, want ban", rec.Command)
	}
	if rec.Status != usage.StatusDispatched {
		t.Errorf("record status = %s, want %s", rec.Status, usage.StatusDispatched)
	}
	if rec.Channel != "general" || rec.Author != "mod-1" {
		t.Errorf("record provenance = %s/%s, want general/mod-1", rec.Channel, rec.Author)
	}
	// The ban handler advances the fake clock by 150ms.
	if rec.LatencyMs != 150 {
		t.Errorf("record latencyMs = %d, want 150", rec.LatencyMs)
	}
}

func TestDispatchService_Dispatch_NotACommand(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	for _, content := range []string{"hello there", "!", "!   ", "ban <@42> spam"} {
		reply, err := svc.Dispatch(ctx, message.Message{
			ID: "m-1", Channel: "general", Author: "mod-1", Content: content,
		})
		if err != nil {
			t.Errorf("content %q: unexpected error %v", content, err)
		}
		if reply != nil {
			t.Errorf("content %q: expected no reply, got %q", content, reply.Text)
		}
	}

	if records := stores.usage.Drain(); len(records) != 0 {
		t.Errorf("expected no usage records, got %d", len(records))
	}
}

func TestDispatchService_Dispatch_UnknownCommand(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!warn <@42>",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Text != `unknown command "warn"` {
		t.Errorf("reply = %q, want %q", reply.Text, `unknown command "warn"`)
	}

	records := stores.usage.Drain()
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}
	if records[0].Status != usage.StatusUnknown {
		t.Errorf("record status = %s, want %s", records[0].Status, usage.StatusUnknown)
	}
	// The attempted name is recorded, not a canonical one.
	if records[0].Command != "warn" {
		t.Errorf("record command = %s, want warn", records[0].Command)
	}
}

func TestDispatchService_Dispatch_UnknownWithSuggestion(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestDispatchService()

	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!ec hi",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := `unknown command "ec". did you mean: !echo?`
	if reply.Text != want {
		t.Errorf("reply = %q, want %q", reply.Text, want)
	}
}

func TestDispatchService_Dispatch_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	// "alice" is not a mention and the reason is missing entirely.
	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!ban alice",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "invalid arguments:\n" +
		"  - target: must be a user, role or channel mention\n" +
		"  - reason: option is required\n" +
		"usage: !ban <target> <reason> [days]"
	if reply.Text != want {
		t.Errorf("reply = %q, want %q", reply.Text, want)
	}

	records := stores.usage.Drain()
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}
	if records[0].Status != usage.StatusRejected {
		t.Errorf("record status = %s, want %s", records[0].Status, usage.StatusRejected)
	}
	if records[0].ErrorCount != 2 {
		t.Errorf("record errorCount = %d, want 2", records[0].ErrorCount)
	}
}

func TestDispatchService_Dispatch_Cooldown(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	msg := message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!echo hi",
	}

	// The test config allows 2 uses per minute.
	for i := 0; i < 2; i++ {
		reply, err := svc.Dispatch(ctx, msg)
		if err != nil {
			t.Fatalf("dispatch %d: unexpected error %v", i+1, err)
		}
		if reply.Text != "hi" {
			t.Fatalf("dispatch %d: reply = %q, want %q", i+1, reply.Text, "hi")
		}
	}

	reply, err := svc.Dispatch(ctx, msg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Text != "!echo is on cooldown, retry in 60s" {
		t.Errorf("reply = %q, want %q", reply.Text, "!echo is on cooldown, retry in 60s")
	}

	records := stores.usage.Drain()
	if len(records) != 3 {
		t.Fatalf("expected 3 usage records, got %d", len(records))
	}
	if records[2].Status != usage.StatusThrottled {
		t.Errorf("record status = %s, want %s", records[2].Status, usage.StatusThrottled)
	}
}

func TestDispatchService_Dispatch_CooldownPerAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestDispatchService()

	// mod-1 exhausts their budget.
	for i := 0; i < 2; i++ {
		svc.Dispatch(ctx, message.Message{
			ID: "m-1", Channel: "general", Author: "mod-1", Content: "!echo hi",
		})
	}

	// mod-2 is unaffected.
	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-2", Channel: "general", Author: "mod-2", Content: "!echo hi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Text != "hi" {
		t.Errorf("reply = %q, want %q", reply.Text, "hi")
	}
}

func TestDispatchService_Dispatch_HandlerError(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!fail",
	})

	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	// The author still gets a reply; the error detail stays internal.
	if reply == nil || reply.Text != "!fail failed, try again later" {
		t.Errorf("reply = %v, want failure notice", reply)
	}

	records := stores.usage.Drain()
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}
	if records[0].Status != usage.StatusFailed {
		t.Errorf("record status = %s, want %s", records[0].Status, usage.StatusFailed)
	}
}

func TestDispatchService_Dispatch_Alias(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	reply, err := svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!b <@7> spam",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Text != "banned <@7>: spam" {
		t.Errorf("reply = %q, want %q", reply.Text, "banned <@7>: spam")
	}

	// Usage is recorded under the canonical name.
	records := stores.usage.Drain()
	if len(records) != 1 || records[0].Command != "ban" {
		t.Errorf("records = %+v, want one for ban", records)
	}
}

// ----------------------------------------------------------------
// Test Fakes
// ----------------------------------------------------------------

var errBoom = errors.New("boom")

type testStores struct {
	cooldowns *memory.CooldownStore
	usage     *testUsageRecorder
	clock     *clock.Fake
	bus       *events.Bus
}

type testUsageRecorder struct {
	records []usage.Record
}

func (r *testUsageRecorder) Record(rec usage.Record) {
	r.records = append(r.records, rec)
}

func (r *testUsageRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *testUsageRecorder) Close() error {
	return nil
}

func (r *testUsageRecorder) Drain() []usage.Record {
	records := r.records
	r.records = nil
	return records
}

func banCmd() *schema.Command {
	return schema.New("ban").
		SetDescription("ban a member").
		AddAlias("b").
		AddMentionableOption(func(o *schema.OptionBuilder) {
			o.SetName("target").SetDescription("member to ban")
		}).
		AddStringOption(func(o *schema.OptionBuilder) {
			o.SetName("reason").SetDescription("why they are banned")
		}).
		AddNumberOption(func(o *schema.OptionBuilder) {
			o.SetName("days").SetDescription("days of history to purge").
				SetMin(0).SetMax(7).Optional()
		}).
		MustBuild()
}

func echoCmd() *schema.Command {
	return schema.New("echo").
		SetDescription("repeat the input").
		AddStringOption(func(o *schema.OptionBuilder) {
			o.SetName("text").SetDescription("text to repeat")
		}).
		MustBuild()
}

func failCmd() *schema.Command {
	return schema.New("fail").
		SetDescription("always fails").
		MustBuild()
}

// banHandler advances the fake clock so dispatch latency is observable.
func banHandler(fakeClock *clock.Fake) app.Handler {
	return func(ctx context.Context, inv *app.Invocation) (string, error) {
		fakeClock.Advance(150 * time.Millisecond)

		target, _ := inv.Result.Get("target")
		ref, _ := target.AsMention()
		reason, _ := inv.Result.Get("reason")
		why, _ := reason.AsString()

		out := fmt.Sprintf("banned %s: %s", ref, why)
		if days, ok := inv.Result.Get("days"); ok {
			n, _ := days.AsNumber()
			out += fmt.Sprintf(" (%v days)", n)
		}
		return out, nil
	}
}

func echoHandler(ctx context.Context, inv *app.Invocation) (string, error) {
	text, _ := inv.Result.Get("text")
	s, _ := text.AsString()
	return s, nil
}

func failHandler(ctx context.Context, inv *app.Invocation) (string, error) {
	return "", errBoom
}

func newTestDispatchService() (*app.DispatchService, *testStores) {
	stores := &testStores{
		cooldowns: memory.NewCooldownStore(),
		usage:     &testUsageRecorder{},
		clock:     clock.NewFake(baseTime),
		bus:       events.NewBus(zerolog.Nop()),
	}

	deps := app.DispatchDeps{
		Registry:  registry.New(),
		Cooldowns: stores.cooldowns,
		Usage:     stores.usage,
		Clock:     stores.clock,
		IDGen:     idgen.NewSequential("id-"),
		Bus:       stores.bus,
	}

	cfg := app.DispatchConfig{
		Prefix:   "!",
		Cooldown: cooldown.Config{Uses: 2, Window: time.Minute},
	}

	svc := app.NewDispatchService(deps, cfg)
	err := svc.RegisterAll(
		app.Registration{Command: banCmd(), Handler: banHandler(stores.clock)},
		app.Registration{Command: echoCmd(), Handler: echoHandler},
		app.Registration{Command: failCmd(), Handler: failHandler},
	)
	if err != nil {
		panic(err)
	}
	return svc, stores
}

// ----------------------------------------------------------------
// Events and Registration
// ----------------------------------------------------------------

func TestDispatchService_Dispatch_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	svc, stores := newTestDispatchService()

	var got []string
	stores.bus.Subscribe("command.*", func(ctx context.Context, e events.Event) error {
		got = append(got, e.Name)
		return nil
	})

	svc.Dispatch(ctx, message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!echo hi",
	})
	svc.Dispatch(ctx, message.Message{
		ID: "m-2", Channel: "general", Author: "mod-1", Content: "!echo",
	})
	svc.Dispatch(ctx, message.Message{
		ID: "m-3", Channel: "general", Author: "mod-1", Content: "!nope",
	})

	want := []string{events.Dispatched, events.Rejected, events.Unknown}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDispatchService_UpdateConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestDispatchService()

	msg := message.Message{
		ID: "m-1", Channel: "general", Author: "mod-1", Content: "!echo hi",
	}
	for i := 0; i < 2; i++ {
		svc.Dispatch(ctx, msg)
	}

	// Disabling the cooldown at runtime lifts the limit immediately.
	svc.UpdateConfig(cooldown.Config{})

	reply, err := svc.Dispatch(ctx, msg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Text != "hi" {
		t.Errorf("reply = %q, want %q", reply.Text, "hi")
	}
}

func TestDispatchService_Register_NilHandler(t *testing.T) {
	svc, _ := newTestDispatchService()

	err := svc.Register(schema.New("noop").SetDescription("does nothing").MustBuild(), nil)
	if err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestDispatchService_RegisterAll_ReportsEveryConflict(t *testing.T) {
	svc, _ := newTestDispatchService()

	err := svc.RegisterAll(
		app.Registration{Command: echoCmd(), Handler: echoHandler},
		app.Registration{
			Command: schema.New("block").
				SetDescription("block a member").
				AddAlias("b").
				MustBuild(),
			Handler: echoHandler,
		},
	)
	if err == nil {
		t.Fatal("expected registration conflicts")
	}

	// Both collisions appear in one error.
	msg := err.Error()
	for _, want := range []string{`"echo"`, `"b"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %s", msg, want)
		}
	}
}
