package repl_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/artpar/cmdgate/adapters/clock"
	"github.com/artpar/cmdgate/adapters/idgen"
	"github.com/artpar/cmdgate/adapters/memory"
	"github.com/artpar/cmdgate/app"
	"github.com/artpar/cmdgate/core/channel/repl"
	"github.com/artpar/cmdgate/core/events"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/domain/usage"
)

type nopRecorder struct{}

func (nopRecorder) Record(usage.Record)         {}
func (nopRecorder) Flush(context.Context) error { return nil }
func (nopRecorder) Close() error                { return nil }

// runSession executes the REPL over scripted input and returns the
// combined output.
func runSession(t *testing.T, input string) string {
	t.Helper()

	reg := registry.New()
	svc := app.NewDispatchService(app.DispatchDeps{
		Registry:  reg,
		Cooldowns: memory.NewCooldownStore(),
		Usage:     nopRecorder{},
		Clock:     clock.Real{},
		IDGen:     idgen.NewSequential("repl-test-"),
		Bus:       events.NewBus(zerolog.Nop()),
	}, app.DispatchConfig{Prefix: "!"})

	echo := schema.New("echo").
		SetDescription("Echo text back").
		AddAlias("say").
		AddStringOption(func(o *schema.OptionBuilder) {
			o.SetName("text").SetDescription("what to say")
		}).
		MustBuild()

	whoami := schema.New("whoami").
		SetDescription("Report the sending author").
		MustBuild()

	err := svc.RegisterAll(
		app.Registration{Command: echo, Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			text, _ := inv.Result.Get("text")
			return text.Str, nil
		}},
		app.Registration{Command: whoami, Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			return "you are " + inv.Message.Author, nil
		}},
	)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	var out bytes.Buffer
	ch := repl.New(svc, reg, strings.NewReader(input), &out)
	if err := ch.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return out.String()
}

func TestRun_DispatchCommand(t *testing.T) {
	out := runSession(t, "!echo hello\nquit\n")

	if !strings.Contains(out, "hello") {
		t.Errorf("output missing command reply:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("output missing quit farewell:\n%s", out)
	}
}

func TestRun_QuotedArguments(t *testing.T) {
	out := runSession(t, "!echo \"hello there\"\n")

	if !strings.Contains(out, "hello there") {
		t.Errorf("quoted argument not passed through:\n%s", out)
	}
}

func TestRun_AliasDispatch(t *testing.T) {
	out := runSession(t, "!say aliased\n")

	if !strings.Contains(out, "aliased") {
		t.Errorf("alias did not reach the handler:\n%s", out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	out := runSession(t, "!nope\n")

	if !strings.Contains(out, `unknown command "nope"`) {
		t.Errorf("output missing unknown-command reply:\n%s", out)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	out := runSession(t, "!echo\n")

	if !strings.Contains(out, "invalid arguments") {
		t.Errorf("output missing validation reply:\n%s", out)
	}
	if !strings.Contains(out, "usage: !echo <text>") {
		t.Errorf("output missing usage hint:\n%s", out)
	}
}

func TestRun_NonCommandLine(t *testing.T) {
	out := runSession(t, "hello there\n")

	if !strings.Contains(out, "not a command") {
		t.Errorf("output missing non-command hint:\n%s", out)
	}
}

func TestRun_EOFStops(t *testing.T) {
	// No quit: the session ends when input is exhausted.
	out := runSession(t, "!echo bye\n")

	if !strings.Contains(out, "bye") {
		t.Errorf("output missing reply before EOF:\n%s", out)
	}
}

func TestBuiltin_Help(t *testing.T) {
	out := runSession(t, "help\n")

	if !strings.Contains(out, "Builtins:") {
		t.Errorf("output missing builtin directory:\n%s", out)
	}
	if !strings.Contains(out, "!echo") {
		t.Errorf("output missing command overview:\n%s", out)
	}
}

func TestBuiltin_HelpCommand(t *testing.T) {
	out := runSession(t, "help echo\n")

	if !strings.Contains(out, "Usage: !echo <text>") {
		t.Errorf("output missing command usage:\n%s", out)
	}
	if !strings.Contains(out, "Aliases: say") {
		t.Errorf("output missing aliases:\n%s", out)
	}
}

func TestBuiltin_HelpPrefixedName(t *testing.T) {
	// "help !echo" works the same as "help echo".
	out := runSession(t, "help !echo\n")

	if !strings.Contains(out, "Usage: !echo <text>") {
		t.Errorf("output missing command usage:\n%s", out)
	}
}

func TestBuiltin_HelpUnknown(t *testing.T) {
	out := runSession(t, "help missing\n")

	if !strings.Contains(out, `unknown command "missing"`) {
		t.Errorf("output missing unknown-command message:\n%s", out)
	}
}

func TestBuiltin_Commands(t *testing.T) {
	out := runSession(t, "commands\n")

	if !strings.Contains(out, "COMMAND") {
		t.Errorf("output missing catalog header:\n%s", out)
	}
	if !strings.Contains(out, "!whoami") {
		t.Errorf("output missing registered command:\n%s", out)
	}
}

func TestBuiltin_Author(t *testing.T) {
	out := runSession(t, "author alice\n!whoami\n")

	if !strings.Contains(out, `now sending as "alice"`) {
		t.Errorf("output missing author switch:\n%s", out)
	}
	if !strings.Contains(out, "you are alice") {
		t.Errorf("dispatched message did not carry new author:\n%s", out)
	}
}

func TestBuiltin_AuthorShow(t *testing.T) {
	out := runSession(t, "author\n")

	if !strings.Contains(out, `author is "operator"`) {
		t.Errorf("output missing current author:\n%s", out)
	}
}

func TestBuiltin_Times(t *testing.T) {
	out := runSession(t, "times\n!echo timed\ntimes\n")

	if !strings.Contains(out, "Timing display enabled") {
		t.Errorf("output missing enable notice:\n%s", out)
	}
	if !strings.Contains(out, "Timing display disabled") {
		t.Errorf("output missing disable notice:\n%s", out)
	}
}

func TestRun_EmptyLinesIgnored(t *testing.T) {
	out := runSession(t, "\n\n   \n!echo ok\n")

	if !strings.Contains(out, "ok") {
		t.Errorf("output missing reply after blank lines:\n%s", out)
	}
	if strings.Contains(out, "not a command") {
		t.Errorf("blank lines should not produce hints:\n%s", out)
	}
}

func TestName(t *testing.T) {
	reg := registry.New()
	svc := app.NewDispatchService(app.DispatchDeps{
		Registry:  reg,
		Cooldowns: memory.NewCooldownStore(),
		Usage:     nopRecorder{},
		Clock:     clock.Real{},
		IDGen:     idgen.NewSequential("t"),
		Bus:       events.NewBus(zerolog.Nop()),
	}, app.DispatchConfig{Prefix: "!"})

	ch := repl.New(svc, reg, strings.NewReader(""), &bytes.Buffer{})
	if got := ch.Name(); got != "repl" {
		t.Errorf("Name() = %s, want repl", got)
	}
}
