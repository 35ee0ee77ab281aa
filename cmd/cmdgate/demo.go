package main

import (
	"context"
	"fmt"
	"time"

	"github.com/artpar/cmdgate/adapters/random"
	"github.com/artpar/cmdgate/app"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/ports"
)

// DemoRegistrations returns the built-in command set registered by
// serve, repl and validate. The four commands cover every option type:
// plain string (echo), bounded number (roll), mentionable with optional
// trailers (ban) and a custom duration coercer (remind).
func DemoRegistrations(rng ports.Random) []app.Registration {
	return []app.Registration{
		echoRegistration(),
		rollRegistration(rng),
		banRegistration(),
		remindRegistration(),
	}
}

// demoRegistry returns a registry holding just the built-in schemas,
// for subcommands that inspect definitions without dispatching.
func demoRegistry() (*registry.Registry, error) {
	regs := DemoRegistrations(random.Real{})
	cmds := make([]*schema.Command, len(regs))
	for i, r := range regs {
		cmds[i] = r.Command
	}

	reg := registry.New()
	if err := reg.RegisterAll(cmds...); err != nil {
		return nil, err
	}
	return reg, nil
}

func echoRegistration() app.Registration {
	cmd := schema.New("echo").
		SetDescription("Repeat the given text").
		AddStringOption(func(o *schema.OptionBuilder) {
			o.SetName("text").SetDescription("text to repeat, quote to include spaces")
		}).
		MustBuild()

	return app.Registration{
		Command: cmd,
		Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			text, _ := inv.Result.Get("text")
			s, _ := text.AsString()
			return s, nil
		},
	}
}

func rollRegistration(rng ports.Random) app.Registration {
	cmd := schema.New("roll").
		SetDescription("Roll a die").
		AddAlias("r").
		AddNumberOption(func(o *schema.OptionBuilder) {
			o.SetName("sides").SetDescription("number of sides, default 6").
				Optional().SetMin(2).SetMax(1000)
		}).
		MustBuild()

	return app.Registration{
		Command: cmd,
		Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			sides := 6
			if v, ok := inv.Result.Get("sides"); ok {
				n, _ := v.AsNumber()
				sides = int(n)
			}
			n, err := rng.IntN(sides)
			if err != nil {
				return "", fmt.Errorf("roll d%d: %w", sides, err)
			}
			return fmt.Sprintf("rolled %d (d%d)", n+1, sides), nil
		},
	}
}

func banRegistration() app.Registration {
	cmd := schema.New("ban").
		SetDescription("Ban a user, role members or a channel's bots").
		AddAlias("b").
		AddMentionableOption(func(o *schema.OptionBuilder) {
			o.SetName("target").SetDescription("who to ban, as a mention")
		}).
		AddNumberOption(func(o *schema.OptionBuilder) {
			o.SetName("days").SetDescription("days of messages to purge").
				Optional().SetMin(0).SetMax(7)
		}).
		AddBooleanOption(func(o *schema.OptionBuilder) {
			o.SetName("silent").SetDescription("skip the public announcement").
				Optional()
		}).
		MustBuild()

	return app.Registration{
		Command: cmd,
		Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			target, _ := inv.Result.Get("target")
			ref, _ := target.AsMention()

			text := fmt.Sprintf("banned %s", ref)
			if days, ok := inv.Result.Get("days"); ok {
				n, _ := days.AsNumber()
				text += fmt.Sprintf(", purged %d day(s) of messages", int(n))
			}
			if silent, ok := inv.Result.Get("silent"); ok {
				if on, _ := silent.AsBool(); on {
					text += " (silently)"
				}
			}
			return text, nil
		},
	}
}

func remindRegistration() app.Registration {
	cmd := schema.New("remind").
		SetDescription("Schedule a reminder").
		AddCustomOption(parseDelay, func(o *schema.OptionBuilder) {
			o.SetName("in").SetDescription("delay before the reminder, e.g. 30s, 10m, 1h30m")
		}).
		AddStringOption(func(o *schema.OptionBuilder) {
			o.SetName("message").SetDescription("reminder text")
		}).
		MustBuild()

	return app.Registration{
		Command: cmd,
		Handler: func(ctx context.Context, inv *app.Invocation) (string, error) {
			in, _ := inv.Result.Get("in")
			msg, _ := inv.Result.Get("message")

			delay, _ := in.AsAny()
			text, _ := msg.AsString()
			return fmt.Sprintf("will remind you in %s: %s", delay.(time.Duration), text), nil
		},
	}
}

// parseDelay coerces reminder delays. The error text is shown to the
// author verbatim, so it names the accepted forms.
func parseDelay(raw string) (any, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("%q is not a delay, use forms like 30s, 10m or 1h30m", raw)
	}
	if d <= 0 {
		return nil, fmt.Errorf("delay must be positive, got %q", raw)
	}
	return d, nil
}
