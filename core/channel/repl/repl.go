// Package repl provides an interactive terminal channel. Typed lines
// travel the same dispatch pipeline platform messages do, so cooldowns,
// validation and usage recording all apply.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/artpar/cmdgate/app"
	"github.com/artpar/cmdgate/core/formatter"
	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/domain/message"
)

// Channel is a REPL over a dispatch service.
type Channel struct {
	svc      *app.DispatchService
	registry *registry.Registry

	in  io.Reader
	out io.Writer

	prompt    string
	author    string
	channel   string
	running   bool
	showTimes bool
	seq       int

	promptColor *color.Color
	errColor    *color.Color
	dimColor    *color.Color
}

// New creates a REPL channel reading lines from in and writing output
// to out. Pass os.Stdin and os.Stdout for an interactive session.
func New(svc *app.DispatchService, reg *registry.Registry, in io.Reader, out io.Writer) *Channel {
	return &Channel{
		svc:         svc,
		registry:    reg,
		in:          in,
		out:         out,
		prompt:      "cmdgate> ",
		author:      "operator",
		channel:     "repl",
		promptColor: color.New(color.FgCyan),
		errColor:    color.New(color.FgRed),
		dimColor:    color.New(color.Faint),
	}
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return "repl"
}

// Stop makes Run return after the current line.
func (c *Channel) Stop() {
	c.running = false
}

// Run reads lines until EOF or a quit builtin. Lines carrying the
// command prefix are dispatched; a handful of builtins (help, commands,
// author, times, quit) are handled locally.
func (c *Channel) Run(ctx context.Context) error {
	c.running = true
	scanner := bufio.NewScanner(c.in)

	fmt.Fprintln(c.out, "cmdgate interactive shell")
	fmt.Fprintf(c.out, "Type 'help' for builtins, 'quit' to exit. Command prefix is %q.\n\n", c.svc.Prefix())

	for c.running {
		c.promptColor.Fprint(c.out, c.prompt)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if c.builtin(line) {
			continue
		}

		c.dispatch(ctx, line)
	}

	return scanner.Err()
}

// builtin handles REPL-local commands. It reports whether the line was
// consumed.
func (c *Channel) builtin(line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "quit", "exit", "q":
		c.running = false
		fmt.Fprintln(c.out, "Goodbye!")

	case "help", "h", "?":
		c.showHelp(fields[1:])

	case "commands", "ls":
		f := formatter.NewTextFormatter()
		f.FormatCommands(c.out, c.svc.Prefix(), c.registry.List(), formatter.FormatOptions{})

	case "author":
		if len(fields) < 2 {
			fmt.Fprintf(c.out, "author is %q (usage: author <name>)\n", c.author)
			return true
		}
		c.author = fields[1]
		fmt.Fprintf(c.out, "now sending as %q\n", c.author)

	case "times":
		c.showTimes = !c.showTimes
		if c.showTimes {
			fmt.Fprintln(c.out, "Timing display enabled")
		} else {
			fmt.Fprintln(c.out, "Timing display disabled")
		}

	default:
		return false
	}
	return true
}

// showHelp prints the builtin directory, or one command's full usage.
func (c *Channel) showHelp(args []string) {
	prefix := c.svc.Prefix()

	if len(args) > 0 {
		name := strings.TrimPrefix(args[0], prefix)
		cmd, ok := c.registry.Lookup(name)
		if !ok {
			c.errColor.Fprintf(c.out, "unknown command %q\n", name)
			return
		}
		fmt.Fprintln(c.out)
		io.WriteString(c.out, help.Render(prefix, cmd))
		fmt.Fprintln(c.out)
		return
	}

	fmt.Fprintln(c.out, "\nBuiltins:")
	fmt.Fprintln(c.out, "  help [command]     Show help, or one command's usage")
	fmt.Fprintln(c.out, "  commands           List registered commands")
	fmt.Fprintln(c.out, "  author <name>      Change the simulated author")
	fmt.Fprintln(c.out, "  times              Toggle dispatch timing display")
	fmt.Fprintln(c.out, "  quit               Exit the shell")
	fmt.Fprintf(c.out, "\nCommands (prefix %q):\n", prefix)
	io.WriteString(c.out, help.Overview(prefix, c.registry.List()))
	fmt.Fprintln(c.out)
}

// dispatch sends the line through the service as a chat message from
// the simulated author.
func (c *Channel) dispatch(ctx context.Context, line string) {
	if !strings.HasPrefix(line, c.svc.Prefix()) {
		c.dimColor.Fprintf(c.out, "not a command (prefix is %q); type 'help' for builtins\n", c.svc.Prefix())
		return
	}

	c.seq++
	msg := message.Message{
		ID:      fmt.Sprintf("repl-%d", c.seq),
		Channel: c.channel,
		Author:  c.author,
		Content: line,
	}

	start := time.Now()
	reply, err := c.svc.Dispatch(ctx, msg)
	elapsed := time.Since(start)

	if reply != nil {
		fmt.Fprintln(c.out, reply.Text)
	}
	if err != nil {
		c.errColor.Fprintf(c.out, "dispatch error: %v\n", err)
	}
	if c.showTimes {
		c.dimColor.Fprintf(c.out, "  %v\n", elapsed.Round(time.Microsecond))
	}
}
