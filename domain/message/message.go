// Package message defines the transport-agnostic chat message types
// exchanged with the dispatcher. Channels (repl, web, tests) construct
// Messages; handlers produce Replies.
package message

import "strings"

// Message is one inbound chat line (immutable value type).
type Message struct {
	ID      string // channel-assigned or generated identifier
	Channel string // logical channel name, e.g. "general" or "tty"
	Author  string // stable author identifier within the channel
	Content string // raw text as typed, prefix included
}

// IsCommand reports whether the message starts with the command prefix
// and carries anything after it.
func (m Message) IsCommand(prefix string) bool {
	return prefix != "" &&
		strings.HasPrefix(m.Content, prefix) &&
		len(strings.TrimSpace(m.Content)) > len(prefix)
}

// Reply is the dispatcher's answer to a message.
type Reply struct {
	Text string
}
