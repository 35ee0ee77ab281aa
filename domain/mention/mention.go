// Package mention parses chat mention references.
// Parsing is purely syntactic; whether the referenced entity exists is
// the hosting platform's concern.
package mention

import (
	"fmt"
	"regexp"
)

// Kind classifies what a mention refers to.
type Kind string

const (
	KindUser    Kind = "user"
	KindRole    Kind = "role"
	KindChannel Kind = "channel"
)

// Ref is a parsed mention (value type).
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// Mention syntax: <@id> or <@!id> for users, <@&id> for roles,
// <#id> for channels. IDs are 1 to 20 ASCII digits.
var mentionPattern = regexp.MustCompile(`^<(@&|@!?|#)([0-9]{1,20})>$`)

// Parse parses a mention token into a Ref.
func Parse(raw string) (Ref, error) {
	m := mentionPattern.FindStringSubmatch(raw)
	if m == nil {
		return Ref{}, fmt.Errorf("not a mention: %q", raw)
	}

	ref := Ref{ID: m[2]}
	switch m[1] {
	case "@", "@!":
		ref.Kind = KindUser
	case "@&":
		ref.Kind = KindRole
	case "#":
		ref.Kind = KindChannel
	}
	return ref, nil
}

// String renders the canonical mention form. The nickname variant <@!id>
// normalizes to <@id>.
func (r Ref) String() string {
	switch r.Kind {
	case KindRole:
		return "<@&" + r.ID + ">"
	case KindChannel:
		return "<#" + r.ID + ">"
	default:
		return "<@" + r.ID + ">"
	}
}
