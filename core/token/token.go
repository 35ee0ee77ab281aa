// Package token splits raw chat-command text into argument tokens.
// Splitting is the only stage of input handling that can fail outright;
// everything downstream reports per-option errors instead.
package token

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote reports a quote that was opened and never closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Token is one argument extracted from an input line.
type Token struct {
	// Value is the token text with quote characters removed.
	Value string

	// Quoted is true when any part of the token was quoted. A quoted
	// empty segment ("") yields an empty Value with Quoted set, which
	// is how callers pass an explicitly empty argument.
	Quoted bool

	// Start is the byte offset of the token in the input line.
	Start int
}

// Split breaks raw into tokens. Runs of whitespace separate tokens.
// Single or double quotes group embedded whitespace into one token and
// may open and close mid-token; the other quote character is literal
// inside a quoted segment. Blank input yields no tokens.
func Split(raw string) ([]Token, error) {
	var tokens []Token
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)
	quoted := false
	start := -1

	flush := func() {
		if current.Len() == 0 && !quoted {
			return
		}
		tokens = append(tokens, Token{Value: current.String(), Quoted: quoted, Start: start})
		current.Reset()
		quoted = false
		start = -1
	}

	for i, r := range raw {
		switch {
		case r == '"' || r == '\'':
			if inQuote && r == quoteChar {
				inQuote = false
				quoteChar = 0
			} else if !inQuote {
				inQuote = true
				quoteChar = r
				quoted = true
				if start < 0 {
					start = i
				}
			} else {
				current.WriteRune(r)
			}
		case unicode.IsSpace(r):
			if inQuote {
				current.WriteRune(r)
			} else {
				flush()
			}
		default:
			if start < 0 {
				start = i
			}
			current.WriteRune(r)
		}
	}

	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	flush()

	return tokens, nil
}

// Values returns just the token texts.
func Values(tokens []Token) []string {
	vals := make([]string, len(tokens))
	for i, tok := range tokens {
		vals[i] = tok.Value
	}
	return vals
}

// CutCommand splits the leading command name from a line that has
// already had its channel prefix stripped. The name runs to the first
// whitespace; the remainder is returned verbatim (quoting intact) for
// the validation engine.
func CutCommand(line string) (name, rest string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}
