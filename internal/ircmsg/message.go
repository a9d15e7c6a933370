// Package ircmsg implements the wire-level pieces of the protocol: a
// cursor-based lexer for IRC message lines, and a Message type that knows
// how to encode itself back into a wire line.
package ircmsg

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLineLength is the maximum size of a complete IRC line, including the
// trailing CRLF.
const MaxLineLength = 512

// ErrTruncated is returned by Encode when the message had to be shortened
// to fit MaxLineLength. The returned string is still a valid, usable line.
var ErrTruncated = errors.New("ircmsg: message truncated to fit maximum line length")

// Message is a parsed or to-be-encoded IRC protocol line.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Trailing marks a parameter as the message's <trailing> production: it
// will always be colon-prefixed on the wire, even if it happens to be a
// single word with no embedded space. Use this for any free-text field
// (topic text, PRIVMSG text, quit/part reasons, numeric-reply text) where
// the value isn't structurally guaranteed to contain a space. Callers must
// only ever use it for the last parameter of a message.
func Trailing(s string) string {
	return ":" + s
}

// Encode renders m as a raw protocol line, including the trailing CRLF.
//
// A parameter is written with a leading colon if it already has one (the
// caller marked it with Trailing), or, as a fallback, if it is empty or
// contains a space — in both cases it must be the last parameter. If
// encoding would exceed MaxLineLength, the line is truncated to fit and
// ErrTruncated is returned; the truncated line is still usable.
func (m Message) Encode() (string, error) {
	var b strings.Builder

	if m.Prefix != "" {
		b.WriteString(":")
		b.WriteString(m.Prefix)
		b.WriteString(" ")
	}
	b.WriteString(m.Command)

	if len(m.Params) > 15 {
		return "", fmt.Errorf("ircmsg: too many parameters")
	}

	s := b.String()
	if len(s)+2 > MaxLineLength {
		return "", fmt.Errorf("ircmsg: message with only prefix/command is too long")
	}

	truncated := false

	for i, param := range m.Params {
		alreadyMarked := len(param) > 0 && param[0] == ':'
		needsMark := param == "" || strings.Contains(param, " ")

		if (alreadyMarked || needsMark) && i+1 != len(m.Params) {
			return "", fmt.Errorf("ircmsg: trailing parameter %q is not last", param)
		}

		wire := param
		if needsMark && !alreadyMarked {
			wire = ":" + param
		}

		if len(s)+1+len(wire)+2 > MaxLineLength {
			lengthUsed := len(s) + 1 + 2
			lengthAvailable := MaxLineLength - lengthUsed
			if lengthAvailable > 0 {
				s += " " + wire[:lengthAvailable]
			}
			truncated = true
			break
		}

		s += " " + wire
	}

	s += "\r\n"

	if truncated {
		return s, ErrTruncated
	}
	return s, nil
}
