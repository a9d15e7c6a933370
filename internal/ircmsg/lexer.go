package ircmsg

// Lexer is a cursor over a single, already-reassembled protocol line (no
// CRLF). It is deliberately low-level: callers drive it word by word, since
// each command's grammar decides how many parameters it expects and
// whether the last one is free text.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer returns a Lexer positioned at the start of line.
func NewLexer(line []byte) *Lexer {
	return &Lexer{data: line}
}

// AtEnd reports whether the cursor has consumed the entire line.
func (l *Lexer) AtEnd() bool {
	return l.pos >= len(l.data)
}

// Rest returns the unconsumed remainder of the line without advancing the
// cursor. Used only for diagnostics (logging ignored trailing bytes).
func (l *Lexer) Rest() string {
	if l.pos >= len(l.data) {
		return ""
	}
	return string(l.data[l.pos:])
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.data) && l.data[l.pos] == ' ' {
		l.pos++
	}
}

// Word reads the next space-delimited token, skipping any leading spaces.
// It does not treat a leading ':' specially. Returns false if no token
// remains.
func (l *Lexer) Word() (string, bool) {
	l.skipSpaces()
	if l.pos >= len(l.data) {
		return "", false
	}
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != ' ' {
		l.pos++
	}
	return string(l.data[start:l.pos]), true
}

// Parameter reads the next IRC <parameter>: if, after skipping leading
// spaces, the next byte is ':', the rest of the line (colon excluded) is
// consumed whole as the <trailing> production. Otherwise a single
// space-delimited word is consumed. Returns false if no parameter remains.
func (l *Lexer) Parameter() (string, bool) {
	l.skipSpaces()
	if l.pos >= len(l.data) {
		return "", false
	}
	if l.data[l.pos] == ':' {
		value := string(l.data[l.pos+1:])
		l.pos = len(l.data)
		return value, true
	}
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != ' ' {
		l.pos++
	}
	return string(l.data[start:l.pos]), true
}

// ListItem reads the next comma-separated item from a sub-lexer built over
// a single already-extracted parameter (e.g. a JOIN/PART channel list or a
// PRIVMSG target list). Returns false once the list is exhausted.
func (l *Lexer) ListItem() (string, bool) {
	if l.pos >= len(l.data) {
		return "", false
	}
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != ',' {
		l.pos++
	}
	item := string(l.data[start:l.pos])
	if l.pos < len(l.data) {
		l.pos++ // skip the comma
	}
	return item, true
}
