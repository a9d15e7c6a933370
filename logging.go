package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

// log is the single package-level logger every file writes through.
var log = logrus.New()

// logStyle selects which Formatter is installed on log. styleWire (the
// default) reproduces this server's own fixed-width timestamp format;
// styleNested is offered as an alternate, more conventional structured
// output for operators who don't want the raw wire-log look.
type logStyle int

const (
	styleWire logStyle = iota
	styleNested
)

// configureLogging installs the chosen formatter and a level-routing hook
// that sends it to stdout or stderr; the logger's own output is
// discarded so each line is written exactly once, by the hook.
func configureLogging(style logStyle) {
	log.Out = io.Discard
	switch style {
	case styleNested:
		log.Formatter = &nested.Formatter{
			HideKeys:    true,
			CallerFirst: true,
		}
	default:
		log.Formatter = &wireFormatter{}
	}
	log.Hooks = make(logrus.LevelHooks)
	log.AddHook(&levelSplitHook{})
}

// wireFormatter reproduces the fixed-width "[<seconds>.<milliseconds>]"
// timestamp prefix: right-aligned seconds padded with spaces, zero-padded
// 3-digit milliseconds, 23 characters overall including the brackets.
type wireFormatter struct{}

func (f *wireFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	sec := entry.Time.Unix()
	ms := entry.Time.Nanosecond() / int(time.Millisecond)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%17d.%03d] %s", sec, ms, entry.Message)
	for k, v := range entry.Data {
		fmt.Fprintf(&sb, " %s=%v", k, v)
	}
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// levelSplitHook routes info-and-below lines to stdout and warn-and-above
// to stderr wrapped in ANSI red, formatting each entry exactly once.
type levelSplitHook struct{}

func (h *levelSplitHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *levelSplitHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}

	if entry.Level <= logrus.WarnLevel {
		_, _ = os.Stderr.Write([]byte("\x1b[31m"))
		_, _ = os.Stderr.Write(line)
		_, _ = os.Stderr.Write([]byte("\x1b[0m"))
		return nil
	}

	_, _ = os.Stdout.Write(line)
	return nil
}

// escapeForLog renders an untrusted string for inclusion in a log line:
// printable ASCII passes through verbatim, backslashes double up, and
// every other byte becomes \xDD where DD is its decimal value split into
// two ASCII digits — a deliberate quirk (decimal digits behind a
// hex-looking \x prefix, breaking down for values >= 100) preserved
// exactly rather than corrected.
func escapeForLog(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c >= 0x20 && c <= 0x7e:
			sb.WriteByte(c)
		default:
			sb.WriteString("\\x")
			sb.WriteByte('0' + c/10)
			sb.WriteByte('0' + c%10)
		}
	}
	return sb.String()
}
