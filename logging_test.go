package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestEscapeForLog(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "hello world", "hello world"},
		{"backslash doubled", `a\b`, `a\\b`},
		{"newline escaped", "a\nb", "a\\x10b"},
		{"byte value >= 100 overflows two digit slots", string([]byte{200}), "\\xD0"},
		{"high bit byte", string([]byte{0xff}), "\\xI5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := escapeForLog(tc.in); got != tc.want {
				t.Errorf("escapeForLog(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWireFormatterWidth(t *testing.T) {
	f := &wireFormatter{}
	entry := &logrus.Entry{
		Time:    time.Unix(1700000000, 123000000),
		Message: "listening",
	}
	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format returned error: %s", err)
	}
	if len(out) < 23 {
		t.Fatalf("formatted line shorter than the fixed-width prefix: %q", out)
	}
	if out[0] != '[' {
		t.Errorf("expected line to start with '[', got %q", out)
	}
}
