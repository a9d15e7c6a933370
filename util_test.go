package main

import "testing"

func TestIsValidNick(t *testing.T) {
	tests := []struct {
		nick string
		want bool
	}{
		{"alice", true},
		{"Alice", true},
		{"a", true},
		{"a1-b", true},
		{"a[b]c", true},
		{"", false},
		{"1alice", false},
		{"alice!", false},
		{"toolongnick", false},
		{"nine_char", false},
	}

	for _, tt := range tests {
		if got := isValidNick(tt.nick); got != tt.want {
			t.Errorf("isValidNick(%q) = %v, want %v", tt.nick, got, tt.want)
		}
	}
}
