package main

import "testing"

func TestSetNickUpdatesIndexWithoutGap(t *testing.T) {
	s := newTestServer()
	u := newUser(s, kindBot)
	u.bot = &LocalBot{user: u, server: s}

	u.setNick("alice")
	if got, ok := s.nicks.Get("alice"); !ok || got != u {
		t.Fatalf("expected alice indexed to u, got %v, %v", got, ok)
	}

	u.setNick("alicia")
	if _, ok := s.nicks.Get("alice"); ok {
		t.Error("old nick should have been removed from the index")
	}
	if got, ok := s.nicks.Get("alicia"); !ok || got != u {
		t.Fatalf("expected alicia indexed to u, got %v, %v", got, ok)
	}

	// Renaming to the same nick is a no-op on the index.
	u.setNick("alicia")
	if got, ok := s.nicks.Get("alicia"); !ok || got != u {
		t.Fatalf("re-set to same nick broke the index: %v, %v", got, ok)
	}
}

// TestUserQuitDedupsAcrossSharedChannels wires alice and bob into two
// shared channels directly (bypassing the JOIN broadcast, already covered
// in channel_test.go) so the only traffic bob sees is the QUIT itself —
// exactly one line, not one per shared channel.
func TestUserQuitDedupsAcrossSharedChannels(t *testing.T) {
	s := newTestServer()
	ch1 := newChannel(s, "#one")
	ch2 := newChannel(s, "#two")
	s.channels.Set(ch1.name, ch1)
	s.channels.Set(ch2.name, ch2)

	alice, _ := newTestUser(t, s, "alice")
	bob, bobR := newTestUser(t, s, "bob")

	for _, ch := range []*Channel{ch1, ch2} {
		ch.members.Set(alice.nick, alice)
		ch.members.Set(bob.nick, bob)
		alice.channels.Set(ch.name, ch)
		bob.channels.Set(ch.name, ch)
	}

	quitDone := make(chan struct{})
	go func() {
		alice.quit("leaving")
		close(quitDone)
	}()

	got := readLine(t, bobR)
	if !contains(got, "alice QUIT :leaving") {
		t.Fatalf("expected the QUIT line, got %q", got)
	}
	<-quitDone

	if _, ok := ch1.members.Get("alice"); ok {
		t.Error("alice should be removed from #one after quit")
	}
	if _, ok := ch2.members.Get("alice"); ok {
		t.Error("alice should be removed from #two after quit")
	}
	if alice.channels.Len() != 0 {
		t.Error("alice's channel set should be empty after quit")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
