package main

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"
)

// newTestUser wires up a real Client over an in-memory net.Pipe so tests
// can read back exactly what the server would have written to a socket.
func newTestUser(t *testing.T, s *Server, nick string) (*User, *bufio.Reader) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { _ = serverSide.Close(); _ = clientSide.Close() })

	s.nextID++
	c := newClient(s, serverSide, s.nextID)
	c.user.setNick(nick)
	c.user.setUser(nick, nick)

	return c.user, bufio.NewReader(clientSide)
}

// readLine blocks until the next newline-terminated line arrives, failing
// the test if none shows up within a second.
func readLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	done := make(chan struct{})
	var line string
	var err error
	go func() {
		line, err = r.ReadString('\n')
		close(done)
	}()
	select {
	case <-done:
		if err != nil {
			t.Fatalf("ReadString: %s", err)
		}
		return strings.TrimRight(line, "\r\n")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a line")
		return ""
	}
}

// drainLines reads and discards n lines.
func drainLines(t *testing.T, r *bufio.Reader, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		readLine(t, r)
	}
}

func newTestServer() *Server {
	cfg := &Config{ListenAddr: "127.0.0.1:0", ServerName: "irc.test"}
	return newServer(cfg)
}

func TestChannelJoinBroadcastsAndNames(t *testing.T) {
	s := newTestServer()
	ch := newChannel(s, "#lobby")
	s.channels.Set(ch.name, ch)

	alice, aliceR := newTestUser(t, s, "alice")
	go ch.join(alice)

	if got := readLine(t, aliceR); !strings.Contains(got, "JOIN #lobby") {
		t.Fatalf("expected JOIN broadcast to joiner, got %q", got)
	}
	if got := readLine(t, aliceR); !strings.Contains(got, "331") {
		t.Fatalf("expected RPL_NOTOPIC, got %q", got)
	}
	if got := readLine(t, aliceR); !strings.Contains(got, "353") || !strings.Contains(got, "alice") {
		t.Fatalf("expected RPL_NAMREPLY with alice, got %q", got)
	}
	if got := readLine(t, aliceR); !strings.Contains(got, "366") {
		t.Fatalf("expected RPL_ENDOFNAMES, got %q", got)
	}

	bob, bobR := newTestUser(t, s, "bob")
	go ch.join(bob)

	if got := readLine(t, aliceR); !strings.Contains(got, ":bob JOIN #lobby") {
		t.Fatalf("expected existing member to see bob's JOIN, got %q", got)
	}
	drainLines(t, bobR, 5) // JOIN, 331, 353 alice, 353 bob, 366
}

func TestChannelPartRemovesMembership(t *testing.T) {
	s := newTestServer()
	ch := newChannel(s, "#lobby")
	s.channels.Set(ch.name, ch)

	alice, aliceR := newTestUser(t, s, "alice")
	alice.channels.Set(ch.name, ch)
	go ch.join(alice)
	drainLines(t, aliceR, 4)

	partDone := make(chan struct{})
	go func() {
		ch.part(alice, "bye")
		close(partDone)
	}()

	if got := readLine(t, aliceR); !strings.Contains(got, "PART #lobby :bye") {
		t.Fatalf("expected PART broadcast, got %q", got)
	}
	<-partDone

	if _, ok := ch.members.Get("alice"); ok {
		t.Error("alice should have been removed from channel membership")
	}
	if _, ok := alice.channels.Get("#lobby"); ok {
		t.Error("alice's own channel set should no longer contain #lobby")
	}
}

func TestChannelTopicateSetAndQuery(t *testing.T) {
	s := newTestServer()
	ch := newChannel(s, "#lobby")
	s.channels.Set(ch.name, ch)

	alice, aliceR := newTestUser(t, s, "alice")
	go ch.join(alice)
	drainLines(t, aliceR, 4)

	go ch.topicate(alice, "welcome", true)
	if got := readLine(t, aliceR); !strings.Contains(got, "332") || !strings.Contains(got, "welcome") {
		t.Fatalf("expected RPL_TOPIC broadcast after set, got %q", got)
	}

	go ch.topicate(alice, "", false)
	if got := readLine(t, aliceR); !strings.Contains(got, "332") || !strings.Contains(got, "welcome") {
		t.Fatalf("expected RPL_TOPIC on bare query, got %q", got)
	}
}
