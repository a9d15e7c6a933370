package main

import (
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/irczt/ircd/internal/ircmsg"
)

// Idle-keepalive thresholds: ping a registered client once it has been
// silent this long, and drop it if it stays silent past the dead time.
// Unregistered clients are held to the same dead time, so a connection
// that never sends NICK/USER doesn't linger forever.
const (
	pingTime = 2 * time.Minute
	deadTime = 4 * time.Minute
)

// Server owns every Client, LocalBot, and Channel that exists, plus the
// nickname and channel-name indexes. Everything that mutates this state
// happens on the single goroutine running run(); client connections each
// get their own goroutine, but it only reads and reassembles bytes, never
// touching server/channel/user state directly.
type Server struct {
	config      *Config
	createdDate string
	listener    net.Listener

	clients  *orderedIndex[uint64, *Client]
	nicks    *orderedIndex[string, *User]
	channels *orderedIndex[string, *Channel]
	bots     []*LocalBot
	wordBank []string

	rng    *rand.Rand
	nextID uint64
}

func newServer(cfg *Config) *Server {
	s := &Server{
		config:      cfg,
		createdDate: time.Now().Format("2006-01-02"),
		clients:     newOrderedIndex[uint64, *Client](),
		nicks:       newOrderedIndex[string, *User](),
		channels:    newOrderedIndex[string, *Channel](),
		wordBank:    cfg.WordBank,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, name := range cfg.Channels {
		s.channels.Set(name, newChannel(s, name))
	}

	return s
}

func (s *Server) hostname() string {
	return s.config.ServerName
}

func (s *Server) spawnBots() {
	for _, preset := range s.config.Bots {
		s.bots = append(s.bots, newLocalBot(s, preset, s.rng))
	}
}

// inboundLine is a single complete, reassembled protocol line from one
// client's read goroutine.
type inboundLine struct {
	client *Client
	line   []byte
}

// clientFault reports that a client's read goroutine can no longer
// continue (EOF, I/O error, or a protocol-fatal error surfaced while
// dispatching one of its lines).
type clientFault struct {
	client *Client
	err    error
}

// run accepts connections and drives the server's single dispatch loop
// until a byte arrives on stdin (an orderly shutdown request) or the
// listener fails outright.
func (s *Server) run() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("unable to listen: %w", err)
	}
	s.listener = ln
	defer func() { _ = ln.Close() }()

	acceptCh := make(chan net.Conn)
	go s.acceptLoop(acceptCh)

	stopCh := make(chan struct{})
	go watchStdin(stopCh)

	linesCh := make(chan inboundLine, 64)
	faultsCh := make(chan clientFault, 64)

	s.spawnBots()

	log.Infof("Listening on %s", s.config.ListenAddr)

	nextTick := time.Now().Add(time.Second)

	for {
		wait := time.Until(nextTick)
		if wait <= 0 {
			s.tick()
			nextTick = time.Now().Add(time.Second)
			wait = time.Second
		}

		timer := time.NewTimer(wait)
		select {
		case conn := <-acceptCh:
			s.acceptClient(conn, linesCh, faultsCh)

		case <-stopCh:
			timer.Stop()
			log.Info("Exit request")
			s.shutdown()
			return nil

		case ev := <-linesCh:
			s.handleLine(ev, linesCh, faultsCh)

		case f := <-faultsCh:
			s.dropClient(f.client, f.err)

		case <-timer.C:
		}
		timer.Stop()
	}
}

// tick runs the bot ticks and the idle-keepalive sweep, both driven by the
// same 1-second alarm.
func (s *Server) tick() {
	for _, b := range s.bots {
		b.tick()
	}
	s.checkIdleClients()
}

func (s *Server) acceptLoop(out chan<- net.Conn) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			log.Warnf("accept error: %s", err)
			return
		}
		out <- conn
	}
}

func watchStdin(stop chan<- struct{}) {
	buf := make([]byte, 1)
	_, _ = os.Stdin.Read(buf)
	close(stop)
}

func (s *Server) acceptClient(conn net.Conn, lines chan<- inboundLine, faults chan<- clientFault) {
	s.nextID++
	c := newClient(s, conn, s.nextID)
	s.clients.Set(c.id, c)

	go func() {
		for {
			msgs, err := c.reassembler.ReadFrom(c.conn)
			for _, m := range msgs {
				lines <- inboundLine{client: c, line: m}
			}
			if err != nil {
				faults <- clientFault{client: c, err: err}
				return
			}
		}
	}()

	log.WithField("client", c.tag).Infof("new connection from %s", c.peer)
}

// handleLine dispatches one already-reassembled line. A stale line for a
// client the dispatch loop has already torn down (its fault and this line
// raced) is silently ignored.
func (s *Server) handleLine(ev inboundLine, lines chan<- inboundLine, faults chan<- clientFault) {
	if _, exists := s.clients.Get(ev.client.id); !exists {
		return
	}
	ev.client.lastActivity = time.Now()

	if err := ev.client.processMessage(ev.line); err != nil {
		s.dropClient(ev.client, err)
	}
}

// dropClient performs the single, uniform teardown path for every
// connection-ending cause: it always leaves every joined channel with a
// QUIT notification (the reason text varies by cause), removes the
// nickname and client-set index entries, and closes the socket.
func (s *Server) dropClient(c *Client, err error) {
	if _, exists := s.clients.Get(c.id); !exists {
		return
	}

	reason := "I/O error"
	switch e := err.(type) {
	case *quitError:
		reason = e.reason
	case *ircmsg.MalformedError:
		reason = e.Reason
		c.send(ircmsg.Message{
			Prefix:  s.hostname(),
			Command: "ERROR",
			Params:  []string{ircmsg.Trailing(e.Reason)},
		})
	default:
		if errors.Is(err, ircmsg.ErrEndOfFile) {
			reason = "Remote host closed the connection"
		}
	}

	c.user.quit(reason)
	if c.user.HasNickname() {
		s.nicks.Delete(c.user.nick)
	}
	s.clients.Delete(c.id)
	c.destroy()

	log.WithField("client", c.tag).Infof("disconnected: %s", escapeForLog(reason))
}

// checkIdleClients pings registered clients idle past pingTime, and drops
// any client (registered or not) idle past deadTime.
func (s *Server) checkIdleClients() {
	now := time.Now()
	s.clients.Each(func(_ uint64, c *Client) {
		idle := now.Sub(c.lastActivity)

		if idle > deadTime {
			s.dropClient(c, &quitError{reason: fmt.Sprintf("Ping timeout: %d seconds", int(idle.Seconds()))})
			return
		}
		if c.registered() && idle > pingTime {
			c.send(ircmsg.Message{Prefix: s.hostname(), Command: "PING", Params: []string{s.hostname()}})
		}
	})
}

// shutdown quits each client out of its channels and closes its connection,
// one client at a time, then quits every bot, so every channel's member set
// is empty by the time the process exits — the one and only point at which
// channels may be considered destroyed.
func (s *Server) shutdown() {
	s.clients.Each(func(_ uint64, c *Client) {
		c.user.quit("Server shutdown")
		c.destroy()
	})
	for _, b := range s.bots {
		b.user.quit("Server shutdown")
	}
	s.bots = nil

	s.channels.Each(func(name string, ch *Channel) {
		if ch.members.Len() != 0 {
			log.Fatalf("channel %s destroyed with non-empty member set", name)
		}
	})
}
