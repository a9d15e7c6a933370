package main

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/btnmasher/random"

	"github.com/irczt/ircd/internal/ircmsg"
)

// sentinelNick is the in-process pseudo-user a freshly registered client
// hears a welcome PRIVMSG from.
const sentinelNick = "irczt-connect"

// Client wraps a socket-backed User: the TCP connection, the per-connection
// line reassembler, and the bookkeeping needed for idle-keepalive and log
// correlation.
type Client struct {
	id   uint64
	conn net.Conn
	peer string
	tag  string

	reassembler *ircmsg.Reassembler
	user        *User
	server      *Server

	lastActivity time.Time
	welcomeSent  bool
}

func newClient(server *Server, conn net.Conn, id uint64) *Client {
	c := &Client{
		id:           id,
		conn:         conn,
		peer:         conn.RemoteAddr().String(),
		tag:          random.String(8),
		reassembler:  ircmsg.NewReassembler(),
		server:       server,
		lastActivity: time.Now(),
	}
	c.user = newUser(server, kindClient)
	c.user.client = c
	return c
}

func (c *Client) String() string {
	return fmt.Sprintf("%s (%s)", c.tag, c.peer)
}

// registered reports whether both NICK and USER have completed.
func (c *Client) registered() bool {
	return c.user.HasNickname() && c.user.user != ""
}

// quitError is the error processMessage/cmdQuit return to signal a
// client-initiated QUIT; the server loop turns it into the channel-quit
// reason and the final teardown.
type quitError struct {
	reason string
}

func (e *quitError) Error() string {
	return e.reason
}

// processInput performs one round of reassembly and dispatches every
// complete line it produces. A non-nil return is always terminal for the
// connection.
func (c *Client) processInput() error {
	msgs, rerr := c.reassembler.ReadFrom(c.conn)
	c.lastActivity = time.Now()

	for _, line := range msgs {
		if err := c.processMessage(line); err != nil {
			return err
		}
	}

	return rerr
}

// processMessage lexes and dispatches a single complete line. Mandatory
// NICK/USER/QUIT (and the additive CAP/PONG no-ops) are always accepted;
// everything else requires prior registration.
func (c *Client) processMessage(line []byte) error {
	lex := ircmsg.NewLexer(line)

	if len(line) > 0 && line[0] == ':' {
		prefixWord, _ := lex.Word()
		prefix := prefixWord[1:]
		if prefix != c.user.nick {
			return &ircmsg.MalformedError{Reason: "Message prefix does not match the nickname"}
		}
	}

	command, ok := lex.Word()
	if !ok {
		return &ircmsg.MalformedError{Reason: "No command specified"}
	}

	switch command {
	case "NICK":
		return c.cmdNick(lex)
	case "USER":
		return c.cmdUser(lex)
	case "QUIT":
		return c.cmdQuit(lex)
	case "CAP", "PONG":
		return nil
	}

	if !c.registered() {
		c.user.sendNumeric("451", ircmsg.Trailing("You have not registered"))
		return nil
	}

	switch command {
	case "LIST":
		return c.cmdList(lex)
	case "JOIN":
		return c.cmdJoin(lex)
	case "PART":
		return c.cmdPart(lex)
	case "WHO":
		return c.cmdWho(lex)
	case "TOPIC":
		return c.cmdTopic(lex)
	case "PRIVMSG":
		return c.cmdPrivmsg(lex)
	default:
		c.user.sendNumeric("421", command, ircmsg.Trailing("Unknown command"))
		return nil
	}
}

// acceptEndOfMessage logs (but never errors on) bytes left over once a
// command's parameters have all been consumed.
func (c *Client) acceptEndOfMessage(lex *ircmsg.Lexer, command string) {
	if !lex.AtEnd() {
		log.WithField("client", c.tag).Warnf("%s: extra parameters ignored: %s", command, escapeForLog(lex.Rest()))
	}
}

// send encodes and writes m to the client's socket, logging both the
// outbound wire line and any write failure.
func (c *Client) send(m ircmsg.Message) {
	raw, err := m.Encode()
	if err != nil && !errors.Is(err, ircmsg.ErrTruncated) {
		log.WithField("client", c.tag).Warnf("failed to encode outbound message: %s", err)
		return
	}
	if _, werr := c.conn.Write([]byte(raw)); werr != nil {
		log.WithField("client", c.tag).Warnf("write error: %s", escapeForLog(werr.Error()))
		return
	}
	log.WithField("client", c.tag).Infof("-> %s", escapeForLog(trimCRLF(raw)))
}

func (c *Client) destroy() {
	_ = c.conn.Close()
}

func trimCRLF(s string) string {
	if len(s) >= 2 && s[len(s)-2:] == "\r\n" {
		return s[:len(s)-2]
	}
	return s
}

// completeRegistrationIfReady sends the one-time welcome burst once both
// NICK and USER have completed. Safe to call after either handler; it is
// a no-op until both are set, and a no-op again afterward.
func (c *Client) completeRegistrationIfReady() {
	if c.welcomeSent || !c.registered() {
		return
	}
	c.welcomeSent = true
	c.sendWelcome()
}

func (c *Client) sendWelcome() {
	u := c.user
	host := c.server.hostname()

	u.sendNumeric("001", ircmsg.Trailing(fmt.Sprintf("Welcome to the Internet Relay Network %s", u.Nickname())))
	u.sendNumeric("002", ircmsg.Trailing(fmt.Sprintf("Your host is %s, running irczt", host)))
	u.sendNumeric("003", ircmsg.Trailing(fmt.Sprintf("This server was created %s", c.server.createdDate)))
	u.sendNumeric("004", host, "irczt", "o", "n")

	registered := c.server.clients.Len()
	unregistered := 0
	c.server.clients.Each(func(_ uint64, other *Client) {
		if !other.registered() {
			unregistered++
		}
	})

	u.sendNumeric("251", ircmsg.Trailing(fmt.Sprintf("There are %d users and %d invisible on %d servers", registered, 0, 1)))
	if unregistered > 0 {
		u.sendNumeric("253", fmt.Sprint(unregistered), ircmsg.Trailing("unknown connection(s)"))
	}
	if c.server.channels.Len() > 0 {
		u.sendNumeric("254", fmt.Sprint(c.server.channels.Len()), ircmsg.Trailing("channels formed"))
	}
	u.sendNumeric("255", ircmsg.Trailing(fmt.Sprintf("I have %d clients and 1 servers", registered)))

	u.sendNumeric("375", ircmsg.Trailing(fmt.Sprintf("- %s Message of the Day -", host)))
	u.sendNumeric("372", ircmsg.Trailing(fmt.Sprintf("- Welcome to the %s IRC network!", host)))
	u.sendNumeric("376", ircmsg.Trailing("End of /MOTD command."))

	u.sendMessage(ircmsg.Message{
		Prefix:  sentinelNick,
		Command: "PRIVMSG",
		Params:  []string{u.Nickname(), ircmsg.Trailing(fmt.Sprintf("Welcome to %s", host))},
	})
}
