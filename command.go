package main

import (
	"fmt"

	"github.com/irczt/ircd/internal/ircmsg"
)

// cmdNick handles NICK both at registration time and afterward (a runtime
// nickname change, broadcast to every peer sharing a channel with this
// user — not explicit in the protocol's registration-only framing, but the
// natural completion of it, and it disturbs no invariant).
func (c *Client) cmdNick(lex *ircmsg.Lexer) error {
	nick, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("431", ircmsg.Trailing("No nickname given"))
		return nil
	}

	if !isValidNick(nick) {
		c.user.sendNumeric("432", nick, ircmsg.Trailing("Erroneous nickname"))
		return nil
	}

	if existing, found := c.server.nicks.Get(nick); found && existing != c.user {
		c.user.sendNumeric("433", nick, ircmsg.Trailing("Nickname is already in use"))
		return nil
	}

	old := c.user.nick
	wasRegistered := c.registered()
	c.user.setNick(nick)
	c.acceptEndOfMessage(lex, "NICK")

	if wasRegistered && old != nick {
		informed := make(map[string]bool)
		c.user.channels.Each(func(_ string, ch *Channel) {
			ch.members.Each(func(peerNick string, m *User) {
				if informed[peerNick] {
					return
				}
				m.sendMessage(ircmsg.Message{Prefix: old, Command: "NICK", Params: []string{nick}})
				informed[peerNick] = true
			})
		})
		if !informed[nick] {
			c.user.sendMessage(ircmsg.Message{Prefix: old, Command: "NICK", Params: []string{nick}})
		}
	}

	c.completeRegistrationIfReady()
	return nil
}

// cmdUser handles USER: <user> <mode> <unused> <realname>.
func (c *Client) cmdUser(lex *ircmsg.Lexer) error {
	if c.user.user != "" {
		c.user.sendNumeric("462", ircmsg.Trailing("Unauthorized command (already registered)"))
		return nil
	}

	username, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "USER", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	if _, ok := lex.Parameter(); !ok {
		c.user.sendNumeric("461", "USER", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	if _, ok := lex.Parameter(); !ok {
		c.user.sendNumeric("461", "USER", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	realname, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "USER", ircmsg.Trailing("Not enough parameters"))
		return nil
	}

	c.user.setUser(username, realname)
	c.acceptEndOfMessage(lex, "USER")
	c.completeRegistrationIfReady()
	return nil
}

// cmdQuit sends the ERROR acknowledgement back to the quitting client and
// reports a *quitError upward; the server loop is the single place that
// performs the channel-quit notification and index teardown, for every
// termination cause alike (QUIT, protocol error, or a dead socket).
func (c *Client) cmdQuit(lex *ircmsg.Lexer) error {
	reason := "Client quit"
	if p, ok := lex.Parameter(); ok {
		reason = p
	}
	c.acceptEndOfMessage(lex, "QUIT")

	c.user.sendMessage(ircmsg.Message{
		Prefix:  c.server.hostname(),
		Command: "ERROR",
		Params:  []string{ircmsg.Trailing(reason)},
	})

	return &quitError{reason: reason}
}

// cmdList handles LIST [<channel list>].
func (c *Client) cmdList(lex *ircmsg.Lexer) error {
	listParam, hasList := lex.Parameter()
	c.acceptEndOfMessage(lex, "LIST")

	c.user.sendNumeric("321", ircmsg.Trailing("Channel :Users Name"))

	emit := func(ch *Channel) {
		c.user.sendNumeric("322", ch.name, fmt.Sprint(ch.members.Len()), ircmsg.Trailing(ch.topic))
	}

	if hasList {
		sub := ircmsg.NewLexer([]byte(listParam))
		for {
			name, ok := sub.ListItem()
			if !ok {
				break
			}
			if ch, found := c.server.channels.Get(name); found {
				emit(ch)
			}
		}
	} else {
		c.server.channels.Each(func(_ string, ch *Channel) {
			emit(ch)
		})
	}

	c.user.sendNumeric("323", ircmsg.Trailing("End of /LIST"))
	return nil
}

// cmdJoin handles JOIN <channel list>.
func (c *Client) cmdJoin(lex *ircmsg.Lexer) error {
	listParam, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "JOIN", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	c.acceptEndOfMessage(lex, "JOIN")

	sub := ircmsg.NewLexer([]byte(listParam))
	for {
		name, ok := sub.ListItem()
		if !ok {
			break
		}

		ch, found := c.server.channels.Get(name)
		if !found {
			c.user.sendNumeric("403", name, ircmsg.Trailing("No such channel"))
			continue
		}
		if _, already := c.user.channels.Get(name); already {
			continue
		}

		c.user.channels.Set(name, ch)
		ch.join(c.user)
	}
	return nil
}

// cmdPart handles PART <channel list> [<message>].
func (c *Client) cmdPart(lex *ircmsg.Lexer) error {
	listParam, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "PART", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	message, hasMessage := lex.Parameter()
	if !hasMessage {
		message = c.user.Nickname()
	}
	c.acceptEndOfMessage(lex, "PART")

	sub := ircmsg.NewLexer([]byte(listParam))
	for {
		name, ok := sub.ListItem()
		if !ok {
			break
		}

		ch, found := c.server.channels.Get(name)
		if !found {
			c.user.sendNumeric("403", name, ircmsg.Trailing("No such channel"))
			continue
		}
		if _, member := c.user.channels.Get(name); !member {
			c.user.sendNumeric("442", name, ircmsg.Trailing("You're not on that channel"))
			continue
		}

		ch.part(c.user, message)
	}
	return nil
}

// cmdWho handles WHO <target>.
func (c *Client) cmdWho(lex *ircmsg.Lexer) error {
	target, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "WHO", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	c.acceptEndOfMessage(lex, "WHO")

	if ch, found := c.server.channels.Get(target); found {
		ch.members.Each(func(_ string, m *User) {
			c.user.sendNumeric("352", ch.name, m.Username(), "hidden", c.server.hostname(), m.Nickname(), "H",
				ircmsg.Trailing(fmt.Sprintf("0 %s", m.Realname())))
		})
	}

	c.user.sendNumeric("315", target, ircmsg.Trailing("End of WHO list"))
	return nil
}

// cmdTopic handles TOPIC <channel> [<topic>].
func (c *Client) cmdTopic(lex *ircmsg.Lexer) error {
	channelName, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "TOPIC", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	topic, hasTopic := lex.Parameter()
	c.acceptEndOfMessage(lex, "TOPIC")

	ch, found := c.server.channels.Get(channelName)
	if !found {
		c.user.sendNumeric("403", channelName, ircmsg.Trailing("No such channel"))
		return nil
	}

	ch.topicate(c.user, topic, hasTopic)
	return nil
}

// cmdPrivmsg handles PRIVMSG <target list> <text>.
func (c *Client) cmdPrivmsg(lex *ircmsg.Lexer) error {
	targetsParam, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "PRIVMSG", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	text, ok := lex.Parameter()
	if !ok {
		c.user.sendNumeric("461", "PRIVMSG", ircmsg.Trailing("Not enough parameters"))
		return nil
	}
	c.acceptEndOfMessage(lex, "PRIVMSG")

	sub := ircmsg.NewLexer([]byte(targetsParam))
	for {
		target, ok := sub.ListItem()
		if !ok {
			break
		}

		if ch, found := c.server.channels.Get(target); found {
			ch.sendPrivmsg(c.user, text)
			continue
		}
		if u, found := c.server.nicks.Get(target); found {
			u.sendMessage(ircmsg.Message{
				Prefix:  c.user.nick,
				Command: "PRIVMSG",
				Params:  []string{target, ircmsg.Trailing(text)},
			})
			continue
		}
		c.user.sendNumeric("401", target, ircmsg.Trailing("No such nick/channel"))
	}
	return nil
}
