package main

import "github.com/irczt/ircd/internal/ircmsg"

// Channel is a preset, long-lived chat room. The channel set is fixed at
// startup (§ config.go's channels file) — JOIN never creates one, and a
// channel is never removed just because its membership drops to zero; it
// is destroyed only at server shutdown.
type Channel struct {
	server  *Server
	name    string
	topic   string
	members *orderedIndex[string, *User]
}

func newChannel(server *Server, name string) *Channel {
	return &Channel{
		server:  server,
		name:    name,
		members: newOrderedIndex[string, *User](),
	}
}

// join adds u to the channel's member set, broadcasts JOIN to every
// member (joiner included), and sends the joiner the topic reply and the
// full NAMES listing.
func (ch *Channel) join(u *User) {
	ch.members.Set(u.nick, u)

	ch.members.Each(func(_ string, m *User) {
		m.sendMessage(ircmsg.Message{
			Prefix:  u.nick,
			Command: "JOIN",
			Params:  []string{ch.name},
		})
	})

	ch.sendTopicTo(u)

	ch.members.Each(func(_ string, m *User) {
		u.sendNumeric("353", "=", ch.name, ircmsg.Trailing(m.Nickname()))
	})
	u.sendNumeric("366", ch.name, ircmsg.Trailing("End of /NAMES list"))
}

// part broadcasts PART to every member (including the departing user)
// with message as the parting text, then removes u from the channel's
// member set and from the user's own channel set.
func (ch *Channel) part(u *User, message string) {
	ch.members.Each(func(_ string, m *User) {
		m.sendMessage(ircmsg.Message{
			Prefix:  u.nick,
			Command: "PART",
			Params:  []string{ch.name, ircmsg.Trailing(message)},
		})
	})
	ch.members.Delete(u.nick)
	u.channels.Delete(ch.name)
}

// quit silently removes u from the member set, without any broadcast —
// the caller (User.quit) has already notified other members via QUIT.
func (ch *Channel) quit(u *User) {
	ch.members.Delete(u.nick)
}

// sendTopicTo sends the current topic reply (RPL_TOPIC or RPL_NOTOPIC) to
// a single user — the joiner on JOIN, or the requester on a bare TOPIC
// query.
func (ch *Channel) sendTopicTo(u *User) {
	if ch.topic == "" {
		u.sendNumeric("331", ch.name, ircmsg.Trailing("No topic is set"))
		return
	}
	u.sendNumeric("332", ch.name, ircmsg.Trailing(ch.topic))
}

// topicate either replies with the current topic (hasTopic false) or sets
// a new one and broadcasts it to every member (hasTopic true, topic may
// be the empty string to clear it).
func (ch *Channel) topicate(u *User, topic string, hasTopic bool) {
	if !hasTopic {
		ch.sendTopicTo(u)
		return
	}

	ch.topic = topic
	ch.members.Each(func(_ string, m *User) {
		code := "332"
		text := ch.topic
		if ch.topic == "" {
			code = "331"
			text = "No topic is set"
		}
		m.sendNumeric(code, ch.name, ircmsg.Trailing(text))
	})
}

// sendPrivmsg fans a PRIVMSG out to every member except sender.
func (ch *Channel) sendPrivmsg(sender *User, text string) {
	ch.members.Each(func(_ string, m *User) {
		if m == sender {
			return
		}
		m.sendMessage(ircmsg.Message{
			Prefix:  sender.nick,
			Command: "PRIVMSG",
			Params:  []string{ch.name, ircmsg.Trailing(text)},
		})
	})
}
