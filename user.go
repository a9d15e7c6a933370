package main

import "github.com/irczt/ircd/internal/ircmsg"

// userKind discriminates the two concrete backings a User can have.
type userKind int

const (
	kindClient userKind = iota
	kindBot
)

// User is the tagged union shared by socket-backed Clients and in-process
// LocalBots. Everything that is identical between the two — nickname,
// username, realname, and channel membership — lives here; the kind field
// and the client/bot back-pointers are what let send operations dispatch
// to the right variant (a Client writes to its socket, a LocalBot
// silently discards).
type User struct {
	server *Server
	kind   userKind

	nick string
	user string
	real string

	channels *orderedIndex[string, *Channel]

	client *Client
	bot    *LocalBot
}

func newUser(server *Server, kind userKind) *User {
	return &User{
		server:   server,
		kind:     kind,
		channels: newOrderedIndex[string, *Channel](),
	}
}

// Nickname returns the user's current nickname, or "*" if none has been
// set yet (pre-registration).
func (u *User) Nickname() string {
	if u.nick == "" {
		return "*"
	}
	return u.nick
}

// Username returns the user's USER-supplied username, or "*" if unset.
func (u *User) Username() string {
	if u.user == "" {
		return "*"
	}
	return u.user
}

// Realname returns the user's USER-supplied realname, or "*" if unset.
func (u *User) Realname() string {
	if u.real == "" {
		return "*"
	}
	return u.real
}

// HasNickname reports whether a nickname has been assigned yet.
func (u *User) HasNickname() bool {
	return u.nick != ""
}

// setNick assigns newNick, refreshing the server's nickname index and the
// member-set key of every joined channel. The new key is inserted before
// the old one is removed, so a lookup never briefly finds neither.
func (u *User) setNick(newNick string) {
	old := u.nick
	u.server.nicks.Set(newNick, u)
	if old != "" && old != newNick {
		u.server.nicks.Delete(old)
		u.channels.Each(func(_ string, ch *Channel) {
			ch.members.Delete(old)
			ch.members.Set(newNick, u)
		})
	}
	u.nick = newNick
}

// setUser assigns the USER-supplied username and realname together; they
// are always set as a pair, so there is no state where one is present and
// the other isn't.
func (u *User) setUser(user, real string) {
	u.user = user
	u.real = real
}

// sendMessage delivers m to the user: written to the socket for a Client,
// silently discarded for a LocalBot.
func (u *User) sendMessage(m ircmsg.Message) {
	if u.kind == kindClient {
		u.client.send(m)
	}
}

// sendNumeric sends a numeric reply, automatically prepending the user's
// current nickname (or "*" before registration) as the first parameter,
// matching the wire convention every numeric reply follows.
func (u *User) sendNumeric(code string, params ...string) {
	full := append([]string{u.Nickname()}, params...)
	u.sendMessage(ircmsg.Message{
		Prefix:  u.server.hostname(),
		Command: code,
		Params:  full,
	})
}

// quit removes u from every channel it has joined, notifying every other
// member of each of those channels exactly once (a user sharing several
// channels with the same peer should not see duplicate QUIT lines), then
// clears the user's channel set.
func (u *User) quit(reason string) {
	informed := make(map[string]bool)

	u.channels.Each(func(_ string, ch *Channel) {
		ch.members.Each(func(nick string, member *User) {
			if member == u || informed[nick] {
				return
			}
			member.sendMessage(ircmsg.Message{
				Prefix:  u.nick,
				Command: "QUIT",
				Params:  []string{ircmsg.Trailing(reason)},
			})
			informed[nick] = true
		})
	})

	u.channels.Each(func(_ string, ch *Channel) {
		ch.quit(u)
	})

	u.channels = newOrderedIndex[string, *Channel]()
}
