package main

import (
	"math/rand"
	"strings"
)

// botRange is a (min, max) pair read from the bots config file; each bot's
// concrete parameters are drawn once, uniformly, from its own range at
// spawn time.
type botRange struct {
	Min, Max float64
}

func (r botRange) draw(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// botPreset is one line of the bots config file.
type botPreset struct {
	Nick           string
	ChannelsTarget botRange
	ChannelsLeave  botRange
	MessageRate    botRange
	MessageLength  botRange
}

// LocalBot is an in-process pseudo-user: it has a User (so it can appear
// in NAMES/WHO and receive channel traffic like any other member) but no
// socket — its sendMessage is always a no-op via User's kind dispatch.
// Each tick it may join channels toward its target count, leave joined
// channels with some probability, and emit chatter drawn from the word
// bank.
type LocalBot struct {
	user   *User
	server *Server

	channelsTarget int
	channelsLeave  float64
	messageRate    float64
	messageLength  int
}

func newLocalBot(server *Server, preset botPreset, rng *rand.Rand) *LocalBot {
	b := &LocalBot{
		server:         server,
		channelsTarget: int(preset.ChannelsTarget.draw(rng)),
		channelsLeave:  preset.ChannelsLeave.draw(rng),
		messageRate:    preset.MessageRate.draw(rng),
		messageLength:  int(preset.MessageLength.draw(rng)),
	}
	if b.messageLength < 1 {
		b.messageLength = 1
	}

	b.user = newUser(server, kindBot)
	b.user.bot = b
	b.user.setNick(preset.Nick)
	b.user.setUser(preset.Nick, preset.Nick)

	b.tick()
	return b
}

// tick runs one pass of the join, part, and message phases, in that
// order, driven by the server's shared RNG.
func (b *LocalBot) tick() {
	b.joinPhase()
	b.partPhase()
	b.messagePhase()
}

// joinPhase tops the bot up toward its target channel count using
// reservoir-style proportional selection over every channel it hasn't
// already joined, in server channel order: the i-th unjoined candidate is
// picked with probability needRemaining/unjoinedRemaining, so the bot ends
// up with exactly min(need, available) new channels without any bias
// toward channels earlier in the index.
func (b *LocalBot) joinPhase() {
	need := b.channelsTarget - b.user.channels.Len()
	if need <= 0 {
		return
	}

	var candidates []*Channel
	b.server.channels.Each(func(_ string, ch *Channel) {
		if _, already := b.user.channels.Get(ch.name); !already {
			candidates = append(candidates, ch)
		}
	})

	unjoinedRemaining := len(candidates)
	needRemaining := need
	for _, ch := range candidates {
		if needRemaining == 0 {
			break
		}
		if b.server.rng.Float64() < float64(needRemaining)/float64(unjoinedRemaining) {
			b.user.channels.Set(ch.name, ch)
			ch.join(b.user)
			needRemaining--
		}
		unjoinedRemaining--
	}
}

// partPhase independently Bernoulli-trials each currently joined channel
// for departure.
func (b *LocalBot) partPhase() {
	for _, name := range b.user.channels.Keys() {
		ch, ok := b.user.channels.Get(name)
		if !ok {
			continue
		}
		if b.server.rng.Float64() < b.channelsLeave {
			ch.part(b.user, b.user.Nickname())
		}
	}
}

// messagePhase independently Bernoulli-trials each currently joined
// channel for a chat message.
func (b *LocalBot) messagePhase() {
	for _, name := range b.user.channels.Keys() {
		ch, ok := b.user.channels.Get(name)
		if !ok {
			continue
		}
		if b.server.rng.Float64() < b.messageRate {
			if text := b.composeMessage(); text != "" {
				ch.sendPrivmsg(b.user, text)
			}
		}
	}
}

// maxMessageBytes bounds composed chatter to a single PRIVMSG's reasonable
// free-text size.
const maxMessageBytes = 1024

// composeMessage draws a uniformly random word count from [1, 2*L-1] (L
// being the bot's own message-length parameter) and joins that many
// randomly drawn words from the server's word bank, stopping early rather
// than exceeding maxMessageBytes.
func (b *LocalBot) composeMessage() string {
	bank := b.server.wordBank
	if len(bank) == 0 {
		return ""
	}

	wordCount := 1 + b.server.rng.Intn(2*b.messageLength-1)

	var sb strings.Builder
	for i := 0; i < wordCount; i++ {
		word := bank[b.server.rng.Intn(len(bank))]
		addition := word
		if sb.Len() > 0 {
			addition = " " + word
		}
		if sb.Len()+len(addition) > maxMessageBytes {
			break
		}
		sb.WriteString(addition)
	}
	return sb.String()
}
