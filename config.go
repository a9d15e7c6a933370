package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/horgh/config"
)

// Config holds everything the server needs to start: where to listen, the
// preset channel roster, the word bank bot chatter is drawn from, and the
// bot roster itself.
type Config struct {
	ListenAddr string
	ServerName string

	Channels []string
	WordBank []string
	Bots     []botPreset
}

// loadConfig reads the main flat key=value file (github.com/horgh/config's
// ReadStringMap), validates the required keys are present, and follows
// each of the three file-reference keys to load the preset channel list,
// the word bank, and the bot roster, each a newline-delimited file of its
// own.
func loadConfig(path string) (*Config, error) {
	raw, err := config.ReadStringMap(path)
	if err != nil {
		return nil, err
	}

	required := []string{"listen-addr", "server-name", "channels-file", "bots-file", "wordbank-file"}
	for _, key := range required {
		v, exists := raw[key]
		if !exists {
			return nil, fmt.Errorf("missing required key: %s", key)
		}
		if len(v) == 0 {
			return nil, fmt.Errorf("configuration value is blank: %s", key)
		}
	}

	cfg := &Config{
		ListenAddr: raw["listen-addr"],
		ServerName: raw["server-name"],
	}

	cfg.Channels, err = loadLines(raw["channels-file"])
	if err != nil {
		return nil, fmt.Errorf("unable to load channels file: %w", err)
	}

	cfg.WordBank, err = loadLines(raw["wordbank-file"])
	if err != nil {
		return nil, fmt.Errorf("unable to load word bank file: %w", err)
	}

	cfg.Bots, err = loadBots(raw["bots-file"])
	if err != nil {
		return nil, fmt.Errorf("unable to load bots file: %w", err)
	}

	return cfg, nil
}

// loadLines reads path as a plain list of newline-delimited entries,
// skipping blank lines and comment lines (a '#' alone or followed by a
// space). Other '#'-prefixed lines, such as channel names, are entries.
func loadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "#" || strings.HasPrefix(line, "# ") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// loadBots reads the bots file: one preset per line,
//
//	<nick> <channels_target min,max> <channels_leave_rate min,max> <message_rate min,max> <message_length min,max>
func loadBots(path string) ([]botPreset, error) {
	lines, err := loadLines(path)
	if err != nil {
		return nil, err
	}

	var bots []botPreset
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed bot line: %q", line)
		}

		channelsTarget, err := parseRange(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bot %s: channels_target: %w", fields[0], err)
		}
		channelsLeave, err := parseRange(fields[2])
		if err != nil {
			return nil, fmt.Errorf("bot %s: channels_leave_rate: %w", fields[0], err)
		}
		messageRate, err := parseRange(fields[3])
		if err != nil {
			return nil, fmt.Errorf("bot %s: message_rate: %w", fields[0], err)
		}
		messageLength, err := parseRange(fields[4])
		if err != nil {
			return nil, fmt.Errorf("bot %s: message_length: %w", fields[0], err)
		}

		bots = append(bots, botPreset{
			Nick:           fields[0],
			ChannelsTarget: channelsTarget,
			ChannelsLeave:  channelsLeave,
			MessageRate:    messageRate,
			MessageLength:  messageLength,
		})
	}

	return bots, nil
}

// parseRange parses a "min,max" pair.
func parseRange(s string) (botRange, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return botRange{}, fmt.Errorf("expected min,max, got %q", s)
	}

	min, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return botRange{}, fmt.Errorf("invalid min %q: %w", parts[0], err)
	}
	max, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return botRange{}, fmt.Errorf("invalid max %q: %w", parts[1], err)
	}

	return botRange{Min: min, Max: max}, nil
}
