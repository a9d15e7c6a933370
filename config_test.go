package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unable to write %s: %s", path, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	channelsPath := writeTempFile(t, dir, "channels.txt", "#lobby\n# a comment\n\n#help\n")
	wordbankPath := writeTempFile(t, dir, "wordbank.txt", "hello\nworld\n")
	botsPath := writeTempFile(t, dir, "bots.txt", "chatbot 1,3 0.1,0.2 0.3,0.5 2,5\n")

	mainPath := writeTempFile(t, dir, "main.conf", ""+
		"listen-addr = 127.0.0.1:6667\n"+
		"server-name = irc.example.org\n"+
		"channels-file = "+channelsPath+"\n"+
		"bots-file = "+botsPath+"\n"+
		"wordbank-file = "+wordbankPath+"\n")

	cfg, err := loadConfig(mainPath)
	if err != nil {
		t.Fatalf("loadConfig returned error: %s", err)
	}

	if cfg.ListenAddr != "127.0.0.1:6667" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.ServerName != "irc.example.org" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "#lobby" || cfg.Channels[1] != "#help" {
		t.Errorf("Channels = %v", cfg.Channels)
	}
	if len(cfg.WordBank) != 2 {
		t.Errorf("WordBank = %v", cfg.WordBank)
	}
	if len(cfg.Bots) != 1 {
		t.Fatalf("Bots = %v", cfg.Bots)
	}
	b := cfg.Bots[0]
	if b.Nick != "chatbot" {
		t.Errorf("Bots[0].Nick = %q", b.Nick)
	}
	if b.ChannelsTarget.Min != 1 || b.ChannelsTarget.Max != 3 {
		t.Errorf("Bots[0].ChannelsTarget = %+v", b.ChannelsTarget)
	}
	if b.MessageLength.Min != 2 || b.MessageLength.Max != 5 {
		t.Errorf("Bots[0].MessageLength = %+v", b.MessageLength)
	}
}

func TestLoadConfigMissingKey(t *testing.T) {
	dir := t.TempDir()
	mainPath := writeTempFile(t, dir, "main.conf", "listen-addr = 127.0.0.1:6667\n")

	if _, err := loadConfig(mainPath); err == nil {
		t.Fatal("expected an error for missing required keys")
	}
}

func TestLoadBotsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	botsPath := writeTempFile(t, dir, "bots.txt", "chatbot 1,3\n")

	if _, err := loadBots(botsPath); err == nil {
		t.Fatal("expected an error for a malformed bot line")
	}
}
