package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/brensch/solosnake/commentary"
	"github.com/brensch/solosnake/game"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, env(nil), io.Discard)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Difficulty != game.DifficultyMedium || cfg.Grid != game.GridSize {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Lang != commentary.LangPortuguese || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.APIKey != "" {
		t.Fatalf("no key expected")
	}
	if !strings.HasSuffix(cfg.DBPath, "scores.db") {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestParseConfig_FlagsAndEnv(t *testing.T) {
	cfg, err := parseConfig(
		[]string{"-difficulty", "3", "-grid", "15", "-seed", "7", "-lang", "en", "-no-audio"},
		env(map[string]string{"API_KEY": "k2", "SOLOSNAKE_LOG_LEVEL": "debug", "SOLOSNAKE_DB": "/tmp/x.db"}),
		io.Discard,
	)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Difficulty != game.DifficultyHard || cfg.Grid != 15 || cfg.Seed != 7 || !cfg.NoAudio {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.APIKey != "k2" || cfg.LogLevel != slog.LevelDebug || cfg.DBPath != "/tmp/x.db" {
		t.Fatalf("env not applied: %+v", cfg)
	}

	cfg, err = parseConfig(nil, env(map[string]string{"GEMINI_API_KEY": "k1", "API_KEY": "k2"}), io.Discard)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.APIKey != "k1" {
		t.Fatalf("GEMINI_API_KEY should win, got %q", cfg.APIKey)
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	cases := [][]string{
		{"-difficulty", "extreme"},
		{"-grid", "4"},
		{"-grid", "41"},
		{"-volume", "1.5"},
		{"-log-level", "chatty"},
		{"-log-format", "xml"},
		{"-lang", "fr"},
	}
	for _, args := range cases {
		if _, err := parseConfig(args, env(nil), io.Discard); err == nil {
			t.Fatalf("expected %v to be rejected", args)
		}
	}
}
