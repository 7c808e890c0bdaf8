package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/brensch/solosnake/commentary"
	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/logging"
)

const (
	minGrid = 10
	maxGrid = 40
)

// Config is everything the terminal client can be told from outside.
type Config struct {
	Difficulty   game.Difficulty
	Grid         int
	Seed         int64
	DBPath       string
	HistoryDir   string
	ViewerListen string
	NoAudio      bool
	Volume       float64
	LogFile      string
	LogLevel     slog.Level
	LogFormat    string
	Model        string
	APIKey       string
	Lang         commentary.Language
	ShareURL     string
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "solosnake")
	}
	return ".solosnake"
}

// envOr returns the first non-empty environment value among keys, or def.
func envOr(getenv func(string) string, def string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return def
}

func parseConfig(args []string, getenv func(string) string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("snake", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dataDir := envOr(getenv, defaultDataDir(), "SOLOSNAKE_DATA_DIR")
	seedDefault, _ := strconv.ParseInt(envOr(getenv, "0", "SOLOSNAKE_SEED"), 10, 64)

	difficulty := fs.String("difficulty", envOr(getenv, "medium", "SOLOSNAKE_DIFFICULTY"), "Starting difficulty: easy, medium or hard (1-3)")
	grid := fs.Int("grid", game.GridSize, "Board width and height in cells")
	seed := fs.Int64("seed", seedDefault, "Food placement seed; 0 picks one from the clock")
	dbPath := fs.String("db", envOr(getenv, filepath.Join(dataDir, "scores.db"), "SOLOSNAKE_DB"), "SQLite leaderboard path")
	historyDir := fs.String("history-dir", envOr(getenv, filepath.Join(dataDir, "history"), "SOLOSNAKE_HISTORY_DIR"), "Directory for run history parquet batches (empty disables)")
	viewerListen := fs.String("viewer-listen", envOr(getenv, "", "SOLOSNAKE_VIEWER_LISTEN"), "If set, serve the scoreboard and live view on this address")
	noAudio := fs.Bool("no-audio", false, "Disable sound")
	volume := fs.Float64("volume", 0.3, "Master volume between 0 and 1")
	logFile := fs.String("log-file", envOr(getenv, filepath.Join(dataDir, "snake.log"), "SOLOSNAKE_LOG_FILE"), "Log file (the terminal is the game)")
	logLevel := fs.String("log-level", envOr(getenv, "info", "SOLOSNAKE_LOG_LEVEL"), "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", logging.FormatPretty, "Log format: pretty, json or text")
	model := fs.String("model", envOr(getenv, commentary.DefaultModel, "SOLOSNAKE_MODEL"), "Gemini model for the game-over remark")
	lang := fs.String("lang", envOr(getenv, string(commentary.LangPortuguese), "SOLOSNAKE_LANG"), "Remark and share text language: pt-BR or en")
	shareURL := fs.String("share-url", envOr(getenv, "", "SOLOSNAKE_SHARE_URL"), "Link appended to the share text")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	var cfg Config
	var err error
	if cfg.Difficulty, err = game.ParseDifficulty(*difficulty); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = logging.ParseLevel(*logLevel); err != nil {
		return Config{}, err
	}
	if cfg.Lang, err = commentary.ParseLanguage(*lang); err != nil {
		return Config{}, err
	}
	cfg.Grid = *grid
	cfg.Seed = *seed
	cfg.DBPath = *dbPath
	cfg.HistoryDir = *historyDir
	cfg.ViewerListen = *viewerListen
	cfg.NoAudio = *noAudio
	cfg.Volume = *volume
	cfg.LogFile = *logFile
	cfg.LogFormat = *logFormat
	cfg.Model = *model
	cfg.APIKey = envOr(getenv, "", "GEMINI_API_KEY", "API_KEY")
	cfg.ShareURL = *shareURL

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Grid < minGrid || c.Grid > maxGrid {
		errs = append(errs, fmt.Errorf("grid must be between %d and %d, got %d", minGrid, maxGrid, c.Grid))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("leaderboard path is required"))
	}
	if c.LogFile == "" {
		errs = append(errs, errors.New("log file is required"))
	}
	switch c.LogFormat {
	case logging.FormatPretty, logging.FormatJSON, logging.FormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
