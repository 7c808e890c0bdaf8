package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brensch/solosnake/logging"
	"github.com/brensch/solosnake/store"
	"github.com/brensch/solosnake/viewer"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	listen := fs.String("listen", "127.0.0.1:8080", "HTTP listen address")
	dbPath := fs.String("db", os.Getenv("SOLOSNAKE_DB"), "SQLite leaderboard path (empty serves no ranking)")
	historyDirs := fs.String("history-dirs", os.Getenv("SOLOSNAKE_HISTORY_DIR"), "Comma-separated directories of run history parquet batches")
	refresh := fs.Duration("refresh", 30*time.Second, "How often to pick up new history batches")
	title := fs.String("title", "Snake", "Page title")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", logging.FormatPretty, "Log format: pretty, json or text")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(os.Stderr, *logFormat, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	if err := run(*listen, *dbPath, parseRoots(*historyDirs), *refresh, *title, log); err != nil {
		log.Error("viewer failed", "err", err)
		os.Exit(1)
	}
}

func parseRoots(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func run(listen, dbPath string, roots []string, refresh time.Duration, title string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := viewer.Options{Title: title, Logger: log}
	if dbPath != "" {
		board, err := store.OpenLeaderboard(dbPath)
		if err != nil {
			return err
		}
		defer board.Close()
		opts.Board = board
	}
	if len(roots) > 0 {
		hdb := viewer.NewHistoryDB(roots, refresh, log)
		defer hdb.Close()
		if err := hdb.Refresh(); err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		opts.History = hdb
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           viewer.NewServer(opts).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("viewer listening", "addr", listen, "history_roots", strings.Join(roots, ","), "db", dbPath)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
