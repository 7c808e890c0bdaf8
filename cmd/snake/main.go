package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/solosnake/audio"
	"github.com/brensch/solosnake/commentary"
	"github.com/brensch/solosnake/engine"
	"github.com/brensch/solosnake/logging"
	"github.com/brensch/solosnake/rules"
	"github.com/brensch/solosnake/session"
	"github.com/brensch/solosnake/store"
	"github.com/brensch/solosnake/viewer"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "snake: %v\n", err)
		os.Exit(1)
	}
}

func openLog(cfg Config) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := logging.New(f, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return log, func() { f.Close() }, nil
}

func run(cfg Config) error {
	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	board, err := store.OpenLeaderboard(cfg.DBPath)
	if err != nil {
		return err
	}
	defer board.Close()

	var history session.History
	if cfg.HistoryDir != "" {
		hw, err := store.NewHistoryWriter(cfg.HistoryDir, 1)
		if err != nil {
			return err
		}
		history = hw
	}

	var program atomic.Pointer[tea.Program]
	sess, err := session.New(ctx, session.Config{
		Board:   board,
		History: history,
		Commentator: commentary.New(ctx, commentary.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Lang:   cfg.Lang,
			Logger: log,
		}),
		Lang:   cfg.Lang,
		Logger: log,
		OnChange: func() {
			if p := program.Load(); p != nil {
				go p.Send(refreshMsg{})
			}
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("close session", "err", err)
		}
	}()

	player := audio.NewPlayer(log)
	player.SetVolume(cfg.Volume)
	if cfg.NoAudio {
		player.SetEnabled(false)
	} else if err := player.Init(); err != nil {
		player.SetEnabled(false)
	}
	defer player.Close()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rules.Default(rand.New(rand.NewSource(seed)))
	r.Size = cfg.Grid

	listeners := []engine.Listener{sess, player}

	var hub *viewer.Hub
	if cfg.ViewerListen != "" {
		hub = viewer.NewHub(log)
		defer hub.Close()
		listeners = append(listeners, engine.ListenerFuncs{State: hub.OnState})

		var roots []string
		if cfg.HistoryDir != "" {
			roots = []string{cfg.HistoryDir}
		}
		hdb := viewer.NewHistoryDB(roots, 10*time.Second, log)
		defer hdb.Close()
		srv := &http.Server{
			Addr:              cfg.ViewerListen,
			Handler:           viewer.NewServer(viewer.Options{Board: board, History: hdb, Hub: hub, Logger: log}).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("viewer listening", "addr", cfg.ViewerListen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("viewer stopped", "err", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	eng, err := engine.New(engine.Config{
		Rules:      r,
		Difficulty: cfg.Difficulty,
		HighScore:  sess.HighScore(),
		Logger:     log,
	}, listeners...)
	if err != nil {
		return err
	}

	log.Info("starting", "difficulty", cfg.Difficulty.String(), "grid", cfg.Grid, "seed", seed, "sound", player.Enabled())

	p := tea.NewProgram(newModel(eng, sess, player, r.Policy, cfg.ShareURL), tea.WithAltScreen(), tea.WithContext(ctx))
	program.Store(p)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	log.Info("bye", "high_score", sess.HighScore())
	return nil
}
