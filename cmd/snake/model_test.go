package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/solosnake/engine"
	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/rules"
	"github.com/brensch/solosnake/session"
)

func newTestModel(t *testing.T) (model, *engine.ManualClock) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess, err := session.New(context.Background(), session.Config{Logger: log})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	clk := engine.NewManualClock(time.Unix(0, 0))
	r := rules.Default(nil)
	eng, err := engine.New(engine.Config{Rules: r, Difficulty: game.DifficultyMedium, Clock: clk, Logger: log}, sess)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return newModel(eng, sess, nil, r.Policy, ""), clk
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

// frame advances the clock one tick interval and delivers a frame.
func frame(m model, clk *engine.ManualClock) model {
	clk.Advance(m.eng.State().TickInterval)
	next, _ := m.Update(frameMsg(clk.Now()))
	return next.(model)
}

func TestModel_StartPauseResume(t *testing.T) {
	m, clk := newTestModel(t)

	m = press(m, "3")
	if got := m.eng.State().Difficulty; got != game.DifficultyHard {
		t.Fatalf("expected hard from the menu, got %s", got)
	}

	m = press(m, "space")
	if m.eng.Status() != game.StatusPlaying {
		t.Fatalf("space should start the run")
	}
	m = press(m, "1")
	if m.notice == "" || m.eng.State().Difficulty != game.DifficultyHard {
		t.Fatalf("difficulty must not change mid-run")
	}

	m = frame(m, clk)
	if m.eng.State().Turn != 1 {
		t.Fatalf("frame should have stepped the run")
	}
	m = press(m, "space")
	if m.eng.Status() != game.StatusPaused {
		t.Fatalf("space should pause")
	}
	if !strings.Contains(m.View(), "PAUSED") {
		t.Fatalf("view does not show the pause")
	}
	m = press(m, "enter")
	if m.eng.Status() != game.StatusPlaying {
		t.Fatalf("enter should resume")
	}
}

func TestModel_GameOverNamingAndRestart(t *testing.T) {
	m, clk := newTestModel(t)

	// Head starts at (10,10); food at (5,5). Go up five, left five, then
	// keep left into the wall.
	m = press(m, "w")
	for i := 0; i < 5; i++ {
		m = frame(m, clk)
	}
	m = press(m, "a")
	for i := 0; i < 40 && m.eng.Status() == game.StatusPlaying; i++ {
		m = frame(m, clk)
	}
	if m.eng.Status() != game.StatusGameOver {
		t.Fatalf("expected game over")
	}
	if m.eng.State().Score == 0 {
		t.Fatalf("the run should have eaten once")
	}

	m.sess.Close()
	next, _ := m.Update(refreshMsg{})
	m = next.(model)
	if !m.naming {
		t.Fatalf("a first positive score should open the name prompt")
	}

	m = press(m, "a", "b", "c", "d", "enter")
	if m.naming {
		t.Fatalf("enter should close the prompt")
	}
	top := m.sess.View().Top
	if len(top) != 1 || top[0].Name != "ABC" {
		t.Fatalf("ranking after save: %+v", top)
	}

	m = press(m, "s")
	if !strings.Contains(m.notice, "pontos") {
		t.Fatalf("share text missing: %q", m.notice)
	}

	m = press(m, "space")
	if m.eng.Status() != game.StatusPlaying || m.eng.State().Score != 0 {
		t.Fatalf("space after game over should restart")
	}
	if m.naming {
		t.Fatalf("prompt must reset for the new run")
	}
}

func TestModel_ResetAndQuit(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "right", "r")
	if m.eng.Status() != game.StatusIdle {
		t.Fatalf("r should return to the menu")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q should return tea.Quit")
	}

	m = press(m, "m")
	if m.notice != "Audio unavailable." {
		t.Fatalf("mute without a player: %q", m.notice)
	}
}
