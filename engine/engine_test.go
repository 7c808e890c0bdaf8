package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/rules"
)

type recorder struct {
	mu       sync.Mutex
	started  int
	consumed int
	over     [][2]int
	states   int
}

func (r *recorder) OnGameStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *recorder) OnItemConsumed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed++
}

func (r *recorder) OnGameOver(score, highScore int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.over = append(r.over, [2]int{score, highScore})
}

func (r *recorder) OnState(*game.GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, d game.Difficulty, listeners ...Listener) (*Engine, *ManualClock) {
	t.Helper()
	clk := NewManualClock(time.Unix(1_700_000_000, 0))
	e, err := New(Config{
		Rules:      rules.Default(nil),
		Difficulty: d,
		Clock:      clk,
		Logger:     quietLogger(),
	}, listeners...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, clk
}

// tick advances the clock by the current interval and requires a step.
func tick(t *testing.T, e *Engine, clk *ManualClock) {
	t.Helper()
	clk.Advance(e.State().TickInterval)
	if !e.OnTick() {
		t.Fatalf("expected tick to fire at turn %d", e.State().Turn)
	}
}

func TestEngine_StartsIdle(t *testing.T) {
	e, clk := newTestEngine(t, game.DifficultyMedium)

	s := e.State()
	if s.Status != game.StatusIdle {
		t.Fatalf("expected IDLE, got %s", s.Status)
	}
	if s.TickInterval != 130*time.Millisecond {
		t.Fatalf("expected 130ms interval, got %v", s.TickInterval)
	}

	clk.Advance(time.Second)
	if e.OnTick() {
		t.Fatalf("idle engine must not step")
	}
}

func TestEngine_TickGate(t *testing.T) {
	rec := &recorder{}
	e, clk := newTestEngine(t, game.DifficultyMedium, rec)

	e.SubmitDirection(game.DirectionRight)
	if got := e.Status(); got != game.StatusPlaying {
		t.Fatalf("expected PLAYING after first direction, got %s", got)
	}
	if rec.started != 1 {
		t.Fatalf("expected one GameStarted, got %d", rec.started)
	}

	clk.Advance(129 * time.Millisecond)
	if e.OnTick() {
		t.Fatalf("tick fired before the interval elapsed")
	}
	clk.Advance(time.Millisecond)
	if !e.OnTick() {
		t.Fatalf("tick did not fire at the interval")
	}
	if head := e.State().Head(); head != (game.Cell{X: 11, Y: 10}) {
		t.Fatalf("expected head (11,10), got %+v", head)
	}
	if e.OnTick() {
		t.Fatalf("second poll at the same instant must not step")
	}
}

func TestEngine_NoCatchUp(t *testing.T) {
	e, clk := newTestEngine(t, game.DifficultyMedium)
	e.SubmitDirection(game.DirectionUp)

	clk.Advance(5 * time.Second)
	if !e.OnTick() {
		t.Fatalf("expected a tick after a long stall")
	}
	if e.OnTick() {
		t.Fatalf("stalled time must not be replayed as extra ticks")
	}
	if turn := e.State().Turn; turn != 1 {
		t.Fatalf("expected exactly one step, got turn %d", turn)
	}
}

func TestEngine_ResumeDoesNotBurst(t *testing.T) {
	e, clk := newTestEngine(t, game.DifficultyMedium)
	e.SubmitDirection(game.DirectionUp)
	tick(t, e, clk)

	e.SubmitControlIntent(game.IntentToggle)
	if got := e.Status(); got != game.StatusPaused {
		t.Fatalf("expected PAUSED, got %s", got)
	}
	clk.Advance(10 * time.Second)
	if e.OnTick() {
		t.Fatalf("paused engine must not step")
	}

	e.SubmitControlIntent(game.IntentToggle)
	if got := e.Status(); got != game.StatusPlaying {
		t.Fatalf("expected PLAYING after resume, got %s", got)
	}
	if e.OnTick() {
		t.Fatalf("resume must restart the tick timer")
	}
	clk.Advance(130 * time.Millisecond)
	if !e.OnTick() {
		t.Fatalf("expected a tick one interval after resume")
	}
}

func TestEngine_ListenersFireOnce(t *testing.T) {
	rec := &recorder{}
	e, clk := newTestEngine(t, game.DifficultyMedium, rec)

	// Initial food is (5,5); the head starts at (10,10) facing up.
	e.SubmitDirection(game.DirectionUp)
	for i := 0; i < 5; i++ {
		tick(t, e, clk)
	}
	e.SubmitDirection(game.DirectionLeft)
	for i := 0; i < 5; i++ {
		tick(t, e, clk)
	}

	s := e.State()
	if s.Score != 2 || s.Items != 1 {
		t.Fatalf("expected score 2 with one item, got score %d items %d", s.Score, s.Items)
	}
	if rec.consumed != 1 {
		t.Fatalf("expected one ItemConsumed, got %d", rec.consumed)
	}
	if s.TickInterval != 128*time.Millisecond {
		t.Fatalf("expected 128ms after eating, got %v", s.TickInterval)
	}

	for i := 0; i < 100 && e.Status() == game.StatusPlaying; i++ {
		tick(t, e, clk)
	}
	if got := e.Status(); got != game.StatusGameOver {
		t.Fatalf("expected GAME_OVER, got %s", got)
	}
	clk.Advance(time.Second)
	if e.OnTick() {
		t.Fatalf("game over must not step")
	}

	if len(rec.over) != 1 {
		t.Fatalf("expected one GameOver, got %d", len(rec.over))
	}
	final := e.State()
	if rec.over[0] != [2]int{final.Score, final.HighScore} {
		t.Fatalf("GameOver reported %v, state has score %d high %d", rec.over[0], final.Score, final.HighScore)
	}
	if final.Cause != game.CauseWall {
		t.Fatalf("expected a wall death, got %s", final.Cause)
	}
	if rec.started != 1 {
		t.Fatalf("expected one GameStarted, got %d", rec.started)
	}
	if rec.states == 0 {
		t.Fatalf("state observer never called")
	}
}

func TestEngine_ListenerPanicIsContained(t *testing.T) {
	rec := &recorder{}
	bad := ListenerFuncs{GameStarted: func() { panic("boom") }}
	e, _ := newTestEngine(t, game.DifficultyMedium, bad, rec)

	e.SubmitDirection(game.DirectionLeft)

	if got := e.Status(); got != game.StatusPlaying {
		t.Fatalf("expected PLAYING despite listener panic, got %s", got)
	}
	if rec.started != 1 {
		t.Fatalf("later listener missed GameStarted")
	}
}

func TestEngine_ListenerMayReadState(t *testing.T) {
	var seen game.Status
	var e *Engine
	l := ListenerFuncs{GameStarted: func() { seen = e.State().Status }}
	e, _ = newTestEngine(t, game.DifficultyMedium, l)

	done := make(chan struct{})
	go func() {
		e.SubmitDirection(game.DirectionLeft)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("State() from a listener deadlocked")
	}
	if seen != game.StatusPlaying {
		t.Fatalf("listener saw %s, want PLAYING", seen)
	}
}

func TestEngine_InvalidTransitionsAreIgnored(t *testing.T) {
	rec := &recorder{}
	e, _ := newTestEngine(t, game.DifficultyMedium, rec)
	before := e.State()

	e.SubmitControlIntent(game.IntentRestart)
	e.SubmitControlIntent(game.IntentReset)
	e.SubmitDirection(game.Direction(42))

	after := e.State()
	if after.Status != before.Status || after.Turn != before.Turn {
		t.Fatalf("invalid transitions changed state: %+v", after)
	}
	if rec.states != 0 || rec.started != 0 {
		t.Fatalf("invalid transitions notified listeners")
	}
}

func TestEngine_RestartAfterGameOver(t *testing.T) {
	rec := &recorder{}
	e, clk := newTestEngine(t, game.DifficultyHard, rec)

	e.SubmitDirection(game.DirectionRight)
	for i := 0; i < 10; i++ {
		tick(t, e, clk)
	}
	if got := e.Status(); got != game.StatusGameOver {
		t.Fatalf("expected GAME_OVER after driving into the wall, got %s", got)
	}

	e.SubmitControlIntent(game.IntentToggle)
	if got := e.Status(); got != game.StatusGameOver {
		t.Fatalf("toggle must not leave GAME_OVER, got %s", got)
	}

	e.SubmitControlIntent(game.IntentRestart)
	s := e.State()
	if s.Status != game.StatusPlaying {
		t.Fatalf("expected PLAYING after restart, got %s", s.Status)
	}
	if s.Difficulty != game.DifficultyHard || s.TickInterval != 80*time.Millisecond {
		t.Fatalf("restart lost difficulty: %s %v", s.Difficulty, s.TickInterval)
	}
	if s.Score != 0 || len(s.Snake) != 3 {
		t.Fatalf("restart did not reset the run: score %d length %d", s.Score, len(s.Snake))
	}
	if rec.started != 2 {
		t.Fatalf("expected two GameStarted, got %d", rec.started)
	}
	if e.OnTick() {
		t.Fatalf("restart must restart the tick timer")
	}
}

func TestEngine_ResetReturnsToIdle(t *testing.T) {
	e, _ := newTestEngine(t, game.DifficultyEasy)
	e.SubmitDirection(game.DirectionLeft)

	e.SubmitControlIntent(game.IntentReset)
	if got := e.Status(); got != game.StatusIdle {
		t.Fatalf("expected IDLE after reset, got %s", got)
	}
	if err := e.SetDifficulty(game.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty after reset: %v", err)
	}
}

func TestEngine_SetDifficultyOnlyWhileIdle(t *testing.T) {
	e, _ := newTestEngine(t, game.DifficultyMedium)

	if err := e.SetDifficulty(game.DifficultyHard); err != nil {
		t.Fatalf("SetDifficulty while idle: %v", err)
	}
	if got := e.State().TickInterval; got != 80*time.Millisecond {
		t.Fatalf("expected 80ms after selecting hard, got %v", got)
	}

	e.SubmitDirection(game.DirectionLeft)
	err := e.SetDifficulty(game.DifficultyEasy)
	if !errors.Is(err, game.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition while playing, got %v", err)
	}
	if got := e.State().Difficulty; got != game.DifficultyHard {
		t.Fatalf("difficulty changed mid-run to %s", got)
	}
}

func TestEngine_SetPolicy(t *testing.T) {
	e, _ := newTestEngine(t, game.DifficultyEasy)

	p := game.DefaultPolicy()
	p[game.DifficultyEasy] = game.DifficultySettings{Label: "Easy", TickInterval: 300 * time.Millisecond, Points: 1}
	if err := e.SetPolicy(p); err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}
	if got := e.State().TickInterval; got != 300*time.Millisecond {
		t.Fatalf("expected 300ms from the new policy, got %v", got)
	}

	if err := e.SetPolicy(game.DifficultyPolicy{}); err == nil {
		t.Fatalf("expected an empty policy to be rejected")
	}

	e.SubmitDirection(game.DirectionLeft)
	if err := e.SetPolicy(game.DefaultPolicy()); !errors.Is(err, game.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition while playing, got %v", err)
	}
}

func TestNew_RejectsBadRules(t *testing.T) {
	r := rules.Default(nil)
	r.Size = 2
	if _, err := New(Config{Rules: r}); err == nil {
		t.Fatalf("expected an error for a 2x2 board")
	}
}

type countingTicker struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTicker) OnTick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.calls%2 == 0
}

func TestDriver_Run(t *testing.T) {
	target := &countingTicker{}
	d := NewDriver(target, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ticks := d.Run(ctx)

	target.mu.Lock()
	calls := target.calls
	target.mu.Unlock()
	if calls == 0 {
		t.Fatalf("driver never polled")
	}
	if ticks != calls/2 {
		t.Fatalf("driver counted %d ticks for %d polls", ticks, calls)
	}
}

func TestNewDriver_DefaultPoll(t *testing.T) {
	if d := NewDriver(&countingTicker{}, 0); d.Poll != DefaultPollInterval {
		t.Fatalf("expected default poll, got %v", d.Poll)
	}
}
