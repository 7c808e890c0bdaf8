// Package session ties a run's notifications to everything that outlives the
// run: the high score, the leaderboard, run history and the post-game remark.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/brensch/solosnake/commentary"
	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/store"
)

const (
	// NameLength is the number of characters kept from a leaderboard name.
	NameLength = 3
	// RankingSize is how many entries the ranking keeps.
	RankingSize = store.TopSize
)

var (
	ErrNotQualified = errors.New("score does not qualify for the ranking")
	ErrAlreadySaved = errors.New("score already saved")
)

// Leaderboard is the ranking storage a session writes to.
type Leaderboard interface {
	Insert(ctx context.Context, e game.ScoreEntry) error
	Top(ctx context.Context, n int) ([]game.ScoreEntry, error)
	Best(ctx context.Context) (int, error)
}

// History receives one row per finished run.
type History interface {
	Record(row store.RunRow) (string, error)
	Close() error
}

// Qualifies reports whether score earns a place in top, which is ordered
// best first.
func Qualifies(score int, top []game.ScoreEntry) bool {
	if score <= 0 {
		return false
	}
	return len(top) < RankingSize || score > top[len(top)-1].Score
}

// NormalizeName upper-cases name and keeps its first three letters or digits.
func NormalizeName(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToUpper(name) {
		if n == NameLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			n++
		}
	}
	return b.String()
}

type Config struct {
	Board       Leaderboard
	History     History
	Commentator commentary.Commentator
	Policy      game.DifficultyPolicy
	Lang        commentary.Language
	Now         func() time.Time
	Logger      *slog.Logger
	// OnChange is called after any asynchronous update, such as a remark
	// arriving. It must not block.
	OnChange func()
}

// View is what a host renders between runs.
type View struct {
	HighScore     int
	LastScore     int
	Difficulty    game.Difficulty
	Cause         game.DeathCause
	Qualifies     bool
	Saved         bool
	Remark        string
	RemarkPending bool
	Top           []game.ScoreEntry
}

// Session implements the engine's Listener and StateObserver.
type Session struct {
	cfg Config
	log *slog.Logger

	mu      sync.Mutex
	view    View
	last    *game.GameState
	started time.Time
	run     uint64

	wg sync.WaitGroup
}

// New loads the stored high score and ranking. A nil Board runs without a
// ranking.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if isNil(cfg.Board) {
		cfg.Board = nil
	}
	if isNil(cfg.History) {
		cfg.History = nil
	}
	if isNil(cfg.Commentator) {
		cfg.Commentator = commentary.Static{Lang: cfg.Lang}
	}
	if cfg.Policy == nil {
		cfg.Policy = game.DefaultPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Session{cfg: cfg, log: cfg.Logger.With("component", "session")}
	if cfg.Board != nil {
		best, err := cfg.Board.Best(ctx)
		if err != nil {
			return nil, fmt.Errorf("load high score: %w", err)
		}
		top, err := cfg.Board.Top(ctx, RankingSize)
		if err != nil {
			return nil, fmt.Errorf("load ranking: %w", err)
		}
		s.view.HighScore = best
		s.view.Top = top
	}
	return s, nil
}

// isNil also catches interfaces holding a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// HighScore seeds a new engine.
func (s *Session) HighScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.HighScore
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Top = append([]game.ScoreEntry(nil), s.view.Top...)
	return v
}

func (s *Session) OnState(state *game.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = state
}

func (s *Session) OnGameStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.started = s.cfg.Now()
	s.view.Qualifies = false
	s.view.Saved = false
	s.view.Remark = ""
	s.view.RemarkPending = false
}

func (s *Session) OnItemConsumed() {}

// OnGameOver records the run and asks for a remark. The slow parts run in the
// background; results that arrive after the next run has started are
// dropped.
func (s *Session) OnGameOver(score, highScore int) {
	s.mu.Lock()
	previous := s.view.HighScore
	if highScore > s.view.HighScore {
		s.view.HighScore = highScore
	}
	run := s.run
	final := s.last
	started := s.started
	ended := s.cfg.Now()

	s.view.LastScore = score
	s.view.Qualifies = Qualifies(score, s.view.Top)
	s.view.RemarkPending = true
	if final != nil {
		s.view.Difficulty = final.Difficulty
		s.view.Cause = final.Cause
	}
	s.mu.Unlock()

	s.log.Info("run over", "score", score, "high_score", highScore, "previous_high", previous)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.record(final, started, ended)
	}()
	go func() {
		defer s.wg.Done()
		remark := s.cfg.Commentator.Remark(context.Background(), score, previous)
		s.mu.Lock()
		stale := run != s.run
		if !stale {
			s.view.Remark = remark
			s.view.RemarkPending = false
		}
		s.mu.Unlock()
		if stale {
			s.log.Debug("dropped stale remark", "run", run)
			return
		}
		s.changed()
	}()
}

func (s *Session) record(final *game.GameState, started, ended time.Time) {
	if s.cfg.History == nil || final == nil {
		return
	}
	path, err := s.cfg.History.Record(store.NewRunRow(final, started, ended))
	if err != nil {
		s.log.Warn("record run", "err", err)
		return
	}
	if path != "" {
		s.log.Debug("history batch written", "path", path)
	}
}

// SaveScore stores the last score under name if it qualified.
func (s *Session) SaveScore(ctx context.Context, name string) error {
	name = NormalizeName(name)
	if name == "" {
		return store.ErrEmptyName
	}

	s.mu.Lock()
	if !s.view.Qualifies {
		s.mu.Unlock()
		return ErrNotQualified
	}
	if s.view.Saved {
		s.mu.Unlock()
		return ErrAlreadySaved
	}
	entry := game.ScoreEntry{
		Name:       name,
		Score:      s.view.LastScore,
		Difficulty: s.view.Difficulty,
		Date:       s.cfg.Now(),
	}
	s.mu.Unlock()

	top, err := s.insert(ctx, entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.view.Saved = true
	s.view.Top = top
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Session) insert(ctx context.Context, e game.ScoreEntry) ([]game.ScoreEntry, error) {
	if s.cfg.Board == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return insertRanked(s.view.Top, e), nil
	}
	if err := s.cfg.Board.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("save score: %w", err)
	}
	top, err := s.cfg.Board.Top(ctx, RankingSize)
	if err != nil {
		return nil, fmt.Errorf("reload ranking: %w", err)
	}
	return top, nil
}

// insertRanked keeps an in-memory ranking when there is no store.
func insertRanked(top []game.ScoreEntry, e game.ScoreEntry) []game.ScoreEntry {
	out := make([]game.ScoreEntry, 0, len(top)+1)
	placed := false
	for _, t := range top {
		if !placed && e.Score > t.Score {
			out = append(out, e)
			placed = true
		}
		out = append(out, t)
	}
	if !placed {
		out = append(out, e)
	}
	if len(out) > RankingSize {
		out = out[:RankingSize]
	}
	return out
}

// ShareText is the brag message for the last run.
func (s *Session) ShareText(url string) string {
	s.mu.Lock()
	score, d := s.view.LastScore, s.view.Difficulty
	s.mu.Unlock()

	label := s.cfg.Policy.Lookup(d).Label
	var text string
	if s.cfg.Lang == commentary.LangEnglish {
		text = fmt.Sprintf("SNAKE\nI scored %d points on %s!", score, label)
		if url != "" {
			text += "\n\nTry to beat me: " + url
		}
		return text
	}
	text = fmt.Sprintf("JOGO DA COBRINHA\nFiz %d pontos no modo %s!", score, label)
	if url != "" {
		text += "\n\nTente me vencer: " + url
	}
	return text
}

func (s *Session) changed() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}

// Close waits for background work and flushes the history.
func (s *Session) Close() error {
	s.wg.Wait()
	if s.cfg.History == nil {
		return nil
	}
	return s.cfg.History.Close()
}
