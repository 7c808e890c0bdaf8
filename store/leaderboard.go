// Package store persists finished runs: named high scores in SQLite and the
// per-run history as parquet batches.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brensch/solosnake/game"
)

// TopSize is the number of entries shown on the leaderboard.
const TopSize = 5

var ErrEmptyName = errors.New("leaderboard name is empty")

// Leaderboard wraps the SQLite connection with serialized access.
type Leaderboard struct {
	conn *sql.DB
	mu   sync.Mutex
	now  func() time.Time
}

// OpenLeaderboard opens (creating if needed) the leaderboard at path. Use
// ":memory:" for a throwaway board.
func OpenLeaderboard(path string) (*Leaderboard, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open leaderboard: %w", err)
	}
	// One writer, and an in-memory database lives only as long as its
	// connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	lb := &Leaderboard{conn: conn, now: time.Now}
	if err := lb.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return lb, nil
}

func (lb *Leaderboard) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		difficulty TEXT NOT NULL,
		created_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC, created_ns ASC);
	`

	lb.mu.Lock()
	defer lb.mu.Unlock()

	if _, err := lb.conn.Exec(schema); err != nil {
		return fmt.Errorf("create leaderboard schema: %w", err)
	}
	return nil
}

// Insert stores e. A zero Date is replaced by the current time.
func (lb *Leaderboard) Insert(ctx context.Context, e game.ScoreEntry) error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return ErrEmptyName
	}
	when := e.Date
	if when.IsZero() {
		when = lb.now()
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	_, err := lb.conn.ExecContext(ctx,
		"INSERT INTO scores (name, score, difficulty, created_ns) VALUES (?, ?, ?, ?)",
		name, e.Score, e.Difficulty.String(), when.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert score for %s: %w", name, err)
	}
	return nil
}

// Top returns the n best entries, highest score first. Ties go to the older
// entry.
func (lb *Leaderboard) Top(ctx context.Context, n int) ([]game.ScoreEntry, error) {
	if n <= 0 {
		return nil, nil
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	rows, err := lb.conn.QueryContext(ctx,
		"SELECT name, score, difficulty, created_ns FROM scores ORDER BY score DESC, created_ns ASC, id ASC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query top scores: %w", err)
	}
	defer rows.Close()

	var out []game.ScoreEntry
	for rows.Next() {
		var (
			e       game.ScoreEntry
			diff    string
			created int64
		)
		if err := rows.Scan(&e.Name, &e.Score, &diff, &created); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		d, err := game.ParseDifficulty(diff)
		if err != nil {
			d = game.DifficultyMedium
		}
		e.Difficulty = d
		e.Date = time.Unix(0, created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Best returns the highest stored score, or 0 for an empty board.
func (lb *Leaderboard) Best(ctx context.Context) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	var best sql.NullInt64
	if err := lb.conn.QueryRowContext(ctx, "SELECT MAX(score) FROM scores").Scan(&best); err != nil {
		return 0, fmt.Errorf("query best score: %w", err)
	}
	return int(best.Int64), nil
}

func (lb *Leaderboard) Close() error {
	return lb.conn.Close()
}
