package viewer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// HistoryDB queries run history parquet batches through an in-memory DuckDB
// view. The connection is rebuilt every refreshRate so new batches show up.
type HistoryDB struct {
	roots       []string
	refreshRate time.Duration
	log         *slog.Logger

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func NewHistoryDB(roots []string, refreshRate time.Duration, log *slog.Logger) *HistoryDB {
	if log == nil {
		log = slog.Default()
	}
	return &HistoryDB{
		roots:       roots,
		refreshRate: refreshRate,
		log:         log.With("component", "history_db"),
	}
}

func (h *HistoryDB) get() (*sql.DB, error) {
	h.mu.RLock()
	if h.db != nil && time.Since(h.lastRefresh) < h.refreshRate {
		db := h.db
		h.mu.RUnlock()
		return db, nil
	}
	h.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil && time.Since(h.lastRefresh) < h.refreshRate {
		return h.db, nil
	}
	return h.refreshLocked()
}

// Refresh rebuilds the view immediately.
func (h *HistoryDB) Refresh() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.refreshLocked()
	return err
}

func (h *HistoryDB) refreshLocked() (*sql.DB, error) {
	start := time.Now()

	db, err := openRunsView(h.roots)
	if err != nil {
		return nil, err
	}
	if h.db != nil {
		_ = h.db.Close()
	}
	h.db = db
	h.lastRefresh = time.Now()

	h.log.Debug("history view refreshed", "elapsed", time.Since(start))
	return h.db, nil
}

func (h *HistoryDB) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

const emptyRunsView = `CREATE OR REPLACE VIEW runs AS
	SELECT * FROM (
		SELECT
			NULL::VARCHAR AS run_id,
			NULL::BIGINT AS started_ns,
			NULL::BIGINT AS ended_ns,
			NULL::VARCHAR AS difficulty,
			NULL::INTEGER AS score,
			NULL::INTEGER AS high_score,
			NULL::INTEGER AS length,
			NULL::INTEGER AS turns,
			NULL::INTEGER AS items,
			NULL::VARCHAR AS cause,
			NULL::INTEGER AS interval_ms,
			NULL::VARCHAR AS filename
	) WHERE 1=0`

func openRunsView(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	_, _ = db.Exec("PRAGMA threads=2")

	var globs []string
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" || !hasParquet(root) {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	// read_parquet fails on a glob with no matches, so an empty history gets
	// a typed empty view instead.
	stmt := emptyRunsView
	if len(globs) > 0 {
		stmt = `CREATE OR REPLACE VIEW runs AS
			SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)`
	}
	if _, err := db.Exec(stmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs view: %w", err)
	}
	return db, nil
}

var errFound = errors.New("found")

func hasParquet(root string) bool {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "tmp" {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			return errFound
		}
		return nil
	})
	return errors.Is(err, errFound)
}

// RecentRuns returns the newest runs first, plus the total run count.
func (h *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunSummary, int64, error) {
	db, err := h.get()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, started_ns, ended_ns, difficulty, score, high_score,
			length, turns, items, cause, interval_ms, filename
		FROM runs
		ORDER BY ended_ns DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	out := make([]RunSummary, 0, limit)
	for rows.Next() {
		var r RunSummary
		var file string
		if err := rows.Scan(&r.RunID, &r.StartedNs, &r.EndedNs, &r.Difficulty, &r.Score, &r.HighScore,
			&r.Length, &r.Turns, &r.Items, &r.Cause, &r.IntervalMs, &file); err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		r.File = relativeTo(file, h.roots)
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Stats aggregates the history per difficulty.
func (h *HistoryDB) Stats(ctx context.Context) (StatsResponse, error) {
	db, err := h.get()
	if err != nil {
		return StatsResponse{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT difficulty,
			COUNT(*)::BIGINT,
			MAX(score)::BIGINT,
			AVG(score)::DOUBLE,
			AVG(turns)::DOUBLE,
			SUM(items)::BIGINT
		FROM runs
		GROUP BY difficulty
		ORDER BY difficulty`)
	if err != nil {
		return StatsResponse{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var resp StatsResponse
	for rows.Next() {
		var s DifficultyStats
		if err := rows.Scan(&s.Difficulty, &s.Runs, &s.Best, &s.AvgScore, &s.AvgTurns, &s.Items); err != nil {
			return StatsResponse{}, fmt.Errorf("scan stats: %w", err)
		}
		resp.Runs += s.Runs
		resp.Difficulties = append(resp.Difficulties, s)
	}
	return resp, rows.Err()
}
