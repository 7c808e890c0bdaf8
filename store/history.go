package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/solosnake/game"
)

const historySchema = "snake_run_v1"

// RunRow is one finished run.
type RunRow struct {
	RunID      string `parquet:"run_id"`
	StartedNs  int64  `parquet:"started_ns"`
	EndedNs    int64  `parquet:"ended_ns"`
	Difficulty string `parquet:"difficulty,dict"`
	Score      int32  `parquet:"score"`
	HighScore  int32  `parquet:"high_score"`
	Length     int32  `parquet:"length"`
	Turns      int32  `parquet:"turns"`
	Items      int32  `parquet:"items"`
	Cause      string `parquet:"cause,dict"`
	// IntervalMs is the tick interval the run ended at.
	IntervalMs int32 `parquet:"interval_ms"`
}

// NewRunRow describes the final state of a run that started at started.
func NewRunRow(final *game.GameState, started, ended time.Time) RunRow {
	return RunRow{
		RunID:      uuid.NewString(),
		StartedNs:  started.UnixNano(),
		EndedNs:    ended.UnixNano(),
		Difficulty: final.Difficulty.String(),
		Score:      int32(final.Score),
		HighScore:  int32(final.HighScore),
		Length:     int32(final.Length()),
		Turns:      int32(final.Turn),
		Items:      int32(final.Items),
		Cause:      final.Cause.String(),
		IntervalMs: int32(final.TickInterval / time.Millisecond),
	}
}

// HistoryWriter buffers finished runs and writes them out as parquet batch
// files. Files are written under dir/tmp and renamed into dir, so readers
// globbing dir never see a partial file.
type HistoryWriter struct {
	mu         sync.Mutex
	dir        string
	tmpDir     string
	flushEvery int
	pending    []RunRow
	written    int
}

// NewHistoryWriter writes a batch every flushEvery runs (and on Flush/Close).
func NewHistoryWriter(dir string, flushEvery int) (*HistoryWriter, error) {
	if dir == "" {
		return nil, fmt.Errorf("history dir is required")
	}
	if flushEvery <= 0 {
		flushEvery = 1
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	tmpDir := filepath.Join(abs, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create tmp dir: %w", err)
	}
	return &HistoryWriter{dir: abs, tmpDir: tmpDir, flushEvery: flushEvery}, nil
}

func (w *HistoryWriter) Dir() string { return w.dir }

// Record queues row, writing a batch once enough runs are pending. The
// returned path is empty when nothing was written.
func (w *HistoryWriter) Record(row RunRow) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, row)
	if len(w.pending) < w.flushEvery {
		return "", nil
	}
	return w.flushLocked()
}

func (w *HistoryWriter) Flush() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// Written reports how many runs have reached disk.
func (w *HistoryWriter) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *HistoryWriter) Close() error {
	_, err := w.Flush()
	return err
}

func (w *HistoryWriter) flushLocked() (string, error) {
	if len(w.pending) == 0 {
		return "", nil
	}

	name := fmt.Sprintf("runs_%d.parquet", time.Now().UnixNano())
	finalPath := filepath.Join(w.dir, name)
	tmpPath := filepath.Join(w.tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, w.pending,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", historySchema),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write runs parquet: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename runs parquet: %w", err)
	}

	w.written += len(w.pending)
	w.pending = nil
	return finalPath, nil
}

// ReadRuns loads every row of one batch file.
func ReadRuns(path string) ([]RunRow, error) {
	rows, err := parquet.ReadFile[RunRow](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}
