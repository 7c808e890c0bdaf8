package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brensch/solosnake/engine"
	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/logging"
	"github.com/brensch/solosnake/rules"
	"github.com/brensch/solosnake/store"
)

// result summarizes one headless run.
type result struct {
	Score int
	Turns int
	Items int
	Cause game.DeathCause
	Final *game.GameState
}

type options struct {
	Difficulty game.Difficulty
	Grid       int
	Seed       int64
	MaxTurns   int
	Every      int
	// Opening is played one move per turn before the autopilot takes over.
	Opening []game.Direction
	// Realtime runs on the wall clock through an engine.Driver polling at
	// Poll instead of stepping a manual clock.
	Realtime bool
	Poll     time.Duration
}

// pilot steers the engine and reports boards. As an engine.Ticker it lets a
// Driver play the run in real time.
type pilot struct {
	eng    *engine.Engine
	opts   options
	out    io.Writer
	cancel context.CancelFunc
}

func (p *pilot) done(s *game.GameState) bool {
	if s.Status != game.StatusPlaying {
		return true
	}
	return p.opts.MaxTurns > 0 && s.Turn >= p.opts.MaxTurns
}

func (p *pilot) steer(s *game.GameState) {
	if s.Turn < len(p.opts.Opening) {
		p.eng.SubmitDirection(p.opts.Opening[s.Turn])
		return
	}
	if dir, ok := rules.Greedy(s); ok {
		p.eng.SubmitDirection(dir)
	}
}

func (p *pilot) report() {
	if p.opts.Every <= 0 {
		return
	}
	if s := p.eng.State(); s.Turn%p.opts.Every == 0 || s.Status == game.StatusGameOver {
		fmt.Fprintf(p.out, "Turn %d  score %d  length %d  interval %v\n%s\n", s.Turn, s.Score, s.Length(), s.TickInterval, dumpBoard(s))
	}
}

func (p *pilot) OnTick() bool {
	s := p.eng.State()
	if p.done(s) {
		p.cancel()
		return false
	}
	p.steer(s)
	if !p.eng.OnTick() {
		return false
	}
	p.report()
	return true
}

// simulate plays one run with the greedy autopilot. When every > 0 the board
// is printed every that many turns.
func simulate(opts options, out io.Writer, log *slog.Logger, listeners ...engine.Listener) (result, error) {
	r := rules.Default(rand.New(rand.NewSource(opts.Seed)))
	r.Size = opts.Grid

	var clk engine.Clock = engine.SystemClock{}
	manual := engine.NewManualClock(time.Unix(0, 0))
	if !opts.Realtime {
		clk = manual
	}
	eng, err := engine.New(engine.Config{Rules: r, Difficulty: opts.Difficulty, Clock: clk, Logger: log}, listeners...)
	if err != nil {
		return result{}, err
	}

	p := &pilot{eng: eng, opts: opts, out: out}
	p.steer(eng.State())

	if opts.Realtime {
		ctx, cancel := context.WithCancel(context.Background())
		p.cancel = cancel
		ticks := engine.NewDriver(p, opts.Poll).Run(ctx)
		log.Debug("realtime run finished", "ticks", ticks)
	} else {
		for s := eng.State(); !p.done(s); s = eng.State() {
			p.steer(s)
			manual.Advance(s.TickInterval)
			if eng.OnTick() {
				p.report()
			}
		}
	}

	final := eng.State()
	return result{Score: final.Score, Turns: final.Turn, Items: final.Items, Cause: final.Cause, Final: final}, nil
}

// parseOpening reads a comma-separated move list such as "left,l,down".
func parseOpening(s string) ([]game.Direction, error) {
	var dirs []game.Direction
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := game.ParseDirection(part)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func dumpBoard(s *game.GameState) string {
	grid := make([][]byte, s.Size)
	for y := range grid {
		grid[y] = []byte(strings.Repeat(".", s.Size))
	}
	if game.InBounds(s.Size, s.Food) {
		grid[s.Food.Y][s.Food.X] = '*'
	}
	for i, c := range s.Snake {
		if !game.InBounds(s.Size, c) {
			continue
		}
		if i == 0 {
			grid[c.Y][c.X] = '@'
		} else {
			grid[c.Y][c.X] = 'o'
		}
	}
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

func main() {
	difficulty := flag.String("difficulty", "medium", "Difficulty: easy, medium or hard")
	grid := flag.Int("grid", game.GridSize, "Board size")
	seed := flag.Int64("seed", 1, "Food placement seed")
	games := flag.Int("games", 1, "Number of runs to simulate")
	maxTurns := flag.Int("max-turns", 5000, "Stop a run after this many turns (0 = no limit)")
	every := flag.Int("every", 0, "Print the board every N turns (0 = only the summary)")
	historyDir := flag.String("history-dir", "", "If set, write each run to run history parquet batches here")
	opening := flag.String("opening", "", "Comma-separated moves played before the autopilot, e.g. left,left,down")
	realtime := flag.Bool("realtime", false, "Play on the wall clock at the difficulty's pace")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, _ := logging.New(os.Stderr, logging.FormatText, level)

	d, err := game.ParseDifficulty(*difficulty)
	if err != nil {
		log.Error("bad difficulty", "err", err)
		os.Exit(2)
	}

	moves, err := parseOpening(*opening)
	if err != nil {
		log.Error("bad opening", "err", err)
		os.Exit(2)
	}

	var history *store.HistoryWriter
	if *historyDir != "" {
		if history, err = store.NewHistoryWriter(*historyDir, *games); err != nil {
			log.Error("open history", "err", err)
			os.Exit(1)
		}
	}

	best := 0
	for i := 0; i < *games; i++ {
		started := time.Now()
		res, err := simulate(options{
			Difficulty: d, Grid: *grid, Seed: *seed + int64(i), MaxTurns: *maxTurns, Every: *every,
			Opening: moves, Realtime: *realtime,
		}, os.Stdout, log)
		if err != nil {
			log.Error("simulate", "err", err)
			os.Exit(1)
		}
		best = max(best, res.Score)
		fmt.Printf("run %3d  seed %d  score %4d  turns %5d  items %4d  cause %s\n", i+1, *seed+int64(i), res.Score, res.Turns, res.Items, res.Cause)

		if history != nil {
			if _, err := history.Record(store.NewRunRow(res.Final, started, time.Now())); err != nil {
				log.Error("record run", "err", err)
				os.Exit(1)
			}
		}
	}

	if history != nil {
		if err := history.Close(); err != nil {
			log.Error("flush history", "err", err)
			os.Exit(1)
		}
		fmt.Printf("%d runs written to %s\n", history.Written(), history.Dir())
	}
	fmt.Printf("best score %d over %d runs\n", best, *games)
}
