// Package viewer serves the scoreboard, run history and a live spectator
// feed over HTTP.
package viewer

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/brensch/solosnake/game"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
	rankingSize      = 5
)

// Board is the read side of the leaderboard.
type Board interface {
	Top(ctx context.Context, n int) ([]game.ScoreEntry, error)
}

type Options struct {
	Title   string
	Board   Board
	History *HistoryDB
	// Hub enables /ws when set.
	Hub    *Hub
	Logger *slog.Logger
}

// Server holds shared state for the HTTP handlers.
type Server struct {
	opts Options
	page *template.Template
	log  *slog.Logger
}

func NewServer(opts Options) *Server {
	if opts.Title == "" {
		opts.Title = "Snake"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		opts: opts,
		page: template.Must(template.New("index").Funcs(pageFuncs).Parse(indexHTML)),
		log:  opts.Logger.With("component", "viewer"),
	}
}

// RegisterRoutes sets up every route on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/stats", s.handleStats)
	if s.opts.Hub != nil {
		mux.Handle("/ws", s.opts.Hub)
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if s.opts.Board == nil {
		return []LeaderboardEntry{}, nil
	}
	top, err := s.opts.Board.Top(ctx, rankingSize)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, len(top))
	for i, e := range top {
		out[i] = LeaderboardEntry{
			Rank:       i + 1,
			Name:       e.Name,
			Score:      e.Score,
			Difficulty: e.Difficulty.String(),
			Date:       e.Date,
		}
	}
	return out, nil
}

func (s *Server) stats(ctx context.Context) (StatsResponse, error) {
	if s.opts.History == nil {
		return StatsResponse{Difficulties: []DifficultyStats{}}, nil
	}
	return s.opts.History.Stats(ctx)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	entries, err := s.leaderboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, LeaderboardResponse{Entries: entries})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if s.opts.History == nil {
		writeJSON(w, RunsResponse{Runs: []RunSummary{}})
		return
	}
	limit := parseIntQuery(r, "limit", defaultRunsLimit, maxRunsLimit)
	runs, total, err := s.opts.History.RecentRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, RunsResponse{Total: total, Runs: runs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	stats, err := s.stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

type pageData struct {
	Title       string
	Leaderboard []LeaderboardEntry
	Stats       StatsResponse
	Runs        []RunSummary
	Live        bool
	Generated   time.Time
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !allowGet(w, r) {
		return
	}

	data := pageData{Title: s.opts.Title, Live: s.opts.Hub != nil, Generated: time.Now()}
	var err error
	if data.Leaderboard, err = s.leaderboard(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data.Stats, err = s.stats(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.opts.History != nil {
		if data.Runs, _, err = s.opts.History.RecentRuns(r.Context(), 10); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.log.Warn("render index", "err", err)
	}
}
