package viewer

import "time"

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is one committed game state as sent to spectators.
type Frame struct {
	Seq        uint64  `json:"seq"`
	Status     string  `json:"status"`
	Size       int     `json:"size"`
	Snake      []Point `json:"snake"`
	Food       Point   `json:"food"`
	Direction  string  `json:"direction"`
	Score      int     `json:"score"`
	HighScore  int     `json:"high_score"`
	Difficulty string  `json:"difficulty"`
	IntervalMs int64   `json:"interval_ms"`
	Turn       int     `json:"turn"`
	Cause      string  `json:"cause,omitempty"`
}

type LeaderboardEntry struct {
	Rank       int       `json:"rank"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	Difficulty string    `json:"difficulty"`
	Date       time.Time `json:"date"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID      string `json:"run_id"`
	StartedNs  int64  `json:"started_ns"`
	EndedNs    int64  `json:"ended_ns"`
	Difficulty string `json:"difficulty"`
	Score      int    `json:"score"`
	HighScore  int    `json:"high_score"`
	Length     int    `json:"length"`
	Turns      int    `json:"turns"`
	Items      int    `json:"items"`
	Cause      string `json:"cause"`
	IntervalMs int    `json:"interval_ms"`
	File       string `json:"file"`
}

type RunsResponse struct {
	Total int64        `json:"total"`
	Runs  []RunSummary `json:"runs"`
}

type DifficultyStats struct {
	Difficulty string  `json:"difficulty"`
	Runs       int64   `json:"runs"`
	Best       int64   `json:"best"`
	AvgScore   float64 `json:"avg_score"`
	AvgTurns   float64 `json:"avg_turns"`
	Items      int64   `json:"items"`
}

type StatsResponse struct {
	Runs         int64             `json:"runs"`
	Difficulties []DifficultyStats `json:"difficulties"`
}
