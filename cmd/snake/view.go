package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/session"
)

var (
	cellEmpty = lipgloss.NewStyle().Background(lipgloss.Color("#111827"))
	cellBody  = lipgloss.NewStyle().Background(lipgloss.Color("#16a34a"))
	cellHead  = lipgloss.NewStyle().Background(lipgloss.Color("#4ade80"))
	cellFood  = lipgloss.NewStyle().Background(lipgloss.Color("#ef4444"))

	boardFrame = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#22c55e"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15"))
	panelStyle = lipgloss.NewStyle().PaddingLeft(2)
)

const cellWidth = 2

func renderBoard(s *game.GameState) string {
	head := s.Head()
	body := make(map[game.Cell]bool, len(s.Snake))
	for _, c := range s.Snake {
		body[c] = true
	}

	var b strings.Builder
	blank := strings.Repeat(" ", cellWidth)
	for y := 0; y < s.Size; y++ {
		for x := 0; x < s.Size; x++ {
			c := game.Cell{X: x, Y: y}
			switch {
			case c == head:
				b.WriteString(cellHead.Render(blank))
			case body[c]:
				b.WriteString(cellBody.Render(blank))
			case c == s.Food:
				b.WriteString(cellFood.Render(blank))
			default:
				b.WriteString(cellEmpty.Render(blank))
			}
		}
		if y < s.Size-1 {
			b.WriteByte('\n')
		}
	}
	return boardFrame.Render(b.String())
}

func statusLine(s *game.GameState, policy game.DifficultyPolicy) string {
	return fmt.Sprintf("Score %d   Best %d   %s   %dms",
		s.Score, s.HighScore, policy.Lookup(s.Difficulty).Label, s.TickInterval.Milliseconds())
}

func renderRanking(top []game.ScoreEntry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TOP 5"))
	b.WriteByte('\n')
	if len(top) == 0 {
		b.WriteString(dimStyle.Render("no scores yet"))
		return b.String()
	}
	for i, e := range top {
		fmt.Fprintf(&b, "%d. %-3s %5d  %s\n", i+1, e.Name, e.Score, dimStyle.Render(e.Date.Format("02/01")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// overlay is the text under the board for the current status.
func (m model) overlay(s *game.GameState, v session.View) string {
	switch s.Status {
	case game.StatusIdle:
		return "Press an arrow key or space to start.  1/2/3 difficulty"
	case game.StatusPaused:
		return alertStyle.Render("PAUSED") + "  space to resume"
	case game.StatusGameOver:
		var b strings.Builder
		b.WriteString(alertStyle.Render("GAME OVER"))
		if s.Cause != game.CauseNone {
			b.WriteString(dimStyle.Render(" (" + s.Cause.String() + ")"))
		}
		b.WriteByte('\n')
		if v.RemarkPending {
			b.WriteString(dimStyle.Render("..."))
		} else {
			b.WriteString(v.Remark)
		}
		b.WriteByte('\n')
		switch {
		case m.naming:
			fmt.Fprintf(&b, "New ranking entry! Name: %s_  (enter to save, esc to skip)", m.name)
		case v.Saved:
			b.WriteString("Saved.  ")
			fallthrough
		default:
			b.WriteString("space: play again  r: back to menu  s: share")
		}
		return b.String()
	}
	return ""
}

func (m model) View() string {
	s := m.eng.State()
	v := m.sess.View()

	left := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("SNAKE"),
		statusLine(s, m.policy),
		renderBoard(s),
		m.overlay(s, v),
	)
	right := panelStyle.Render(renderRanking(v.Top))

	out := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if m.notice != "" {
		out += "\n" + dimStyle.Render(m.notice)
	}
	mute := "sound on"
	if !m.soundOn() {
		mute = "sound off"
	}
	out += "\n" + dimStyle.Render("arrows/wasd move  space pause  m "+mute+"  q quit")
	return out
}
