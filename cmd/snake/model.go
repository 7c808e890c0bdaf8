package main

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/solosnake/audio"
	"github.com/brensch/solosnake/engine"
	"github.com/brensch/solosnake/game"
	"github.com/brensch/solosnake/session"
)

// Each frame is a scheduling opportunity for the engine, so the frame rate
// caps the tick rate.
const frameInterval = 16 * time.Millisecond

type frameMsg time.Time

// refreshMsg asks for a redraw after an asynchronous session update.
type refreshMsg struct{}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	eng      *engine.Engine
	sess     *session.Session
	player   *audio.Player
	policy   game.DifficultyPolicy
	shareURL string

	naming    bool
	dismissed bool
	name      string
	notice    string
}

func newModel(eng *engine.Engine, sess *session.Session, player *audio.Player, policy game.DifficultyPolicy, shareURL string) model {
	return model{eng: eng, sess: sess, player: player, policy: policy, shareURL: shareURL}
}

func (m model) Init() tea.Cmd {
	return frameCmd()
}

func (m model) soundOn() bool {
	return m.player != nil && m.player.Enabled()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.eng.OnTick()
		m = m.syncNaming()
		return m, frameCmd()
	case refreshMsg:
		return m.syncNaming(), nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.naming {
			return m.nameKey(msg), nil
		}
		return m.gameKey(msg)
	}
	return m, nil
}

// syncNaming opens the name prompt once per qualifying run.
func (m model) syncNaming() model {
	if m.eng.Status() != game.StatusGameOver {
		m.naming, m.dismissed, m.name = false, false, ""
		return m
	}
	v := m.sess.View()
	if v.Qualifies && !v.Saved && !m.dismissed && !m.naming {
		m.naming = true
	}
	return m
}

var keyDirections = map[string]game.Direction{
	"up": game.DirectionUp, "w": game.DirectionUp,
	"down": game.DirectionDown, "s": game.DirectionDown,
	"left": game.DirectionLeft, "a": game.DirectionLeft,
	"right": game.DirectionRight, "d": game.DirectionRight,
}

var keyDifficulties = map[string]game.Difficulty{
	"1": game.DifficultyEasy,
	"2": game.DifficultyMedium,
	"3": game.DifficultyHard,
}

func (m model) gameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	status := m.eng.Status()

	// s shares after a run; during a run it is a direction.
	if key == "s" && status == game.StatusGameOver {
		m.notice = m.sess.ShareText(m.shareURL)
		return m, nil
	}
	if d, ok := keyDirections[key]; ok {
		m.eng.SubmitDirection(d)
		return m, nil
	}
	if d, ok := keyDifficulties[key]; ok {
		if err := m.eng.SetDifficulty(d); err != nil {
			m.notice = "Difficulty can only be changed from the menu (r)."
		} else {
			m.notice = ""
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case " ", "enter":
		if status == game.StatusGameOver {
			m.eng.SubmitControlIntent(game.IntentRestart)
		} else {
			m.eng.SubmitControlIntent(game.IntentToggle)
		}
		m.notice = ""
	case "r":
		m.eng.SubmitControlIntent(game.IntentReset)
		m.notice = ""
	case "m":
		if m.player == nil {
			m.notice = "Audio unavailable."
		} else {
			m.player.Toggle()
		}
	}
	return m, nil
}

func (m model) nameKey(msg tea.KeyMsg) model {
	switch msg.Type {
	case tea.KeyEsc:
		m.naming, m.dismissed = false, true
	case tea.KeyBackspace:
		if r := []rune(m.name); len(r) > 0 {
			m.name = string(r[:len(r)-1])
		}
	case tea.KeyEnter:
		err := m.sess.SaveScore(context.Background(), m.name)
		switch {
		case err == nil:
			m.naming, m.dismissed, m.notice = false, true, ""
		case errors.Is(err, session.ErrNotQualified), errors.Is(err, session.ErrAlreadySaved):
			m.naming, m.dismissed = false, true
		default:
			m.notice = err.Error()
		}
	case tea.KeyRunes:
		m.name = session.NormalizeName(m.name + string(msg.Runes))
	}
	return m
}
