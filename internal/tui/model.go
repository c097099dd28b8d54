// internal/tui/model.go
//
// Terminal front end for the memory card game.
//
// The bubbletea loop owns scheduling: engine effects become tea.Cmds that
// run the gateway call and come back as completionMsg, which is applied to
// the session on the update goroutine. The session is never touched from a
// Cmd.
//
// Keys:
//   idle:    e/m/h start easy/medium/hard, q exits
//   playing: arrows move, enter/space picks, q quits the round
//   ended:   r plays again, q quits the round
//   always:  ctrl+c exits

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/effects"
	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
)

const columns = 5

type completionMsg struct{ done effects.Completion }

// Model is the bubbletea model wrapping one game session.
type Model struct {
	session *game.Session
	gw      effects.Gateway
	timeout time.Duration
	spinner spinner.Model
	cursor  int
	notice  string // last rejected action
}

// New returns an idle model. timeout bounds each gateway call.
func New(gw effects.Gateway, timeout time.Duration, opts ...game.Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	return Model{
		session: game.NewSession(opts...),
		gw:      gw,
		timeout: timeout,
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case completionMsg:
		msg.done(m.session)
		if m.cursor >= len(m.session.View().Cards) {
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.View().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := k.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	m.notice = ""

	v := m.session.View()
	switch v.State {
	case game.StateIdle:
		switch key {
		case "e":
			return m.start(game.ModeEasy)
		case "m":
			return m.start(game.ModeMedium)
		case "h":
			return m.start(game.ModeHard)
		case "q":
			return m, tea.Quit
		}

	case game.StatePlaying:
		if key == "q" {
			return m.quitRound()
		}
		if v.Loading {
			return m, nil
		}
		switch key {
		case "left":
			m.move(-1, len(v.Cards))
		case "right":
			m.move(1, len(v.Cards))
		case "up":
			m.move(-columns, len(v.Cards))
		case "down":
			m.move(columns, len(v.Cards))
		case "enter", " ":
			effs, err := m.session.SelectCard(m.cursor)
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			return m, m.run(effs)
		}

	case game.StateRoundEnded:
		switch key {
		case "r":
			effs, err := m.session.PlayAgain()
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.cursor = 0
			return m, tea.Batch(m.run(effs), m.spinner.Tick)
		case "q":
			return m.quitRound()
		}
	}
	return m, nil
}

func (m Model) start(mode game.Mode) (tea.Model, tea.Cmd) {
	effs, err := m.session.Start(mode)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.cursor = 0
	return m, tea.Batch(m.run(effs), m.spinner.Tick)
}

func (m Model) quitRound() (tea.Model, tea.Cmd) {
	if err := m.session.Quit(); err != nil {
		m.notice = err.Error()
	}
	m.cursor = 0
	return m, nil
}

func (m *Model) move(delta, n int) {
	next := m.cursor + delta
	if n == 0 || next < 0 || next >= n {
		return
	}
	m.cursor = next
}

// run turns effects into commands. Each command performs its gateway call
// off the update loop and reports back with a completionMsg.
func (m Model) run(effs []game.Effect) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effs))
	for _, eff := range effs {
		gw, timeout := m.gw, m.timeout
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return completionMsg{done: effects.Execute(ctx, gw, eff)}
		})
	}
	return tea.Batch(cmds...)
}
