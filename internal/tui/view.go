package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(24)
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("205"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(1, 3).
			Align(lipgloss.Center)
)

func (m Model) View() string {
	v := m.session.View()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Memory Cards"))
	b.WriteString("  ")
	b.WriteString(fmt.Sprintf("Score: %d / %d   High Score: %d", v.Score, v.Target, v.HighScore))
	b.WriteString("\n\n")

	switch {
	case v.State == game.StateIdle:
		b.WriteString(modePicker())
		if v.FetchError != "" {
			b.WriteString("\n\n")
			b.WriteString(errorStyle.Render("Failed in loading games. Please try again later."))
		}
	case v.Loading:
		b.WriteString(m.spinner.View() + " Loading games…")
	case v.State == game.StatePlaying:
		b.WriteString(m.board(v.Cards))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("arrows move · enter picks · q quits the round"))
	case v.State == game.StateRoundEnded:
		b.WriteString(resultPanel(v))
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.notice))
	}
	b.WriteString("\n")
	return b.String()
}

func modePicker() string {
	parts := make([]string, 0, len(game.Modes()))
	for _, mode := range game.Modes() {
		key := string(mode[0])
		parts = append(parts, fmt.Sprintf("[%s]%s (%d)", accentStyle.Render(key), mode[1:], game.RoundTarget(mode)))
	}
	return "Pick a difficulty: " + strings.Join(parts, "   ") + "\n" + mutedStyle.Render("q exits")
}

func (m Model) board(cards []game.Card) string {
	rows := make([]string, 0, (len(cards)+columns-1)/columns)
	for start := 0; start < len(cards); start += columns {
		end := min(start+columns, len(cards))
		boxes := make([]string, 0, columns)
		for i := start; i < end; i++ {
			style := cardStyle
			if i == m.cursor {
				style = selectedCardStyle
			}
			boxes = append(boxes, style.Render(cardText(cards[i])))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cardText(c game.Card) string {
	rating := "N/A"
	if c.Rating != nil {
		rating = fmt.Sprint(*c.Rating)
	}
	release := c.ReleaseDate
	if release == "" {
		release = "unknown"
	}
	return fmt.Sprintf("%s\nMetacritic: %s\nRelease: %s", truncate(c.Name, 22), rating, release)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func resultPanel(v game.View) string {
	gif := mutedStyle.Render("loading gif…")
	switch {
	case v.ResultImage.Failed:
		gif = errorStyle.Render("Error loading Gif")
	case v.ResultImage.URL != "":
		gif = v.ResultImage.URL
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(v.ResultLabel),
		"",
		fmt.Sprintf("Score: %d", v.Score),
		fmt.Sprintf("High Score: %d", v.HighScore),
		"",
		gif,
		"",
		mutedStyle.Render("r play again · q quit"),
	)
	return panelStyle.Render(body)
}
