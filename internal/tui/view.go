package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/reto21d/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = m.viewToday()
	case constants.StateChallenge:
		content = m.viewChallenge()
	case constants.StateAchievements:
		content = m.viewAchievements()
	case constants.StatePoints:
		content = m.viewPoints()
	case constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var out []string
	for _, t := range tabs {
		if m.state == t.state || (m.state == constants.StateAddHabit && t.state == constants.StateToday) {
			out = append(out, activeTabStyle.Render(t.title))
		} else {
			out = append(out, inactiveTabStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) viewStatus() string {
	if m.err != "" {
		return dangerStyle.Render(m.err)
	}
	return statusStyle.Render(m.status)
}

func bar(pct float64, width int) string {
	filled := int(pct) * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return doneStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) viewToday() string {
	s := m.summary
	header := titleStyle.Render(fmt.Sprintf("Hoy · %s", s.Date))
	stats := fmt.Sprintf("%d/%d hábitos  %s %.0f%%  ·  %d pts (+%d hoy)",
		s.Completed, s.Total, bar(s.CompletionRate, 20), s.CompletionRate, s.TotalPoints, s.PointsToday)
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, stats, "", m.habits.View()))
}

func (m Model) viewChallenge() string {
	if m.challenge == nil {
		return docStyle.Render(mutedStyle.Render("No hay un reto activo. Empieza uno con 'reto21d challenge start'."))
	}
	c := m.challenge
	lines := []string{
		titleStyle.Render(c.Name),
		fmt.Sprintf("Día %d de %d · %d completados", c.CurrentDay, constants.ChallengeLength, len(c.CompletedDays)),
		"",
	}
	for week := 0; week < 3; week++ {
		row := fmt.Sprintf("Semana %d ", week+1)
		for d := week*7 + 1; d <= week*7+7; d++ {
			switch {
			case c.HasDay(d):
				row += doneStyle.Render(" ●")
			case d == c.CurrentDay:
				row += todayStyle.Render(" ◉")
			default:
				row += mutedStyle.Render(" ·")
			}
		}
		lines = append(lines, row)
	}

	if len(m.minis) > 0 {
		lines = append(lines, "", titleStyle.Render("Mini retos"))
		for _, mc := range m.minis {
			mark := "○"
			if mc.IsCompleted {
				mark = doneStyle.Render("✓")
			}
			lines = append(lines, fmt.Sprintf("%s %s %d/%d", mark, mc.Title, mc.Progress.Current, mc.Progress.Total))
		}
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewAchievements() string {
	unlocked := 0
	for _, st := range m.statuses {
		if st.Unlocked {
			unlocked++
		}
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("Logros %d/%d", unlocked, len(m.statuses))), ""}
	for _, st := range m.statuses {
		if st.Unlocked {
			lines = append(lines, fmt.Sprintf("%s %s %s", st.Icon, doneStyle.Render(st.Name), mutedStyle.Render(fmt.Sprintf("+%d", st.Points))))
			continue
		}
		lines = append(lines, fmt.Sprintf("🔒 %-22s %s %3d%%", st.Name, bar(float64(st.Progress), 10), st.Progress))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewPoints() string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%d puntos", m.summary.TotalPoints)),
		mutedStyle.Render(fmt.Sprintf("+%d hoy", m.summary.PointsToday)),
		"",
	}
	history := m.history
	if len(history) > 10 {
		history = history[:10]
	}
	if len(history) == 0 {
		lines = append(lines, mutedStyle.Render("Todavía no hay puntos."))
	}
	for _, e := range history {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			mutedStyle.Render(e.Timestamp.Format("02/01 15:04")),
			doneStyle.Render(fmt.Sprintf("+%-3d", e.Points)),
			e.Details))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
