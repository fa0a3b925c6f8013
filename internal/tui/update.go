package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/models"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
		m.help.Width = size.Width
		// tabs, header, status and help take about eight lines
		m.habits.SetSize(size.Width-4, size.Height-8)
	}

	if m.state == constants.StateAddHabit {
		return m, m.handleAddHabit(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.NextTab):
		m.state = cycle(m.state, 1)
		return m, nil
	case key.Matches(keyMsg, m.keys.PrevTab):
		m.state = cycle(m.state, -1)
		return m, nil
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.state {
	case constants.StateToday:
		switch {
		case key.Matches(keyMsg, m.keys.Toggle):
			m.toggleSelected()
			return m, nil
		case key.Matches(keyMsg, m.keys.Add):
			m.habitForm = &HabitFormModel{}
			m.form = NewHabitForm(m.habitForm)
			m.state = constants.StateAddHabit
			return m, m.form.Init()
		}
		var cmd tea.Cmd
		m.habits, cmd = m.habits.Update(msg)
		return m, cmd
	case constants.StateChallenge:
		if key.Matches(keyMsg, m.keys.Day) {
			m.completeDay()
		}
	case constants.StateAchievements:
		if key.Matches(keyMsg, m.keys.Check) {
			m.checkAchievements()
		}
	}
	return m, nil
}

// cycle moves between the tab states, wrapping at both ends
func cycle(s constants.SessionState, step int) constants.SessionState {
	for i, t := range tabs {
		if t.state == s {
			return tabs[(i+step+len(tabs))%len(tabs)].state
		}
	}
	return constants.StateToday
}

func (m *Model) toggleSelected() {
	h, ok := m.selectedHabit()
	if !ok {
		return
	}
	res, err := m.app.ToggleHabit(m.ctx, h.ID)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	if res.Completed {
		m.status = fmt.Sprintf("✓ %s +%d pts", res.Habit.Name, res.Points)
		if res.PerfectDay {
			m.status += " · ¡día perfecto!"
		}
	} else {
		m.status = fmt.Sprintf("%s desmarcado", res.Habit.Name)
	}
	m.announce(res.Unlocked)
	m.refresh()
}

func (m *Model) completeDay() {
	res, err := m.app.CompleteChallengeDay(m.ctx, 0)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	switch {
	case !res.Added:
		m.status = "Día ya completado"
	case res.Finished:
		m.status = fmt.Sprintf("¡Reto completado! +%d pts", res.Points)
	default:
		m.status = fmt.Sprintf("Día %d completado +%d pts", res.Challenge.CurrentDay, res.Points)
	}
	m.announce(res.Unlocked)
	m.refresh()
}

func (m *Model) checkAchievements() {
	fresh, err := m.app.CheckAchievements(m.ctx, true)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.status = "Sin logros nuevos"
	m.announce(fresh)
	m.refresh()
}

func (m *Model) announce(unlocked []models.Achievement) {
	if len(unlocked) == 0 {
		return
	}
	names := make([]string, len(unlocked))
	for i, a := range unlocked {
		names[i] = a.Icon + " " + a.Name
	}
	m.status = "Logro desbloqueado: " + strings.Join(names, ", ")
}

// NewHabitForm creates the form for adding a habit
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nombre del hábito").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Categoría").
				Options(
					huh.NewOption("Salud", "salud"),
					huh.NewOption("Bienestar", "bienestar"),
					huh.NewOption("Desarrollo", "desarrollo"),
					huh.NewOption("Otra", ""),
				).
				Value(&fm.Category),
		),
	).WithTheme(huh.ThemeDracula())
}

func (m *Model) handleAddHabit(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.state = constants.StateToday
		return nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitHabit(); err != nil {
			m.err = err.Error()
			// stay in the form so the user can retry or cancel with esc
			m.form.State = huh.StateNormal
		}
	case huh.StateAborted:
		m.state = constants.StateToday
	}
	return cmd
}

func (m *Model) submitHabit() error {
	h, unlocked, err := m.app.CreateHabit(m.ctx, models.Habit{
		Name:     strings.TrimSpace(m.habitForm.Name),
		Category: m.habitForm.Category,
	})
	if err != nil {
		return err
	}
	m.err = ""
	m.status = fmt.Sprintf("Hábito añadido: %s", h.Name)
	m.announce(unlocked)
	m.state = constants.StateToday
	m.refresh()
	return nil
}
