// Package tui is the interactive dashboard of the challenge.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/reto21d/internal/app"
	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/models"
)

// tabs in display order
var tabs = []struct {
	state constants.SessionState
	title string
}{
	{constants.StateToday, "Hoy"},
	{constants.StateChallenge, "Reto"},
	{constants.StateAchievements, "Logros"},
	{constants.StatePoints, "Puntos"},
}

type HabitFormModel struct {
	Name     string
	Category string
}

type habitItem struct {
	habit models.Habit
}

func (i habitItem) Title() string {
	if i.habit.IsCompletedToday {
		return "✓ " + i.habit.Name
	}
	return "○ " + i.habit.Name
}

func (i habitItem) Description() string {
	d := "pendiente hoy"
	if i.habit.IsCompletedToday {
		d = "completado hoy"
	}
	if i.habit.CurrentStreak > 0 {
		d += fmt.Sprintf(" · racha %d", i.habit.CurrentStreak)
	}
	return d
}

func (i habitItem) FilterValue() string { return i.habit.Name }

type Model struct {
	ctx   context.Context
	app   *app.App
	state constants.SessionState
	keys  KeyMap
	help  help.Model

	habits    list.Model
	summary   app.Summary
	challenge *models.Challenge
	minis     []models.MiniChallenge
	statuses  []models.AchievementStatus
	history   []models.PointsEntry

	form      *huh.Form
	habitForm *HabitFormModel

	status   string
	err      string
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, a *app.App) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	m := Model{
		ctx:    ctx,
		app:    a,
		state:  constants.StateToday,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		habits: l,
	}
	m.refresh()
	return m
}

// refresh reloads every view from the application
func (m *Model) refresh() {
	s, err := m.app.Summary(m.ctx)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.summary = s

	items := make([]list.Item, len(s.Habits))
	for i, h := range s.Habits {
		items[i] = habitItem{habit: h}
	}
	idx := m.habits.Index()
	m.habits.SetItems(items)
	if idx < len(items) {
		m.habits.Select(idx)
	}

	m.challenge = s.Challenge
	m.minis = nil
	if s.Challenge != nil {
		if ms, err := m.app.Challenges.GetMiniChallenges(m.ctx, s.Challenge.ID); err == nil {
			m.minis = ms
		}
	}
	if st, err := m.app.Achievements.Statuses(m.ctx); err == nil {
		m.statuses = st
	}
	m.history = m.app.Points.History()
}

func (m Model) selectedHabit() (models.Habit, bool) {
	it, ok := m.habits.SelectedItem().(habitItem)
	if !ok {
		return models.Habit{}, false
	}
	return it.habit, true
}

// ShortHelp and FullHelp make the model its own help.KeyMap
func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateToday:
		return []key.Binding{m.keys.Toggle, m.keys.Add, m.keys.NextTab, m.keys.Quit}
	case constants.StateChallenge:
		return []key.Binding{m.keys.Day, m.keys.NextTab, m.keys.Quit}
	case constants.StateAchievements:
		return []key.Binding{m.keys.Check, m.keys.NextTab, m.keys.Quit}
	}
	return []key.Binding{m.keys.NextTab, m.keys.Quit}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Toggle, m.keys.Add, m.keys.Day, m.keys.Check},
		{m.keys.NextTab, m.keys.PrevTab, m.keys.Help, m.keys.Quit},
	}
}
