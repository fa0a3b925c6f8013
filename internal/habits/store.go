package habits

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

const defaultGoalUnit = "veces"

// Store holds the user's habits in memory
type Store struct {
	mu     sync.RWMutex
	habits []models.Habit
	opts   utils.StoreOptions
	// day is the date the derived fields were last computed for
	day string
}

// New builds a store from an initial set of habits. Derived fields
// (today's flag and streaks) are recomputed on the way in.
func New(initial []models.Habit, opts utils.StoreOptions) *Store {
	today := opts.Today()
	s := &Store{opts: opts, day: today}
	for _, h := range initial {
		h = h.Clone()
		if h.CompletionDates == nil {
			h.CompletionDates = []string{}
		}
		refresh(&h, today)
		s.habits = append(s.habits, h)
	}
	return s
}

func refresh(h *models.Habit, today string) {
	h.IsCompletedToday = h.HasDate(today)
	st := CalculateStreaks(h.CompletionDates, today)
	h.CurrentStreak = st.CurrentStreak
	h.BestStreak = st.BestStreak
}

// rolloverLocked recomputes the derived fields once the clock has moved to
// a new date. The caller holds the write lock.
func (s *Store) rolloverLocked() string {
	today := s.opts.Today()
	if today == s.day {
		return today
	}
	for i := range s.habits {
		h := &s.habits[i]
		refresh(h, today)
		if !h.IsCompletedToday {
			h.Goal.Current = 0
		}
	}
	s.day = today
	return today
}

func (s *Store) rollover() {
	s.mu.Lock()
	s.rolloverLocked()
	s.mu.Unlock()
}

func (s *Store) indexOf(id int) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) GetAll(ctx context.Context) ([]models.Habit, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.rollover()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = h.Clone()
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id int) (models.Habit, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Habit{}, err
	}
	s.rollover()
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Habit{}, errors.NotFoundf("habit %d", id)
	}
	return s.habits[i].Clone(), nil
}

// Create adds a habit with the next free id
func (s *Store) Create(ctx context.Context, h models.Habit) (models.Habit, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Habit{}, err
	}
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return models.Habit{}, errors.Validationf("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.rolloverLocked()

	maxID := 0
	for _, existing := range s.habits {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	h = h.Clone()
	h.ID = maxID + 1
	if h.Goal.Target == 0 {
		h.Goal.Target = 1
	}
	if h.Goal.Unit == "" {
		h.Goal.Unit = defaultGoalUnit
	}
	if h.CompletionDates == nil {
		h.CompletionDates = []string{}
	}
	refresh(&h, today)

	s.habits = append(s.habits, h)
	return h.Clone(), nil
}

// Update shallow-merges the non-nil fields of patch
func (s *Store) Update(ctx context.Context, id int, patch models.HabitPatch) (models.Habit, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Habit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Habit{}, errors.NotFoundf("habit %d", id)
	}

	h := s.habits[i]
	if patch.Name != nil {
		h.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		h.Category = *patch.Category
	}
	if patch.Color != nil {
		h.Color = *patch.Color
	}
	if patch.Icon != nil {
		h.Icon = *patch.Icon
	}
	if patch.Goal != nil {
		h.Goal = *patch.Goal
	}
	if err := h.Validate(); err != nil {
		return models.Habit{}, errors.Validationf("%v", err)
	}

	s.habits[i] = h
	return h.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return errors.NotFoundf("habit %d", id)
	}
	s.habits = append(s.habits[:i], s.habits[i+1:]...)
	return nil
}

// Toggle flips the habit's completion for day (YYYY-MM-DD) and reports
// whether it is now completed.
func (s *Store) Toggle(ctx context.Context, id int, day string) (models.Habit, bool, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Habit{}, false, err
	}
	if _, err := utils.ParseDate(day, s.opts.Now().Location()); err != nil {
		return models.Habit{}, false, errors.Validationf("invalid date %q", day)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Habit{}, false, errors.NotFoundf("habit %d", id)
	}

	today := s.rolloverLocked()
	h := &s.habits[i]
	completed := !h.HasDate(day)
	if completed {
		h.CompletionDates = append(h.CompletionDates, day)
		sort.Strings(h.CompletionDates)
	} else {
		kept := h.CompletionDates[:0]
		for _, d := range h.CompletionDates {
			if d != day {
				kept = append(kept, d)
			}
		}
		h.CompletionDates = kept
	}

	if day == today {
		if completed {
			h.Goal.Current = h.Goal.Target
		} else {
			h.Goal.Current = 0
		}
	}
	refresh(h, today)
	return h.Clone(), completed, nil
}

// UpdateStreaks recomputes today's flag and the streaks of every habit
func (s *Store) UpdateStreaks(ctx context.Context) ([]models.Habit, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.day = ""
	s.rolloverLocked()
	out := make([]models.Habit, len(s.habits))
	for i := range s.habits {
		out[i] = s.habits[i].Clone()
	}
	return out, nil
}

// RefreshToday re-derives today's flag and the streaks of every habit. A
// goal left at its target from a previous day is reset.
func (s *Store) RefreshToday() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = ""
	s.rolloverLocked()
}

// CalculateStreaks computes a habit's streaks against the store's clock
func (s *Store) CalculateStreaks(h models.Habit) models.Streaks {
	return CalculateStreaks(h.CompletionDates, s.opts.Today())
}

// CompletedToday returns how many habits are done today out of the total
func (s *Store) CompletedToday() (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := s.opts.Today()
	for _, h := range s.habits {
		if h.HasDate(today) {
			completed++
		}
	}
	return completed, len(s.habits)
}

// Replace swaps the whole collection, used when restoring a snapshot
func (s *Store) Replace(habits []models.Habit) {
	fresh := New(habits, s.opts)
	s.mu.Lock()
	s.habits = fresh.habits
	s.mu.Unlock()
}
