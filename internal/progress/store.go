package progress

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

// Store keeps one DayProgress snapshot per challenge day
type Store struct {
	mu      sync.RWMutex
	entries []models.DayProgress
	opts    utils.StoreOptions
}

func New(initial []models.DayProgress, opts utils.StoreOptions) *Store {
	s := &Store{opts: opts}
	s.entries = append(s.entries, initial...)
	s.sort()
	return s
}

func (s *Store) sort() {
	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].Day < s.entries[j].Day })
}

func (s *Store) indexOf(id int) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextID() int {
	maxID := 0
	for _, e := range s.entries {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}

func (s *Store) GetAll(ctx context.Context) ([]models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.DayProgress{}, s.entries...), nil
}

func (s *Store) GetByID(ctx context.Context, id int) (models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.DayProgress{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.DayProgress{}, errors.NotFoundf("day progress %d", id)
	}
	return s.entries[i], nil
}

func (s *Store) GetByDay(ctx context.Context, day int) (models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.DayProgress{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Day == day {
			return e, nil
		}
	}
	return models.DayProgress{}, errors.NotFoundf("progress for day %d", day)
}

func validate(p models.DayProgress) error {
	if p.Day < 1 {
		return errors.Validationf("day must be at least 1, got %d", p.Day)
	}
	if p.HabitsCompleted < 0 || p.TotalHabits < 0 || p.HabitsCompleted > p.TotalHabits {
		return errors.Validationf("invalid tally %d/%d", p.HabitsCompleted, p.TotalHabits)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, p models.DayProgress) (models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.DayProgress{}, err
	}
	if err := validate(p); err != nil {
		return models.DayProgress{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID()
	s.entries = append(s.entries, p)
	s.sort()
	return p, nil
}

// Update overwrites the tally of an existing snapshot
func (s *Store) Update(ctx context.Context, id, completed, total int) (models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.DayProgress{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.DayProgress{}, errors.NotFoundf("day progress %d", id)
	}
	p := s.entries[i]
	p.HabitsCompleted, p.TotalHabits = completed, total
	if err := validate(p); err != nil {
		return models.DayProgress{}, err
	}
	s.entries[i] = p
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return errors.NotFoundf("day progress %d", id)
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// Record writes the tally for a challenge day, creating the snapshot if the
// day has none yet
func (s *Store) Record(ctx context.Context, day int, date string, completed, total int) (models.DayProgress, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.DayProgress{}, err
	}
	p := models.DayProgress{Day: day, Date: date, HabitsCompleted: completed, TotalHabits: total}
	if err := validate(p); err != nil {
		return models.DayProgress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Day == day {
			p.ID = s.entries[i].ID
			s.entries[i] = p
			return p, nil
		}
	}
	p.ID = s.nextID()
	s.entries = append(s.entries, p)
	s.sort()
	return p, nil
}

// Trend returns the completion percentage of the last n recorded days, oldest first
func (s *Store) Trend(ctx context.Context, n int) ([]models.TrendPoint, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if n > 0 && len(s.entries) > n {
		start = len(s.entries) - n
	}
	out := make([]models.TrendPoint, 0, len(s.entries)-start)
	for _, e := range s.entries[start:] {
		out = append(out, models.TrendPoint{Day: e.Day, Date: e.Date, Percentage: round1(e.Percentage())})
	}
	return out, nil
}

// WeeklyComparison compares the average completion of the last 7 challenge
// days up to currentDay with the 7 days before them
func (s *Store) WeeklyComparison(ctx context.Context, currentDay int) (models.WeekComparison, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.WeekComparison{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.average(currentDay-6, currentDay)
	previous := s.average(currentDay-13, currentDay-7)
	return models.WeekComparison{
		PreviousAverage: round1(previous),
		CurrentAverage:  round1(current),
		Change:          round1(current - previous),
	}, nil
}

func (s *Store) average(from, to int) float64 {
	sum, n := 0.0, 0
	for _, e := range s.entries {
		if e.Day >= from && e.Day <= to {
			sum += e.Percentage()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Replace swaps the collection, used when restoring a snapshot
func (s *Store) Replace(entries []models.DayProgress) {
	s.mu.Lock()
	s.entries = append([]models.DayProgress{}, entries...)
	s.sort()
	s.mu.Unlock()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
