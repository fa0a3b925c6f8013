package challenges

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

// Store holds challenges and their mini-challenges. At most one challenge
// is active at a time.
type Store struct {
	mu         sync.RWMutex
	challenges []models.Challenge
	minis      []models.MiniChallenge
	opts       utils.StoreOptions
}

func New(challenges []models.Challenge, minis []models.MiniChallenge, opts utils.StoreOptions) *Store {
	s := &Store{opts: opts}
	for _, c := range challenges {
		c = c.Clone()
		if c.CompletedDays == nil {
			c.CompletedDays = []int{}
		}
		s.challenges = append(s.challenges, c)
	}
	for _, m := range minis {
		m = m.Clone()
		if m.Progress.CompletedDays == nil {
			m.Progress.CompletedDays = []int{}
		}
		s.minis = append(s.minis, m)
	}
	return s
}

func (s *Store) indexOf(id int) int {
	for i := range s.challenges {
		if s.challenges[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndex() int {
	for i := range s.challenges {
		if s.challenges[i].IsActive {
			return i
		}
	}
	return -1
}

func (s *Store) GetAll(ctx context.Context) ([]models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Challenge, len(s.challenges))
	for i, c := range s.challenges {
		out[i] = c.Clone()
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id int) (models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Challenge{}, errors.NotFoundf("challenge %d", id)
	}
	return s.challenges[i].Clone(), nil
}

func (s *Store) GetActive(ctx context.Context) (models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.activeIndex()
	if i < 0 {
		return models.Challenge{}, errors.ErrNoActiveChallenge
	}
	return s.challenges[i].Clone(), nil
}

// Create starts a new challenge on day 1 and deactivates every other one
func (s *Store) Create(ctx context.Context, c models.Challenge) (models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, err
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return models.Challenge{}, errors.Validationf("%v", err)
	}
	if c.StartDate == "" {
		c.StartDate = s.opts.Today()
	} else if _, err := utils.ParseDate(c.StartDate, s.opts.Now().Location()); err != nil {
		return models.Challenge{}, errors.Validationf("invalid start date %q", c.StartDate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for i := range s.challenges {
		s.challenges[i].IsActive = false
		if s.challenges[i].ID > maxID {
			maxID = s.challenges[i].ID
		}
	}

	c = c.Clone()
	c.ID = maxID + 1
	c.IsActive = true
	c.IsCompleted = false
	c.CompletedDays = normalizeDays(c.CompletedDays)
	if c.CurrentDay < 1 {
		c.CurrentDay = 1
	}

	s.challenges = append(s.challenges, c)
	return c.Clone(), nil
}

// Update applies a patch. Completed days are merged, never removed, and the
// current day cannot move backwards.
func (s *Store) Update(ctx context.Context, id int, patch models.ChallengePatch) (models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Challenge{}, errors.NotFoundf("challenge %d", id)
	}

	c := s.challenges[i].Clone()
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.StartDate != nil {
		c.StartDate = *patch.StartDate
	}
	if patch.CurrentDay != nil {
		if *patch.CurrentDay < c.CurrentDay || *patch.CurrentDay > constants.ChallengeLength {
			return models.Challenge{}, errors.Validationf("current day cannot move from %d to %d", c.CurrentDay, *patch.CurrentDay)
		}
		c.CurrentDay = *patch.CurrentDay
	}
	if patch.CompletedDays != nil {
		c.CompletedDays = normalizeDays(append(c.CompletedDays, patch.CompletedDays...))
	}
	if patch.IsCompleted != nil && *patch.IsCompleted {
		c.IsCompleted = true
	}
	if len(c.CompletedDays) >= constants.ChallengeLength {
		c.IsCompleted = true
	}
	if err := c.Validate(); err != nil {
		return models.Challenge{}, errors.Validationf("%v", err)
	}

	s.challenges[i] = c
	return c.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return errors.NotFoundf("challenge %d", id)
	}
	s.challenges = append(s.challenges[:i], s.challenges[i+1:]...)

	kept := s.minis[:0]
	for _, m := range s.minis {
		if m.ChallengeID != id {
			kept = append(kept, m)
		}
	}
	s.minis = kept
	return nil
}

// CompleteDay marks a day of the active challenge as done. It reports
// whether the day was newly recorded; repeating a day is a no-op.
func (s *Store) CompleteDay(ctx context.Context, day int) (models.Challenge, bool, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, false, err
	}
	if day < 1 || day > constants.ChallengeLength {
		return models.Challenge{}, false, errors.Validationf("day %d outside 1..%d", day, constants.ChallengeLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.activeIndex()
	if i < 0 {
		return models.Challenge{}, false, errors.ErrNoActiveChallenge
	}
	c := &s.challenges[i]
	if c.HasDay(day) {
		return c.Clone(), false, nil
	}
	c.CompletedDays = normalizeDays(append(c.CompletedDays, day))
	if len(c.CompletedDays) >= constants.ChallengeLength {
		c.IsCompleted = true
	}
	return c.Clone(), true, nil
}

// SyncCurrentDay advances the active challenge's current day from its start
// date and the clock. It never moves the day backwards.
func (s *Store) SyncCurrentDay(ctx context.Context) (models.Challenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Challenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.activeIndex()
	if i < 0 {
		return models.Challenge{}, errors.ErrNoActiveChallenge
	}
	c := &s.challenges[i]

	now := s.opts.Now()
	start, err := utils.ParseDate(c.StartDate, now.Location())
	if err != nil {
		return c.Clone(), nil
	}
	day := utils.DaysBetween(start, now) + 1
	if day > constants.ChallengeLength {
		day = constants.ChallengeLength
	}
	if day > c.CurrentDay {
		c.CurrentDay = day
	}
	return c.Clone(), nil
}

// Replace swaps both collections, used when restoring a snapshot
func (s *Store) Replace(challenges []models.Challenge, minis []models.MiniChallenge) {
	fresh := New(challenges, minis, s.opts)
	s.mu.Lock()
	s.challenges = fresh.challenges
	s.minis = fresh.minis
	s.mu.Unlock()
}

// normalizeDays sorts and de-duplicates a list of challenge days
func normalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}
