package challenges

import (
	"context"
	"strings"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

func (s *Store) miniIndex(id int) int {
	for i := range s.minis {
		if s.minis[i].ID == id {
			return i
		}
	}
	return -1
}

// GetMiniChallenges lists the mini-challenges of a challenge, or all of
// them when challengeID is 0
func (s *Store) GetMiniChallenges(ctx context.Context, challengeID int) ([]models.MiniChallenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MiniChallenge{}
	for _, m := range s.minis {
		if challengeID == 0 || m.ChallengeID == challengeID {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (s *Store) GetMiniChallenge(ctx context.Context, id int) (models.MiniChallenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.MiniChallenge{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.miniIndex(id)
	if i < 0 {
		return models.MiniChallenge{}, errors.NotFoundf("mini-challenge %d", id)
	}
	return s.minis[i].Clone(), nil
}

func (s *Store) CreateMiniChallenge(ctx context.Context, m models.MiniChallenge) (models.MiniChallenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.MiniChallenge{}, err
	}
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return models.MiniChallenge{}, errors.Validationf("mini-challenge title cannot be empty")
	}
	if m.Progress.Total < 1 {
		return models.MiniChallenge{}, errors.Validationf("mini-challenge needs at least one day, got %d", m.Progress.Total)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(m.ChallengeID) < 0 {
		return models.MiniChallenge{}, errors.NotFoundf("challenge %d", m.ChallengeID)
	}

	maxID := 0
	for _, existing := range s.minis {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	m = m.Clone()
	m.ID = maxID + 1
	m.Progress.CompletedDays = normalizeDays(m.Progress.CompletedDays)
	m.Progress.Current = len(m.Progress.CompletedDays)
	m.IsCompleted = m.Progress.Current >= m.Progress.Total

	s.minis = append(s.minis, m)
	return m.Clone(), nil
}

func (s *Store) UpdateMiniChallenge(ctx context.Context, id int, patch models.MiniChallengePatch) (models.MiniChallenge, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.MiniChallenge{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.miniIndex(id)
	if i < 0 {
		return models.MiniChallenge{}, errors.NotFoundf("mini-challenge %d", id)
	}

	m := s.minis[i].Clone()
	if patch.Title != nil {
		m.Title = strings.TrimSpace(*patch.Title)
		if m.Title == "" {
			return models.MiniChallenge{}, errors.Validationf("mini-challenge title cannot be empty")
		}
	}
	if patch.Description != nil {
		m.Description = *patch.Description
	}
	if patch.Points != nil {
		m.Points = *patch.Points
	}
	if patch.Total != nil {
		if *patch.Total < 1 {
			return models.MiniChallenge{}, errors.Validationf("mini-challenge needs at least one day, got %d", *patch.Total)
		}
		m.Progress.Total = *patch.Total
		if m.Progress.Current >= m.Progress.Total {
			m.IsCompleted = true
		}
	}

	s.minis[i] = m
	return m.Clone(), nil
}

func (s *Store) DeleteMiniChallenge(ctx context.Context, id int) error {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.miniIndex(id)
	if i < 0 {
		return errors.NotFoundf("mini-challenge %d", id)
	}
	s.minis = append(s.minis[:i], s.minis[i+1:]...)
	return nil
}

// MiniResult describes what CompleteMiniChallenge changed
type MiniResult struct {
	MiniChallenge models.MiniChallenge `json:"miniChallenge"`
	// Recorded is false when the day was already present
	Recorded bool `json:"recorded"`
	// JustCompleted is true only on the call that reached the total
	JustCompleted bool `json:"justCompleted"`
}

// CompleteMiniChallenge records day against a mini-challenge. Repeating a
// day changes nothing; the mini-challenge completes once current >= total.
func (s *Store) CompleteMiniChallenge(ctx context.Context, id, day int) (MiniResult, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return MiniResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.miniIndex(id)
	if i < 0 {
		return MiniResult{}, errors.NotFoundf("mini-challenge %d", id)
	}
	m := &s.minis[i]

	for _, d := range m.Progress.CompletedDays {
		if d == day {
			return MiniResult{MiniChallenge: m.Clone()}, nil
		}
	}

	m.Progress.CompletedDays = normalizeDays(append(m.Progress.CompletedDays, day))
	m.Progress.Current = len(m.Progress.CompletedDays)

	res := MiniResult{Recorded: true}
	if !m.IsCompleted && m.Progress.Current >= m.Progress.Total {
		m.IsCompleted = true
		res.JustCompleted = true
	}
	res.MiniChallenge = m.Clone()
	return res, nil
}
