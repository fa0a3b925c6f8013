// Package assessment keeps the before and after body assessments of a
// challenge and compares them.
package assessment

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/julianstephens/reto21d/internal/errors"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/utils"
)

// Kind selects which record an operation works on
type Kind string

const (
	Initial Kind = "initial"
	Final   Kind = "final"
)

func (k Kind) valid() bool { return k == Initial || k == Final }

type Store struct {
	mu      sync.RWMutex
	records map[Kind]models.Assessment
	opts    utils.StoreOptions
}

func New(opts utils.StoreOptions) *Store {
	return &Store{records: map[Kind]models.Assessment{}, opts: opts}
}

// BMI returns weight / (height in m)^2 rounded to one decimal, or nil when
// either value is missing.
func BMI(weightKg, heightCm float64) *float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return nil
	}
	m := heightCm / 100
	v := math.Round(weightKg/(m*m)*10) / 10
	return &v
}

func (s *Store) Get(ctx context.Context, kind Kind) (models.Assessment, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Assessment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.records[kind]
	if !ok {
		return models.Assessment{}, errors.NotFoundf("%s assessment", kind)
	}
	return a, nil
}

// CreateAssessment starts a new record of the given kind. An existing record
// is replaced.
func (s *Store) CreateAssessment(ctx context.Context, kind Kind, in models.AssessmentInput) (models.Assessment, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Assessment{}, err
	}
	if !kind.valid() {
		return models.Assessment{}, errors.Validationf("unknown assessment kind %q", kind)
	}
	now := s.opts.Now()
	a := models.Assessment{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	apply(&a, in)
	if err := validate(a); err != nil {
		return models.Assessment{}, err
	}

	s.mu.Lock()
	s.records[kind] = a
	s.mu.Unlock()
	return a, nil
}

// UpdateAssessment merges the non-nil sections of in into the record
func (s *Store) UpdateAssessment(ctx context.Context, kind Kind, in models.AssessmentInput) (models.Assessment, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Assessment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.records[kind]
	if !ok {
		return models.Assessment{}, errors.NotFoundf("%s assessment", kind)
	}
	apply(&a, in)
	if err := validate(a); err != nil {
		return models.Assessment{}, err
	}
	a.UpdatedAt = s.opts.Now()
	s.records[kind] = a
	return a, nil
}

// Save creates the record on first use and updates it afterwards
func (s *Store) Save(ctx context.Context, kind Kind, in models.AssessmentInput) (models.Assessment, error) {
	s.mu.RLock()
	_, exists := s.records[kind]
	s.mu.RUnlock()
	if exists {
		return s.UpdateAssessment(ctx, kind, in)
	}
	return s.CreateAssessment(ctx, kind, in)
}

func (s *Store) CompleteAssessment(ctx context.Context, kind Kind) (models.Assessment, error) {
	if err := utils.Simulate(ctx, s.opts.Latency); err != nil {
		return models.Assessment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.records[kind]
	if !ok {
		return models.Assessment{}, errors.Validationf("nothing to complete")
	}
	if !a.Completed {
		now := s.opts.Now()
		a.Completed = true
		a.CompletedAt = &now
		a.UpdatedAt = now
		s.records[kind] = a
	}
	return a, nil
}

// CompareStored compares the initial and final records
func (s *Store) CompareStored(ctx context.Context) (models.Comparison, error) {
	initial, err := s.Get(ctx, Initial)
	if err != nil {
		return models.Comparison{}, err
	}
	final, err := s.Get(ctx, Final)
	if err != nil {
		return models.Comparison{}, err
	}
	return Compare(initial, final), nil
}

// Snapshot returns a copy of the stored records
func (s *Store) Snapshot() map[Kind]models.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Kind]models.Assessment, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// Replace swaps every record, used when restoring a snapshot
func (s *Store) Replace(records map[Kind]models.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = map[Kind]models.Assessment{}
	for k, v := range records {
		if k.valid() {
			s.records[k] = v
		}
	}
}

func apply(a *models.Assessment, in models.AssessmentInput) {
	if in.PersonalInfo != nil {
		a.PersonalInfo = *in.PersonalInfo
	}
	if in.PhysicalMeasurements != nil {
		a.PhysicalMeasurements = *in.PhysicalMeasurements
	}
	if in.EnergyLevels != nil {
		a.EnergyLevels = *in.EnergyLevels
	}
	if in.Photos != nil {
		a.Photos = *in.Photos
	}
	if in.Goals != nil {
		a.Goals = *in.Goals
	}
	pm := &a.PhysicalMeasurements
	pm.BMI = BMI(pm.Weight, pm.Height)
}

func validate(a models.Assessment) error {
	pm := a.PhysicalMeasurements
	for name, v := range map[string]float64{
		"weight": pm.Weight, "height": pm.Height, "waist": pm.Waist,
		"chest": pm.Chest, "hips": pm.Hips, "arms": pm.Arms, "thighs": pm.Thighs,
	} {
		if v < 0 {
			return errors.Validationf("%s cannot be negative", name)
		}
	}
	el := a.EnergyLevels
	for name, v := range map[string]int{
		"energy": el.Energy, "sleep": el.Sleep, "stress": el.Stress, "wellness": el.Wellness,
	} {
		if v < 0 || v > 10 {
			return errors.Validationf("%s must be between 1 and 10, or 0 when not rated; got %d", name, v)
		}
	}
	if a.PersonalInfo.Age < 0 {
		return errors.Validationf("age cannot be negative")
	}
	return nil
}

// Compare reports the change from initial to final. Measurements missing on
// either side are left out. OverallImprovement averages the percentage
// improvement of energy, sleep and wellness over the scores present in both.
func Compare(initial, final models.Assessment) models.Comparison {
	ip, fp := initial.PhysicalMeasurements, final.PhysicalMeasurements
	ie, fe := initial.EnergyLevels, final.EnergyLevels

	c := models.Comparison{
		EnergyChange:       fe.Energy - ie.Energy,
		SleepChange:        fe.Sleep - ie.Sleep,
		WellnessChange:     fe.Wellness - ie.Wellness,
		MeasurementChanges: map[string]float64{},
	}
	if ip.Weight > 0 && fp.Weight > 0 {
		c.WeightChange = round1(fp.Weight - ip.Weight)
	}

	pairs := []struct {
		name     string
		from, to float64
	}{
		{"waist", ip.Waist, fp.Waist},
		{"chest", ip.Chest, fp.Chest},
		{"hips", ip.Hips, fp.Hips},
		{"arms", ip.Arms, fp.Arms},
		{"thighs", ip.Thighs, fp.Thighs},
	}
	for _, p := range pairs {
		if p.from > 0 && p.to > 0 {
			c.MeasurementChanges[p.name] = round1(p.to - p.from)
		}
	}
	if ip.BMI != nil && fp.BMI != nil {
		c.MeasurementChanges["bmi"] = round1(*fp.BMI - *ip.BMI)
	}

	var sum float64
	n := 0
	for _, sc := range [][2]int{{ie.Energy, fe.Energy}, {ie.Sleep, fe.Sleep}, {ie.Wellness, fe.Wellness}} {
		if sc[0] > 0 && sc[1] > 0 {
			sum += float64(sc[1]-sc[0]) / float64(sc[0]) * 100
			n++
		}
	}
	if n > 0 {
		c.OverallImprovement = round1(sum / float64(n))
	}
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
