package seed

import (
	"testing"
)

func TestLoad(t *testing.T) {
	d, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(d.Habits) != 5 {
		t.Errorf("expected 5 seed habits, got %d", len(d.Habits))
	}
	if len(d.Challenges) == 0 || len(d.MiniChallenges) == 0 || len(d.DayProgress) == 0 {
		t.Fatalf("seed data incomplete: %+v", d)
	}

	active := 0
	for _, c := range d.Challenges {
		if c.IsActive {
			active++
		}
		if err := c.Validate(); err != nil {
			t.Errorf("seed challenge %d invalid: %v", c.ID, err)
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active seed challenge, got %d", active)
	}

	for _, h := range d.Habits {
		if err := h.Validate(); err != nil {
			t.Errorf("seed habit %d invalid: %v", h.ID, err)
		}
		seen := map[string]bool{}
		for _, day := range h.CompletionDates {
			if seen[day] {
				t.Errorf("habit %d has duplicate date %s", h.ID, day)
			}
			seen[day] = true
		}
	}
}

func TestLoadReturnsFreshCopies(t *testing.T) {
	a, _ := Load()
	b, _ := Load()
	a.Habits[0].Name = "mutated"
	if b.Habits[0].Name == "mutated" {
		t.Error("Load returned shared slices")
	}
}

func TestAchievements(t *testing.T) {
	catalog, err := Achievements()
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}

	keys := map[string]bool{}
	for _, a := range catalog {
		if keys[a.Key] {
			t.Errorf("duplicate achievement key %s", a.Key)
		}
		keys[a.Key] = true
		if a.Requirement.Type == "" || a.Requirement.Value <= 0 {
			t.Errorf("achievement %s has an empty requirement", a.Key)
		}
	}

	for _, k := range []string{"primera_semana", "racha_fuego_3", "dia_perfecto", "reto_completado"} {
		if !keys[k] {
			t.Errorf("catalog is missing %s", k)
		}
	}
}
