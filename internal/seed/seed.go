// Package seed holds the starting data every fresh session begins from.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/reto21d/internal/models"
)

//go:embed data/*.json
var files embed.FS

// Data is one decoded copy of the seed files. Each call to Load returns
// fresh slices, so stores may mutate them freely.
type Data struct {
	Habits         []models.Habit
	Challenges     []models.Challenge
	MiniChallenges []models.MiniChallenge
	DayProgress    []models.DayProgress
}

func Load() (Data, error) {
	var d Data
	for name, dst := range map[string]interface{}{
		"habits.json":          &d.Habits,
		"challenges.json":      &d.Challenges,
		"mini_challenges.json": &d.MiniChallenges,
		"day_progress.json":    &d.DayProgress,
	} {
		if err := decode(name, dst); err != nil {
			return Data{}, err
		}
	}
	return d, nil
}

// Achievements returns the static achievement catalog
func Achievements() ([]models.Achievement, error) {
	var catalog []models.Achievement
	if err := decode("achievements.json", &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

func decode(name string, dst interface{}) error {
	raw, err := files.ReadFile("data/" + name)
	if err != nil {
		return fmt.Errorf("reading seed %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding seed %s: %w", name, err)
	}
	return nil
}
