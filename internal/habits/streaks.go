package habits

import (
	"sort"
	"time"

	"github.com/julianstephens/reto21d/internal/constants"
	"github.com/julianstephens/reto21d/internal/models"
)

// CalculateStreaks derives the current and best streak from a set of
// completion dates. The current streak counts consecutive days ending at
// today; it is zero when today itself is not completed. Unparseable dates
// are ignored.
func CalculateStreaks(dates []string, today string) models.Streaks {
	if len(dates) == 0 {
		return models.Streaks{}
	}

	set := make(map[string]bool, len(dates))
	var days []time.Time
	for _, d := range dates {
		if set[d] {
			continue
		}
		t, err := time.Parse(constants.DateFormat, d)
		if err != nil {
			continue
		}
		set[d] = true
		days = append(days, t)
	}

	current := 0
	if cursor, err := time.Parse(constants.DateFormat, today); err == nil {
		for set[cursor.Format(constants.DateFormat)] {
			current++
			cursor = cursor.AddDate(0, 0, -1)
		}
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	best, run := 0, 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	if current > best {
		best = current
	}
	return models.Streaks{CurrentStreak: current, BestStreak: best}
}
