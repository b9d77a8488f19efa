package schedule

import (
	"sort"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// Rank orders schedules from strongest to weakest: higher priority first,
// then the most recently updated, then the higher id. The order is total,
// so polls against unchanged rows never flip between equal priorities.
func Rank(eligible []model.Schedule) []model.Schedule {
	ranked := make([]model.Schedule, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
	return ranked
}

// Arbitrate picks the single winning schedule, if any.
func Arbitrate(eligible []model.Schedule) (model.Schedule, bool) {
	if len(eligible) == 0 {
		return model.Schedule{}, false
	}
	return Rank(eligible)[0], true
}
