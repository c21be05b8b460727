package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDailyAt_SameDayWhenBeforeTarget(t *testing.T) {
	now := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	next := nextDailyAt(now, 6, 0)
	assert.Equal(t, time.Date(2026, 6, 1, 6, 0, 0, 0, time.UTC), next)
}

func TestNextDailyAt_RollsToNextDayWhenPastTarget(t *testing.T) {
	now := time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)
	next := nextDailyAt(now, 6, 0)
	assert.Equal(t, time.Date(2026, 6, 2, 6, 0, 0, 0, time.UTC), next)
}

func TestNextEveryNHours_AlignsToMidnightSteps(t *testing.T) {
	now := time.Date(2026, 6, 1, 5, 30, 0, 0, time.UTC)
	next := nextEveryNHours(now, 4)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), next)
}

func TestNextEveryNHours_RollsPastMidnight(t *testing.T) {
	now := time.Date(2026, 6, 1, 23, 0, 0, 0, time.UTC)
	next := nextEveryNHours(now, 4)
	assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), next)
}

func TestNextWeeklyAt_SameDayBeforeTarget(t *testing.T) {
	now := time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC) // a Sunday
	next := nextWeeklyAt(now, time.Sunday, 2, 0)
	assert.Equal(t, time.Date(2026, 6, 7, 2, 0, 0, 0, time.UTC), next)
}

func TestNextWeeklyAt_RollsToNextOccurrence(t *testing.T) {
	now := time.Date(2026, 6, 7, 3, 0, 0, 0, time.UTC) // Sunday, already past 02:00
	next := nextWeeklyAt(now, time.Sunday, 2, 0)
	assert.Equal(t, time.Date(2026, 6, 14, 2, 0, 0, 0, time.UTC), next)
}

func TestNextWeeklyAt_FindsNextWeekdayAhead(t *testing.T) {
	now := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC) // a Wednesday
	next := nextWeeklyAt(now, time.Sunday, 2, 0)
	assert.Equal(t, time.Date(2026, 6, 7, 2, 0, 0, 0, time.UTC), next)
}
