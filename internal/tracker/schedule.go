package tracker

import (
	"strings"
	"time"

	"github.com/emosenkis/family-policy/internal/config"
)

// limitForDay returns child's budget for the given weekday, honoring the
// first matching custom-day rule before falling back to weekend/weekday,
// grounded on original_source/src/time_limits/scheduler.rs's
// ScheduleCalculator::get_limit_for_day.
func limitForDay(child config.ChildProfile, weekday time.Weekday) config.TimeLimit {
	name := strings.ToLower(weekday.String())
	for _, custom := range child.Limits.Custom {
		for _, d := range custom.Days {
			if strings.ToLower(d) == name {
				return custom.Limit
			}
		}
	}
	if weekday == time.Saturday || weekday == time.Sunday {
		return child.Limits.Weekend
	}
	return child.Limits.Weekday
}

// remainingSeconds computes max(0, limit+additional-used) for child at now.
func remainingSeconds(child config.ChildProfile, now time.Time, usedSeconds, additionalSeconds int64) int64 {
	limit := limitForDay(child, now.Weekday())
	total := limit.ToSeconds() + additionalSeconds
	remaining := total - usedSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}
