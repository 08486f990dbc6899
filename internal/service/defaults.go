package service

import (
	"time"

	"github.com/guttosm/stockpulse/internal/domain/models"
)

// DefaultRangeDays is the span of a range report when no start is given.
const DefaultRangeDays = 30

// DefaultDate is the single-day default: yesterday.
func DefaultDate(now time.Time) time.Time {
	return models.TruncateDate(now).AddDate(0, 0, -1)
}

// DefaultRange fills in a missing range bound. end defaults to today and start to
// DefaultRangeDays before end.
func DefaultRange(now, start, end time.Time) (time.Time, time.Time) {
	if end.IsZero() {
		end = models.TruncateDate(now)
	}
	if start.IsZero() {
		start = models.TruncateDate(end).AddDate(0, 0, -DefaultRangeDays)
	}
	return start, end
}
