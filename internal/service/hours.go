package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jesses-code-adventures/practice/internal/database"
)

// TotalHours sums the acting employee's time, optionally for one engagement.
// A period (day, week, fortnight, month) around date takes precedence over
// the from and to dates.
func (s *Service) TotalHours(ctx context.Context, engagementID, period, periodDate, fromDate, toDate string) (time.Duration, error) {
	filter := database.TimeEntryFilter{EmployeeID: s.actor.UserID, EngagementID: engagementID}

	if period != "" {
		targetDate := s.now()
		if periodDate != "" {
			var err error
			targetDate, err = time.ParseInLocation("2006-01-02", periodDate, targetDate.Location())
			if err != nil {
				return 0, validationError("invalid date format, expected YYYY-MM-DD")
			}
		}
		from, end := CalculatePeriodRange(period, targetDate)
		to := end.Add(time.Nanosecond)
		filter.From, filter.To = &from, &to
	} else if err := setDateRange(&filter, fromDate, toDate, s.now().Location()); err != nil {
		return 0, err
	}

	entries, err := s.db.ListTimeEntries(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to get time entries: %w", err)
	}

	total := time.Duration(0)
	for _, e := range entries {
		total += s.CalculateDuration(e)
	}
	return total, nil
}

// CalculatePeriodRange returns the first and last instant of the period
// containing targetDate. Weeks start on Monday; a fortnight is the week
// containing targetDate and the one after it.
func CalculatePeriodRange(period string, targetDate time.Time) (time.Time, time.Time) {
	switch period {
	case "week", "fortnight":
		weekday := targetDate.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start := targetDate.AddDate(0, 0, -int(weekday-1))
		start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		days := 7
		if period == "fortnight" {
			days = 14
		}
		return start, start.AddDate(0, 0, days).Add(-time.Nanosecond)
	case "month":
		start := time.Date(targetDate.Year(), targetDate.Month(), 1, 0, 0, 0, 0, targetDate.Location())
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	default:
		start := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
		return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
}
