package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/utils"
)

// StartTimer starts a time entry for the acting employee against an
// engagement. A running entry is stopped in the same write. The start time
// defaults to now.
func (s *Service) StartTimer(ctx context.Context, engagementID, description string, start time.Time) (started, stopped *models.TimeEntry, err error) {
	if s.actor.UserID == "" {
		return nil, nil, validationError("time entries need an acting employee, set PRACTICE_USER_ID")
	}

	engagement, err := s.db.GetEngagement(ctx, engagementID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get engagement: %w", err)
	}

	active, err := s.db.GetActiveTimeEntry(ctx, s.actor.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check for active timer: %w", err)
	}

	now := s.now()
	if start.IsZero() {
		start = now
	}

	batch := s.db.NewBatch()
	if active != nil {
		end := start
		if end.Before(active.StartTime) {
			end = now
		}
		active.EndTime = &end
		active.UpdatedAt = now
		batch.SaveTimeEntry(active)
		stopped = active
	}

	started = &models.TimeEntry{
		ID:           models.NewUUID(),
		EmployeeID:   s.actor.UserID,
		EngagementID: engagement.ID,
		ClientID:     engagement.ClientID,
		StartTime:    start,
		Description:  utils.ToPtrNil(strings.TrimSpace(description)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := batch.SaveTimeEntry(started).Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start timer: %w", err)
	}
	return started, stopped, nil
}

func (s *Service) StopTimer(ctx context.Context) (*models.TimeEntry, error) {
	active, err := s.db.GetActiveTimeEntry(ctx, s.actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for active timer: %w", err)
	}
	if active == nil {
		return nil, ErrNoActiveTimer
	}

	now := s.now()
	active.EndTime = &now
	active.UpdatedAt = now
	if err := s.db.NewBatch().SaveTimeEntry(active).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to stop timer: %w", err)
	}
	return active, nil
}

// ActiveTimer returns the acting employee's running entry, or nil.
func (s *Service) ActiveTimer(ctx context.Context) (*models.TimeEntry, error) {
	return s.db.GetActiveTimeEntry(ctx, s.actor.UserID)
}

// ListTimeEntries lists the acting employee's entries, newest first. from and
// to are YYYY-MM-DD dates, both inclusive, and may be empty.
func (s *Service) ListTimeEntries(ctx context.Context, fromDate, toDate string, limit int) ([]*models.TimeEntry, error) {
	filter := database.TimeEntryFilter{EmployeeID: s.actor.UserID, Limit: limit}
	if err := setDateRange(&filter, fromDate, toDate, s.now().Location()); err != nil {
		return nil, err
	}
	return s.db.ListTimeEntries(ctx, filter)
}

func setDateRange(filter *database.TimeEntryFilter, fromDate, toDate string, loc *time.Location) error {
	if fromDate != "" {
		from, err := time.ParseInLocation("2006-01-02", fromDate, loc)
		if err != nil {
			return validationError("invalid from date, expected YYYY-MM-DD")
		}
		filter.From = &from
	}
	if toDate != "" {
		to, err := time.ParseInLocation("2006-01-02", toDate, loc)
		if err != nil {
			return validationError("invalid to date, expected YYYY-MM-DD")
		}
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}
	return nil
}

// CalculateDuration measures a running entry up to now.
func (s *Service) CalculateDuration(entry *models.TimeEntry) time.Duration {
	if entry.EndTime == nil {
		return s.now().Sub(entry.StartTime)
	}
	return entry.EndTime.Sub(entry.StartTime)
}

func FormatDuration(d time.Duration) string {
	hours := d / time.Hour
	minutes := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
