package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
	"github.com/jesses-code-adventures/practice/internal/readmodel"
	"github.com/jesses-code-adventures/practice/internal/utils"
)

// ParseTimeString accepts "YYYY-MM-DD HH:MM" or "HH:MM", the latter taken as
// today.
func (s *Service) ParseTimeString(timeStr string) (time.Time, error) {
	now := s.now()

	if t, err := time.ParseInLocation("2006-01-02 15:04", timeStr, now.Location()); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("15:04", timeStr, now.Location()); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}

	return time.Time{}, validationError("time must be in format 'YYYY-MM-DD HH:MM' or 'HH:MM'")
}

var timeEntryHeader = []string{
	"ID", "Client", "Engagement Type", "Date", "Start Time", "End Time", "Duration (minutes)", "Description",
}

// ExportTimeEntriesCSV writes entries with their client and engagement type
// names resolved.
func (s *Service) ExportTimeEntriesCSV(ctx context.Context, entries []*models.TimeEntry, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(timeEntryHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range entries {
		clientName, err := s.readModel.ClientName(ctx, entry.ClientID)
		if err != nil {
			return err
		}
		typeName, err := s.engagementTypeName(ctx, entry.EngagementID)
		if err != nil {
			return err
		}

		endTime := ""
		if entry.EndTime != nil {
			endTime = entry.EndTime.Format("15:04:05")
		}
		record := []string{
			entry.ID,
			clientName,
			typeName,
			entry.StartTime.Format("2006-01-02"),
			entry.StartTime.Format("15:04:05"),
			endTime,
			strconv.FormatFloat(s.CalculateDuration(entry).Minutes(), 'f', 0, 64),
			utils.FromPtr(entry.Description),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *Service) engagementTypeName(ctx context.Context, engagementID string) (string, error) {
	view, err := s.readModel.EngagementView(ctx, engagementID)
	if errors.Is(err, database.ErrNotFound) {
		// a deleted engagement still has its time on record
		return readmodel.NotAvailable, nil
	}
	if err != nil {
		return "", err
	}
	return view.TypeName, nil
}
