package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesses-code-adventures/practice/internal/database"
	"github.com/jesses-code-adventures/practice/internal/models"
)

func TestTimerLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleStaff)
	ctx := context.Background()

	active, err := svc.ActiveTimer(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	first, stopped, err := svc.StartTimer(ctx, "e1", "  fieldwork  ", testNow.Add(-3*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, stopped)
	assert.Equal(t, "c1", first.ClientID)
	assert.Equal(t, "fieldwork", *first.Description)

	second, stopped, err := svc.StartTimer(ctx, "e2", "", testNow.Add(-time.Hour))
	require.NoError(t, err)
	require.NotNil(t, stopped)
	assert.Equal(t, first.ID, stopped.ID)
	assert.Nil(t, second.Description)
	assert.Equal(t, 2*time.Hour, svc.CalculateDuration(stopped))

	active, err = svc.ActiveTimer(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, time.Hour, svc.CalculateDuration(active))

	done, err := svc.StopTimer(ctx)
	require.NoError(t, err)
	require.NotNil(t, done.EndTime)
	assert.True(t, done.EndTime.Equal(testNow))

	_, err = svc.StopTimer(ctx)
	assert.ErrorIs(t, err, ErrNoActiveTimer)

	_, _, err = svc.StartTimer(ctx, "missing", "", time.Time{})
	assert.Error(t, err)
}

func TestStartTimerNeedsActingEmployee(t *testing.T) {
	f := newFixture(t)
	svc := New(f.store, nil, nil, models.Actor{Role: models.RoleStaff}, Options{
		Now: func() time.Time { return testNow },
	})
	ctx := context.Background()

	_, _, err := svc.StartTimer(ctx, "e1", "", time.Time{})
	assert.ErrorIs(t, err, ErrValidation)

	// nothing was written, so a named employee can still list and start
	entries, err := f.store.ListTimeEntries(ctx, database.TimeEntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _, err = f.as(models.RoleStaff).StartTimer(ctx, "e1", "", time.Time{})
	require.NoError(t, err)
}

func TestTotalHours(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleStaff)
	ctx := context.Background()

	_, _, err := svc.StartTimer(ctx, "e1", "", testNow.Add(-150*time.Minute))
	require.NoError(t, err)
	_, _, err = svc.StartTimer(ctx, "e2", "", testNow.Add(-30*time.Minute))
	require.NoError(t, err)
	_, err = svc.StopTimer(ctx)
	require.NoError(t, err)

	total, err := svc.TotalHours(ctx, "", "day", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 150*time.Minute, total)

	total, err = svc.TotalHours(ctx, "e1", "week", "2025-05-12", "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), total)

	total, err = svc.TotalHours(ctx, "e1", "", "", "2025-05-10", "2025-05-10")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, total)

	_, err = svc.TotalHours(ctx, "", "day", "10/05/2025", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	entries, err := svc.ListTimeEntries(ctx, "2025-05-10", "", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e2", entries[0].EngagementID)
}

func TestCalculatePeriodRange(t *testing.T) {
	wednesday := time.Date(2025, time.May, 14, 15, 30, 0, 0, time.UTC)
	sunday := time.Date(2025, time.May, 18, 9, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, time.May, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period string
		target time.Time
		start  time.Time
		end    time.Time
	}{
		{"day", wednesday, day(14), day(15)},
		{"week", wednesday, day(12), day(19)},
		{"week", sunday, day(12), day(19)},
		{"fortnight", wednesday, day(12), day(26)},
		{"month", wednesday, day(1), time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"unknown", wednesday, day(14), day(15)},
	}
	for _, tt := range tests {
		start, end := CalculatePeriodRange(tt.period, tt.target)
		assert.Equal(t, tt.start, start, tt.period)
		assert.Equal(t, tt.end.Add(-time.Nanosecond), end, tt.period)
	}
}

func TestParseTimeString(t *testing.T) {
	svc := New(nil, nil, nil, models.Actor{}, Options{Now: func() time.Time { return testNow }})

	got, err := svc.ParseTimeString("09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 10, 9, 30, 0, 0, time.UTC), got)

	got, err = svc.ParseTimeString("2025-05-01 17:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.May, 1, 17, 45, 0, 0, time.UTC), got)

	_, err = svc.ParseTimeString("half past nine")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatDuration(2*time.Hour+5*time.Minute+30*time.Second))
	assert.Equal(t, "0h 0m", FormatDuration(0))
}

func TestExportTimeEntriesCSV(t *testing.T) {
	f := newFixture(t)
	svc := f.as(models.RoleStaff)
	ctx := context.Background()

	_, _, err := svc.StartTimer(ctx, "e1", "tie-out, ledgers", testNow.Add(-90*time.Minute))
	require.NoError(t, err)
	entries, err := svc.ListTimeEntries(ctx, "", "", 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportTimeEntriesCSV(ctx, entries, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Client,Engagement Type,Date,Start Time,End Time,Duration (minutes),Description", lines[0])
	assert.Contains(t, lines[1], ",Acme Traders,Statutory Audit,2025-05-10,08:30:00,,90,\"tie-out, ledgers\"")
}
