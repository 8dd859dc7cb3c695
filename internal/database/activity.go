package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jesses-code-adventures/practice/internal/db"
	"github.com/jesses-code-adventures/practice/internal/models"
)

// ActivityLog is an append-only audit trail. Nothing in this module reads it
// back.
type ActivityLog interface {
	Record(ctx context.Context, entry models.ActivityEntry) error
	Close() error
}

type SQLActivityLog struct {
	conn    *sql.DB
	queries *db.Queries
}

// OpenActivityLog connects to sqlite3, libsql or Postgres (driver "pgx") and
// creates the activity_log table if needed.
func OpenActivityLog(ctx context.Context, driver, url string) (*SQLActivityLog, error) {
	dialect := db.DialectSQLite
	if driver == "pgx" {
		dialect = db.DialectPostgres
	}

	conn, err := sql.Open(driver, sqliteDSN(driver, url))
	if err != nil {
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate activity log: %w", err)
	}
	return &SQLActivityLog{
		conn:    conn,
		queries: db.NewWithDialect(conn, dialect),
	}, nil
}

func (a *SQLActivityLog) Record(ctx context.Context, entry models.ActivityEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	err = a.queries.InsertActivity(ctx, db.InsertActivityParams{
		EngagementID: entry.EngagementID,
		ClientID:     entry.ClientID,
		Type:         string(entry.Type),
		UserID:       entry.UserID,
		UserName:     entry.UserName,
		Details:      string(data),
		Timestamp:    entry.Timestamp.UTC().Format(db.TimeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (a *SQLActivityLog) Close() error {
	return a.conn.Close()
}
