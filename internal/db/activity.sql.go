package db

import (
	"context"
)

const insertActivity = `
INSERT INTO activity_log (engagement_id, client_id, type, user_id, user_name, details, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertActivityParams struct {
	EngagementID string
	ClientID     string
	Type         string
	UserID       string
	UserName     string
	Details      string
	Timestamp    string
}

func (q *Queries) InsertActivity(ctx context.Context, arg InsertActivityParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertActivity),
		arg.EngagementID,
		arg.ClientID,
		arg.Type,
		arg.UserID,
		arg.UserName,
		arg.Details,
		arg.Timestamp,
	)
	return err
}
