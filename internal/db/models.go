package db

type Document struct {
	Collection string
	ID         string
	Data       string
	CreatedAt  string
	UpdatedAt  string
}

type ActivityLog struct {
	ID           int64
	EngagementID string
	ClientID     string
	Type         string
	UserID       string
	UserName     string
	Details      string
	Timestamp    string
}
