package database

import (
	"context"
	"fmt"

	"github.com/jesses-code-adventures/practice/internal/config"
)

// Open returns the document store selected by cfg.DocStoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DocStoreDriver {
	case "sqlite3", "libsql":
		return NewSQLiteDB(ctx, cfg.DocStoreDriver, cfg.DatabaseURL)
	case "firestore":
		return NewFirestoreDB(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials)
	}
	return nil, fmt.Errorf("unknown document store driver %q", cfg.DocStoreDriver)
}
