package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/jesses-code-adventures/practice/internal/db"
)

// SQLiteDB keeps every collection in one documents table with the document
// body stored as JSON. It serves both the local sqlite3 driver and libsql.
type SQLiteDB struct {
	conn    *sql.DB
	queries *db.Queries
	now     func() time.Time
}

// NewSQLiteDB opens the store and applies the embedded schema.
func NewSQLiteDB(ctx context.Context, driver, url string) (*Store, error) {
	s, err := openSQLite(ctx, driver, url)
	if err != nil {
		return nil, err
	}
	return newStore(s), nil
}

func openSQLite(ctx context.Context, driver, url string) (*SQLiteDB, error) {
	conn, err := sql.Open(driver, sqliteDSN(driver, url))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite3" {
		// one writer at a time keeps sqlite from returning SQLITE_BUSY mid-batch
		conn.SetMaxOpenConns(1)
	}
	if err := db.Migrate(ctx, conn, db.DialectSQLite); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteDB{
		conn:    conn,
		queries: db.New(conn),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// sqliteDSN adds WAL and a busy timeout to plain sqlite3 file paths so the
// document store and the activity log can share one file.
func sqliteDSN(driver, url string) string {
	if driver != "sqlite3" || strings.Contains(url, "?") || url == ":memory:" {
		return url
	}
	return url + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (s *SQLiteDB) close() error {
	return s.conn.Close()
}

type jsonDocument string

func (d jsonDocument) DataTo(p interface{}) error {
	return json.Unmarshal([]byte(d), p)
}

func (s *SQLiteDB) get(ctx context.Context, collection, id string) (rawDocument, error) {
	doc, err := s.queries.GetDocument(ctx, db.GetDocumentParams{Collection: collection, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return jsonDocument(doc.Data), nil
}

func (s *SQLiteDB) list(ctx context.Context, collection string, w *where, fn func(id string, raw rawDocument) error) error {
	var (
		docs []db.Document
		err  error
	)
	if w != nil {
		docs, err = s.queries.ListDocumentsByField(ctx, db.ListDocumentsByFieldParams{
			Collection: collection,
			Path:       "$." + w.field,
			Value:      w.value,
		})
	} else {
		docs, err = s.queries.ListDocuments(ctx, collection)
	}
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}

	for _, d := range docs {
		if err := fn(d.ID, jsonDocument(d.Data)); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteDB) commit(ctx context.Context, b *Batch) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	now := s.now()
	stamp := now.Format(db.TimeLayout)

	for _, e := range b.expects {
		current, err := s.readEngagement(ctx, q, e.engagementID)
		if err != nil {
			return err
		}
		if !current.hasBillStatus(e.billStatus) {
			return fmt.Errorf("%w: engagement %s has bill status %q, expected %q",
				ErrConflict, e.engagementID, current.BillStatus, e.billStatus)
		}
	}

	for _, o := range b.ops {
		switch o.kind {
		case opCreate, opSet:
			data, err := json.Marshal(o.doc)
			if err != nil {
				return fmt.Errorf("failed to encode %s/%s: %w", o.collection, o.id, err)
			}
			if o.kind == opCreate {
				err = q.InsertDocument(ctx, db.InsertDocumentParams{
					Collection: o.collection,
					ID:         o.id,
					Data:       string(data),
					CreatedAt:  stamp,
					UpdatedAt:  stamp,
				})
				if err != nil && isUniqueViolation(err) {
					return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, o.collection, o.id)
				}
			} else {
				err = q.UpsertDocument(ctx, db.UpsertDocumentParams{
					Collection: o.collection,
					ID:         o.id,
					Data:       string(data),
					CreatedAt:  stamp,
					UpdatedAt:  stamp,
				})
			}
			if err != nil {
				return fmt.Errorf("failed to write %s/%s: %w", o.collection, o.id, err)
			}

		case opDelete:
			if _, err := q.DeleteDocument(ctx, db.DeleteDocumentParams{Collection: o.collection, ID: o.id}); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", o.collection, o.id, err)
			}

		case opUpdateEngagement:
			current, err := s.readEngagement(ctx, q, o.id)
			if err != nil {
				return err
			}
			o.update.apply(current, now)
			data, err := json.Marshal(current)
			if err != nil {
				return fmt.Errorf("failed to encode engagement %s: %w", o.id, err)
			}
			n, err := q.UpdateDocumentData(ctx, db.UpdateDocumentDataParams{
				Data:       string(data),
				UpdatedAt:  stamp,
				Collection: o.collection,
				ID:         o.id,
			})
			if err != nil {
				return fmt.Errorf("failed to update engagement %s: %w", o.id, err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s/%s", ErrNotFound, o.collection, o.id)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteDB) readEngagement(ctx context.Context, q *db.Queries, id string) (*engagementDoc, error) {
	doc, err := q.GetDocument(ctx, db.GetDocumentParams{Collection: CollectionEngagements, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, CollectionEngagements, id)
		}
		return nil, fmt.Errorf("failed to read engagement %s: %w", id, err)
	}
	var d engagementDoc
	if err := json.Unmarshal([]byte(doc.Data), &d); err != nil {
		return nil, invalid(CollectionEngagements, id, err)
	}
	return &d, nil
}

// isUniqueViolation matches the constraint error text shared by go-sqlite3 and
// libsql, which do not share an error type.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
