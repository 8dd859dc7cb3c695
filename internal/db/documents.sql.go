package db

import (
	"context"
)

const getDocument = `
SELECT collection, id, data, created_at, updated_at FROM documents
WHERE collection = ? AND id = ?
`

type GetDocumentParams struct {
	Collection string
	ID         string
}

func (q *Queries) GetDocument(ctx context.Context, arg GetDocumentParams) (Document, error) {
	row := q.db.QueryRowContext(ctx, q.rebind(getDocument), arg.Collection, arg.ID)
	var i Document
	err := row.Scan(
		&i.Collection,
		&i.ID,
		&i.Data,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listDocuments = `
SELECT collection, id, data, created_at, updated_at FROM documents
WHERE collection = ?
ORDER BY created_at, id
`

func (q *Queries) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listDocuments), collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		var i Document
		if err := rows.Scan(
			&i.Collection,
			&i.ID,
			&i.Data,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDocumentsByField = `
SELECT collection, id, data, created_at, updated_at FROM documents
WHERE collection = ? AND json_extract(data, ?) = ?
ORDER BY created_at, id
`

type ListDocumentsByFieldParams struct {
	Collection string
	// Path is a JSON path such as $.engagementId.
	Path  string
	Value string
}

func (q *Queries) ListDocumentsByField(ctx context.Context, arg ListDocumentsByFieldParams) ([]Document, error) {
	rows, err := q.db.QueryContext(ctx, q.rebind(listDocumentsByField), arg.Collection, arg.Path, arg.Value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Document
	for rows.Next() {
		var i Document
		if err := rows.Scan(
			&i.Collection,
			&i.ID,
			&i.Data,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertDocument = `
INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
`

type InsertDocumentParams struct {
	Collection string
	ID         string
	Data       string
	CreatedAt  string
	UpdatedAt  string
}

func (q *Queries) InsertDocument(ctx context.Context, arg InsertDocumentParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(insertDocument),
		arg.Collection,
		arg.ID,
		arg.Data,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const upsertDocument = `
INSERT INTO documents (collection, id, data, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
`

type UpsertDocumentParams struct {
	Collection string
	ID         string
	Data       string
	CreatedAt  string
	UpdatedAt  string
}

func (q *Queries) UpsertDocument(ctx context.Context, arg UpsertDocumentParams) error {
	_, err := q.db.ExecContext(ctx, q.rebind(upsertDocument),
		arg.Collection,
		arg.ID,
		arg.Data,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateDocumentData = `
UPDATE documents SET data = ?, updated_at = ?
WHERE collection = ? AND id = ?
`

type UpdateDocumentDataParams struct {
	Data       string
	UpdatedAt  string
	Collection string
	ID         string
}

func (q *Queries) UpdateDocumentData(ctx context.Context, arg UpdateDocumentDataParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(updateDocumentData),
		arg.Data,
		arg.UpdatedAt,
		arg.Collection,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteDocument = `
DELETE FROM documents WHERE collection = ? AND id = ?
`

type DeleteDocumentParams struct {
	Collection string
	ID         string
}

func (q *Queries) DeleteDocument(ctx context.Context, arg DeleteDocumentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, q.rebind(deleteDocument), arg.Collection, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
