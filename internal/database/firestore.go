package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreDB reads and writes the collections shared with the practice's
// web application.
type FirestoreDB struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreDB connects to the project. credentials is a path to a service
// account file; when empty the default application credentials are used.
func NewFirestoreDB(ctx context.Context, projectID, credentials string) (*Store, error) {
	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsFile(credentials))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return newStore(&FirestoreDB{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}), nil
}

func (f *FirestoreDB) close() error {
	return f.client.Close()
}

func (f *FirestoreDB) get(ctx context.Context, collection, id string) (rawDocument, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return snap, nil
}

func (f *FirestoreDB) list(ctx context.Context, collection string, w *where, fn func(id string, raw rawDocument) error) error {
	q := f.client.Collection(collection).Query
	if w != nil {
		q = q.Where(w.field, "==", w.value)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", collection, err)
		}
		if err := fn(snap.Ref.ID, snap); err != nil {
			return err
		}
	}
}

func (f *FirestoreDB) commit(ctx context.Context, b *Batch) error {
	now := f.now()
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// every read has to happen before the first write
		for _, e := range b.expects {
			snap, err := tx.Get(f.client.Collection(CollectionEngagements).Doc(e.engagementID))
			if err != nil {
				if status.Code(err) == codes.NotFound {
					return fmt.Errorf("%w: %s/%s", ErrNotFound, CollectionEngagements, e.engagementID)
				}
				return err
			}
			var d engagementDoc
			if err := snap.DataTo(&d); err != nil {
				return invalid(CollectionEngagements, e.engagementID, err)
			}
			if !d.hasBillStatus(e.billStatus) {
				return fmt.Errorf("%w: engagement %s has bill status %q, expected %q",
					ErrConflict, e.engagementID, d.BillStatus, e.billStatus)
			}
		}

		for _, o := range b.ops {
			ref := f.client.Collection(o.collection).Doc(o.id)
			var err error
			switch o.kind {
			case opCreate:
				err = tx.Create(ref, o.doc)
			case opSet:
				err = tx.Set(ref, o.doc)
			case opDelete:
				err = tx.Delete(ref)
			case opUpdateEngagement:
				err = tx.Update(ref, engagementUpdates(o.update, now))
			}
			if err != nil {
				return fmt.Errorf("failed to write %s/%s: %w", o.collection, o.id, err)
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

func engagementUpdates(u *EngagementBillingUpdate, now time.Time) []firestore.Update {
	updates := []firestore.Update{{Path: "updatedAt", Value: now}}
	if u.BillStatus == "" {
		updates = append(updates, firestore.Update{Path: "billStatus", Value: firestore.Delete})
	} else {
		updates = append(updates, firestore.Update{Path: "billStatus", Value: string(u.BillStatus)})
	}
	if u.ClearSubmissionDate {
		updates = append(updates, firestore.Update{Path: "billSubmissionDate", Value: firestore.Delete})
	} else if u.SubmissionDate != nil {
		updates = append(updates, firestore.Update{Path: "billSubmissionDate", Value: *u.SubmissionDate})
	}
	if u.Fees.Valid {
		updates = append(updates, firestore.Update{Path: "fees", Value: toFloat(u.Fees.Decimal)})
	}
	return updates
}
