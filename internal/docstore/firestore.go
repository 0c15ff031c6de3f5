package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is the production Store backed by Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, toFirestore(fields))
	if err != nil {
		return "", fmt.Errorf("firestore add %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (f *Firestore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, id, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (f *Firestore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := f.client.Collection(collection).Query
	for _, flt := range q.Filters {
		query = query.WherePath(fieldPath(flt.Path), "==", flt.Value)
	}
	for _, o := range q.OrderBy {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		query = query.OrderByPath(fieldPath(o.Path), dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore query %s: %w", collection, err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (f *Firestore) Update(ctx context.Context, collection, id string, updates []FieldUpdate) error {
	_, err := f.client.Collection(collection).Doc(id).Update(ctx, toUpdates(updates))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, toFirestore(fields)); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Delete(ctx context.Context, collection, id string) error {
	if _, err := f.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Firestore) Batch() Batch {
	return &firestoreBatch{client: f.client}
}

type firestoreBatch struct {
	client    *firestore.Client
	ops       []memoryOp
	committed bool
}

func (b *firestoreBatch) Create(collection string, fields map[string]any) {
	b.ops = append(b.ops, memoryOp{collection: collection, fields: fields})
}

func (b *firestoreBatch) Update(collection, id string, updates []FieldUpdate) {
	b.ops = append(b.ops, memoryOp{collection: collection, id: id, updates: updates})
}

// Commit runs the queued writes inside a transaction so either all of them
// land or none do.
func (b *firestoreBatch) Commit(ctx context.Context) ([]string, error) {
	if b.committed {
		return nil, ErrBatchClosed
	}
	if len(b.ops) == 0 {
		return nil, ErrEmptyBatch
	}

	var ids []string
	err := b.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ids = ids[:0]
		for _, op := range b.ops {
			col := b.client.Collection(op.collection)
			if op.fields != nil {
				ref := col.NewDoc()
				if err := tx.Create(ref, toFirestore(op.fields)); err != nil {
					return err
				}
				ids = append(ids, ref.ID)
				continue
			}
			if err := tx.Update(col.Doc(op.id), toUpdates(op.updates)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("firestore batch: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("firestore batch: %w", err)
	}
	b.committed = true
	return ids, nil
}

func toFirestore(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = toFirestoreValue(v)
	}
	return out
}

func toFirestoreValue(v any) any {
	switch {
	case IsServerTimestamp(v):
		return firestore.ServerTimestamp
	case IsDeleteField(v):
		return firestore.Delete
	}
	return v
}

func toUpdates(updates []FieldUpdate) []firestore.Update {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		out = append(out, firestore.Update{FieldPath: fieldPath(u.Path), Value: toFirestoreValue(u.Value)})
	}
	return out
}

// fieldPath splits a dotted path into segments so keys are never
// re-parsed by the client library.
func fieldPath(path string) firestore.FieldPath {
	return firestore.FieldPath(splitPath(path))
}
