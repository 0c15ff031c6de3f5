package docstore

import (
	"context"
	"errors"

	"github.com/squadline/squadline-backend/internal/metrics"
)

// Instrumented wraps a Store and records every read and write.
type Instrumented struct {
	next     Store
	recorder *metrics.Recorder
}

func NewInstrumented(next Store, recorder *metrics.Recorder) *Instrumented {
	return &Instrumented{next: next, recorder: recorder}
}

func (s *Instrumented) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := s.next.Add(ctx, collection, fields)
	s.recorder.ObserveWrite(CollectionName(collection), "add", err)
	return id, err
}

func (s *Instrumented) Get(ctx context.Context, collection, id string) (*Document, error) {
	doc, err := s.next.Get(ctx, collection, id)
	// A missing document is an answer, not a failure.
	if errors.Is(err, ErrNotFound) {
		s.recorder.ObserveRead(CollectionName(collection), "get", nil)
	} else {
		s.recorder.ObserveRead(CollectionName(collection), "get", err)
	}
	return doc, err
}

func (s *Instrumented) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	docs, err := s.next.Query(ctx, collection, q)
	s.recorder.ObserveRead(CollectionName(collection), "query", err)
	return docs, err
}

func (s *Instrumented) Update(ctx context.Context, collection, id string, updates []FieldUpdate) error {
	err := s.next.Update(ctx, collection, id, updates)
	s.recorder.ObserveWrite(CollectionName(collection), "update", err)
	return err
}

func (s *Instrumented) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	err := s.next.Set(ctx, collection, id, fields)
	s.recorder.ObserveWrite(CollectionName(collection), "set", err)
	return err
}

func (s *Instrumented) Delete(ctx context.Context, collection, id string) error {
	err := s.next.Delete(ctx, collection, id)
	s.recorder.ObserveWrite(CollectionName(collection), "delete", err)
	return err
}

func (s *Instrumented) Batch() Batch {
	return &instrumentedBatch{next: s.next.Batch(), recorder: s.recorder}
}

type instrumentedBatch struct {
	next     Batch
	recorder *metrics.Recorder
	label    string
}

func (b *instrumentedBatch) Create(collection string, fields map[string]any) {
	b.label = CollectionName(collection)
	b.next.Create(collection, fields)
}

func (b *instrumentedBatch) Update(collection, id string, updates []FieldUpdate) {
	b.label = CollectionName(collection)
	b.next.Update(collection, id, updates)
}

func (b *instrumentedBatch) Commit(ctx context.Context) ([]string, error) {
	ids, err := b.next.Commit(ctx)
	b.recorder.ObserveWrite(b.label, "batch", err)
	return ids, err
}
