package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Document guards one named JSON document. All reads and read-modify-write
// cycles on it are serialised, so concurrent updates cannot lose each other.
type Document[T any] struct {
	name    string
	backend Backend
	log     *zap.Logger

	mu sync.Mutex
}

func NewDocument[T any](backend Backend, name string, log *zap.Logger) *Document[T] {
	return &Document[T]{
		name:    name,
		backend: backend,
		log:     log.With(zap.String("document", name)),
	}
}

func (d *Document[T]) Name() string { return d.name }

// Read returns the stored document. A missing, unreadable or malformed
// document reads as the zero value.
func (d *Document[T]) Read(ctx context.Context) T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// Update loads the document, applies fn and saves the result. When fn
// returns an error nothing is written and that error is returned as-is.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc := d.load(ctx)
	if err := fn(&doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.name, err)
	}
	if err := d.backend.Save(ctx, d.name, data); err != nil {
		return fmt.Errorf("save %s: %w", d.name, err)
	}
	return nil
}

func (d *Document[T]) load(ctx context.Context) T {
	var doc T
	data, err := d.backend.Load(ctx, d.name)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			d.log.Debug("document not found, starting empty")
		} else {
			d.log.Warn("document unreadable, treating as empty", zap.Error(err))
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		d.log.Warn("document malformed, treating as empty", zap.Error(err))
		var empty T
		return empty
	}
	return doc
}
