// Package store persists the canteen document. Backends move raw bytes; the
// Adapter owns decoding, defaults and corruption recovery.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"canteen-system/internal/common/logger"
	"canteen-system/internal/domain"
)

// ErrNotFound is returned by a Backend when nothing has been stored yet.
var ErrNotFound = errors.New("store: document not found")

type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Quarantiner is implemented by backends that can keep a copy of bytes that
// failed to decode before they are overwritten.
type Quarantiner interface {
	Quarantine(ctx context.Context, data []byte) (string, error)
}

type Adapter struct {
	backend Backend
	lg      *logger.Logger
}

func New(b Backend, lg *logger.Logger) *Adapter {
	if lg == nil {
		lg = logger.NewNop()
	}
	return &Adapter{backend: b, lg: lg}
}

// Load always returns a usable document. A missing document is seeded with
// the defaults and written back. Undecodable bytes are discarded the same
// way. If the backend itself cannot be read the defaults are returned
// without touching storage.
func (a *Adapter) Load(ctx context.Context) domain.Document {
	data, err := a.backend.Read(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		a.lg.Info("document_seeded", nil)
		return a.reset(ctx)
	case err != nil:
		a.lg.Error("storage_unavailable", err, map[string]any{"op": "read"})
		return Default()
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		fields := map[string]any{"bytes": len(data)}
		if q, ok := a.backend.(Quarantiner); ok {
			if where, qerr := q.Quarantine(ctx, data); qerr == nil {
				fields["quarantined_to"] = where
			}
		}
		a.lg.Error("document_corrupt", err, fields)
		return a.reset(ctx)
	}
	if Migrate(&doc) {
		a.lg.Debug("document_backfilled", map[string]any{"schema_version": doc.SchemaVersion})
	}
	return doc
}

// Save overwrites the stored document with doc.
func (a *Adapter) Save(ctx context.Context, doc domain.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := a.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (a *Adapter) Close() error { return a.backend.Close() }

func (a *Adapter) reset(ctx context.Context) domain.Document {
	doc := Default()
	if err := a.Save(ctx, doc); err != nil {
		a.lg.Error("document_seed_failed", err, nil)
	}
	return doc
}
