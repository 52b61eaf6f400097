// Package storage persists enriched contact records. Every backend is
// append-only: records are inserted once and never updated or deleted.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/onegateway/site-notify/internal/config"
	"github.com/onegateway/site-notify/internal/domain"
)

// Store is an append-only sink for enriched records.
type Store interface {
	Insert(ctx context.Context, rec domain.EnrichedRecord) error
	Close() error
}

// ErrDuplicate is returned when a record with the same ID already exists.
var ErrDuplicate = errors.New("record already exists")

// PersistenceError wraps any failed insert with the backend name.
type PersistenceError struct {
	Backend string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist to %s: %v", e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Backend: backend, Err: err}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func validIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// New creates the store selected by cfg.Type. Type "none" returns (nil, nil):
// the deployment does not persist.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "", config.StorageNone:
		return nil, nil
	case config.StorageLocal:
		return asStore(NewLocalStore(cfg.LocalPath))
	case config.StorageREST:
		return asStore(NewRESTStore(cfg, nil))
	case config.StoragePostgres:
		return asStore(OpenPostgres(cfg))
	case config.StorageRedis:
		return asStore(OpenRedis(ctx, cfg))
	case config.StorageDynamoDB:
		return asStore(OpenDynamo(ctx, cfg))
	case config.StorageS3:
		return asStore(OpenS3(ctx, cfg))
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// asStore keeps a failed constructor from yielding a non-nil Store holding
// a nil pointer.
func asStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
