package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record is missing from storage.
var ErrNotFound = errors.New("storage: record not found")

// StatusStore holds the last-known status of every student.
//
// Implementations must make each Put and All atomic with respect to each
// other. A Put for an existing student overwrites the previous record.
type StatusStore interface {
	Put(ctx context.Context, studentID string, record StatusRecord) error
	Get(ctx context.Context, studentID string) (*StatusRecord, error)
	All(ctx context.Context) (map[string]StatusRecord, error)
	Len(ctx context.Context) (int, error)
	Close() error
}
