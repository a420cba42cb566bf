package users

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no user has the requested id.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidInput is returned when a store requires name and email and
	// one of them is empty.
	ErrInvalidInput = errors.New("name and email are required")
)

// User is a single user record.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store owns user records behind a uniform CRUD contract. Implementations
// must be safe for concurrent use.
type Store interface {
	// List returns all users. The result is never nil.
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, name, email string) (User, error)
	// Update replaces every field of the user with the given id.
	Update(ctx context.Context, id int64, name, email string) (User, error)
	Delete(ctx context.Context, id int64) error
	// Ping reports whether the store can serve requests.
	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open returns the store for the named backend. dbPath is only used by the
// sqlite backend.
func Open(backend, dbPath string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemStore(), nil
	case BackendSQLite:
		s, err := OpenSQLStore(dbPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
