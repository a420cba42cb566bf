package users

import (
	"context"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// DefaultSeed is the fixture data a new MemStore starts with.
var DefaultSeed = []User{
	{ID: 1, Name: "John Doe", Email: "john@example.com"},
	{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
}

// MemStore keeps users in an ordered slice in process memory. Contents are
// lost when the process exits. All methods are safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
}

// MemOption configures a MemStore.
type MemOption func(*MemStore)

// WithSeed replaces the default fixtures with the given records.
func WithSeed(seed ...User) MemOption {
	return func(m *MemStore) {
		m.users = append([]User(nil), seed...)
	}
}

// NewMemStore returns a MemStore seeded with DefaultSeed unless WithSeed
// says otherwise.
func NewMemStore(opts ...MemOption) *MemStore {
	m := &MemStore{users: append([]User(nil), DefaultSeed...)}
	for _, opt := range opts {
		opt(m)
	}
	// Ids come from a counter that only moves forward, so a create after a
	// delete never reuses an id still held by another record.
	for _, u := range m.users {
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

// List returns a copy of all users in insertion order.
func (m *MemStore) List(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]User, len(m.users))
	copy(out, m.users)
	return out, nil
}

// Get returns the user with the given id.
func (m *MemStore) Get(_ context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return User{}, ErrNotFound
	}
	return m.users[i], nil
}

// Create appends a new user. Name and email are stored as given.
func (m *MemStore) Create(_ context.Context, name, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	u := User{ID: m.nextID, Name: name, Email: email}
	m.users = append(m.users, u)
	return u, nil
}

// Update replaces the user with the given id, keeping its position.
func (m *MemStore) Update(_ context.Context, id int64, name, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return User{}, ErrNotFound
	}
	m.users[i] = User{ID: id, Name: name, Email: email}
	return m.users[i], nil
}

// Delete removes the user with the given id. Other ids are unchanged.
func (m *MemStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	m.users = append(m.users[:i], m.users[i+1:]...)
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// indexOf must be called with m.mu held.
func (m *MemStore) indexOf(id int64) int {
	for i, u := range m.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
