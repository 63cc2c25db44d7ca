// Package store persists the serialized desktop grid.
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/hpungsan/perch/internal/db"
	"github.com/hpungsan/perch/internal/errors"
)

// DefaultKey is the key the desktop grid is stored under.
const DefaultKey = "desktop"

// Store loads and saves a serialized grid.
type Store interface {
	// Load returns the saved grid. ok is false when nothing has been saved.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save replaces the saved grid.
	Save(ctx context.Context, data []byte) error
}

// SQLite stores the grid as one row of the layouts table.
type SQLite struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// NewSQLite returns a Store writing under key. An empty key uses DefaultKey.
func NewSQLite(database *sql.DB, key string) *SQLite {
	if key == "" {
		key = DefaultKey
	}
	return &SQLite{db: database, key: key, now: time.Now}
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context) ([]byte, bool, error) {
	l, err := db.GetLayout(ctx, s.db, s.key)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(l.Value), true, nil
}

// Save implements Store.
func (s *SQLite) Save(ctx context.Context, data []byte) error {
	return db.PutLayout(ctx, s.db, s.key, string(data), s.now().Unix())
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory returns a Memory store, optionally pre-loaded with data.
func NewMemory(data []byte) *Memory {
	m := &Memory{}
	if data != nil {
		m.data = append([]byte(nil), data...)
	}
	return m
}

// Load implements Store.
func (m *Memory) Load(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
