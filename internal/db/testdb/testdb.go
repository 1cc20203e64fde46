// Package testdb opens throwaway SQLite databases with a controllable clock
// for package tests.
package testdb

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"agora/internal/db"

	"gorm.io/gorm"
)

// Clock is a settable store clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// New opens a migrated database file under t.TempDir(). A single connection
// serializes writers so concurrent tests never hit SQLITE_BUSY.
func New(t testing.TB, clock *Clock) *gorm.DB {
	t.Helper()
	return open(t, clock, "?_foreign_keys=on&_busy_timeout=5000", 1)
}

// NewConcurrent opens a WAL database with conns pooled connections, so
// statements from different goroutines reach SQLite at the same time.
func NewConcurrent(t testing.TB, clock *Clock, conns int) *gorm.DB {
	t.Helper()
	return open(t, clock, "?_foreign_keys=on&_busy_timeout=10000&_journal_mode=WAL&_txlock=immediate", conns)
}

func open(t testing.TB, clock *Clock, params string, conns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "agora.db") + params
	conn, err := db.Open(db.DriverSQLite, dsn, db.Options{
		NowFunc:      clock.Now,
		MaxOpenConns: conns,
		MaxIdleConns: conns,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
