package store

import (
	"context"
	"time"

	"github.com/hrygo/taskgpt/ai/cache"
	"github.com/hrygo/taskgpt/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// userCache keeps username lookups warm across turns of the same session.
	userCache *cache.LRUCache[string, *User]

	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps and date filters.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile, opts ...Option) *Store {
	s := &Store{
		driver:    driver,
		profile:   profile,
		userCache: cache.NewLRUCache[string, *User](256, 10*time.Minute),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	s.userCache.Clear()
	return s.driver.Close()
}
