package catalog

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Store holds the catalog currently in use. Readers call Current; Reload
// replaces the whole catalog in one atomic swap.
type Store struct {
	path    string
	current atomic.Pointer[Catalog]
	logger  *slog.Logger
}

// NewStore creates a store that reloads from path. It starts out empty.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}
	s.current.Store(New(nil))
	return s
}

// Path returns the file the store loads from.
func (s *Store) Path() string {
	return s.path
}

// Current returns the active catalog. It is never nil.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Set replaces the active catalog.
func (s *Store) Set(c *Catalog) {
	if c == nil {
		c = New(nil)
	}
	s.current.Store(c)
}

// Reload loads the catalog file again and swaps it in. On failure the
// previous catalog stays active.
func (s *Store) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := Load(s.path)
	if err != nil {
		s.logger.Error("catalog reload failed", "path", s.path, "error", err)
		return err
	}

	old := s.current.Swap(c)
	s.logger.Info("catalog loaded",
		"path", s.path,
		"entries", c.Len(),
		"previous_entries", old.Len(),
	)
	return nil
}
