// Package dataset loads the news and weekly tables once per process and serves them
// read-only to every consumer.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"newspulse/internal/dataset/sourceobs"
	"newspulse/internal/derive"
	"newspulse/internal/interfaces"
	"newspulse/internal/logger"
	"newspulse/internal/store"
	"newspulse/internal/types"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMissingTable  = errors.New("missing required table")
)

// LoadError is the fatal, session-wide failure to produce the tables.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return "critical data error: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Tables holds the raw news rows and the delta-enriched weekly rows. Treat as read-only.
type Tables struct {
	News   []types.NewsRecord
	Weekly []types.WeeklyStat
}

// Sectors returns the distinct weekly objects in ascending order.
func (t *Tables) Sectors() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range t.Weekly {
		if !seen[w.Object] {
			seen[w.Object] = true
			out = append(out, w.Object)
		}
	}
	sort.Strings(out)
	return out
}

// HasSector reports whether object has any weekly rows.
func (t *Tables) HasSector(object string) bool {
	for _, w := range t.Weekly {
		if w.Object == object {
			return true
		}
	}
	return false
}

// Store is the single-initialization data-access object. Construct it once at
// startup and pass it to consumers.
type Store struct {
	src    interfaces.Source
	once   sync.Once
	tables *Tables
	err    error
}

// NewStore creates a store over src. Nothing is read until Load.
func NewStore(src interfaces.Source) *Store {
	return &Store{src: src}
}

// NewStoreFromConfig picks the source named by cfg.Data.Source.
func NewStoreFromConfig(cfg *store.Config) (*Store, error) {
	switch cfg.Data.Source {
	case "SQLITE":
		src, err := OpenSQLite(cfg.Data.SQLiteDSN, cfg.Data.NewsTable, cfg.Data.WeeklyTable)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		return NewStore(sourceobs.Wrap(src, "SQLITE")), nil
	default:
		return NewStore(sourceobs.Wrap(NewCSVSource(cfg.Data.NewsPath, cfg.Data.WeeklyPath), "CSV")), nil
	}
}

// Load reads both tables and derives the deltas exactly once. Every later call, including
// concurrent first calls, gets the same *Tables or the same *LoadError.
func (s *Store) Load(ctx context.Context) (*Tables, error) {
	s.once.Do(func() {
		s.tables, s.err = s.load(ctx)
	})
	return s.tables, s.err
}

func (s *Store) load(ctx context.Context) (*Tables, error) {
	op := logger.StartOperation(ctx, "dataset.Load")
	ctx = op.Context()

	news, err := s.src.News(ctx)
	if err != nil {
		lerr := &LoadError{Err: fmt.Errorf("news: %w", err)}
		op.EndWithError(lerr)
		return nil, lerr
	}
	weekly, err := s.src.Weekly(ctx)
	if err != nil {
		lerr := &LoadError{Err: fmt.Errorf("weekly: %w", err)}
		op.EndWithError(lerr)
		return nil, lerr
	}

	t := &Tables{News: news, Weekly: derive.Deltas(weekly)}
	op.End("news_rows", len(t.News), "weekly_rows", len(t.Weekly))
	logger.Info(ctx, "Tables loaded", "news_rows", len(t.News), "weekly_rows", len(t.Weekly), "sectors", len(t.Sectors()))
	return t, nil
}
