package repository

import (
	"context"

	"github.com/bitswalk/rowkeep/src/common/logs"
)

// Sentinel wraps a Repository with the silent-failure contract older callers
// depend on: a miss or a failed statement yields the empty record or a zero
// count, never an error. Failures are only visible in the debug log.
//
// New code should use Repository directly.
type Sentinel[T any] struct {
	repo   *Repository[T]
	logger *logs.Logger
}

// NewSentinel wraps repo
func NewSentinel[T any](repo *Repository[T]) *Sentinel[T] {
	return &Sentinel[T]{repo: repo, logger: repo.logger}
}

// Repository returns the wrapped repository
func (s *Sentinel[T]) Repository() *Repository[T] {
	return s.repo
}

// Columns returns the column names in record order
func (s *Sentinel[T]) Columns() []string {
	return s.repo.Columns()
}

// PrimaryKey returns the primary key column name
func (s *Sentinel[T]) PrimaryKey() string {
	return s.repo.PrimaryKey()
}

// NewEntity returns the empty record
func (s *Sentinel[T]) NewEntity() T {
	return s.repo.Empty()
}

// FindOne returns the record with primary key id. Zero matches, more than one
// match and query failures all return the empty record.
func (s *Sentinel[T]) FindOne(ctx context.Context, id int64) T {
	rec, err := s.repo.Find(ctx, id)
	if err != nil {
		s.swallow("FindOne", err)
		return s.repo.Empty()
	}
	return rec
}

// All returns every row, or an empty slice on failure
func (s *Sentinel[T]) All(ctx context.Context) []T {
	recs, err := s.repo.All(ctx)
	if err != nil {
		s.swallow("All", err)
		return []T{}
	}
	return recs
}

// GetWhere returns the rows matching a raw predicate appended after WHERE.
// The predicate is passed through unescaped; see Trusted.
func (s *Sentinel[T]) GetWhere(ctx context.Context, predicate string) []T {
	recs, err := s.repo.Where(ctx, Trusted(predicate))
	if err != nil {
		s.swallow("GetWhere", err)
		return []T{}
	}
	return recs
}

// InsertOne inserts rec and returns it with the assigned key, or the empty
// record on failure
func (s *Sentinel[T]) InsertOne(ctx context.Context, rec T) T {
	out, err := s.repo.Insert(ctx, rec)
	if err != nil {
		s.swallow("InsertOne", err)
		return s.repo.Empty()
	}
	return out
}

// InsertMany inserts recs in one statement and returns the affected count, 0 on failure
func (s *Sentinel[T]) InsertMany(ctx context.Context, recs []T) int64 {
	n, err := s.repo.InsertMany(ctx, recs)
	if err != nil {
		s.swallow("InsertMany", err)
		return 0
	}
	return n
}

// UpdateOne updates the row keyed by rec and returns the affected count, 0 on failure
func (s *Sentinel[T]) UpdateOne(ctx context.Context, rec T) int64 {
	n, err := s.repo.Update(ctx, rec)
	if err != nil {
		s.swallow("UpdateOne", err)
		return 0
	}
	return n
}

// DeleteOne deletes by primary key and returns the affected count, 0 on failure
func (s *Sentinel[T]) DeleteOne(ctx context.Context, id int64) int64 {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.swallow("DeleteOne", err)
		return 0
	}
	return n
}

// DeleteWhere deletes the rows matching a raw predicate and returns the
// affected count, 0 on failure. An empty predicate deletes nothing.
func (s *Sentinel[T]) DeleteWhere(ctx context.Context, predicate string) int64 {
	n, err := s.repo.DeleteWhere(ctx, Trusted(predicate))
	if err != nil {
		s.swallow("DeleteWhere", err)
		return 0
	}
	return n
}

func (s *Sentinel[T]) swallow(op string, err error) {
	if s.logger != nil {
		s.logger.Debug("Repository operation failed", "table", s.repo.Table(), "op", op, "error", err)
	}
}

// Lookup returns the first record in recs whose primary key is id, or the
// empty record when none matches. No query is run.
func Lookup[T any](repo *Repository[T], recs []T, id int64) T {
	for _, rec := range recs {
		if key, err := repo.codec.Key(rec); err == nil && key == id {
			return rec
		}
	}
	return repo.Empty()
}
