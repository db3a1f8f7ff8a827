// Package repository provides one generic, schema-driven CRUD repository for
// flat SQL tables. A Repository maps records of type T onto a single table
// described by a schema.Schema. Every caller-supplied value is sent as a bound
// parameter; the only raw SQL a caller can inject is through Trusted filters.
package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/common/logs"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

// Option configures a Repository
type Option func(*settings)

type settings struct {
	dialect Dialect
	logger  *logs.Logger
}

// WithDialect selects the SQL dialect. The default is SQLite.
func WithDialect(d Dialect) Option {
	return func(s *settings) {
		s.dialect = d
	}
}

// WithLogger sets the logger used to trace executed statements at debug level
func WithLogger(l *logs.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// Repository provides CRUD operations for one table.
// It holds no mutable state and is safe for concurrent use when the
// Executor is.
type Repository[T any] struct {
	exec    Executor
	schema  schema.Schema
	codec   Codec[T]
	dialect Dialect
	logger  *logs.Logger

	columnList string
}

// New creates a repository for table s on exec
func New[T any](exec Executor, s schema.Schema, codec Codec[T], opts ...Option) (*Repository[T], error) {
	if exec == nil {
		return nil, errors.ErrDatabaseConnection.WithMessage("repository requires a database handle")
	}
	if codec == nil {
		return nil, errors.ErrInvalidRecord.WithMessagef("no codec for table %s", s.Table)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	cfg := settings{dialect: SQLite}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Repository[T]{
		exec:       exec,
		schema:     s,
		codec:      codec,
		dialect:    cfg.dialect,
		logger:     cfg.logger,
		columnList: strings.Join(s.ColumnNames(), ", "),
	}, nil
}

// NewRows creates a repository of dynamic rows for table s
func NewRows(exec Executor, s schema.Schema, opts ...Option) (*Repository[Row], error) {
	return New[Row](exec, s, NewRowCodec(s), opts...)
}

// Table returns the table name
func (r *Repository[T]) Table() string {
	return r.schema.Table
}

// Columns returns the column names in record order
func (r *Repository[T]) Columns() []string {
	return r.schema.ColumnNames()
}

// PrimaryKey returns the primary key column name
func (r *Repository[T]) PrimaryKey() string {
	return r.schema.PrimaryKey
}

// Schema returns the table schema
func (r *Repository[T]) Schema() schema.Schema {
	return r.schema
}

// Dialect returns the SQL dialect statements are rendered for
func (r *Repository[T]) Dialect() Dialect {
	return r.dialect
}

// Empty returns a record with every field at its zero value
func (r *Repository[T]) Empty() T {
	return r.codec.Empty()
}

// ============================================================================
// Reads
// ============================================================================

// Find fetches the record with primary key id. It returns ErrRecordNotFound
// when no row matches and ErrRecordAmbiguous when more than one does.
func (r *Repository[T]) Find(ctx context.Context, id int64) (T, error) {
	stmt, _ := r.SelectStatement(Filter{conds: []cond{{sql: r.schema.PrimaryKey + " = ?", args: []any{id}}}})
	stmt.SQL += " LIMIT 2"

	recs, err := r.query(ctx, stmt)
	if err != nil {
		return r.codec.Empty(), err
	}

	switch len(recs) {
	case 0:
		return r.codec.Empty(), errors.ErrRecordNotFound.WithMessagef("no %s row with %s = %d", r.schema.Table, r.schema.PrimaryKey, id)
	case 1:
		return recs[0], nil
	default:
		return r.codec.Empty(), errors.ErrRecordAmbiguous.WithMessagef("more than one %s row with %s = %d", r.schema.Table, r.schema.PrimaryKey, id)
	}
}

// All returns every row of the table in storage order
func (r *Repository[T]) All(ctx context.Context) ([]T, error) {
	return r.Where(ctx, Filter{})
}

// Where returns the rows matching f. An empty filter returns every row.
func (r *Repository[T]) Where(ctx context.Context, f Filter) ([]T, error) {
	stmt, err := r.SelectStatement(f)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, stmt)
}

// Count returns the number of rows matching f
func (r *Repository[T]) Count(ctx context.Context, f Filter) (int64, error) {
	where, args, err := f.resolve(r.schema)
	if err != nil {
		return 0, err
	}

	stmt := Statement{SQL: "SELECT COUNT(*) FROM " + r.schema.Table + whereClause(where), Args: args}
	r.trace(stmt)

	rows, err := r.exec.QueryContext(ctx, r.dialect.Rebind(stmt.SQL), stmt.Args...)
	if err != nil {
		return 0, r.failed("count", err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, r.failed("count", err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, r.failed("count", err)
	}
	return n, nil
}

func (r *Repository[T]) query(ctx context.Context, stmt Statement) ([]T, error) {
	r.trace(stmt)

	rows, err := r.exec.QueryContext(ctx, r.dialect.Rebind(stmt.SQL), stmt.Args...)
	if err != nil {
		return nil, r.failed("select from", err)
	}
	defer rows.Close()

	recs := []T{}
	for rows.Next() {
		rec, err := r.codec.Scan(rows.Scan)
		if err != nil {
			return nil, r.failed("scan", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.failed("select from", err)
	}

	return recs, nil
}

// ============================================================================
// Writes
// ============================================================================

// Insert stores rec as a new row and returns it with the storage-assigned key.
// The key field of rec is ignored.
func (r *Repository[T]) Insert(ctx context.Context, rec T) (T, error) {
	stmt, err := r.InsertStatement(rec)
	if err != nil {
		return r.codec.Empty(), err
	}

	var id int64
	if r.dialect.Returning {
		stmt.SQL += " RETURNING " + r.schema.PrimaryKey
		r.trace(stmt)

		rows, err := r.exec.QueryContext(ctx, r.dialect.Rebind(stmt.SQL), stmt.Args...)
		if err != nil {
			return r.codec.Empty(), r.failed("insert into", err)
		}
		defer rows.Close()

		if !rows.Next() {
			err := rows.Err()
			if err == nil {
				err = sql.ErrNoRows
			}
			return r.codec.Empty(), r.failed("insert into", err)
		}
		if err := rows.Scan(&id); err != nil {
			return r.codec.Empty(), r.failed("insert into", err)
		}
	} else {
		r.trace(stmt)
		res, err := r.exec.ExecContext(ctx, r.dialect.Rebind(stmt.SQL), stmt.Args...)
		if err != nil {
			return r.codec.Empty(), r.failed("insert into", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return r.codec.Empty(), r.failed("read inserted key of", err)
		}
	}

	return r.codec.WithKey(rec, id), nil
}

// InsertMany stores recs with one multi-row INSERT and returns the number of
// rows affected. Keys are not returned. An empty slice inserts nothing.
func (r *Repository[T]) InsertMany(ctx context.Context, recs []T) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	stmt, err := r.InsertManyStatement(recs)
	if err != nil {
		return 0, err
	}
	return r.exec1(ctx, stmt, "insert into")
}

// Update writes every non-key, mutable column of rec to the row with the same
// primary key and returns the number of rows affected
func (r *Repository[T]) Update(ctx context.Context, rec T) (int64, error) {
	stmt, err := r.UpdateStatement(rec)
	if err != nil {
		return 0, err
	}
	return r.exec1(ctx, stmt, "update")
}

// Delete removes the row with primary key id and returns the number of rows affected
func (r *Repository[T]) Delete(ctx context.Context, id int64) (int64, error) {
	return r.exec1(ctx, r.DeleteStatement(id), "delete from")
}

// DeleteWhere removes the rows matching f. An empty filter is rejected with
// ErrEmptyFilter rather than truncating the table.
func (r *Repository[T]) DeleteWhere(ctx context.Context, f Filter) (int64, error) {
	stmt, err := r.DeleteWhereStatement(f)
	if err != nil {
		return 0, err
	}
	return r.exec1(ctx, stmt, "delete from")
}

func (r *Repository[T]) exec1(ctx context.Context, stmt Statement, op string) (int64, error) {
	r.trace(stmt)

	res, err := r.exec.ExecContext(ctx, r.dialect.Rebind(stmt.SQL), stmt.Args...)
	if err != nil {
		return 0, r.failed(op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.failed(op, err)
	}
	return n, nil
}

// ============================================================================
// Statement builders
// ============================================================================

// SelectStatement builds the SELECT for rows matching f
func (r *Repository[T]) SelectStatement(f Filter) (Statement, error) {
	where, args, err := f.resolve(r.schema)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		SQL:  "SELECT " + r.columnList + " FROM " + r.schema.Table + whereClause(where),
		Args: args,
	}, nil
}

// InsertStatement builds the INSERT for rec, omitting the primary key column
func (r *Repository[T]) InsertStatement(rec T) (Statement, error) {
	values, err := r.codec.Values(rec)
	if err != nil {
		return Statement{}, err
	}

	cols := r.schema.InsertColumns()
	return Statement{
		SQL:  "INSERT INTO " + r.schema.Table + " (" + joinNames(cols) + ") VALUES " + tuple(len(cols)),
		Args: r.pick(values, cols),
	}, nil
}

// InsertManyStatement builds a single multi-row INSERT for recs
func (r *Repository[T]) InsertManyStatement(recs []T) (Statement, error) {
	if len(recs) == 0 {
		return Statement{}, errors.ErrInvalidRecord.WithMessage("no records to insert")
	}

	cols := r.schema.InsertColumns()
	row := tuple(len(cols))
	tuples := make([]string, 0, len(recs))
	args := make([]any, 0, len(recs)*len(cols))

	for i, rec := range recs {
		values, err := r.codec.Values(rec)
		if err != nil {
			return Statement{}, fmt.Errorf("record %d: %w", i, err)
		}
		tuples = append(tuples, row)
		args = append(args, r.pick(values, cols)...)
	}

	return Statement{
		SQL:  "INSERT INTO " + r.schema.Table + " (" + joinNames(cols) + ") VALUES " + strings.Join(tuples, ", "),
		Args: args,
	}, nil
}

// UpdateStatement builds the UPDATE of every mutable column of rec, keyed by its primary key
func (r *Repository[T]) UpdateStatement(rec T) (Statement, error) {
	cols := r.schema.UpdateColumns()
	if len(cols) == 0 {
		return Statement{}, errors.ErrInvalidRecord.WithMessagef("table %s has no updatable columns", r.schema.Table)
	}

	values, err := r.codec.Values(rec)
	if err != nil {
		return Statement{}, err
	}

	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c.Name + " = ?"
	}

	args := append(r.pick(values, cols), values[r.schema.KeyIndex()])
	return Statement{
		SQL:  "UPDATE " + r.schema.Table + " SET " + strings.Join(sets, ", ") + " WHERE " + r.schema.PrimaryKey + " = ?",
		Args: args,
	}, nil
}

// DeleteStatement builds the DELETE of the row with primary key id
func (r *Repository[T]) DeleteStatement(id int64) Statement {
	return Statement{
		SQL:  "DELETE FROM " + r.schema.Table + " WHERE " + r.schema.PrimaryKey + " = ?",
		Args: []any{id},
	}
}

// DeleteWhereStatement builds the DELETE of rows matching f. f must not be empty.
func (r *Repository[T]) DeleteWhereStatement(f Filter) (Statement, error) {
	where, args, err := f.resolve(r.schema)
	if err != nil {
		return Statement{}, err
	}
	if where == "" {
		return Statement{}, errors.ErrEmptyFilter.WithMessagef("refusing to delete every row of %s", r.schema.Table)
	}
	return Statement{
		SQL:  "DELETE FROM " + r.schema.Table + whereClause(where),
		Args: args,
	}, nil
}

// DumpStatement builds an INSERT for rec that includes the primary key,
// used when exporting rows
func (r *Repository[T]) DumpStatement(rec T) (Statement, error) {
	values, err := r.codec.Values(rec)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		SQL:  "INSERT INTO " + r.schema.Table + " (" + r.columnList + ") VALUES " + tuple(len(values)),
		Args: values,
	}, nil
}

// ============================================================================
// Helpers
// ============================================================================

// pick selects values for cols out of a full schema-ordered value slice
func (r *Repository[T]) pick(values []any, cols []schema.Column) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = values[r.schema.Index(c.Name)]
	}
	return out
}

func (r *Repository[T]) trace(stmt Statement) {
	if r.logger != nil {
		r.logger.Debug("Executing statement", "table", r.schema.Table, "sql", stmt.Literal())
	}
}

func (r *Repository[T]) failed(op string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	return errors.ErrQueryFailed.WithMessagef("failed to %s %s", op, r.schema.Table).WithCause(err)
}

func whereClause(predicate string) string {
	if predicate == "" {
		return ""
	}
	return " WHERE " + predicate
}

func joinNames(cols []schema.Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

func tuple(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
