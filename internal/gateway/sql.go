package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/church-console/backend/pkg/rowmap"
)

// Rows is the cursor subset shared by pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Conn executes statements for the SQL gateway. Implementations exist for pgxpool (Postgres) and
// database/sql (SQLite).
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	// Placeholder returns the bind marker of the n-th (1-based) argument.
	Placeholder(n int) string
	// Classify maps a driver error to a failure kind.
	Classify(err error) Kind
}

// SQL is a Gateway backed by a relational table.
type SQL[T any] struct {
	conn   Conn
	schema *rowmap.Schema[T]
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewSQL creates a SQL gateway for schema.
func NewSQL[T any](conn Conn, schema *rowmap.Schema[T], logger *zap.Logger) *SQL[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQL[T]{
		conn:   conn,
		schema: schema,
		logger: logger.With(zap.String("collection", schema.Table)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// GetAll lists the table in its default order.
func (g *SQL[T]) GetAll(ctx context.Context) ([]T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s", g.columnList(), quote(g.schema.Table))
	if o := g.schema.Order; o.Column != "" {
		q += " ORDER BY " + quote(o.Column)
		if o.Desc {
			q += " DESC"
		}
	}
	rows, err := g.conn.Query(ctx, q)
	if err != nil {
		return nil, g.fail(OpGetAll, err)
	}
	defer rows.Close()
	list := make([]T, 0)
	for rows.Next() {
		var v T
		if err := rows.Scan(g.schema.ScanTargets(&v)...); err != nil {
			return nil, g.fail(OpGetAll, err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, g.fail(OpGetAll, err)
	}
	return list, nil
}

// Create inserts fields with a fresh id and creation timestamp and returns the stored row.
func (g *SQL[T]) Create(ctx context.Context, fields T) (T, error) {
	var zero T
	g.schema.Stamp(&fields, g.newID(), g.now().UTC().Format(time.RFC3339))
	row, err := g.schema.Map(fields)
	if err != nil {
		return zero, Rejected(g.schema.Table, OpCreate, err)
	}
	cols := g.schema.Columns()
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = g.conn.Placeholder(i + 1)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		quote(g.schema.Table), g.columnList(), strings.Join(marks, ", "), g.columnList())
	created, found, err := g.queryOne(ctx, q, g.schema.Values(row, cols)...)
	if err != nil {
		return zero, g.fail(OpCreate, err)
	}
	if !found {
		return zero, Rejected(g.schema.Table, OpCreate, fmt.Errorf("no row returned"))
	}
	return created, nil
}

// Update writes the patched columns of the row with the given id.
func (g *SQL[T]) Update(ctx context.Context, id string, patch rowmap.Patch[T]) (T, error) {
	var zero T
	row, err := g.schema.PatchRow(patch)
	if err != nil {
		return zero, Rejected(g.schema.Table, OpUpdate, err)
	}
	var (
		sets []string
		cols []string
	)
	for _, c := range g.schema.Columns() {
		if _, ok := row[c]; ok {
			cols = append(cols, c)
			sets = append(sets, quote(c)+" = "+g.conn.Placeholder(len(cols)))
		}
	}
	args := append(g.schema.Values(row, cols), id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
		quote(g.schema.Table), strings.Join(sets, ", "), quote(g.schema.Key), g.conn.Placeholder(len(args)), g.columnList())
	updated, found, err := g.queryOne(ctx, q, args...)
	if err != nil {
		return zero, g.fail(OpUpdate, err)
	}
	if !found {
		return zero, NotFound(g.schema.Table, OpUpdate)
	}
	return updated, nil
}

// Delete removes the row with the given id. Deleting a missing row succeeds.
func (g *SQL[T]) Delete(ctx context.Context, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", quote(g.schema.Table), quote(g.schema.Key), g.conn.Placeholder(1))
	n, err := g.conn.Exec(ctx, q, id)
	if err != nil {
		return g.fail(OpDelete, err)
	}
	if n == 0 {
		g.logger.Debug("delete matched no row", zap.String("id", id))
	}
	return nil
}

func (g *SQL[T]) queryOne(ctx context.Context, q string, args ...any) (T, bool, error) {
	var v T
	rows, err := g.conn.Query(ctx, q, args...)
	if err != nil {
		return v, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return v, false, rows.Err()
	}
	if err := rows.Scan(g.schema.ScanTargets(&v)...); err != nil {
		return v, false, err
	}
	return v, true, rows.Err()
}

func (g *SQL[T]) fail(op Op, err error) error {
	ge := classifyWith(g.schema.Table, op, err, g.conn.Classify(err))
	g.logger.Warn("gateway call failed", zap.String("op", string(op)), zap.String("kind", ge.Kind.String()), zap.Error(err))
	return ge
}

func (g *SQL[T]) columnList() string {
	cols := g.schema.Columns()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
