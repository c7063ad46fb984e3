package gateway

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConn adapts a pgx pool to Conn.
type PostgresConn struct {
	pool *pgxpool.Pool
}

// NewPostgresConn wraps pool.
func NewPostgresConn(pool *pgxpool.Pool) *PostgresConn {
	return &PostgresConn{pool: pool}
}

func (c *PostgresConn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *PostgresConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *PostgresConn) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// Classify treats any server-side error response as a rejection; everything else is transport.
func (c *PostgresConn) Classify(err error) Kind {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception; 53: insufficient resources; 57: operator intervention.
		switch pgErr.Code[:2] {
		case "08", "53", "57":
			return KindTransport
		}
		return KindRejected
	}
	return KindTransport
}
