package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/church-console/backend/pkg/rowmap"
)

// Memory is a Gateway that keeps snake_case rows in process memory. It goes through the same
// schema mapping as SQL, so it doubles as the test backend and as DATABASE_DRIVER=memory.
type Memory[T any] struct {
	schema *rowmap.Schema[T]

	mu    sync.Mutex
	rows  []rowmap.Row
	fails map[Op]error
	calls map[Op]int

	// NewID and Now assign ids and creation timestamps on Create.
	NewID func() string
	Now   func() time.Time
}

// NewMemory creates an empty in-memory gateway for schema.
func NewMemory[T any](schema *rowmap.Schema[T]) *Memory[T] {
	return &Memory[T]{
		schema: schema,
		fails:  make(map[Op]error),
		calls:  make(map[Op]int),
		NewID:  uuid.NewString,
		Now:    time.Now,
	}
}

// Seed stores records as-is, keeping their ids and timestamps.
func (m *Memory[T]) Seed(records ...T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		row, err := m.schema.Map(r)
		if err != nil {
			return err
		}
		m.rows = append(m.rows, row)
	}
	return nil
}

// Fail makes every subsequent call of op fail with err. A nil err clears the failure. err is
// returned as-is when it already is an *Error, otherwise it is wrapped as a transport failure.
func (m *Memory[T]) Fail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fails, op)
		return
	}
	m.fails[op] = err
}

// Calls reports how many times op was invoked.
func (m *Memory[T]) Calls(op Op) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Len returns the number of stored rows.
func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *Memory[T]) GetAll(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpGetAll); err != nil {
		return nil, err
	}
	rows := make([]rowmap.Row, len(m.rows))
	copy(rows, m.rows)
	m.schema.Sort(rows)
	list := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := m.schema.Unmap(row)
		if err != nil {
			return nil, Rejected(m.schema.Table, OpGetAll, err)
		}
		list = append(list, v)
	}
	return list, nil
}

func (m *Memory[T]) Create(ctx context.Context, fields T) (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpCreate); err != nil {
		return zero, err
	}
	m.schema.Stamp(&fields, m.NewID(), m.Now().UTC().Format(time.RFC3339))
	row, err := m.schema.Map(fields)
	if err != nil {
		return zero, Rejected(m.schema.Table, OpCreate, err)
	}
	m.rows = append(m.rows, row)
	return m.schema.Unmap(row)
}

func (m *Memory[T]) Update(ctx context.Context, id string, patch rowmap.Patch[T]) (T, error) {
	var zero T
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpUpdate); err != nil {
		return zero, err
	}
	changes, err := m.schema.PatchRow(patch)
	if err != nil {
		return zero, Rejected(m.schema.Table, OpUpdate, err)
	}
	i := m.indexOf(id)
	if i < 0 {
		return zero, NotFound(m.schema.Table, OpUpdate)
	}
	updated := make(rowmap.Row, len(m.rows[i]))
	for k, v := range m.rows[i] {
		updated[k] = v
	}
	for k, v := range changes {
		updated[k] = v
	}
	m.rows[i] = updated
	return m.schema.Unmap(updated)
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, OpDelete); err != nil {
		return err
	}
	if i := m.indexOf(id); i >= 0 {
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
	}
	return nil
}

func (m *Memory[T]) enter(ctx context.Context, op Op) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return Transport(m.schema.Table, op, err)
	}
	err, ok := m.fails[op]
	if !ok {
		return nil
	}
	if _, isGateway := err.(*Error); isGateway {
		return err
	}
	return Transport(m.schema.Table, op, fmt.Errorf("injected: %w", err))
}

func (m *Memory[T]) indexOf(id string) int {
	for i, row := range m.rows {
		if fmt.Sprint(row[m.schema.Key]) == id {
			return i
		}
	}
	return -1
}
