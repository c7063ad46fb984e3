// Package gateway performs the four CRUD verbs per entity collection against the database and
// maps rows to view models through the collection's rowmap.Schema.
package gateway

import (
	"context"

	"github.com/church-console/backend/pkg/rowmap"
)

// Op names a gateway verb (also used as a metrics label).
type Op string

const (
	OpGetAll Op = "getAll"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Gateway is the remote data contract of one collection.
//
// GetAll returns the whole collection in its default order or fails; it never returns a partial
// list. Create assigns id and creation timestamp. Update applies a field-mask patch and returns the
// full row. Delete is idempotent: a missing row is not an error.
type Gateway[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, fields T) (T, error)
	Update(ctx context.Context, id string, patch rowmap.Patch[T]) (T, error)
	Delete(ctx context.Context, id string) error
}
