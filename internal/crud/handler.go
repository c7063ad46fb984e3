// Package crud serves the list/get/create/update/delete endpoints shared by every collection.
package crud

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/httperr"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
	"github.com/church-console/backend/pkg/rowmap"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrEmptyPatch is returned for an update naming no writable field.
var ErrEmptyPatch = errors.New("no fields to update")

// Decoder binds a create request into a record.
type Decoder[T any] func(c *gin.Context) (T, error)

// Validator checks a record. With field names it checks only those view fields.
type Validator[T any] func(rec T, fields ...string) error

// Handler handles the collection endpoints of one entity.
type Handler[T any] struct {
	col      *store.Collection[T]
	schema   *rowmap.Schema[T]
	decode   Decoder[T]
	validate Validator[T]
	logger   *zap.Logger

	// BeforeUpdate may extend a decoded patch, e.g. with audit fields.
	BeforeUpdate func(c *gin.Context, patch *rowmap.Patch[T])
	// OnDeleted runs after a confirmed delete with the record as it was cached, if it was.
	OnDeleted func(c *gin.Context, deleted T)
}

// New creates a collection handler. validate may be nil.
func New[T any](col *store.Collection[T], schema *rowmap.Schema[T], decode Decoder[T], validate Validator[T], logger *zap.Logger) *Handler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler[T]{col: col, schema: schema, decode: decode, validate: validate, logger: logger}
}

// Collection returns the underlying store collection.
func (h *Handler[T]) Collection() *store.Collection[T] { return h.col }

// Register mounts GET/POST on rg and GET/PATCH/DELETE on rg/:id. write guards the mutating routes.
func (h *Handler[T]) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", Guarded(write, h.Create)...)
	rg.PATCH("/:id", Guarded(write, h.Update)...)
	rg.DELETE("/:id", Guarded(write, h.Delete)...)
}

// Guarded returns a fresh handler chain of write followed by fn.
func Guarded(write []gin.HandlerFunc, fn gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc(nil), write...), fn)
}

// List handles GET /{collection}.
func (h *Handler[T]) List(c *gin.Context) {
	response.OK(c, h.col.All())
}

// Get handles GET /{collection}/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	rec, ok := h.col.Get(c.Param("id"))
	if !ok {
		response.NotFound(c, h.col.Name()+": record not found")
		return
	}
	response.OK(c, rec)
}

// Create handles POST /{collection}.
func (h *Handler[T]) Create(c *gin.Context) {
	rec, err := h.decode(c)
	if err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.Validate(rec); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.CreateRecord(c, rec)
}

// CreateRecord persists an already validated record and writes the response.
func (h *Handler[T]) CreateRecord(c *gin.Context, rec T) {
	created, err := h.col.Create(c.Request.Context(), rec)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.Created(c, created)
}

// Update handles PATCH /{collection}/:id. The JSON keys of the body form the field mask.
func (h *Handler[T]) Update(c *gin.Context) {
	id := c.Param("id")
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes))
	if err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	patch, err := DecodePatch(body, h.schema)
	if err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if h.BeforeUpdate != nil {
		h.BeforeUpdate(c, &patch)
	}
	if err := h.validatePatch(id, patch); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.col.Update(c.Request.Context(), id, patch)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /{collection}/:id.
func (h *Handler[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	prev, cached := h.col.Get(id)
	if err := h.col.Delete(c.Request.Context(), id); err != nil {
		httperr.Write(c, err)
		return
	}
	if cached && h.OnDeleted != nil {
		h.OnDeleted(c, prev)
	}
	response.OK(c, gin.H{"id": id})
}

// Validate checks a complete record.
func (h *Handler[T]) Validate(rec T) error {
	if h.validate == nil {
		return nil
	}
	return h.validate(rec)
}

// validatePatch checks the cached record as patched. A record missing from the cache is checked on
// the patched fields alone.
func (h *Handler[T]) validatePatch(id string, patch rowmap.Patch[T]) error {
	cur, ok := h.col.Get(id)
	if !ok {
		if h.validate == nil {
			return nil
		}
		return h.validate(patch.Value, patch.Fields...)
	}
	if err := h.schema.Apply(&cur, patch); err != nil {
		return err
	}
	return h.Validate(cur)
}

// DecodePatch turns a JSON object into a patch. The id and creation time are dropped from the mask;
// keys the schema does not know are kept so the gateway rejects them.
func DecodePatch[T any](body []byte, schema *rowmap.Schema[T]) (rowmap.Patch[T], error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return rowmap.Patch[T]{}, fmt.Errorf("body must be a JSON object: %w", err)
	}
	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return rowmap.Patch[T]{}, err
	}
	readOnly := make(map[string]bool)
	for _, f := range schema.Fields {
		if f.ReadOnly || f.Column == schema.Key || f.Column == schema.Created {
			readOnly[f.View] = true
		}
	}
	fields := make([]string, 0, len(keys))
	for k := range keys {
		if !readOnly[k] {
			fields = append(fields, k)
		}
	}
	if len(fields) == 0 {
		return rowmap.Patch[T]{}, ErrEmptyPatch
	}
	sort.Strings(fields)
	return rowmap.NewPatch(value, fields...), nil
}

// BindJSON is a Decoder for forms with binding tags: it binds the form and converts it.
func BindJSON[F any, T any](convert func(F) T) Decoder[T] {
	return func(c *gin.Context) (T, error) {
		var form F
		if err := c.ShouldBindJSON(&form); err != nil {
			var zero T
			return zero, err
		}
		return convert(form), nil
	}
}
