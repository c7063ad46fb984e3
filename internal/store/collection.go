package store

import (
	"context"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/pkg/rowmap"
)

// Collection is the cached list of one entity type plus its CRUD operations.
type Collection[T any] struct {
	store  *Store
	name   string
	noun   string
	schema *rowmap.Schema[T]
	gw     gateway.Gateway[T]
	items  []T // guarded by store.mu
}

func newCollection[T any](s *Store, name, noun string, schema *rowmap.Schema[T], gw gateway.Gateway[T]) *Collection[T] {
	return &Collection[T]{store: s, name: name, noun: noun, schema: schema, gw: gw}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// All returns a copy of the cached records in their current order. It is never nil.
func (c *Collection[T]) All() []T {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return clone(c.items)
}

// Len returns the number of cached records.
func (c *Collection[T]) Len() int {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return len(c.items)
}

// Get returns the cached record with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Create persists fields and, once the gateway confirms, appends the returned record.
func (c *Collection[T]) Create(ctx context.Context, fields T) (T, error) {
	created, err := c.gw.Create(ctx, fields)
	if err != nil {
		c.store.failed(ctx, c.name, gateway.OpCreate, "Failed to add "+lower(c.noun), err)
		var zero T
		return zero, err
	}
	c.store.mu.Lock()
	c.items = append(c.items, created)
	c.store.notifyLocked(ActorOf(ctx), LevelSuccess, c.name, gateway.OpCreate, c.noun+" added successfully")
	c.store.mu.Unlock()
	c.store.publish(Change{Collection: c.name, Op: gateway.OpCreate, ID: c.schema.ID(&created)})
	return created, nil
}

// Update persists patch and replaces the cached record with the gateway's result.
func (c *Collection[T]) Update(ctx context.Context, id string, patch rowmap.Patch[T]) (T, error) {
	return c.update(ctx, id, patch, c.noun+" updated successfully", "Failed to update "+lower(c.noun))
}

func (c *Collection[T]) update(ctx context.Context, id string, patch rowmap.Patch[T], okMsg, failMsg string) (T, error) {
	updated, err := c.gw.Update(ctx, id, patch)
	if err != nil {
		c.store.failed(ctx, c.name, gateway.OpUpdate, failMsg, err)
		var zero T
		return zero, err
	}
	c.store.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.items[i] = updated
	}
	c.store.notifyLocked(ActorOf(ctx), LevelSuccess, c.name, gateway.OpUpdate, okMsg)
	c.store.mu.Unlock()
	c.store.publish(Change{Collection: c.name, Op: gateway.OpUpdate, ID: id})
	return updated, nil
}

// Delete removes the record remotely and then from the cache.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.gw.Delete(ctx, id); err != nil {
		c.store.failed(ctx, c.name, gateway.OpDelete, "Failed to delete "+lower(c.noun), err)
		return err
	}
	c.store.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.store.notifyLocked(ActorOf(ctx), LevelSuccess, c.name, gateway.OpDelete, c.noun+" deleted successfully")
	c.store.mu.Unlock()
	c.store.publish(Change{Collection: c.name, Op: gateway.OpDelete, ID: id})
	return nil
}

// reject records a failure detected before reaching the gateway.
func (c *Collection[T]) reject(ctx context.Context, op gateway.Op, failMsg string, err error) error {
	c.store.failed(ctx, c.name, op, failMsg, err)
	return err
}

func (c *Collection[T]) indexLocked(id string) int {
	for i := range c.items {
		if c.schema.ID(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

func clone[T any](items []T) []T {
	return append(make([]T, 0, len(items)), items...)
}

func lower(noun string) string {
	if noun == "" {
		return noun
	}
	b := []byte(noun)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
