package store

import (
	"context"
	"time"

	"github.com/church-console/backend/internal/gateway"
)

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is the user-facing message raised by one mutation.
type Notification struct {
	Level      Level      `json:"level"`
	Message    string     `json:"message"`
	Collection string     `json:"collection"`
	Op         gateway.Op `json:"op"`
	At         time.Time  `json:"at"`
}

// Change describes a reconciled mutation of the cache.
type Change struct {
	Collection string     `json:"collection"`
	Op         gateway.Op `json:"op"`
	ID         string     `json:"id,omitempty"`
}

// Store-wide change ops; per-record changes use the gateway verbs.
const (
	OpLoad  gateway.Op = "load"
	OpReset gateway.Op = "reset"
)

// Subscribe registers fn to receive every Change after it is applied. fn runs on the goroutine
// that performed the change and must not block. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

type actorKey struct{}

// WithActor tags ctx with the user a mutation is made for. The mutation's notification is kept for
// that user only.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorOf returns the user ctx was tagged with, or "" for untagged (system) work.
func ActorOf(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// TakeNotification returns actor's pending notification and clears it. Other users' notifications
// are untouched.
func (s *Store) TakeNotification(actor string) (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notices[actor]
	if ok {
		delete(s.notices, actor)
	}
	return n, ok
}

// notifyLocked replaces actor's pending notification. Callers hold s.mu.
func (s *Store) notifyLocked(actor string, level Level, collection string, op gateway.Op, msg string) {
	s.notices[actor] = Notification{Level: level, Message: msg, Collection: collection, Op: op, At: s.now()}
}
