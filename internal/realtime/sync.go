package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/store"
)

// Event names pushed to console clients.
const (
	EventChange = "change"
)

// OutboxSize bounds the changes waiting to be published on the bus. Changes beyond it are dropped.
const OutboxSize = 256

// ChangeBus carries store changes between server instances.
type ChangeBus interface {
	PublishChange(ctx context.Context, change store.Change) error
	SubscribeChanges(ctx context.Context, handler func(store.Change)) (cancel func(), err error)
}

// Sync wires a store to the hub and, optionally, to other instances.
//
// Local changes are pushed to websocket clients; record mutations are also queued for the bus and
// published by a single goroutine, so a slow bus never holds up a mutation. A change received from
// another instance triggers a full refetch, whose load event in turn reaches the local clients.
type Sync struct {
	store   *store.Store
	hub     *Hub
	bus     ChangeBus
	logger  *zap.Logger
	timeout time.Duration

	outbox chan store.Change

	refetching atomic.Bool
	pending    atomic.Bool
	// drained runs when a refetch loop finds nothing pending, before it releases refetching.
	drained func()
}

// NewSync creates a Sync. bus may be nil for single-instance deployments.
func NewSync(st *store.Store, hub *Hub, bus ChangeBus, logger *zap.Logger) *Sync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{
		store:   st,
		hub:     hub,
		bus:     bus,
		logger:  logger,
		timeout: 30 * time.Second,
		outbox:  make(chan store.Change, OutboxSize),
	}
}

// Start subscribes to the store and the bus. The returned func undoes both and waits for the
// publisher to exit.
func (s *Sync) Start(ctx context.Context) (stop func(), err error) {
	unsubscribe := s.store.Subscribe(s.onLocalChange)
	if s.bus == nil {
		return unsubscribe, nil
	}
	cancelSub, err := s.bus.SubscribeChanges(ctx, s.onRemoteChange)
	if err != nil {
		unsubscribe()
		return nil, err
	}
	pubCtx, cancelPub := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.publishLoop(pubCtx)
	}()
	return func() {
		unsubscribe()
		cancelSub()
		cancelPub()
		wg.Wait()
	}, nil
}

func (s *Sync) onLocalChange(c store.Change) {
	if s.hub != nil {
		s.hub.Broadcast(EventChange, c.Collection, c)
	}
	if s.bus == nil || !isRecordChange(c.Op) {
		return
	}
	select {
	case s.outbox <- c:
	default:
		s.logger.Warn("change outbox full, dropping change", zap.String("collection", c.Collection), zap.String("id", c.ID))
	}
}

func (s *Sync) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.outbox:
			if err := s.bus.PublishChange(ctx, c); err != nil {
				s.logger.Warn("publish change failed", zap.String("collection", c.Collection), zap.Error(err))
			}
		}
	}
}

// onRemoteChange refetches everything. Changes arriving while a refetch runs collapse into one
// follow-up refetch.
func (s *Sync) onRemoteChange(c store.Change) {
	s.logger.Debug("remote change", zap.String("collection", c.Collection), zap.String("op", string(c.Op)), zap.String("id", c.ID))
	if !s.store.Loaded() {
		return
	}
	s.pending.Store(true)
	if s.refetching.CompareAndSwap(false, true) {
		go s.refetchLoop()
	}
}

// refetchLoop runs while refetching is held. A change that lands after the last Swap but before
// refetching is released is picked up by the re-check at the bottom.
func (s *Sync) refetchLoop() {
	for {
		for s.pending.Swap(false) {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			if err := s.store.FetchAll(ctx); err != nil {
				s.logger.Warn("refetch after remote change failed", zap.Error(err))
			}
			cancel()
		}
		if s.drained != nil {
			s.drained()
		}
		s.refetching.Store(false)
		if !s.pending.Load() || !s.refetching.CompareAndSwap(false, true) {
			return
		}
	}
}

func isRecordChange(op gateway.Op) bool {
	switch op {
	case gateway.OpCreate, gateway.OpUpdate, gateway.OpDelete:
		return true
	}
	return false
}
