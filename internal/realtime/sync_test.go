package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
)

type fakeBus struct {
	mu        sync.Mutex
	published []store.Change
	handler   func(store.Change)
	// release, when set, holds every publish until it is closed.
	release chan struct{}
}

func (b *fakeBus) PublishChange(ctx context.Context, c store.Change) error {
	if b.release != nil {
		select {
		case <-b.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, c)
	return nil
}

func (b *fakeBus) SubscribeChanges(_ context.Context, handler func(store.Change)) (func(), error) {
	b.handler = handler
	return func() {}, nil
}

func (b *fakeBus) Published() []store.Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]store.Change(nil), b.published...)
}

func TestSyncPublishesRecordChangesOnly(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryGateways().Gateways(), nil)
	bus := &fakeBus{}
	stop, err := NewSync(st, NewHub(nil), bus, nil).Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stop()

	if err := st.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}
	a, err := st.Assets.Create(ctx, models.Asset{Name: "Piano", Status: models.AssetAvailable})
	if err != nil {
		t.Fatal(err)
	}
	got := waitPublished(t, bus, 1)
	if len(got) != 1 || got[0].Op != gateway.OpCreate || got[0].ID != a.ID {
		t.Fatalf("published = %+v", got)
	}
}

func waitPublished(t *testing.T, bus *fakeBus, n int) []store.Change {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := bus.Published(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("published %d changes, want %d", len(bus.Published()), n)
	return nil
}

func TestSlowBusDoesNotDelayMutations(t *testing.T) {
	ctx := context.Background()
	st := store.New(store.NewMemoryGateways().Gateways(), nil)
	bus := &fakeBus{release: make(chan struct{})}
	stop, err := NewSync(st, nil, bus, nil).Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stop()
	if err := st.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := st.Assets.Create(ctx, models.Asset{Name: "Chair", Status: models.AssetAvailable}); err != nil {
			t.Fatal(err)
		}
	}
	if took := time.Since(start); took > 500*time.Millisecond {
		t.Fatalf("creates took %v while the bus was blocked", took)
	}
	if got := bus.Published(); len(got) != 0 {
		t.Fatalf("published before release: %+v", got)
	}
	close(bus.release)
	waitPublished(t, bus, 3)
}

func TestSyncRefetchesOnRemoteChange(t *testing.T) {
	ctx := context.Background()
	gws := store.NewMemoryGateways()
	st := store.New(gws.Gateways(), nil)
	bus := &fakeBus{}
	stop, err := NewSync(st, nil, bus, nil).Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer stop()
	if err := st.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}

	_ = gws.Members.Seed(models.Member{ID: "m1", Name: "Made elsewhere"})
	bus.handler(store.Change{Collection: store.CollectionMembers, Op: gateway.OpCreate, ID: "m1"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := st.Members.Get("m1"); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("store did not refetch after remote change")
}

func TestRefetchPicksUpChangeArrivingWhileDraining(t *testing.T) {
	ctx := context.Background()
	gws := store.NewMemoryGateways()
	st := store.New(gws.Gateways(), nil)
	if err := st.FetchAll(ctx); err != nil {
		t.Fatal(err)
	}
	s := NewSync(st, nil, nil, nil)

	var once sync.Once
	s.drained = func() {
		once.Do(func() {
			_ = gws.Members.Seed(models.Member{ID: "m2", Name: "Late arrival"})
			s.onRemoteChange(store.Change{Collection: store.CollectionMembers, Op: gateway.OpCreate, ID: "m2"})
		})
	}
	s.onRemoteChange(store.Change{Collection: store.CollectionMembers, Op: gateway.OpUpdate, ID: "m1"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := st.Members.Get("m2"); ok && !s.refetching.Load() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("change that arrived while the refetch loop was draining was never fetched")
}
