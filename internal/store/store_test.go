package store

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/pkg/rowmap"
)

func newTestStore(t *testing.T) (*Store, *MemoryGateways) {
	t.Helper()
	gws := NewMemoryGateways()
	s := New(gws.Gateways(), nil, WithClock(func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }))
	return s, gws
}

func mustFetch(t *testing.T, s *Store) {
	t.Helper()
	if err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
}

func TestFetchAllLoadsEveryCollection(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Members.Seed(models.Member{ID: "m1", Status: models.MemberActive})
	_ = gws.Assets.Seed(models.Asset{ID: "a1", Status: models.AssetAvailable})
	_ = gws.Financial.Seed(models.FinancialRecord{ID: "r1", Type: models.TypeIncome, Amount: 1})
	_ = gws.Events.Seed(models.Event{ID: "e1"})
	_ = gws.Education.Seed(models.EducationEvent{ID: "c1"})
	_ = gws.Media.Seed(models.MediaFile{ID: "f1", Type: models.MediaImage})
	_ = gws.Groups.Seed(models.Group{ID: "g1"})

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })
	mustFetch(t, s)

	if !s.Loaded() || s.IsLoading() || s.Err() != nil {
		t.Fatalf("status after fetch: %+v", s.Status())
	}
	for name, n := range s.Status().Counts {
		if n != 1 {
			t.Errorf("%s: %d records, want 1", name, n)
		}
	}
	if len(changes) != 1 || changes[0].Op != OpLoad {
		t.Fatalf("changes = %+v", changes)
	}
}

func TestFetchAllIsAtomic(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Members.Seed(models.Member{ID: "m1"})
	_ = gws.Assets.Seed(models.Asset{ID: "a1"})
	mustFetch(t, s)
	before := s.Snapshot()

	_ = gws.Members.Seed(models.Member{ID: "m2"})
	gws.Media.Fail(gateway.OpGetAll, errors.New("timeout"))
	gws.Groups.Fail(gateway.OpGetAll, gateway.Rejected("groups", gateway.OpGetAll, errors.New("permission denied")))

	err := s.FetchAll(context.Background())
	var pf *PartialFetchFailure
	if !errors.As(err, &pf) {
		t.Fatalf("FetchAll error = %v, want *PartialFetchFailure", err)
	}
	if got := pf.Collections(); !reflect.DeepEqual(got, []string{CollectionGroups, CollectionMedia}) {
		t.Fatalf("failed collections = %v", got)
	}
	if !errors.Is(err, gateway.ErrTransport) || !errors.Is(err, gateway.ErrRejected) {
		t.Fatalf("failure does not wrap both causes: %v", err)
	}
	if !reflect.DeepEqual(s.Snapshot(), before) {
		t.Fatal("collections changed after a failed fetch")
	}
	if s.Err() != err || s.IsLoading() {
		t.Fatalf("status after failed fetch: err=%v loading=%v", s.Err(), s.IsLoading())
	}
}

func TestCreateIsNotOptimistic(t *testing.T) {
	s, gws := newTestStore(t)
	mustFetch(t, s)
	gws.Members.Fail(gateway.OpCreate, gateway.Rejected("members", gateway.OpCreate, errors.New("duplicate email")))

	if _, err := s.Members.Create(context.Background(), models.Member{Name: "Ana"}); !errors.Is(err, gateway.ErrRejected) {
		t.Fatalf("Create error = %v", err)
	}
	if s.Members.Len() != 0 {
		t.Fatalf("Len() = %d after rejected create", s.Members.Len())
	}
	n, ok := s.TakeNotification("")
	if !ok || n.Level != LevelError || n.Collection != CollectionMembers || n.Op != gateway.OpCreate {
		t.Fatalf("notification = %+v, %v", n, ok)
	}
	if _, ok := s.TakeNotification(""); ok {
		t.Fatal("more than one notification for one failure")
	}
	if !errors.Is(s.Err(), gateway.ErrRejected) {
		t.Fatalf("Err() = %v", s.Err())
	}
}

func TestCreateFinancialRecordScenario(t *testing.T) {
	s, gws := newTestStore(t)
	gws.Financial.NewID = func() string { return "r1" }
	mustFetch(t, s)

	rec, err := s.Financial.Create(context.Background(), models.FinancialRecord{
		Type: models.TypeIncome, Amount: 50, Category: "Tithes", Description: "Sunday offering", Date: "2024-05-05",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "r1" || rec.Amount != 50 {
		t.Fatalf("Create() = %+v", rec)
	}
	all := s.Financial.All()
	if len(all) != 1 || all[0].ID != "r1" || all[0].Amount != 50 {
		t.Fatalf("financial records = %+v", all)
	}
	n, ok := s.TakeNotification("")
	if !ok || n.Level != LevelSuccess || n.Message != "Transaction added successfully" {
		t.Fatalf("notification = %+v", n)
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Assets.Seed(
		models.Asset{ID: "a1", Name: "Piano", Status: models.AssetAvailable, CreatedAt: "2024-01-02"},
		models.Asset{ID: "a2", Name: "Chairs", Status: models.AssetAvailable, CreatedAt: "2024-01-01"},
	)
	mustFetch(t, s)

	got, err := s.Assets.Update(context.Background(), "a2", rowmap.NewPatch(models.Asset{Status: models.AssetMaintenance}, "status"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != models.AssetMaintenance || got.Name != "Chairs" {
		t.Fatalf("Update() = %+v", got)
	}
	all := s.Assets.All()
	if len(all) != 2 || all[0].ID != "a1" || all[1].Status != models.AssetMaintenance {
		t.Fatalf("assets after update = %+v", all)
	}
}

func TestUpdateFailureLeavesCache(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Events.Seed(models.Event{ID: "e1", Title: "Service"})
	mustFetch(t, s)

	_, err := s.Events.Update(context.Background(), "nope", rowmap.NewPatch(models.Event{Title: "x"}, "title"))
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("Update missing: %v", err)
	}
	if e, _ := s.Events.Get("e1"); e.Title != "Service" {
		t.Fatalf("cached event changed: %+v", e)
	}
	if n, _ := s.TakeNotification(""); n.Level != LevelError {
		t.Fatalf("notification = %+v", n)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, gws := newTestStore(t)
	_ = gws.Media.Seed(models.MediaFile{ID: "f1"}, models.MediaFile{ID: "f2"})
	mustFetch(t, s)

	for i := 0; i < 2; i++ {
		if err := s.Media.Delete(ctx, "f1"); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	all := s.Media.All()
	if len(all) != 1 || all[0].ID != "f2" {
		t.Fatalf("media after delete = %+v", all)
	}

	gws.Media.Fail(gateway.OpDelete, errors.New("connection refused"))
	if err := s.Media.Delete(ctx, "f2"); !errors.Is(err, gateway.ErrTransport) {
		t.Fatalf("Delete with transport failure: %v", err)
	}
	if s.Media.Len() != 1 {
		t.Fatal("failed delete removed the record")
	}
}

func TestSecondDeleteAgainstMissingRecord(t *testing.T) {
	ctx := context.Background()
	s, gws := newTestStore(t)
	_ = gws.Media.Seed(models.MediaFile{ID: "f1"}, models.MediaFile{ID: "f2"})
	mustFetch(t, s)

	if err := s.Media.Delete(ctx, "f1"); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	after := s.Media.All()
	s.TakeNotification("")

	gws.Media.Fail(gateway.OpDelete, gateway.NotFound(CollectionMedia, gateway.OpDelete))
	if err := s.Media.Delete(ctx, "f1"); !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
	if got := s.Media.All(); !reflect.DeepEqual(got, after) {
		t.Fatalf("media after second delete = %+v, want %+v", got, after)
	}
	n, ok := s.TakeNotification("")
	if !ok || n.Level != LevelError || n.Op != gateway.OpDelete {
		t.Fatalf("notification = %+v, %v", n, ok)
	}
	if _, ok := s.TakeNotification(""); ok {
		t.Fatal("more than one notification raised")
	}
}

func TestNotificationsAreKeptPerActor(t *testing.T) {
	s, gws := newTestStore(t)
	mustFetch(t, s)
	alice := WithActor(context.Background(), "alice")
	bob := WithActor(context.Background(), "bob")

	gws.Assets.Fail(gateway.OpCreate, errors.New("connection refused"))
	if _, err := s.Assets.Create(alice, models.Asset{Name: "Piano", Status: models.AssetAvailable}); err == nil {
		t.Fatal("expected create failure")
	}
	gws.Assets.Fail(gateway.OpCreate, nil)
	if _, err := s.Assets.Create(bob, models.Asset{Name: "Chairs", Status: models.AssetAvailable}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if n, ok := s.TakeNotification("bob"); !ok || n.Level != LevelSuccess {
		t.Fatalf("bob notification = %+v, %v", n, ok)
	}
	if n, ok := s.TakeNotification("alice"); !ok || n.Level != LevelError {
		t.Fatalf("alice notification = %+v, %v", n, ok)
	}
	if _, ok := s.TakeNotification("alice"); ok {
		t.Fatal("alice notification taken twice")
	}
}

func TestEmptyCollectionsAreNotNil(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Members.All() == nil {
		t.Fatal("All() = nil before load")
	}
	if sn := s.Snapshot(); sn.Groups == nil || sn.Assets == nil {
		t.Fatalf("snapshot has nil collections: %+v", sn)
	}
}

func TestTotalAssetValueScenario(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Assets.Seed(
		models.Asset{ID: "a1", Value: 60, Status: models.AssetAvailable},
		models.Asset{ID: "a2", Value: 40, Status: models.AssetMaintenance},
	)
	mustFetch(t, s)
	if got := s.Snapshot().TotalAssetValue(); got != 100 {
		t.Fatalf("TotalAssetValue() = %v, want 100", got)
	}
}

func TestNotificationKeepsLatestOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	mustFetch(t, s)
	g, _ := s.Groups.Create(ctx, models.Group{Name: "Youth", Status: models.GroupActive})
	if err := s.Groups.Delete(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	n, ok := s.TakeNotification("")
	if !ok || n.Message != "Group deleted successfully" || n.Op != gateway.OpDelete {
		t.Fatalf("notification = %+v", n)
	}
}

func TestSubscribeAndCancel(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	var (
		mu  sync.Mutex
		got []Change
	)
	cancel := s.Subscribe(func(c Change) {
		mu.Lock()
		got = append(got, c)
		mu.Unlock()
	})
	m, err := s.Members.Create(ctx, models.Member{Name: "Bia"})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	_ = s.Members.Delete(ctx, m.ID)

	want := []Change{{Collection: CollectionMembers, Op: gateway.OpCreate, ID: m.ID}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("changes = %+v, want %+v", got, want)
	}
}

func TestReset(t *testing.T) {
	s, gws := newTestStore(t)
	_ = gws.Members.Seed(models.Member{ID: "m1"})
	mustFetch(t, s)
	_, _ = s.Members.Create(context.Background(), models.Member{Name: "x"})
	s.Reset()
	if s.Loaded() || s.Members.Len() != 0 {
		t.Fatalf("status after reset: %+v", s.Status())
	}
	if _, ok := s.TakeNotification(""); ok {
		t.Fatal("notification survived reset")
	}
}
