// Package store is the process-wide cache of the console's seven entity collections.
//
// Mutations are confirm-then-reconcile: the gateway call completes first and memory is changed only
// after it succeeds. A failed call leaves every collection untouched, records the error and raises
// an error notification. The store never retries.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/models"
)

// Collection names, as used in notifications, change events and fetch failures.
const (
	CollectionMembers   = "members"
	CollectionAssets    = "assets"
	CollectionFinancial = "financialRecords"
	CollectionEvents    = "events"
	CollectionEducation = "educationEvents"
	CollectionMedia     = "mediaFiles"
	CollectionGroups    = "groups"
)

// Gateways bundles the remote gateway of every collection.
type Gateways struct {
	Members   gateway.Gateway[models.Member]
	Assets    gateway.Gateway[models.Asset]
	Financial gateway.Gateway[models.FinancialRecord]
	Events    gateway.Gateway[models.Event]
	Education gateway.Gateway[models.EducationEvent]
	Media     gateway.Gateway[models.MediaFile]
	Groups    gateway.Gateway[models.Group]
}

// Store caches all collections. Construct it with New and share the pointer.
type Store struct {
	logger *zap.Logger
	now    func() time.Time

	// mu guards every collection's items plus the status fields below. It is never held across a
	// gateway call.
	mu      sync.RWMutex
	loading bool
	loaded  bool
	err     error
	notices map[string]Notification // pending notification per actor

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	Members   *Collection[models.Member]
	Assets    *Collection[models.Asset]
	Financial *Collection[models.FinancialRecord]
	Events    *Collection[models.Event]
	Education *Collection[models.EducationEvent]
	Media     *Collection[models.MediaFile]
	Groups    *Collection[models.Group]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for notifications and registrations.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store over gws.
func New(gws Gateways, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		logger:  logger,
		now:     time.Now,
		subs:    make(map[int]func(Change)),
		notices: make(map[string]Notification),
	}
	s.Members = newCollection(s, CollectionMembers, "Member", models.MemberSchema, gws.Members)
	s.Assets = newCollection(s, CollectionAssets, "Asset", models.AssetSchema, gws.Assets)
	s.Financial = newCollection(s, CollectionFinancial, "Transaction", models.FinancialRecordSchema, gws.Financial)
	s.Events = newCollection(s, CollectionEvents, "Event", models.EventSchema, gws.Events)
	s.Education = newCollection(s, CollectionEducation, "Course", models.EducationEventSchema, gws.Education)
	s.Media = newCollection(s, CollectionMedia, "Media file", models.MediaFileSchema, gws.Media)
	s.Groups = newCollection(s, CollectionGroups, "Group", models.GroupSchema, gws.Groups)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAll loads every collection concurrently. Either all seven collections are replaced or, on
// any failure, none is and a *PartialFetchFailure is returned and recorded.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	var (
		members   []models.Member
		assets    []models.Asset
		financial []models.FinancialRecord
		events    []models.Event
		education []models.EducationEvent
		media     []models.MediaFile
		groups    []models.Group

		failMu sync.Mutex
		failed = make(map[string]error)
	)
	// No shared cancellation: a failure must not mask the others as context errors.
	var g errgroup.Group
	load := func(name string, fetch func(context.Context) error) {
		g.Go(func() error {
			if err := fetch(ctx); err != nil {
				failMu.Lock()
				failed[name] = err
				failMu.Unlock()
				return err
			}
			return nil
		})
	}
	load(CollectionMembers, func(ctx context.Context) (err error) { members, err = s.Members.gw.GetAll(ctx); return })
	load(CollectionAssets, func(ctx context.Context) (err error) { assets, err = s.Assets.gw.GetAll(ctx); return })
	load(CollectionFinancial, func(ctx context.Context) (err error) { financial, err = s.Financial.gw.GetAll(ctx); return })
	load(CollectionEvents, func(ctx context.Context) (err error) { events, err = s.Events.gw.GetAll(ctx); return })
	load(CollectionEducation, func(ctx context.Context) (err error) { education, err = s.Education.gw.GetAll(ctx); return })
	load(CollectionMedia, func(ctx context.Context) (err error) { media, err = s.Media.gw.GetAll(ctx); return })
	load(CollectionGroups, func(ctx context.Context) (err error) { groups, err = s.Groups.gw.GetAll(ctx); return })
	_ = g.Wait()

	s.mu.Lock()
	s.loading = false
	if len(failed) > 0 {
		ferr := &PartialFetchFailure{Failed: failed}
		s.err = ferr
		s.mu.Unlock()
		s.logger.Error("fetch all failed", zap.Strings("collections", ferr.Collections()), zap.Error(ferr))
		return ferr
	}
	s.Members.items = members
	s.Assets.items = assets
	s.Financial.items = financial
	s.Events.items = events
	s.Education.items = education
	s.Media.items = media
	s.Groups.items = groups
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("collections loaded",
		zap.Int("members", len(members)), zap.Int("assets", len(assets)),
		zap.Int("financial_records", len(financial)), zap.Int("events", len(events)),
		zap.Int("education_events", len(education)), zap.Int("media_files", len(media)),
		zap.Int("groups", len(groups)))
	s.publish(Change{Op: OpLoad})
	return nil
}

// Reset empties every collection and clears status and notifications (sign-out).
func (s *Store) Reset() {
	s.mu.Lock()
	s.Members.items = nil
	s.Assets.items = nil
	s.Financial.items = nil
	s.Events.items = nil
	s.Education.items = nil
	s.Media.items = nil
	s.Groups.items = nil
	s.loading, s.loaded = false, false
	s.err = nil
	clear(s.notices)
	s.mu.Unlock()
	s.publish(Change{Op: OpReset})
}

// IsLoading reports whether a FetchAll is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Loaded reports whether a FetchAll has succeeded since the last Reset.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the most recent failure, or nil. FetchAll clears it when it starts.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Status is a point-in-time view of the store flags.
type Status struct {
	Loading bool           `json:"loading"`
	Loaded  bool           `json:"loaded"`
	Error   string         `json:"error,omitempty"`
	Counts  map[string]int `json:"counts"`
}

// Status returns the store flags and collection sizes.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Loading: s.loading,
		Loaded:  s.loaded,
		Counts: map[string]int{
			CollectionMembers:   len(s.Members.items),
			CollectionAssets:    len(s.Assets.items),
			CollectionFinancial: len(s.Financial.items),
			CollectionEvents:    len(s.Events.items),
			CollectionEducation: len(s.Education.items),
			CollectionMedia:     len(s.Media.items),
			CollectionGroups:    len(s.Groups.items),
		},
	}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}

func (s *Store) failed(ctx context.Context, collection string, op gateway.Op, msg string, err error) {
	actor := ActorOf(ctx)
	s.mu.Lock()
	s.err = err
	s.notifyLocked(actor, LevelError, collection, op, msg+": "+err.Error())
	s.mu.Unlock()
	s.logger.Error("store operation failed",
		zap.String("collection", collection), zap.String("op", string(op)), zap.String("actor", actor), zap.Error(err))
}
