package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/church-console/backend/internal/gateway"
)

// PartialFetchFailure is returned by FetchAll when at least one collection could not be loaded.
// No collection is replaced when it is returned.
type PartialFetchFailure struct {
	Failed map[string]error
}

func (e *PartialFetchFailure) Error() string {
	names := e.Collections()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %v", n, e.Failed[n])
	}
	return "fetch failed for " + strings.Join(parts, "; ")
}

// Collections returns the names of the failed collections, sorted.
func (e *PartialFetchFailure) Collections() []string {
	names := make([]string, 0, len(e.Failed))
	for n := range e.Failed {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (e *PartialFetchFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, n := range e.Collections() {
		errs = append(errs, e.Failed[n])
	}
	return errs
}

var (
	// ErrUnknownMember is wrapped when a group operation names a member id the store does not hold.
	ErrUnknownMember = errors.New("unknown member")
	// ErrEventFull is wrapped when a registration would exceed maxParticipants.
	ErrEventFull = errors.New("event is full")
	// ErrUnknownRegistration is wrapped when a payment update names a missing registration.
	ErrUnknownRegistration = errors.New("unknown registration")
)

func rejected(collection string, err error) error {
	return gateway.Rejected(collection, gateway.OpUpdate, err)
}
