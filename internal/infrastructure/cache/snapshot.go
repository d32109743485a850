package cache

import (
	"slices"

	"github.com/bizops/backend/internal/domain/ledger"
)

// resolveSet decides what a write of incoming leaves in the cache when
// stored is the current entry (nil on a miss). An older incoming snapshot is
// dropped. Otherwise the stored activities are united into incoming: they are
// persisted before being cached, and appending one does not bump the version.
func resolveSet(stored *ledger.Customer, incoming ledger.Customer) (ledger.Customer, bool) {
	if stored == nil {
		return incoming, true
	}
	if incoming.Version < stored.Version {
		return ledger.Customer{}, false
	}
	added := false
	incoming.Activities = slices.Clone(incoming.Activities)
	for _, a := range stored.Activities {
		if !hasActivity(incoming.Activities, a) {
			incoming.Activities = append(incoming.Activities, a)
			added = true
		}
	}
	if added {
		sortActivities(incoming.Activities)
	}
	return incoming, true
}

// resolveMerge adds entry to the stored snapshot. Nothing is written on a
// miss or when the entry is already present.
func resolveMerge(stored *ledger.Customer, entry ledger.ActivityEntry) (ledger.Customer, bool) {
	if stored == nil {
		return ledger.Customer{}, false
	}
	next := *stored
	next.Activities = slices.Clone(stored.Activities)
	if !next.MergeActivity(entry) {
		return ledger.Customer{}, false
	}
	sortActivities(next.Activities)
	return next, true
}

func hasActivity(entries []ledger.ActivityEntry, entry ledger.ActivityEntry) bool {
	return slices.ContainsFunc(entries, func(a ledger.ActivityEntry) bool { return a.ID == entry.ID })
}

// newest first, as the activity repository lists them
func sortActivities(entries []ledger.ActivityEntry) {
	slices.SortStableFunc(entries, func(a, b ledger.ActivityEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
