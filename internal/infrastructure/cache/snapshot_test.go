package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activityAt(title string, at time.Time) ledger.ActivityEntry {
	e := ledger.NewActivityEntry("", title, "")
	e.Timestamp = at
	return e
}

func activityTitles(c *ledger.Customer) []string {
	titles := make([]string, len(c.Activities))
	for i, a := range c.Activities {
		titles[i] = a.Title
	}
	return titles
}

// runSnapshotCacheSuite checks the write rules every LedgerCache follows
func runSnapshotCacheSuite(t *testing.T, c LedgerCache) {
	ctx := context.Background()

	t.Run("stale read-merge-write keeps the newer works", func(t *testing.T) {
		customer := newCustomer(t)
		require.NoError(t, c.Set(ctx, customer))

		stale, ok, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = customer.AddWork("Hall", "Painting")
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, customer))

		stale.MergeActivity(ledger.NewActivityEntry("", "Site visit", ""))
		require.NoError(t, c.Set(ctx, stale))

		got, ok, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, customer.Version, got.Version)
		assert.Len(t, got.Works, 2)
	})

	t.Run("same version unites activities", func(t *testing.T) {
		base := time.Now()
		customer := newCustomer(t)
		first := *customer
		first.Activities = []ledger.ActivityEntry{activityAt("older", base)}
		second := *customer
		second.Activities = []ledger.ActivityEntry{activityAt("newer", base.Add(time.Second))}

		require.NoError(t, c.Set(ctx, &first))
		require.NoError(t, c.Set(ctx, &second))

		got, _, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"newer", "older"}, activityTitles(got))
	})

	t.Run("merge activity", func(t *testing.T) {
		customer := newCustomer(t)
		require.NoError(t, c.Set(ctx, customer))

		entry := ledger.NewActivityEntry("", "Site visit", "")
		require.NoError(t, c.MergeActivity(ctx, customer.ID, entry))
		require.NoError(t, c.MergeActivity(ctx, customer.ID, entry))

		got, _, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		require.Len(t, got.Activities, 1)
		assert.Equal(t, entry.ID, got.Activities[0].ID)
		assert.Equal(t, customer.Version, got.Version)
	})

	t.Run("merge on a miss writes nothing", func(t *testing.T) {
		customer := newCustomer(t)
		require.NoError(t, c.MergeActivity(ctx, customer.ID, ledger.NewActivityEntry("", "Site visit", "")))

		_, ok, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("concurrent merges lose no activity", func(t *testing.T) {
		customer := newCustomer(t)
		require.NoError(t, c.Set(ctx, customer))

		const writers = 8
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				entry := ledger.NewActivityEntry("", fmt.Sprintf("visit %d", i), "")
				// a contended redis update may give up, so retry until it lands
				for range 10 {
					if c.MergeActivity(ctx, customer.ID, entry) == nil {
						return
					}
				}
			}()
		}
		wg.Wait()

		got, _, err := c.Get(ctx, customer.ID)
		require.NoError(t, err)
		assert.Len(t, got.Activities, writers)
	})
}

func TestInMemoryLedgerCache_WriteRules(t *testing.T) {
	c := NewInMemoryLedgerCache(time.Hour)
	defer c.Close()
	runSnapshotCacheSuite(t, c)
}

func TestResolveSet_DoesNotReorderCallerSlice(t *testing.T) {
	base := time.Now()
	customer := newCustomer(t)
	stored := *customer
	stored.Activities = []ledger.ActivityEntry{activityAt("newest", base.Add(time.Hour))}
	incoming := *customer
	incoming.Activities = make([]ledger.ActivityEntry, 1, 4)
	incoming.Activities[0] = activityAt("older", base)

	next, ok := resolveSet(&stored, incoming)
	require.True(t, ok)
	assert.Equal(t, []string{"newest", "older"}, activityTitles(&next))
	assert.Equal(t, "older", incoming.Activities[0].Title)
}
