package cache

import (
	"context"
	"sync"
	"time"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/google/uuid"
)

// entry is a cached snapshot with its expiration
type entry struct {
	snapshot  ledger.Customer
	expiresAt time.Time
}

// InMemoryLedgerCache keeps customer snapshots in a process-local map.
// This is suitable for single-instance deployments and testing.
type InMemoryLedgerCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]entry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryLedgerCache creates an in-memory snapshot cache and starts a
// background goroutine that evicts expired entries
func NewInMemoryLedgerCache(ttl time.Duration) *InMemoryLedgerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &InMemoryLedgerCache{
		entries:  make(map[uuid.UUID]entry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a copy of the cached snapshot of the customer
func (c *InMemoryLedgerCache) Get(_ context.Context, customerID uuid.UUID) (*ledger.Customer, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[customerID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	snapshot := cloneCustomer(e.snapshot)
	return &snapshot, true, nil
}

// Set stores a copy of the customer snapshot. A snapshot older than the
// cached one is ignored; cached activities are carried into the new one.
func (c *InMemoryLedgerCache) Set(_ context.Context, customer *ledger.Customer) error {
	if customer == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if next, ok := resolveSet(c.live(customer.ID), *customer); ok {
		c.store(next)
	}
	return nil
}

// MergeActivity adds entry to the cached snapshot of the customer, if any.
// The read and the write happen under the cache lock.
func (c *InMemoryLedgerCache) MergeActivity(_ context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if next, ok := resolveMerge(c.live(customerID), entry); ok {
		c.store(next)
	}
	return nil
}

// live returns the unexpired entry of the customer. Callers hold c.mu.
func (c *InMemoryLedgerCache) live(customerID uuid.UUID) *ledger.Customer {
	e, ok := c.entries[customerID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}
	return &e.snapshot
}

func (c *InMemoryLedgerCache) store(snapshot ledger.Customer) {
	c.entries[snapshot.ID] = entry{
		snapshot:  cloneCustomer(snapshot),
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops the cached snapshot of the customer
func (c *InMemoryLedgerCache) Invalidate(_ context.Context, customerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, customerID)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryLedgerCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryLedgerCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryLedgerCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryLedgerCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// cloneCustomer copies every ledger slice so callers cannot mutate the
// cached snapshot. Pending domain events are not carried over.
func cloneCustomer(c ledger.Customer) ledger.Customer {
	c.ClearDomainEvents()
	c.Works = append([]ledger.Work(nil), c.Works...)
	c.Materials = append([]ledger.MaterialUsage(nil), c.Materials...)
	c.Expenses = append([]ledger.Expense(nil), c.Expenses...)
	c.Activities = append([]ledger.ActivityEntry(nil), c.Activities...)
	payments := make([]ledger.Payment, len(c.Payments))
	for i, p := range c.Payments {
		p.Installments = append([]ledger.Installment(nil), p.Installments...)
		payments[i] = p
	}
	c.Payments = payments
	return c
}
