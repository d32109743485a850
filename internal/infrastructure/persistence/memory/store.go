// Package memory provides an in-process implementation of the ledger
// repositories and transaction scope. Transactions stage their writes and
// apply them atomically at commit, re-checking every version precondition,
// so it behaves like the SQL store under concurrent callers.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appledger "github.com/bizops/backend/internal/application/ledger"
	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names accepted by FailOn
const (
	OpFindCustomer     = "customers.find"
	OpAppendCustomer   = "customers.append"
	OpFindMaterial     = "materials.find"
	OpSaveMaterial     = "materials.save"
	OpAppendActivity   = "activities.append"
	OpCommit           = "tx.commit"
	OpAfterCommit      = "tx.after_commit"
	opCreateCustomer   = "customers.create"
	opCreateMaterial   = "materials.create"
	opListCustomers    = "customers.list"
	opListMaterials    = "materials.list"
	opFindActivities   = "activities.find"
	opFindCustomerByMb = "customers.find_by_mobile"
)

type state struct {
	customers  map[uuid.UUID]*ledger.Customer
	materials  map[uuid.UUID]*catalog.Material
	activities map[uuid.UUID][]ledger.ActivityEntry
}

func (s state) shallowCopy() state {
	next := state{
		customers:  make(map[uuid.UUID]*ledger.Customer, len(s.customers)),
		materials:  make(map[uuid.UUID]*catalog.Material, len(s.materials)),
		activities: s.activities,
	}
	for k, v := range s.customers {
		next.customers[k] = v
	}
	for k, v := range s.materials {
		next.materials[k] = v
	}
	return next
}

type failure struct {
	err   error
	times int
}

// Store is a concurrency-safe in-memory ledger database. Stored values are
// never mutated in place: writes replace them with modified clones.
type Store struct {
	mu       sync.Mutex
	st       state
	failures map[string]*failure
	latency  time.Duration
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		st: state{
			customers:  map[uuid.UUID]*ledger.Customer{},
			materials:  map[uuid.UUID]*catalog.Material{},
			activities: map[uuid.UUID][]ledger.ActivityEntry{},
		},
		failures: map[string]*failure{},
	}
}

// FailOn makes the next times calls of op return err. times <= 0 fails forever.
func (s *Store) FailOn(op string, err error, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = &failure{err: err, times: times}
}

// ClearFailures removes every injected failure
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]*failure{}
}

// SetLatency delays every call by d, honouring context cancellation
func (s *Store) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// enter applies latency and injected failures for op
func (s *Store) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	latency := s.latency
	var injected error
	if f, ok := s.failures[op]; ok {
		injected = f.err
		if f.times > 0 {
			f.times--
			if f.times == 0 {
				delete(s.failures, op)
			}
		}
	}
	s.mu.Unlock()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return injected
}

// Customers returns a repository writing directly to the store
func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{store: s}
}

// Materials returns a repository writing directly to the store
func (s *Store) Materials() *MaterialRepository {
	return &MaterialRepository{store: s}
}

// Activities returns the activity repository
func (s *Store) Activities() *ActivityRepository {
	return &ActivityRepository{store: s}
}

// Execute implements TransactionScope. Reads inside fn see committed state;
// writes are staged and applied at commit under the store lock.
func (s *Store) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	tx := &txRepos{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	if err := s.enter(ctx, OpCommit); err != nil {
		return err
	}
	if err := s.apply(tx.ops); err != nil {
		return err
	}
	return s.enter(context.Background(), OpAfterCommit)
}

// apply runs ops against a copy of the state and swaps it in when every op
// succeeds.
func (s *Store) apply(ops []func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.shallowCopy()
	for _, op := range ops {
		if err := op(&next); err != nil {
			return err
		}
	}
	s.st = next
	return nil
}

type txRepos struct {
	store *Store
	ops   []func(*state) error
}

func (t *txRepos) Customers() ledger.CustomerRepository {
	return &CustomerRepository{store: t.store, tx: t}
}

func (t *txRepos) Materials() catalog.MaterialRepository {
	return &MaterialRepository{store: t.store, tx: t}
}

// write stages op inside a transaction or applies it immediately
func write(ctx context.Context, s *Store, tx *txRepos, opName string, op func(*state) error) error {
	if err := s.enter(ctx, opName); err != nil {
		return err
	}
	if tx != nil {
		tx.ops = append(tx.ops, op)
		return nil
	}
	return s.apply([]func(*state) error{op})
}

// CustomerRepository implements ledger.CustomerRepository
type CustomerRepository struct {
	store *Store
	tx    *txRepos
}

// FindByID returns a deep copy of the stored customer with its activity log
func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Customer, error) {
	if err := r.store.enter(ctx, OpFindCustomer); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.st.customers[id]
	if !ok {
		return nil, ledger.ErrCustomerNotFound
	}
	out := cloneCustomer(c)
	out.Activities = newestFirst(r.store.st.activities[id], 0)
	return out, nil
}

// FindByMobile finds the customer holding mobile
func (r *CustomerRepository) FindByMobile(ctx context.Context, mobile string) (*ledger.Customer, error) {
	if err := r.store.enter(ctx, opFindCustomerByMb); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.st.customers {
		if c.Mobile == mobile {
			return identityOnly(c), nil
		}
	}
	return nil, ledger.ErrCustomerNotFound
}

// FindAll lists customers ordered by name
func (r *CustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Customer, error) {
	if err := r.store.enter(ctx, opListCustomers); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	matched := r.matching(filter.Search)
	r.store.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return page(matched, filter), nil
}

// Count counts customers matching the filter search
func (r *CustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if err := r.store.enter(ctx, opListCustomers); err != nil {
		return 0, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.matching(filter.Search))), nil
}

func (r *CustomerRepository) matching(search string) []ledger.Customer {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]ledger.Customer, 0, len(r.store.st.customers))
	for _, c := range r.store.st.customers {
		if search == "" || strings.Contains(strings.ToLower(c.Name), search) || strings.Contains(c.Mobile, search) {
			out = append(out, *identityOnly(c))
		}
	}
	return out
}

// Create inserts a newly registered customer
func (r *CustomerRepository) Create(ctx context.Context, c *ledger.Customer) error {
	stored := cloneCustomer(c)
	stored.Activities = nil
	return write(ctx, r.store, r.tx, opCreateCustomer, func(st *state) error {
		for _, existing := range st.customers {
			if existing.Mobile == stored.Mobile {
				return ledger.ErrDuplicateMobile
			}
		}
		if _, ok := st.customers[stored.ID]; ok {
			return shared.ErrAlreadyExists
		}
		st.customers[stored.ID] = stored
		return nil
	})
}

// AppendWork persists a work added to the registry
func (r *CustomerRepository) AppendWork(ctx context.Context, c *ledger.Customer, w *ledger.Work) error {
	work := *w
	return r.appendEntry(ctx, c, func(next *ledger.Customer) { next.Works = append(next.Works, work) })
}

// AppendMaterialUsage persists a consumption entry. A request key already
// used by the customer is rejected like the unique index of the SQL store.
func (r *CustomerRepository) AppendMaterialUsage(ctx context.Context, c *ledger.Customer, u *ledger.MaterialUsage) error {
	usage := *u
	return r.appendEntryChecked(ctx, c, func(next *ledger.Customer) error {
		if usage.RequestKey != "" {
			if _, dup := next.FindUsageByRequestKey(usage.RequestKey); dup {
				return shared.ErrAlreadyExists
			}
		}
		next.Materials = append(next.Materials, usage)
		return nil
	})
}

// AppendPayment persists a payment
func (r *CustomerRepository) AppendPayment(ctx context.Context, c *ledger.Customer, p *ledger.Payment) error {
	payment := *p
	payment.Installments = append([]ledger.Installment{}, p.Installments...)
	return r.appendEntry(ctx, c, func(next *ledger.Customer) { next.Payments = append(next.Payments, payment) })
}

// AppendInstallment persists an installment under its payment
func (r *CustomerRepository) AppendInstallment(ctx context.Context, c *ledger.Customer, i *ledger.Installment) error {
	inst := *i
	return r.appendEntryChecked(ctx, c, func(next *ledger.Customer) error {
		for idx := range next.Payments {
			if next.Payments[idx].ID == inst.PaymentID {
				next.Payments[idx].Installments = append(next.Payments[idx].Installments, inst)
				return nil
			}
		}
		return ledger.ErrPaymentNotFound
	})
}

// AppendExpense persists an expense
func (r *CustomerRepository) AppendExpense(ctx context.Context, c *ledger.Customer, e *ledger.Expense) error {
	expense := *e
	return r.appendEntry(ctx, c, func(next *ledger.Customer) { next.Expenses = append(next.Expenses, expense) })
}

func (r *CustomerRepository) appendEntry(ctx context.Context, c *ledger.Customer, mutate func(*ledger.Customer)) error {
	return r.appendEntryChecked(ctx, c, func(next *ledger.Customer) error {
		mutate(next)
		return nil
	})
}

// appendEntryChecked is the compare-and-set on the customer version
func (r *CustomerRepository) appendEntryChecked(ctx context.Context, c *ledger.Customer, mutate func(*ledger.Customer) error) error {
	id, expected, version, updatedAt := c.ID, c.ExpectedVersion(), c.Version, c.UpdatedAt
	return write(ctx, r.store, r.tx, OpAppendCustomer, func(st *state) error {
		stored, ok := st.customers[id]
		if !ok || stored.Version != expected {
			return shared.NewConcurrencyError("CUSTOMER_VERSION_CONFLICT",
				"Customer ledger was modified by another request")
		}
		next := cloneCustomer(stored)
		if err := mutate(next); err != nil {
			return err
		}
		next.Version = version
		next.UpdatedAt = updatedAt
		st.customers[id] = next
		return nil
	})
}

// MaterialRepository implements catalog.MaterialRepository
type MaterialRepository struct {
	store *Store
	tx    *txRepos
}

// FindByID finds a material by its ID
func (r *MaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	if err := r.store.enter(ctx, OpFindMaterial); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	m, ok := r.store.st.materials[id]
	if !ok {
		return nil, catalog.ErrMaterialNotFound
	}
	return cloneMaterial(m), nil
}

// FindAll lists materials ordered by name
func (r *MaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	if err := r.store.enter(ctx, opListMaterials); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	matched := r.matching(filter.Search)
	r.store.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return page(matched, filter), nil
}

// Count counts materials matching the filter search
func (r *MaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	if err := r.store.enter(ctx, opListMaterials); err != nil {
		return 0, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.matching(filter.Search))), nil
}

func (r *MaterialRepository) matching(search string) []catalog.Material {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]catalog.Material, 0, len(r.store.st.materials))
	for _, m := range r.store.st.materials {
		if search == "" || strings.Contains(strings.ToLower(m.Name), search) ||
			strings.Contains(strings.ToLower(m.Category), search) {
			out = append(out, *cloneMaterial(m))
		}
	}
	return out
}

// Create inserts a new material
func (r *MaterialRepository) Create(ctx context.Context, m *catalog.Material) error {
	stored := cloneMaterial(m)
	return write(ctx, r.store, r.tx, opCreateMaterial, func(st *state) error {
		if _, ok := st.materials[stored.ID]; ok {
			return shared.ErrAlreadyExists
		}
		st.materials[stored.ID] = stored
		return nil
	})
}

// SaveWithLock saves price and stock with optimistic locking
func (r *MaterialRepository) SaveWithLock(ctx context.Context, m *catalog.Material) error {
	return r.save(ctx, m, decimal.Zero)
}

// SaveConsumption persists a stock decrement of quantity
func (r *MaterialRepository) SaveConsumption(ctx context.Context, m *catalog.Material, quantity decimal.Decimal) error {
	return r.save(ctx, m, quantity)
}

func (r *MaterialRepository) save(ctx context.Context, m *catalog.Material, mustCover decimal.Decimal) error {
	updated := cloneMaterial(m)
	expected := m.ExpectedVersion()
	return write(ctx, r.store, r.tx, OpSaveMaterial, func(st *state) error {
		stored, ok := st.materials[updated.ID]
		if !ok || stored.Version != expected || stored.RemainingQuantity.LessThan(mustCover) {
			return shared.NewConcurrencyError("MATERIAL_VERSION_CONFLICT",
				"Material stock was modified by another request")
		}
		st.materials[updated.ID] = updated
		return nil
	})
}

// ActivityRepository implements ledger.ActivityRepository
type ActivityRepository struct {
	store *Store
}

// Append stores entry; an existing id is ignored
func (r *ActivityRepository) Append(ctx context.Context, customerID uuid.UUID, entry ledger.ActivityEntry) error {
	if err := r.store.enter(ctx, OpAppendActivity); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.st.activities[customerID] {
		if a.ID == entry.ID {
			return nil
		}
	}
	// copy on write: committed snapshots may share the old slice
	list := append(append([]ledger.ActivityEntry{}, r.store.st.activities[customerID]...), entry)
	r.store.st.activities[customerID] = list
	return nil
}

// FindByCustomer returns the newest entries first; limit <= 0 means all
func (r *ActivityRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]ledger.ActivityEntry, error) {
	if err := r.store.enter(ctx, opFindActivities); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return newestFirst(r.store.st.activities[customerID], limit), nil
}

func newestFirst(entries []ledger.ActivityEntry, limit int) []ledger.ActivityEntry {
	out := append([]ledger.ActivityEntry{}, entries...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func page[T any](items []T, filter shared.Filter) []T {
	f := filter.Normalize()
	start := f.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func identityOnly(c *ledger.Customer) *ledger.Customer {
	return &ledger.Customer{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: c.BaseEntity, Version: c.Version},
		Name:              c.Name,
		Mobile:            c.Mobile,
		Address:           c.Address,
	}
}

func cloneCustomer(c *ledger.Customer) *ledger.Customer {
	out := identityOnly(c)
	out.Works = append([]ledger.Work{}, c.Works...)
	out.Materials = append([]ledger.MaterialUsage{}, c.Materials...)
	out.Expenses = append([]ledger.Expense{}, c.Expenses...)
	out.Activities = append([]ledger.ActivityEntry{}, c.Activities...)
	out.Payments = make([]ledger.Payment, len(c.Payments))
	for i, p := range c.Payments {
		p.Installments = append([]ledger.Installment{}, p.Installments...)
		out.Payments[i] = p
	}
	return out
}

func cloneMaterial(m *catalog.Material) *catalog.Material {
	return &catalog.Material{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: m.BaseEntity, Version: m.Version},
		Name:              m.Name,
		Category:          m.Category,
		Unit:              m.Unit,
		UnitPrice:         m.UnitPrice,
		RemainingQuantity: m.RemainingQuantity,
	}
}

var (
	_ appledger.TransactionScope = (*Store)(nil)
	_ ledger.CustomerRepository  = (*CustomerRepository)(nil)
	_ catalog.MaterialRepository = (*MaterialRepository)(nil)
	_ ledger.ActivityRepository  = (*ActivityRepository)(nil)
)
