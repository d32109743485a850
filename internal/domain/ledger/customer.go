package ledger

import (
	"regexp"
	"strings"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Address holds the postal fields of a customer
type Address struct {
	Line       string `json:"line"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// IsEmpty returns true when no address field is set
func (a Address) IsEmpty() bool {
	return a.Line == "" && a.City == "" && a.State == "" && a.PostalCode == ""
}

// String joins the non-empty address fields
func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Line, a.City, a.State, a.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Customer is the ledger aggregate root. Every ledger collection of a
// customer lives under it and every ledger mutation increments its version.
type Customer struct {
	shared.BaseAggregateRoot
	Name       string          `json:"name"`
	Mobile     string          `json:"mobile"`
	Address    Address         `json:"address"`
	Works      []Work          `json:"works"`
	Materials  []MaterialUsage `json:"materials"`
	Payments   []Payment       `json:"payments"`
	Expenses   []Expense       `json:"expenses"`
	Activities []ActivityEntry `json:"activities"`
}

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// NormalizeMobile strips separators from a phone number
func NormalizeMobile(mobile string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(mobile))
}

// NewCustomer registers a customer with empty ledgers
func NewCustomer(name, mobile string, address Address) (*Customer, error) {
	name = strings.TrimSpace(name)
	mobile = NormalizeMobile(mobile)

	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}

	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Mobile:            mobile,
		Address:           address,
		Works:             make([]Work, 0),
		Materials:         make([]MaterialUsage, 0),
		Payments:          make([]Payment, 0),
		Expenses:          make([]Expense, 0),
		Activities:        make([]ActivityEntry, 0),
	}
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateMobile(mobile string) error {
	if mobile == "" {
		return shared.NewValidationError("INVALID_MOBILE", "Mobile number cannot be empty")
	}
	if !mobilePattern.MatchString(mobile) {
		return shared.NewValidationError("INVALID_MOBILE", "Mobile number must contain 7 to 15 digits")
	}
	return nil
}

// FindWork returns the work with the given id
func (c *Customer) FindWork(id uuid.UUID) (*Work, bool) {
	for i := range c.Works {
		if c.Works[i].ID == id {
			return &c.Works[i], true
		}
	}
	return nil, false
}

// WorkTitle returns the title of a work, tolerating dangling references
func (c *Customer) WorkTitle(id uuid.UUID) string {
	if w, ok := c.FindWork(id); ok {
		return w.Title
	}
	return UnknownWorkTitle
}

// FindPayment returns the payment with the given id
func (c *Customer) FindPayment(id uuid.UUID) (*Payment, bool) {
	for i := range c.Payments {
		if c.Payments[i].ID == id {
			return &c.Payments[i], true
		}
	}
	return nil, false
}

// FindUsageByRequestKey returns the consumption entry recorded under key
func (c *Customer) FindUsageByRequestKey(key string) (*MaterialUsage, bool) {
	if key == "" {
		return nil, false
	}
	for i := range c.Materials {
		if c.Materials[i].RequestKey == key {
			return &c.Materials[i], true
		}
	}
	return nil, false
}

// Lookup and uniqueness errors returned by customer repositories
var (
	ErrCustomerNotFound = shared.NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")
	ErrDuplicateMobile  = shared.NewValidationError("DUPLICATE_MOBILE", "A customer with this mobile number already exists")
)
