package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityType classifies an activity log entry
type ActivityType string

const (
	ActivityCustomerRegistered  ActivityType = "customer_registered"
	ActivityWorkAdded           ActivityType = "work_added"
	ActivityMaterialUsed        ActivityType = "material_used"
	ActivityPaymentCreated      ActivityType = "payment_created"
	ActivityInstallmentReceived ActivityType = "installment_received"
	ActivityExpenseAdded        ActivityType = "expense_added"
	ActivityManual              ActivityType = "manual"
)

// ActivityEntry is one append-only audit record of a customer
type ActivityEntry struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewActivityEntry creates an entry stamped now. An empty type is recorded
// as a manual entry.
func NewActivityEntry(activityType ActivityType, title, description string) ActivityEntry {
	if activityType == "" {
		activityType = ActivityManual
	}
	return ActivityEntry{
		ID:          uuid.New(),
		Type:        activityType,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Timestamp:   time.Now(),
	}
}

// MergeActivity prepends entry to the in-memory log. An entry whose id is
// already present is ignored. Returns whether the entry was added.
func (c *Customer) MergeActivity(entry ActivityEntry) bool {
	for _, a := range c.Activities {
		if a.ID == entry.ID {
			return false
		}
	}
	c.Activities = append([]ActivityEntry{entry}, c.Activities...)
	return true
}

// ActivityForEvent derives the activity entry describing a ledger event.
// The entry id equals the event id so redelivery of an event is a no-op.
func ActivityForEvent(event shared.DomainEvent, currency valueobject.Currency) (ActivityEntry, bool) {
	entry := ActivityEntry{ID: event.EventID(), Timestamp: event.OccurredAt()}
	money := func(amount decimal.Decimal) string {
		return valueobject.Of(amount, currency).Display()
	}

	switch e := event.(type) {
	case *CustomerRegisteredEvent:
		entry.Type = ActivityCustomerRegistered
		entry.Title = "Customer Registered"
		entry.Description = fmt.Sprintf("%s (%s) registered", e.Name, e.Mobile)
	case *WorkAddedEvent:
		entry.Type = ActivityWorkAdded
		entry.Title = "Work Added"
		entry.Description = fmt.Sprintf("%s added under %s", e.Title, e.Category)
	case *MaterialUsageRecordedEvent:
		entry.Type = ActivityMaterialUsed
		entry.Title = "Material Used"
		entry.Description = fmt.Sprintf("Used %s %s of %s for %s. Remaining stock: %s",
			e.Quantity.String(), e.Unit, e.MaterialName, e.WorkTitle, e.RemainingStock.String())
	case *PaymentCreatedEvent:
		entry.Type = ActivityPaymentCreated
		entry.Title = "Payment Created"
		entry.Description = fmt.Sprintf("Payment of %s created for %s", money(e.TotalAmount), e.WorkTitle)
	case *InstallmentReceivedEvent:
		entry.Type = ActivityInstallmentReceived
		entry.Title = "Installment Received"
		entry.Description = fmt.Sprintf("Received %s via %s for %s. Outstanding: %s",
			money(e.Amount), e.Mode, e.WorkTitle, money(e.Outstanding))
	case *ExpenseAddedEvent:
		entry.Type = ActivityExpenseAdded
		entry.Title = "Expense Added"
		entry.Description = fmt.Sprintf("%s expense of %s for %s", e.ExpenseType, money(e.Amount), e.WorkTitle)
	default:
		return ActivityEntry{}, false
	}
	return entry, true
}
