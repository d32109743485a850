package ledger

import (
	"strings"
	"time"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UnknownWorkTitle is displayed for entries whose work cannot be resolved
const UnknownWorkTitle = "Unknown Work"

// WorkStatus represents the lifecycle state of a work
type WorkStatus string

const (
	WorkStatusOngoing   WorkStatus = "ongoing"
	WorkStatusCompleted WorkStatus = "completed"
	WorkStatusOnHold    WorkStatus = "on_hold"
)

// IsValid checks if the status is a valid WorkStatus
func (s WorkStatus) IsValid() bool {
	switch s {
	case WorkStatusOngoing, WorkStatusCompleted, WorkStatusOnHold:
		return true
	}
	return false
}

// Work is a billable unit of engagement for a customer
type Work struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Category  string     `json:"category"`
	Status    WorkStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// AddWork appends a new ongoing work to the registry
func (c *Customer) AddWork(title, category string) (*Work, error) {
	title = strings.TrimSpace(title)
	category = strings.TrimSpace(category)

	if title == "" {
		return nil, shared.NewValidationError("INVALID_TITLE", "Work title is required")
	}
	if len(title) > 200 {
		return nil, shared.NewValidationError("INVALID_TITLE", "Work title cannot exceed 200 characters")
	}
	if category == "" {
		return nil, shared.NewValidationError("INVALID_CATEGORY", "Work category is required")
	}

	work := Work{
		ID:        uuid.New(),
		Title:     title,
		Category:  category,
		Status:    WorkStatusOngoing,
		CreatedAt: time.Now(),
	}
	c.Works = append(c.Works, work)
	c.IncrementVersion()
	c.AddDomainEvent(NewWorkAddedEvent(c, work))

	return &work, nil
}
