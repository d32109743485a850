package ledger

import (
	"context"
	"strings"

	"github.com/bizops/backend/internal/domain/ledger"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultActivityLimit is the number of entries listed when no limit is given
const DefaultActivityLimit = 50

// AppendActivity records a manual activity entry. The entry is returned
// even when it could not be persisted; the failure is only logged.
func (s *LedgerService) AppendActivity(ctx context.Context, customerID uuid.UUID, req AppendActivityRequest) (ledger.ActivityEntry, error) {
	if strings.TrimSpace(req.Title) == "" {
		return ledger.ActivityEntry{}, shared.NewValidationError("INVALID_TITLE", "Activity title is required")
	}
	if _, err := s.snapshot(ctx, customerID); err != nil && !shared.IsTransient(err) {
		return ledger.ActivityEntry{}, err
	}

	entry := ledger.NewActivityEntry(ledger.ActivityType(strings.TrimSpace(req.Type)), req.Title, req.Description)
	s.recorder.Record(ctx, customerID, entry)
	return entry, nil
}

// ListActivities returns the newest activity entries of a customer
func (s *LedgerService) ListActivities(ctx context.Context, customerID uuid.UUID, limit int) ([]ledger.ActivityEntry, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if _, err := s.snapshot(ctx, customerID); err != nil {
		return nil, err
	}

	var entries []ledger.ActivityEntry
	err := s.bounded(ctx, func(ctx context.Context) error {
		var err error
		entries, err = s.recorder.List(ctx, customerID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}
