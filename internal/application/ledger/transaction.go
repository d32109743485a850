package ledger

import (
	"context"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/ledger"
)

// TransactionalRepositories gives access to the repositories bound to one
// database transaction.
type TransactionalRepositories interface {
	Customers() ledger.CustomerRepository
	Materials() catalog.MaterialRepository
}

// TransactionScope runs fn atomically: every write made through repos
// commits together or not at all. A non-nil error from fn rolls back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
