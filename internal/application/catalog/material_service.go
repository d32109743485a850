package catalog

import (
	"context"
	"time"

	"github.com/bizops/backend/internal/domain/catalog"
	"github.com/bizops/backend/internal/domain/shared"
	"github.com/bizops/backend/internal/infrastructure/config"
	"github.com/bizops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaterialService handles catalog operations performed outside a customer
// ledger: listing, creating, repricing and correcting stock.
type MaterialService struct {
	materialRepo catalog.MaterialRepository
	timeout      time.Duration
	maxRetries   int
	backoff      time.Duration
	logger       *zap.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(materialRepo catalog.MaterialRepository, cfg config.LedgerConfig, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materialRepo: materialRepo,
		timeout:      cfg.OperationTimeout,
		maxRetries:   cfg.MaxConflictRetries,
		backoff:      cfg.RetryBackoff,
		logger:       logger,
	}
}

func (s *MaterialService) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// List returns a page of catalog materials ordered by name
func (s *MaterialService) List(ctx context.Context, filter MaterialListFilter) (*shared.Paginated[MaterialResponse], error) {
	f := shared.Filter{Page: filter.Page, PageSize: filter.PageSize, Search: filter.Search, OrderBy: "name", OrderDir: "asc"}.Normalize()

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	materials, err := s.materialRepo.FindAll(ctx, f)
	if err != nil {
		return nil, shared.Classify(err)
	}
	total, err := s.materialRepo.Count(ctx, f)
	if err != nil {
		return nil, shared.Classify(err)
	}
	page := shared.NewPaginated(ToMaterialResponses(materials), total, f.Page, f.PageSize)
	return &page, nil
}

// GetByID returns a single material
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*MaterialResponse, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.Classify(err)
	}
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// Create adds a material with its opening stock
func (s *MaterialService) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "create_material")
	defer span.End()

	m, err := catalog.NewMaterial(req.Name, req.Category, req.Unit, req.UnitPrice, req.Quantity)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.materialRepo.Create(opCtx, m); err != nil {
		err = shared.Classify(err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	m.ClearDomainEvents()

	if !m.IsPriced() {
		s.logger.Warn("Material created without a unit price",
			zap.String("material_id", m.ID.String()),
			zap.String("name", m.Name))
	}
	s.logger.Info("Material created",
		zap.String("material_id", m.ID.String()),
		zap.String("quantity", m.RemainingQuantity.String()))

	resp := ToMaterialResponse(m)
	return &resp, nil
}

// UpdatePrice changes the current unit price. Entries already recorded in
// customer ledgers keep the price they captured.
func (s *MaterialService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdatePriceRequest) (*MaterialResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "update_price",
		telemetry.SpanAttrMaterialID, id,
		telemetry.SpanAttrAmount, req.UnitPrice)
	defer span.End()

	m, err := s.mutate(ctx, id, func(m *catalog.Material) error {
		return m.UpdatePrice(req.UnitPrice)
	}, func(ctx context.Context, m *catalog.Material) error {
		return s.materialRepo.SaveWithLock(ctx, m)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// AdjustStock applies a negative stock correction, such as breakage. The
// stored stock must still cover the decrement when it is written.
func (s *MaterialService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*MaterialResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "adjust_stock",
		telemetry.SpanAttrMaterialID, id,
		telemetry.SpanAttrQuantity, req.Delta)
	defer span.End()

	m, err := s.mutate(ctx, id, func(m *catalog.Material) error {
		return m.AdjustStock(req.Delta)
	}, func(ctx context.Context, m *catalog.Material) error {
		return s.materialRepo.SaveConsumption(ctx, m, req.Delta.Neg())
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Material stock adjusted",
		zap.String("material_id", id.String()),
		zap.String("delta", req.Delta.String()),
		zap.String("remaining", m.RemainingQuantity.String()))
	resp := ToMaterialResponse(m)
	return &resp, nil
}

// mutate loads the material, applies change and saves it, re-reading and
// retrying on a version conflict.
func (s *MaterialService) mutate(
	ctx context.Context,
	id uuid.UUID,
	change func(m *catalog.Material) error,
	save func(ctx context.Context, m *catalog.Material) error,
) (*catalog.Material, error) {
	for attempt := 0; ; attempt++ {
		m, err := s.attempt(ctx, id, change, save)
		if err == nil || !shared.IsConcurrency(err) || attempt >= s.maxRetries {
			return m, err
		}
		s.logger.Debug("Material version conflict, retrying",
			zap.String("material_id", id.String()),
			zap.Int("attempt", attempt+1))
		if err := sleep(ctx, time.Duration(attempt+1)*s.backoff); err != nil {
			return nil, shared.Classify(err)
		}
	}
}

func (s *MaterialService) attempt(
	ctx context.Context,
	id uuid.UUID,
	change func(m *catalog.Material) error,
	save func(ctx context.Context, m *catalog.Material) error,
) (*catalog.Material, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	m, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.Classify(err)
	}
	before := m.Version
	if err := change(m); err != nil {
		return nil, err
	}
	if m.Version == before {
		return m, nil
	}
	if err := save(ctx, m); err != nil {
		return nil, shared.Classify(err)
	}
	m.ClearDomainEvents()
	return m, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
