package usecase

import (
	"context"
	"fmt"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MixRequest describes one patient/drug preparation to include in an order.
type MixRequest struct {
	PatientName   string  `json:"patient_name"`
	PatientRecord string  `json:"patient_record"`
	MedicineID    string  `json:"medicine_id"`
	LaboratoryID  string  `json:"laboratory_id"`
	VehicleID     string  `json:"vehicle_id"`
	ContainerID   string  `json:"container_id"`
	Dose          float64 `json:"dose"`
	DoseUnit      string  `json:"dose_unit"`
	VehicleVolume float64 `json:"vehicle_volume"`
}

// CreateOrderRequest creates a production order with its mixes.
type CreateOrderRequest struct {
	Line  domain.ProductionLine `json:"line"`
	Mixes []MixRequest          `json:"mixes"`
}

// OrderUseCase orchestrates validation, calculation and persistence around
// the order aggregate. It never mutates order state after creation; that is
// the workflow's job.
type OrderUseCase struct {
	orders     ports.OrderRepository
	validator  *ValidationUseCase
	calculator *CalculationUseCase
	workflow   *WorkflowUseCase
	audit      *AuditUseCase
	cache      ports.OrderCache
	clock      ports.Clock
	log        *logrus.Logger
}

func NewOrderUseCase(
	orders ports.OrderRepository,
	validator *ValidationUseCase,
	calculator *CalculationUseCase,
	workflow *WorkflowUseCase,
	audit *AuditUseCase,
	cache ports.OrderCache,
	clock ports.Clock,
	log *logrus.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:     orders,
		validator:  validator,
		calculator: calculator,
		workflow:   workflow,
		audit:      audit,
		cache:      cache,
		clock:      clock,
		log:        log,
	}
}

// CreateOrder validates every mix tuple, calculates production quantities
// and persists the order in CREATED. All violations across all mixes are
// collected before failing.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, req CreateOrderRequest, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	if !domain.RoleMayEnter(domain.StateCreated, role) {
		return nil, domain.NewForbidden(role, domain.StateCreated)
	}
	if !domain.ValidProductionLine(req.Line) {
		return nil, domain.NewValidationFailed([]string{fmt.Sprintf("unknown production line %q", req.Line)})
	}
	if len(req.Mixes) == 0 {
		return nil, domain.NewValidationFailed([]string{"order must contain at least one mix"})
	}

	aggregate := domain.OKResult()
	for i, mix := range req.Mixes {
		result, err := uc.validator.ValidateAll(ctx, ValidationInput{
			MedicineID:   mix.MedicineID,
			LaboratoryID: mix.LaboratoryID,
			VehicleID:    mix.VehicleID,
			ContainerID:  mix.ContainerID,
			Line:         req.Line,
		})
		if err != nil {
			return nil, err
		}
		for _, v := range result.Violations {
			aggregate.Fail(fmt.Sprintf("mix %d: %s", i+1, v))
		}
	}
	if err := aggregate.AsError(); err != nil {
		return nil, err
	}

	order := domain.NewProductionOrder(req.Line, actorID, uc.clock.Now())

	for _, mix := range req.Mixes {
		calc, err := uc.calculator.CalculateFromCatalog(ctx, CatalogCalculationInput{
			MedicineID:    mix.MedicineID,
			LaboratoryID:  mix.LaboratoryID,
			VehicleID:     mix.VehicleID,
			ContainerID:   mix.ContainerID,
			Dose:          mix.Dose,
			DoseUnit:      mix.DoseUnit,
			VehicleVolume: mix.VehicleVolume,
		})
		if err != nil {
			return nil, err
		}

		order.Mixes = append(order.Mixes, domain.Mix{
			ID:               uuid.NewString(),
			PatientName:      mix.PatientName,
			PatientRecord:    mix.PatientRecord,
			MedicineID:       mix.MedicineID,
			LaboratoryID:     mix.LaboratoryID,
			VehicleID:        mix.VehicleID,
			ContainerID:      mix.ContainerID,
			Dose:             mix.Dose,
			DoseUnit:         mix.DoseUnit,
			VehicleVolume:    mix.VehicleVolume,
			ExtractionVolume: calc.ExtractionVolume,
			TotalVolume:      calc.FinalVolume,
			Supplies:         calc.Supplies,
			LotCode:          domain.NewLotCode(uc.clock.Now()),
			ExpiresAt:        calc.ExpiresAt,
		})
	}

	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	uc.audit.Append(ctx, domain.EntityOrder, order.ID, domain.AuditCreate, map[string]interface{}{
		"code":  order.Code,
		"line":  order.ProductionLine,
		"mixes": len(order.Mixes),
	}, actorID)

	uc.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"code":     order.Code,
		"line":     order.ProductionLine,
		"mixes":    len(order.Mixes),
	}).Info("order created")

	return order, nil
}

// GetOrder returns the order snapshot, read through the cache when one is
// configured. Cache failures fall through to the repository.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	if id == "" {
		return nil, domain.NewNotFound("order", id)
	}

	if uc.cache != nil {
		if order, err := uc.cache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, order); err != nil {
			uc.log.WithError(err).WithField("order_id", id).Warn("order cache set failed")
		}
	}

	return order, nil
}

// ListOrders retrieves orders matching the filter with the total count.
func (uc *OrderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	orders, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	count, err := uc.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	return orders, count, nil
}

// ValidateAndCalculate re-checks every mix tuple against the catalog and
// advances the order through VALIDATED into CALCULATED. Both transitions are
// role-gated by the workflow.
func (uc *OrderUseCase) ValidateAndCalculate(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	aggregate := domain.OKResult()
	for i, mix := range order.Mixes {
		result, err := uc.validator.ValidateAll(ctx, ValidationInput{
			MedicineID:   mix.MedicineID,
			LaboratoryID: mix.LaboratoryID,
			VehicleID:    mix.VehicleID,
			ContainerID:  mix.ContainerID,
			Line:         order.ProductionLine,
		})
		if err != nil {
			return nil, err
		}
		for _, v := range result.Violations {
			aggregate.Fail(fmt.Sprintf("mix %d: %s", i+1, v))
		}
	}
	if err := aggregate.AsError(); err != nil {
		return nil, err
	}

	if _, err := uc.workflow.Validate(ctx, orderID, actorID, role); err != nil {
		return nil, err
	}
	return uc.workflow.Calculate(ctx, orderID, actorID, role)
}
