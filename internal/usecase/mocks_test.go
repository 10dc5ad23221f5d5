package usecase

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/admixflow/admixflow/internal/domain"
)

// fixedClock pins Now for deterministic assertions.
type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindMedicine(ctx context.Context, id string) (*domain.Medicine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Medicine), args.Error(1)
}

func (m *MockCatalogRepository) FindLaboratory(ctx context.Context, id string) (*domain.Laboratory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Laboratory), args.Error(1)
}

func (m *MockCatalogRepository) FindVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockCatalogRepository) FindContainer(ctx context.Context, id string) (*domain.Container, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Container), args.Error(1)
}

func (m *MockCatalogRepository) FindStability(ctx context.Context, medicineID, laboratoryID, vehicleID, containerID string) (*domain.Stability, error) {
	args := m.Called(ctx, medicineID, laboratoryID, vehicleID, containerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stability), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.ProductionOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ProductionOrder), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, id string, expected, next domain.OrderState, actorID string, at time.Time) error {
	args := m.Called(ctx, id, expected, next, actorID, at)
	return args.Error(0)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, record *domain.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorID string, limit int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) ListByEntityType(ctx context.Context, entityType domain.EntityType, limit int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, entityType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditRecord, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditRecord), args.Error(1)
}

func (m *MockAuditRepository) DistinctEntityTypes(ctx context.Context) ([]domain.EntityType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EntityType), args.Error(1)
}

func (m *MockAuditRepository) DistinctActors(ctx context.Context) ([]domain.ActorRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActorRef), args.Error(1)
}

type MockOrderCache struct {
	mock.Mock
}

func (m *MockOrderCache) Get(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

func (m *MockOrderCache) Set(ctx context.Context, order *domain.ProductionOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderCache) Invalidate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
