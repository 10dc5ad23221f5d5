package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/service/token"
	"github.com/admixflow/admixflow/internal/usecase"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req usecase.CreateOrderRequest, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, req, actorID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ProductionOrder), args.Int(1), args.Error(2)
}

func (m *MockOrderService) ValidateAndCalculate(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, orderID, actorID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

type MockWorkflowService struct {
	mock.Mock
}

func (m *MockWorkflowService) Transition(ctx context.Context, orderID string, target domain.OrderState, actorID string, role domain.Role) (*domain.ProductionOrder, error) {
	args := m.Called(ctx, orderID, target, actorID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductionOrder), args.Error(1)
}

func authedRequest(method, target string, body []byte, role domain.Role) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	claims := &token.Claims{UserID: "user-1", Name: "Test Operator", Role: role}
	return req.WithContext(context.WithValue(req.Context(), claimsKey, claims))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestCreateOrderHandler(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	created := domain.NewProductionOrder(domain.LineOnco, "user-1", time.Now().UTC())
	orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req usecase.CreateOrderRequest) bool {
		return req.Line == domain.LineOnco && len(req.Mixes) == 1
	}), "user-1", domain.RolePharmacist).Return(created, nil)

	body, _ := json.Marshal(usecase.CreateOrderRequest{
		Line: domain.LineOnco,
		Mixes: []usecase.MixRequest{{
			PatientName: "Jane Roe",
			MedicineID:  "med-1",
			Dose:        100,
			DoseUnit:    "mg",
		}},
	})
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, domain.RolePharmacist)
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	assert.Equal(t, "Order created successfully", env.Message)
	orders.AssertExpectations(t)
}

func TestCreateOrderHandler_InvalidBody(t *testing.T) {
	handler := NewOrderHandler(new(MockOrderService), new(MockWorkflowService))

	req := authedRequest(http.MethodPost, "/api/v1/orders", []byte("{not json"), domain.RolePharmacist)
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
}

func TestCreateOrderHandler_ValidationFailure(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	orders.On("CreateOrder", mock.Anything, mock.Anything, "user-1", domain.RoleAuxiliary).
		Return(nil, domain.NewValidationFailed([]string{"mix 1: medicine ghost not found"}))

	body, _ := json.Marshal(usecase.CreateOrderRequest{Line: domain.LineOnco, Mixes: []usecase.MixRequest{{MedicineID: "ghost"}}})
	req := authedRequest(http.MethodPost, "/api/v1/orders", body, domain.RoleAuxiliary)
	rec := httptest.NewRecorder()

	handler.CreateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
	assert.Equal(t, string(domain.KindValidationFailed), env.Code)

	data := env.Data.(map[string]interface{})
	violations := data["violations"].([]interface{})
	assert.Len(t, violations, 1)
}

func TestGetOrderHandler(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	order := domain.NewProductionOrder(domain.LineSterile, "user-1", time.Now().UTC())
	orders.On("GetOrder", mock.Anything, order.ID).Return(order, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders/"+order.ID, nil, domain.RoleAuxiliary)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID})
	rec := httptest.NewRecorder()

	handler.GetOrder(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	orders.On("GetOrder", mock.Anything, "missing").Return(nil, domain.NewNotFound("order", "missing"))

	req := authedRequest(http.MethodGet, "/api/v1/orders/missing", nil, domain.RoleAuxiliary)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.GetOrder(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, string(domain.KindNotFound), env.Code)
}

func TestListOrdersHandler_ParsesFilter(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	line := domain.LineOnco
	state := domain.StateScheduled
	want := domain.OrderFilter{Line: &line, State: &state, Limit: 10, Offset: 20}
	orders.On("ListOrders", mock.Anything, want).Return([]*domain.ProductionOrder{}, 42, nil)

	req := authedRequest(http.MethodGet, "/api/v1/orders?line=ONCO&state=SCHEDULED&limit=10&offset=20", nil, domain.RolePharmacist)
	rec := httptest.NewRecorder()

	handler.ListOrders(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(42), data["total"])
	orders.AssertExpectations(t)
}

func TestTransitionHandler(t *testing.T) {
	workflow := new(MockWorkflowService)
	handler := NewOrderHandler(new(MockOrderService), workflow)

	order := domain.NewProductionOrder(domain.LineOnco, "user-1", time.Now().UTC())
	workflow.On("Transition", mock.Anything, order.ID, domain.StateValidated, "user-1", domain.RolePharmacist).
		Return(order, nil)

	body := []byte(`{"target": "VALIDATED"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/"+order.ID+"/transitions", body, domain.RolePharmacist)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID})
	rec := httptest.NewRecorder()

	handler.Transition(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	workflow.AssertExpectations(t)
}

func TestTransitionHandler_MissingTarget(t *testing.T) {
	workflow := new(MockWorkflowService)
	handler := NewOrderHandler(new(MockOrderService), workflow)

	req := authedRequest(http.MethodPost, "/api/v1/orders/order-1/transitions", []byte(`{}`), domain.RolePharmacist)
	req = mux.SetURLVars(req, map[string]string{"id": "order-1"})
	rec := httptest.NewRecorder()

	handler.Transition(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	workflow.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionHandler_Conflict(t *testing.T) {
	workflow := new(MockWorkflowService)
	handler := NewOrderHandler(new(MockOrderService), workflow)

	workflow.On("Transition", mock.Anything, "order-1", domain.StateScheduled, "user-1", domain.RoleCoordinator).
		Return(nil, domain.NewIllegalTransition(domain.StateCreated, domain.StateScheduled))

	body := []byte(`{"target": "SCHEDULED"}`)
	req := authedRequest(http.MethodPost, "/api/v1/orders/order-1/transitions", body, domain.RoleCoordinator)
	req = mux.SetURLVars(req, map[string]string{"id": "order-1"})
	rec := httptest.NewRecorder()

	handler.Transition(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, string(domain.KindIllegalTransition), env.Code)
}

func TestStageHandler(t *testing.T) {
	tests := []struct {
		stage  string
		target domain.OrderState
	}{
		{"validate", domain.StateValidated},
		{"calculate", domain.StateCalculated},
		{"schedule", domain.StateScheduled},
		{"produce", domain.StateProduced},
		{"qc", domain.StateQC},
		{"label", domain.StateLabeled},
		{"finalize", domain.StateFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			workflow := new(MockWorkflowService)
			handler := NewOrderHandler(new(MockOrderService), workflow)

			order := domain.NewProductionOrder(domain.LineOnco, "user-1", time.Now().UTC())
			workflow.On("Transition", mock.Anything, "order-1", tt.target, "user-1", domain.RoleCoordinator).
				Return(order, nil)

			req := authedRequest(http.MethodPost, "/api/v1/orders/order-1/"+tt.stage, nil, domain.RoleCoordinator)
			req = mux.SetURLVars(req, map[string]string{"id": "order-1"})
			rec := httptest.NewRecorder()

			handler.Stage(tt.stage)(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			workflow.AssertExpectations(t)
		})
	}
}

func TestStageHandler_Forbidden(t *testing.T) {
	workflow := new(MockWorkflowService)
	handler := NewOrderHandler(new(MockOrderService), workflow)

	workflow.On("Transition", mock.Anything, "order-1", domain.StateFinalized, "user-1", domain.RolePharmacist).
		Return(nil, domain.NewForbidden(domain.RolePharmacist, domain.StateFinalized))

	req := authedRequest(http.MethodPost, "/api/v1/orders/order-1/finalize", nil, domain.RolePharmacist)
	req = mux.SetURLVars(req, map[string]string{"id": "order-1"})
	rec := httptest.NewRecorder()

	handler.Stage("finalize")(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, string(domain.KindForbidden), env.Code)
}

func TestValidateAndCalculateHandler(t *testing.T) {
	orders := new(MockOrderService)
	handler := NewOrderHandler(orders, new(MockWorkflowService))

	order := domain.NewProductionOrder(domain.LineOnco, "user-1", time.Now().UTC())
	orders.On("ValidateAndCalculate", mock.Anything, order.ID, "user-1", domain.RolePharmacist).
		Return(order, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/"+order.ID+"/validate-and-calculate", nil, domain.RolePharmacist)
	req = mux.SetURLVars(req, map[string]string{"id": order.ID})
	rec := httptest.NewRecorder()

	handler.ValidateAndCalculate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	orders.AssertExpectations(t)
}
