package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/usecase"
	"github.com/gorilla/mux"
)

// OrderService is what the order handler needs from the usecase layer.
type OrderService interface {
	CreateOrder(ctx context.Context, req usecase.CreateOrderRequest, actorID string, role domain.Role) (*domain.ProductionOrder, error)
	GetOrder(ctx context.Context, id string) (*domain.ProductionOrder, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.ProductionOrder, int, error)
	ValidateAndCalculate(ctx context.Context, orderID, actorID string, role domain.Role) (*domain.ProductionOrder, error)
}

// WorkflowService advances order state.
type WorkflowService interface {
	Transition(ctx context.Context, orderID string, target domain.OrderState, actorID string, role domain.Role) (*domain.ProductionOrder, error)
}

// OrderHandler handles HTTP requests for production orders.
type OrderHandler struct {
	orders   OrderService
	workflow WorkflowService
}

func NewOrderHandler(orders OrderService, workflow WorkflowService) *OrderHandler {
	return &OrderHandler{orders: orders, workflow: workflow}
}

// stageTargets maps the convenience stage endpoints onto their fixed target
// state.
var stageTargets = map[string]domain.OrderState{
	"validate":  domain.StateValidated,
	"calculate": domain.StateCalculated,
	"schedule":  domain.StateScheduled,
	"produce":   domain.StateProduced,
	"qc":        domain.StateQC,
	"label":     domain.StateLabeled,
	"finalize":  domain.StateFinalized,
}

func (h *OrderHandler) RegisterRoutes(router *mux.Router, auth *AuthMiddleware) {
	router.HandleFunc("/api/v1/orders", auth.RequireAuth(h.CreateOrder)).Methods("POST")
	router.HandleFunc("/api/v1/orders", auth.RequireAuth(h.ListOrders)).Methods("GET")
	router.HandleFunc("/api/v1/orders/{id}", auth.RequireAuth(h.GetOrder)).Methods("GET")
	router.HandleFunc("/api/v1/orders/{id}/validate-and-calculate", auth.RequireAuth(h.ValidateAndCalculate)).Methods("POST")
	router.HandleFunc("/api/v1/orders/{id}/transitions", auth.RequireAuth(h.Transition)).Methods("POST")
	for stage := range stageTargets {
		router.HandleFunc("/api/v1/orders/{id}/"+stage, auth.RequireAuth(h.Stage(stage))).Methods("POST")
	}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req usecase.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	Success(w, http.StatusCreated, "Order created successfully", order)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		WriteError(w, err)
		return
	}

	Success(w, http.StatusOK, "Order retrieved", order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := domain.OrderFilter{}

	if line := r.URL.Query().Get("line"); line != "" {
		l := domain.ProductionLine(line)
		filter.Line = &l
	}
	if state := r.URL.Query().Get("state"); state != "" {
		s := domain.OrderState(state)
		filter.State = &s
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	orders, total, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	Success(w, http.StatusOK, "Orders retrieved", map[string]interface{}{
		"orders": orders,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func (h *OrderHandler) ValidateAndCalculate(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	orderID := mux.Vars(r)["id"]

	order, err := h.orders.ValidateAndCalculate(r.Context(), orderID, claims.UserID, claims.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	Success(w, http.StatusOK, "Order validated and calculated", order)
}

// Transition handles the generic transition endpoint with an explicit
// target state in the body.
func (h *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	orderID := mux.Vars(r)["id"]

	var req struct {
		Target domain.OrderState `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "Invalid request body")
		return
	}
	if req.Target == "" {
		BadRequest(w, "Target state is required")
		return
	}

	order, err := h.workflow.Transition(r.Context(), orderID, req.Target, claims.UserID, claims.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	Success(w, http.StatusOK, "Order transitioned", order)
}

// Stage returns the handler for one fixed-target stage endpoint.
func (h *OrderHandler) Stage(stage string) http.HandlerFunc {
	target := stageTargets[stage]
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		orderID := mux.Vars(r)["id"]

		order, err := h.workflow.Transition(r.Context(), orderID, target, claims.UserID, claims.Role)
		if err != nil {
			WriteError(w, err)
			return
		}

		Success(w, http.StatusOK, "Order transitioned", order)
	}
}
