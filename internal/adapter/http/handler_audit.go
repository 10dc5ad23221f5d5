package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/gorilla/mux"
)

// AuditService is what the audit handler needs from the usecase layer.
type AuditService interface {
	HistoryByEntity(ctx context.Context, entityType domain.EntityType, entityID string, limit int) ([]*domain.AuditRecord, error)
	ActionsByActor(ctx context.Context, actorID string, limit int) ([]*domain.AuditRecord, error)
	HistoryByEntityType(ctx context.Context, entityType domain.EntityType, limit int) ([]*domain.AuditRecord, error)
	List(ctx context.Context, limit, offset int) ([]*domain.AuditRecord, error)
	EntityTypes(ctx context.Context) ([]domain.EntityType, error)
	Actors(ctx context.Context) ([]domain.ActorRef, error)
}

// AuditHandler exposes the audit trail read-only.
type AuditHandler struct {
	audit AuditService
}

func NewAuditHandler(audit AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) RegisterRoutes(router *mux.Router, auth *AuthMiddleware) {
	router.HandleFunc("/api/v1/audit", auth.RequireAuth(h.List)).Methods("GET")
	router.HandleFunc("/api/v1/audit/entity-types", auth.RequireAuth(h.EntityTypes)).Methods("GET")
	router.HandleFunc("/api/v1/audit/actors", auth.RequireAuth(h.Actors)).Methods("GET")
	router.HandleFunc("/api/v1/audit/actors/{id}", auth.RequireAuth(h.ActionsByActor)).Methods("GET")
	router.HandleFunc("/api/v1/audit/entities/{type}", auth.RequireAuth(h.HistoryByEntityType)).Methods("GET")
	router.HandleFunc("/api/v1/audit/entities/{type}/{id}", auth.RequireAuth(h.HistoryByEntity)).Methods("GET")
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	records, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit records retrieved", records)
}

func (h *AuditHandler) EntityTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.audit.EntityTypes(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit entity types retrieved", types)
}

func (h *AuditHandler) Actors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.audit.Actors(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit actors retrieved", actors)
}

func (h *AuditHandler) ActionsByActor(w http.ResponseWriter, r *http.Request) {
	actorID := mux.Vars(r)["id"]

	records, err := h.audit.ActionsByActor(r.Context(), actorID, queryInt(r, "limit"))
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit records retrieved", records)
}

func (h *AuditHandler) HistoryByEntityType(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(mux.Vars(r)["type"])

	records, err := h.audit.HistoryByEntityType(r.Context(), entityType, queryInt(r, "limit"))
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit records retrieved", records)
}

func (h *AuditHandler) HistoryByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	entityType := domain.EntityType(vars["type"])
	entityID := vars["id"]

	records, err := h.audit.HistoryByEntity(r.Context(), entityType, entityID, queryInt(r, "limit"))
	if err != nil {
		WriteError(w, err)
		return
	}
	Success(w, http.StatusOK, "Audit records retrieved", records)
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
