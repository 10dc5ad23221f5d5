package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/admixflow/admixflow/internal/domain"
)

// Envelope is the uniform response shape.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Code    string      `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

func Fail(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, Envelope{Status: false, Message: message, Code: code})
}

func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message, "bad_request")
}

func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, message, "unauthorized")
}

// WriteError maps a domain error kind to a response code. Kinds are the
// contract here; message text is never inspected.
func WriteError(w http.ResponseWriter, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		Fail(w, http.StatusInternalServerError, "An unexpected error occurred", "internal_error")
		return
	}

	status := http.StatusInternalServerError
	switch de.Kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindValidationFailed:
		status = http.StatusBadRequest
	case domain.KindCalculationError:
		status = http.StatusUnprocessableEntity
	case domain.KindIllegalTransition:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	}

	envelope := Envelope{
		Status:  false,
		Message: de.Message,
		Code:    string(de.Kind),
	}
	if len(de.Violations) > 0 {
		envelope.Data = map[string]interface{}{"violations": de.Violations}
	}
	WriteJSON(w, status, envelope)
}
