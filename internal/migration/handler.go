package migration

import (
	"encoding/json"
	"io"
	"net/http"

	"template-migrator/internal/common/errors"
	"template-migrator/internal/common/logger"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Handler exposes the migration service over HTTP.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Migrate handles POST /api/migrations/hubspot-to-sfmc.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, errors.NewValidationFailedError("failed to read request body"))
		return
	}

	// The schema runs against the raw document so unknown fields and
	// type mismatches are rejected before binding.
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		h.writeError(w, errors.NewValidationFailedError("request body must be a JSON object"))
		return
	}

	if err := ValidateRequest(raw); err != nil {
		h.writeError(w, err)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, errors.NewValidationFailedError("request body does not match the expected shape"))
		return
	}

	summary, err := h.service.Execute(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	stdErr := errors.AsStandardError(err)
	if stdErr.Code == errors.ErrCodeInternalError {
		h.logger.Error("Unexpected error handling migration request", map[string]interface{}{
			"error": err.Error(),
		})
	}

	h.writeJSON(w, errors.HTTPStatusFor(stdErr.Code), ErrorResponse{
		Error:   stdErr.Message,
		Details: stdErr.Details,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
