package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/job-portal/backend/internal/domain"
)

const (
	msgInternalError    = "An unexpected error occurred. Please try again later."
	msgValidationFailed = "Validation failed for one or more fields"
	msgMalformedBody    = "Malformed request body"
)

// ErrorResponse 是所有错误响应的统一格式
type ErrorResponse struct {
	Status      int               `json:"status"`
	Message     string            `json:"message"`
	Timestamp   time.Time         `json:"timestamp"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, ErrorResponse{
		Status:    status,
		Message:   msg,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	})
}

func (h *Handler) malformedBody(w http.ResponseWriter, r *http.Request) {
	h.errorResponse(w, r, http.StatusBadRequest, msgMalformedBody)
}

// validationFailed 把校验错误按字段整理，同一字段只保留第一条
func (h *Handler) validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.internalServerError(w, r, err)
		return
	}

	fieldErrors := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, ok := fieldErrors[fe.Field()]; !ok {
			fieldErrors[fe.Field()] = fe.Translate(h.translator)
		}
	}

	status := http.StatusBadRequest
	h.writeJSON(w, r, status, ErrorResponse{
		Status:      status,
		Message:     msgValidationFailed,
		Timestamp:   time.Now().UTC(),
		Path:        r.URL.Path,
		FieldErrors: fieldErrors,
	})
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.errorResponse(w, r, http.StatusInternalServerError, msgInternalError)
}

// serviceError 根据错误类别决定状态码，未分类的错误一律按 500 处理
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		h.internalServerError(w, r, err)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, r, http.StatusNotFound, de.Message)
	case errors.Is(err, domain.ErrConflict):
		h.errorResponse(w, r, http.StatusConflict, de.Message)
	case errors.Is(err, domain.ErrUnauthenticated):
		h.errorResponse(w, r, http.StatusUnauthorized, de.Message)
	case errors.Is(err, domain.ErrForbidden):
		h.errorResponse(w, r, http.StatusForbidden, de.Message)
	case errors.Is(err, domain.ErrInvalid):
		h.errorResponse(w, r, http.StatusBadRequest, de.Message)
	case errors.Is(err, domain.ErrStorage):
		h.logInternalServerError(r, err)
		h.errorResponse(w, r, http.StatusInternalServerError, de.Message)
	default:
		h.internalServerError(w, r, err)
	}
}
