package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/core/store"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Envelope is the shape of every JSON response body.
type Envelope struct {
	Success bool                 `json:"success"`
	Data    any                  `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
	Code    internal.ErrorCode   `json:"code,omitempty"`
	Errors  internal.FieldErrors `json:"errors,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteEnvelope encodes env with the given status. Shared with middleware that
// has no handler at hand.
func WriteEnvelope(w http.ResponseWriter, status int, env Envelope, lg *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil && lg != nil {
		lg.Error("failed to encode JSON response", "error", err)
	}
}

// WriteJSON writes a success envelope carrying data
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	WriteEnvelope(w, status, Envelope{Success: true, Data: data}, h.Logger)
}

// WriteMessage writes a success envelope carrying only a message
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteEnvelope(w, status, Envelope{Success: true, Message: message}, h.Logger)
}

// WriteNoContent answers 204 with an empty body
func (h *BaseHandler) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error envelope with a plain message and no code
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Warn("http error", "status", status, "message", message)
	WriteEnvelope(w, status, Envelope{Success: false, Message: message}, h.Logger)
}

// WriteAppError is the terminal error writer. Classified app errors keep their
// status and message; anything else is logged and answered with a generic 500.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	WriteAppError(w, r, err)
}

func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	lg := logger.From(r.Context())

	appErr, ok := internal.IsAppError(err)
	if !ok {
		lg.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		appErr = internal.NewInternalError("Internal server error", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "code", appErr.Code, "error", appErr.Error())
	} else {
		lg.Debug("request rejected", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}

	WriteEnvelope(w, appErr.StatusCode, Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Errors:  appErr.Details,
	}, lg)
}

// DecodeJSON reads a size-limited JSON body into dst.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidBody.WithCause(errors.New("empty body"))
		}
		return internal.ErrInvalidBody.WithCause(err)
	}
	return nil
}

// ParseID reads a positive int64 URL parameter.
func (h *BaseHandler) ParseID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.ErrInvalidID
	}
	return id, nil
}

// ParsePage reads limit/offset query parameters, ignoring malformed values.
func (h *BaseHandler) ParsePage(r *http.Request) store.Page {
	page := store.Page{}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		page.Limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		page.Offset = o
	}
	return page.Normalize()
}

// ParseInt64Query returns 0 when the parameter is absent or malformed.
func (h *BaseHandler) ParseInt64Query(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ExtractToken prefers the auth cookie and falls back to a Bearer
// Authorization header. It returns "" when neither carries a token.
func ExtractToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[len("Bearer "):])
}
