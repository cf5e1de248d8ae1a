// Package api provides HTTP handlers for the conversion API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/artpar/workermeta/internal/core/converter"
	"github.com/artpar/workermeta/internal/core/history"
	"github.com/artpar/workermeta/internal/core/validation"
	"github.com/artpar/workermeta/internal/core/wrangler"
	"github.com/artpar/workermeta/internal/shell/api/openapi"
	"github.com/artpar/workermeta/internal/shell/loader"
	"github.com/artpar/workermeta/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds a conversion request body.
const maxBodyBytes = 1 << 20

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store   store.Store
	logger  *slog.Logger
	strict  bool
	openapi *openapi.Generator
}

// NewHandler creates a new API handler. s may be nil, in which case
// conversions are not recorded and the history endpoints report 503.
// strict makes every conversion validate its config.
func NewHandler(s store.Store, l *slog.Logger, strict bool, version string) *Handler {
	if l == nil {
		l = slog.Default()
	}
	h := &Handler{
		store:  s,
		logger: l,
		strict: strict,
	}
	h.openapi = newSpecGenerator(version)
	return h
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/convert", h.handleConvert)

		r.Route("/conversions", func(r chi.Router) {
			r.Get("/", h.handleListConversions)
			r.Get("/{id}", h.handleGetConversion)
		})

		r.Get("/scripts/{name}/migration-tag", h.handleMigrationTag)
		r.Get("/openapi.json", h.openapi.Handler())
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", History: h.store != nil})
}

// =============================================================================
// Conversion Handlers
// =============================================================================

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if field, msg := validation.ValidateConvertFields(len(req.Config) > 0, req.Format); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}

	cfg, err := decodeRequestConfig(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "invalid_config")
		return
	}

	strict := h.strict
	if v := r.URL.Query().Get("strict"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "strict must be a boolean", "validation_error")
			return
		}
		strict = parsed
	}
	if strict {
		if errs := converter.Validate(cfg); len(errs) > 0 {
			details := make([]string, 0, len(errs))
			for _, e := range errs {
				details = append(details, e.Error())
			}
			h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "config failed validation",
				Code:    "invalid_config",
				Details: details,
			})
			return
		}
	}

	previousTag := h.previousTag(r, cfg, req.PreviousTag)
	result := converter.Convert(cfg, req.Env, previousTag)

	if h.store != nil {
		h.record(w, r, result, previousTag)
	}

	h.writeJSON(w, http.StatusOK, result)
}

// previousTag returns the requested tag, or the last recorded one when the
// request does not name one.
func (h *Handler) previousTag(r *http.Request, cfg *wrangler.Config, requested *string) string {
	if requested != nil {
		return *requested
	}
	if h.store == nil {
		return ""
	}

	script := converter.ScriptName(cfg)
	tag, err := h.store.LatestMigrationTag(r.Context(), script)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("failed to look up migration tag", "script", script, "error", err)
		}
		return ""
	}
	return tag
}

// record saves the conversion. Failures are logged, not returned: the
// conversion itself succeeded.
func (h *Handler) record(w http.ResponseWriter, r *http.Request, result *converter.Result, previousTag string) {
	conv, err := history.NewConversion(result, previousTag)
	if err != nil {
		h.logger.Error("failed to build conversion record", "script", result.ScriptName, "error", err)
		return
	}
	if err := h.store.RecordConversion(r.Context(), conv); err != nil {
		h.logger.Error("failed to record conversion", "script", result.ScriptName, "error", err)
		return
	}
	w.Header().Set("X-Conversion-ID", conv.ID)
	h.logger.Info("conversion recorded",
		"id", conv.ID,
		"script", conv.ScriptName,
		"routes", conv.RouteCount,
		"bindings", conv.BindingCount,
		"tag_advanced", conv.AdvancesTag(),
	)
}

func decodeRequestConfig(req ConvertRequest) (*wrangler.Config, error) {
	var doc string
	if err := json.Unmarshal(req.Config, &doc); err == nil {
		format := req.Format
		if format == "" {
			format = "json"
		}
		return loader.DecodeConfig([]byte(doc), "."+format)
	}
	return loader.DecodeConfig(req.Config, ".json")
}

// =============================================================================
// History Handlers
// =============================================================================

func (h *Handler) handleListConversions(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}

	opts := store.DefaultListOptions()
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "limit must be an integer", "validation_error")
			return
		}
		opts.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "offset must be an integer", "validation_error")
			return
		}
		opts.Offset = offset
	}
	if field, msg := validation.ValidatePagination(opts.Limit, opts.Offset); field != "" {
		h.writeError(w, http.StatusBadRequest, msg, "validation_error")
		return
	}
	opts = opts.Normalize()

	conversions, err := h.store.ListConversions(r.Context(), r.URL.Query().Get("script"), opts)
	if err != nil {
		h.logger.Error("failed to list conversions", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list conversions", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, ConversionListResponse{
		Conversions: conversions,
		Limit:       opts.Limit,
		Offset:      opts.Offset,
	})
}

func (h *Handler) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}
	id := chi.URLParam(r, "id")

	conv, err := h.store.GetConversion(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "conversion not found", "not_found")
			return
		}
		h.logger.Error("failed to get conversion", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get conversion", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, conv)
}

func (h *Handler) handleMigrationTag(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}
	name := chi.URLParam(r, "name")

	tag, err := h.store.LatestMigrationTag(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "no migration tag recorded", "not_found")
			return
		}
		h.logger.Error("failed to get migration tag", "script", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get migration tag", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, MigrationTagResponse{ScriptName: name, MigrationTag: tag})
}

func (h *Handler) requireHistory(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "conversion history is disabled", "history_disabled")
		return false
	}
	return true
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
