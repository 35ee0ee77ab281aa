// Package web exposes the HTTP introspection API: the command catalog,
// dry-run validation, health, metrics and the OpenAPI document.
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/cmdgate/adapters/metrics"
	"github.com/artpar/cmdgate/core/coerce"
	"github.com/artpar/cmdgate/core/help"
	"github.com/artpar/cmdgate/core/registry"
	"github.com/artpar/cmdgate/core/schema"
	"github.com/artpar/cmdgate/core/validation"
	"github.com/artpar/cmdgate/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
	Service string `json:"service" example:"cmdgate"`
}

// CatalogResponse lists every registered command.
type CatalogResponse struct {
	Prefix   string           `json:"prefix"`
	Count    int              `json:"count"`
	Commands []CommandSummary `json:"commands"`
}

// CommandSummary is the catalog row for one command.
type CommandSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Usage       string   `json:"usage"`
}

// CommandDetail is the full description of one command.
type CommandDetail struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Usage       string          `json:"usage"`
	Options     []schema.Option `json:"options"`
}

// ValidateRequest carries a raw argument string to dry-run against a command.
type ValidateRequest struct {
	Input string `json:"input"`
}

// ValidateResponse is the outcome of a dry-run validation.
type ValidateResponse struct {
	Command string             `json:"command"`
	OK      bool               `json:"ok"`
	Errors  []validation.Error `json:"errors,omitempty"`
	Options []coerce.Value     `json:"options"`
}

// Handler serves the introspection API.
type Handler struct {
	registry       *registry.Registry
	prefix         string
	logger         zerolog.Logger
	metrics        *metrics.Collector
	hasher         ports.Hasher
	adminTokenHash string
	version        string
	enableOpenAPI  bool
	metricsPath    string
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Registry       *registry.Registry
	Prefix         string
	Logger         zerolog.Logger
	Metrics        *metrics.Collector // nil disables /metrics and request metrics
	Hasher         ports.Hasher
	AdminTokenHash string // empty leaves guarded endpoints open
	Version        string
	EnableOpenAPI  bool
	MetricsPath    string // defaults to /metrics
}

// NewHandler creates a new introspection API handler.
func NewHandler(deps Deps) *Handler {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	metricsPath := deps.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	return &Handler{
		registry:       deps.Registry,
		prefix:         deps.Prefix,
		logger:         deps.Logger,
		metrics:        deps.Metrics,
		hasher:         deps.Hasher,
		adminTokenHash: deps.AdminTokenHash,
		version:        version,
		enableOpenAPI:  deps.EnableOpenAPI,
		metricsPath:    metricsPath,
	}
}

// Router returns the introspection API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if h.metrics != nil {
		r.Use(NewMetricsMiddleware(h.metrics))
	}

	// Health and version (no auth required)
	r.Get("/healthz", h.Health)
	r.Get("/version", h.Version)

	// Command catalog
	r.Get("/commands", h.ListCommands)
	r.Get("/commands/{name}", h.GetCommand)

	// Dry-run validation (guarded when an admin token is configured)
	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)
		r.Post("/commands/{name}/validate", h.ValidateCommand)
	})

	// Metrics endpoint
	if h.metrics != nil {
		r.Handle(h.metricsPath, promhttp.Handler())
	}

	// OpenAPI spec and Swagger UI
	if h.enableOpenAPI {
		r.Get("/openapi.json", h.OpenAPI)
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/openapi.json"),
		))
	}

	return r
}

// Health returns a simple liveness check.
//
//	@Summary		Liveness check
//	@Description	Returns OK if the service is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status: ok"
//	@Router			/healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Version returns the service version.
//
//	@Summary		Get service version
//	@Description	Returns version information for the cmdgate service
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	VersionResponse	"Version information"
//	@Router			/version [get]
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: h.version,
		Service: "cmdgate",
	})
}

// ListCommands returns the command catalog.
//
//	@Summary		List registered commands
//	@Description	Returns every registered command with its usage line
//	@Tags			Commands
//	@Produce		json
//	@Success		200	{object}	CatalogResponse	"Command catalog"
//	@Router			/commands [get]
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	cmds := h.registry.List()
	summaries := make([]CommandSummary, 0, len(cmds))
	for _, cmd := range cmds {
		summaries = append(summaries, CommandSummary{
			Name:        cmd.Name,
			Description: cmd.Description,
			Aliases:     cmd.Aliases,
			Usage:       help.Usage(h.prefix, cmd),
		})
	}
	writeJSON(w, http.StatusOK, CatalogResponse{
		Prefix:   h.prefix,
		Count:    len(summaries),
		Commands: summaries,
	})
}

// GetCommand returns one command with its full option list.
//
//	@Summary		Get a command
//	@Description	Returns the named command, resolved through aliases
//	@Tags			Commands
//	@Produce		json
//	@Param			name	path		string			true	"Command name or alias"
//	@Success		200		{object}	CommandDetail	"Command detail"
//	@Failure		404		{object}	map[string]interface{}	"Unknown command"
//	@Router			/commands/{name} [get]
func (h *Handler) GetCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cmd, ok := h.registry.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_command", "No command named "+name)
		return
	}
	writeJSON(w, http.StatusOK, CommandDetail{
		Name:        cmd.Name,
		Description: cmd.Description,
		Aliases:     cmd.Aliases,
		Usage:       help.Usage(h.prefix, cmd),
		Options:     cmd.Options,
	})
}

// ValidateCommand dry-runs an argument string against a command schema.
//
//	@Summary		Validate command input
//	@Description	Tokenizes, coerces and validates the input without dispatching
//	@Tags			Commands
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Command name or alias"
//	@Param			body	body		ValidateRequest	true	"Raw argument string"
//	@Success		200		{object}	ValidateResponse	"Validation result"
//	@Failure		400		{object}	map[string]interface{}	"Malformed request body"
//	@Failure		404		{object}	map[string]interface{}	"Unknown command"
//	@Security		BearerAuth
//	@Router			/commands/{name}/validate [post]
func (h *Handler) ValidateCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cmd, ok := h.registry.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_command", "No command named "+name)
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Request body must be JSON with an input field")
		return
	}

	result := validation.Validate(cmd, req.Input)
	writeJSON(w, http.StatusOK, ValidateResponse{
		Command: result.Command,
		OK:      result.OK(),
		Errors:  result.Errors,
		Options: result.Options,
	})
}

// AuthMiddleware validates the bearer token against the configured hash.
// With no hash configured the guarded endpoints stay open.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminTokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			if h.hasher != nil && h.hasher.Compare([]byte(h.adminTokenHash), token) {
				next.ServeHTTP(w, r)
				return
			}
		}

		writeError(w, http.StatusUnauthorized, "unauthorized", "Valid bearer token required")
	})
}

// NewMetricsMiddleware creates middleware that records request metrics.
func NewMetricsMiddleware(m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics for internal endpoints
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" ||
				strings.HasPrefix(r.URL.Path, "/swagger") {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := statusLabel(ww.Status())
			path := metrics.NormalizePath(r.URL.Path)

			m.RequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			m.RequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
		})
	}
}

// NewLoggingMiddleware creates a new logging middleware.
func NewLoggingMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Skip logging for health checks and metrics
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				return
			}

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
