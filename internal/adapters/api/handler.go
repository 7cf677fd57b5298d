package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/poyrazK/keyportal/internal/core/domain"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIHandler serves the credential issuance and administration endpoints.
type APIHandler struct {
	creds  ports.CredentialService
	admins ports.AdminService
	logger *slog.Logger
	checks map[string]func(context.Context) error
}

// NewAPIHandler creates and returns a new APIHandler instance.
func NewAPIHandler(creds ports.CredentialService, admins ports.AdminService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		creds:  creds,
		admins: admins,
		logger: logger,
		checks: make(map[string]func(context.Context) error),
	}
}

// AddHealthCheck adds a dependency probe reported by /health next to the database.
func (h *APIHandler) AddHealthCheck(name string, check func(context.Context) error) {
	h.checks[name] = check
}

// RegisterRoutes registers the API routes with the provided ServeMux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public Routes
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)
	mux.HandleFunc("POST /generate", h.GenerateKey)
	mux.HandleFunc("POST /user", h.CreateUser)
	mux.HandleFunc("POST /admin/register", h.RegisterAdmin)
	mux.HandleFunc("POST /admin/login", h.Login)

	// Protected Routes
	auth := AuthMiddleware(h.admins)
	mux.Handle("GET /admin/users", auth(http.HandlerFunc(h.ListUsers)))
	mux.Handle("DELETE /admin/user/{id}", auth(http.HandlerFunc(h.DeleteUser)))
}

// Handler returns the full route table wrapped in the request middleware chain.
func (h *APIHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return Chain(mux, RequestID, Recover(h.logger), AccessLog(h.logger))
}

// Metrics handles Prometheus metrics scraping requests.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)

	checks := h.creds.HealthCheck(r.Context())
	if checks == nil {
		checks = make(map[string]error)
	}
	for name, check := range h.checks {
		checks[name] = check(r.Context())
	}

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	code := http.StatusOK
	if status == "DEGRADED" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"details": details,
	})
}

// GenerateKey returns a fresh API key. The key is not stored until the user submits it.
func (h *APIHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.creds.GenerateAPIKey(r.Context())
	if err != nil {
		h.respondError(w, r, err, "failed to generate API key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "apiKey": key})
}

func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var sub domain.UserSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.creds.SubmitUser(r.Context(), sub); err != nil {
		h.respondError(w, r, err, "failed to save to database")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

type adminCredentials struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

func (h *APIHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var in adminCredentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := h.admins.Register(r.Context(), in.Email, in.Password); err != nil {
		h.respondError(w, r, err, "failed to register")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

// Login answers 401 with "email not found" or "password mismatch" depending on which check failed.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in adminCredentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := h.admins.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.respondError(w, r, err, "failed to login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token})
}

func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.creds.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err, "failed to fetch users")
		return
	}
	if rows == nil {
		rows = []domain.UserCredential{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// DeleteUser removes the user and its credential. Ids that are not positive integers cannot exist and yield 404.
func (h *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.creds.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, r, err, "failed to delete")
		return
	}

	if s, ok := SessionFromContext(r.Context()); ok {
		h.logger.InfoContext(r.Context(), "user removed by admin", "user_id", id, "admin_id", s.AdminID)
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}
