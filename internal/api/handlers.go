// Package api exposes HTTP handlers for the daytracker service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"example.com/daytracker/internal/auth"
	"example.com/daytracker/internal/domain"
	"example.com/daytracker/internal/observability"
	"example.com/daytracker/internal/persistence"
)

// Pinger reports storage connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler coordinates HTTP requests with the domain service and analytics engine.
type Handler struct {
	service   *domain.Service
	analytics *domain.Analytics
	health    Pinger
	authCfg   auth.Config
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, analytics *domain.Analytics, health Pinger, authCfg auth.Config) *Handler {
	return &Handler{service: service, analytics: analytics, health: health, authCfg: authCfg}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/register", h.register)
	mux.HandleFunc("/signup", h.register) // legacy alias
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/categories", h.categories)
	mux.HandleFunc("/activities", h.activities)
	mux.HandleFunc("/analytics/daily-summary", h.dailySummary)
	mux.HandleFunc("/analytics/trends", h.trends)
	mux.HandleFunc("/healthz", healthz)
	mux.HandleFunc("/health", h.healthDetail)
}

// PublicPaths lists routes served without a bearer token.
func PublicPaths(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/health", "/metrics", "/categories", "/auth/register", "/auth/login", "/signup":
		return true
	}
	return false
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) healthDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	status := http.StatusOK
	payload := map[string]string{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.health.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		payload["status"] = "unhealthy"
		payload["database"] = "disconnected"
	}
	writeJSON(w, status, payload)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), domain.RegisterInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Age:      req.Age,
		Gender:   strings.TrimSpace(req.Gender),
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	token, err := auth.Issue(user.ID, h.authCfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserView(*user),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	token, err := auth.Issue(user.ID, h.authCfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        toUserView(*user),
	})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	items := make([]CategoryView, 0, domain.CategoryCount())
	for _, category := range domain.Categories() {
		meta, _ := domain.MetadataFor(category)
		items = append(items, CategoryView{
			Name:  string(category),
			Icon:  meta.Icon,
			Color: meta.Color,
		})
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: items})
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	var activityDate time.Time
	if req.ActivityDate != "" {
		parsed, err := time.ParseInLocation(domain.DateLayout, req.ActivityDate, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "activity_date must be YYYY-MM-DD")
			return
		}
		activityDate = parsed
	}

	record, err := h.service.LogActivity(r.Context(), domain.LogActivityInput{
		UserID:          claims.Subject,
		Category:        domain.Category(strings.TrimSpace(req.Category)),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		MoodRating:      req.MoodRating,
		PhotoURL:        req.PhotoURL,
		ActivityDate:    activityDate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, "validation_failed", "unknown category")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toActivityView(*record))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	if rawDate := r.URL.Query().Get("date"); rawDate != "" {
		date, err := time.ParseInLocation(domain.DateLayout, rawDate, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		records, err := h.service.ListActivitiesByDate(r.Context(), claims.Subject, date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ListActivitiesResponse{Items: toActivityViews(records)})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.ListActivities(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      toActivityViews(records),
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	date := r.URL.Query().Get("date")
	if strings.TrimSpace(date) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing date parameter")
		return
	}

	summary, err := h.analytics.DailySummary(r.Context(), claims.Subject, date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordDailySummaryComputed()
	writeJSON(w, http.StatusOK, toDailySummaryView(*summary))
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	entries, err := h.analytics.Trends(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	observability.RecordTrendReportComputed()
	writeJSON(w, http.StatusOK, toTrendsView(entries))
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	letterRule   = regexp.MustCompile(`[A-Za-z]`)
	digitRule    = regexp.MustCompile(`\d`)
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Age      *int   `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

// Validate ensures request correctness.
func (r RegisterRequest) Validate() error {
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		return errors.New("a valid email is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	if !letterRule.MatchString(r.Password) {
		return errors.New("password must contain at least one letter")
	}
	if !digitRule.MatchString(r.Password) {
		return errors.New("password must contain at least one number")
	}
	name := strings.TrimSpace(r.Name)
	if len(name) < 2 || len(name) > 100 {
		return errors.New("name must be between 2-100 characters")
	}
	if !namePattern.MatchString(name) {
		return errors.New("name can only contain letters and spaces")
	}
	if r.Age != nil && (*r.Age < 13 || *r.Age > 120) {
		return errors.New("age must be between 13-120")
	}
	if len(r.Gender) > 50 {
		return errors.New("gender must be at most 50 characters")
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate ensures request correctness.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(r.Password) == "" {
		return errors.New("password is required")
	}
	return nil
}

// CreateActivityRequest is the payload for POST /activities.
type CreateActivityRequest struct {
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
	Notes           string `json:"notes,omitempty"`
	MoodRating      *int   `json:"mood_rating,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
	ActivityDate    string `json:"activity_date,omitempty"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if r.DurationMinutes < 1 || r.DurationMinutes > 1440 {
		return errors.New("duration_minutes must be between 1-1440")
	}
	if r.MoodRating != nil && (*r.MoodRating < 1 || *r.MoodRating > 5) {
		return errors.New("mood_rating must be between 1-5")
	}
	if len(r.Notes) > 1000 {
		return errors.New("notes must be at most 1000 characters")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
