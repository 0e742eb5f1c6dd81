package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/daytracker/internal/auth"
	"example.com/daytracker/internal/domain"
)

var testAuthConfig = auth.Config{
	Secret:   "test-secret",
	Issuer:   "daytracker",
	TokenTTL: time.Hour,
}

type mockUserRepo struct {
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	for email, user := range m.users {
		if user.ID == userID {
			user.LastLogin = &at
			m.users[email] = user
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type mockActivityRepo struct {
	records []domain.ActivityRecord
}

func (m *mockActivityRepo) CreateActivity(ctx context.Context, record domain.ActivityRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *mockActivityRepo) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityRecord, *domain.Cursor, error) {
	out := make([]domain.ActivityRecord, 0)
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil, nil
}

func (m *mockActivityRepo) ListByDate(ctx context.Context, userID string, date time.Time) ([]domain.ActivityRecord, error) {
	out := make([]domain.ActivityRecord, 0)
	for _, rec := range m.records {
		if rec.UserID == userID && rec.ActivityDate.Equal(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockActivityRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.ActivityRecord, error) {
	out := make([]domain.ActivityRecord, 0)
	for _, rec := range m.records {
		if rec.UserID == userID && !rec.ActivityDate.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "h:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(ctx context.Context) error { return p.err }

func newTestHandler(activities *mockActivityRepo) *Handler {
	service := domain.NewService(newMockUserRepo(), activities, plainHasher{})
	analytics := domain.NewAnalytics(activities).WithClock(func() time.Time {
		return time.Date(2024, time.January, 2, 20, 0, 0, 0, time.UTC)
	})
	return NewHandler(service, analytics, okPinger{}, testAuthConfig)
}

func authedRequest(method, target string, body string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	claims := &auth.Claims{Subject: userID, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestRegisterAndLogin(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	body := `{"email":"Ada@Example.com","password":"correct-horse1","name":"Ada Lovelace","age":36}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var created TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.AccessToken == "" || created.TokenType != "bearer" {
		t.Fatalf("unexpected token response %+v", created)
	}
	if created.User.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email got %s", created.User.Email)
	}

	claims, err := auth.Parse(created.AccessToken, testAuthConfig)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.Subject != created.User.UserID {
		t.Fatalf("token subject %s does not match user %s", claims.Subject, created.User.UserID)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"correct-horse1"}`))
	rr = httptest.NewRecorder()
	handler.login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var logged TokenResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &logged); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if logged.User.LastLogin == nil {
		t.Fatal("expected last_login after login")
	}
}

func TestRegisterValidationFailures(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","password":"correct-horse1","name":"Ada"}`},
		{"short password", `{"email":"a@b.com","password":"ab1","name":"Ada"}`},
		{"password without digit", `{"email":"a@b.com","password":"onlyletters","name":"Ada"}`},
		{"numeric name", `{"email":"a@b.com","password":"correct-horse1","name":"4da"}`},
		{"age too low", `{"email":"a@b.com","password":"correct-horse1","name":"Ada","age":10}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
		rr := httptest.NewRecorder()
		handler.register(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", tc.name, rr.Code)
		}
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})
	body := `{"email":"ada@example.com","password":"correct-horse1","name":"Ada"}`

	rr := httptest.NewRecorder()
	handler.register(rr, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.register(rr, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})
	rr := httptest.NewRecorder()
	handler.register(rr, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"email":"ada@example.com","password":"correct-horse1","name":"Ada"}`)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.login(rr, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrong-horse1"}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	rr := httptest.NewRecorder()
	handler.categories(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var resp CategoriesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Categories) != domain.CategoryCount() {
		t.Fatalf("expected %d categories got %d", domain.CategoryCount(), len(resp.Categories))
	}
	if resp.Categories[0].Name != string(domain.CategorySleep) {
		t.Fatalf("expected Sleep first got %s", resp.Categories[0].Name)
	}
}

func TestCreateActivityRequiresAuth(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader(`{"category":"Sleep","duration_minutes":480}`))
	rr := httptest.NewRecorder()
	handler.activities(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestCreateActivityValidation(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	cases := []struct {
		name string
		body string
	}{
		{"missing category", `{"duration_minutes":60}`},
		{"zero duration", `{"category":"Sleep","duration_minutes":0}`},
		{"over one day", `{"category":"Sleep","duration_minutes":1441}`},
		{"mood out of range", `{"category":"Sleep","duration_minutes":60,"mood_rating":6}`},
		{"unknown category", `{"category":"Gaming","duration_minutes":60}`},
		{"bad date", `{"category":"Sleep","duration_minutes":60,"activity_date":"01/02/2024"}`},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		handler.activities(rr, authedRequest(http.MethodPost, "/activities", tc.body, "user-1"))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d: %s", tc.name, rr.Code, rr.Body.String())
		}
	}
}

func TestCreateAndListActivities(t *testing.T) {
	repo := &mockActivityRepo{}
	handler := newTestHandler(repo)

	body := `{"category":"Sleep","duration_minutes":480,"mood_rating":4,"activity_date":"2024-01-02"}`
	rr := httptest.NewRecorder()
	handler.activities(rr, authedRequest(http.MethodPost, "/activities", body, "user-1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	var view ActivityView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.ActivityID == "" || view.Category != "Sleep" || view.ActivityDate != "2024-01-02" {
		t.Fatalf("unexpected view %+v", view)
	}

	rr = httptest.NewRecorder()
	handler.activities(rr, authedRequest(http.MethodGet, "/activities?date=2024-01-02", "", "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	var list ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(list.Items))
	}
}

func seedScenario(repo *mockActivityRepo) {
	mood := 4
	dates := []struct {
		category domain.Category
		date     time.Time
		minutes  int
		mood     *int
	}{
		{domain.CategorySleep, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 480, nil},
		{domain.CategorySleep, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 480, &mood},
		{domain.CategoryWork, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 60, nil},
	}
	for i, d := range dates {
		repo.records = append(repo.records, domain.ActivityRecord{
			ID:              "rec-" + string(rune('a'+i)),
			UserID:          "user-1",
			Category:        d.category,
			DurationMinutes: d.minutes,
			MoodRating:      d.mood,
			ActivityDate:    d.date,
			CreatedAt:       d.date,
		})
	}
}

func TestDailySummaryEndpoint(t *testing.T) {
	repo := &mockActivityRepo{}
	seedScenario(repo)
	handler := newTestHandler(repo)

	rr := httptest.NewRecorder()
	handler.dailySummary(rr, authedRequest(http.MethodGet, "/analytics/daily-summary?date=2024-01-02", "", "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp DailySummaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalLoggedMinutes != 540 {
		t.Fatalf("expected total 540 got %d", resp.TotalLoggedMinutes)
	}
	if resp.CompletionPercentage != 20.0 {
		t.Fatalf("expected completion 20.0 got %v", resp.CompletionPercentage)
	}
	if len(resp.Categories) != domain.CategoryCount() {
		t.Fatalf("expected %d categories got %d", domain.CategoryCount(), len(resp.Categories))
	}
	if resp.Categories[0].Category != string(domain.CategorySleep) || resp.Categories[0].Percentage != 88.9 {
		t.Fatalf("unexpected first category %+v", resp.Categories[0])
	}
}

func TestDailySummaryRejectsBadDate(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	rr := httptest.NewRecorder()
	handler.dailySummary(rr, authedRequest(http.MethodGet, "/analytics/daily-summary?date=02-01-2024", "", "user-1"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.dailySummary(rr, authedRequest(http.MethodGet, "/analytics/daily-summary", "", "user-1"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing date got %d", rr.Code)
	}
}

func TestTrendsEndpoint(t *testing.T) {
	repo := &mockActivityRepo{}
	seedScenario(repo)
	handler := newTestHandler(repo)

	rr := httptest.NewRecorder()
	handler.trends(rr, authedRequest(http.MethodGet, "/analytics/trends", "", "user-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp TrendsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Trends) != domain.CategoryCount() {
		t.Fatalf("expected %d trend entries got %d", domain.CategoryCount(), len(resp.Trends))
	}
	if resp.Trends[0].Category != string(domain.CategorySleep) || resp.Trends[0].StreakDays != 2 {
		t.Fatalf("unexpected sleep trend %+v", resp.Trends[0])
	}
	for _, entry := range resp.Trends {
		if entry.Category == string(domain.CategoryWork) && entry.StreakDays != 1 {
			t.Fatalf("expected work streak 1 got %d", entry.StreakDays)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestHandler(&mockActivityRepo{})

	rr := httptest.NewRecorder()
	healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.healthDetail(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	broken := NewHandler(domain.NewService(newMockUserRepo(), &mockActivityRepo{}, plainHasher{}),
		domain.NewAnalytics(&mockActivityRepo{}), okPinger{err: errors.New("down")}, testAuthConfig)
	rr = httptest.NewRecorder()
	broken.healthDetail(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rr.Code)
	}
}

func TestPublicPaths(t *testing.T) {
	public := []string{"/healthz", "/health", "/metrics", "/categories", "/auth/register", "/auth/login", "/signup"}
	for _, path := range public {
		if !PublicPaths(httptest.NewRequest(http.MethodGet, path, nil)) {
			t.Fatalf("expected %s to be public", path)
		}
	}
	for _, path := range []string{"/activities", "/analytics/trends", "/analytics/daily-summary"} {
		if PublicPaths(httptest.NewRequest(http.MethodGet, path, nil)) {
			t.Fatalf("expected %s to require auth", path)
		}
	}
}
