package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"blupr/internal/catalog"
	"blupr/internal/domain"
	"blupr/internal/engine"
	"blupr/internal/repository"
	"blupr/internal/service"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (m *memUsers) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

type memResponses struct {
	mu      sync.Mutex
	records []domain.ResponseRecord
}

func (m *memResponses) Append(_ context.Context, r domain.ResponseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memResponses) ListByIdentity(_ context.Context, identity string) ([]domain.ResponseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ResponseRecord
	for _, r := range m.records {
		if r.Identity == identity {
			out = append(out, r)
		}
	}
	return out, nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles []domain.Profile
}

func (m *memProfiles) Create(_ context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Identity == p.Identity {
			return repository.ErrProfileExists
		}
	}
	m.profiles = append(m.profiles, p)
	return nil
}

func (m *memProfiles) Upsert(_ context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.profiles {
		if existing.Identity == p.Identity {
			m.profiles[i] = p
			return nil
		}
	}
	m.profiles = append(m.profiles, p)
	return nil
}

func (m *memProfiles) GetByIdentity(_ context.Context, identity string) (domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Identity == identity {
			return p, nil
		}
	}
	return domain.Profile{}, pgx.ErrNoRows
}

func (m *memProfiles) Nearest(_ context.Context, _ domain.BeliefVector, exclude string, limit int) ([]domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Profile
	for _, p := range m.profiles {
		if p.Identity != exclude {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	survey, err := engine.NewSurvey(c, 0, engine.PulseGate{})
	if err != nil {
		t.Fatalf("survey: %v", err)
	}
	encoder := engine.NewEncoder(c, engine.DefaultIntensityFloors())

	profiles := &memProfiles{}
	for _, d := range catalog.DemoProfiles() {
		profiles.profiles = append(profiles.profiles, domain.Profile{ID: d.Identity, Identity: d.Identity, DisplayName: d.Name, Responses: d.Responses})
	}
	matcher := service.NewMatchService(logger, encoder, engine.DefaultClassifier(), profiles, 50)
	surveySvc := service.NewSurveyService(logger, survey, encoder, &memResponses{}, profiles, service.NewMemorySessionStore(time.Hour), matcher)

	jwtSvc := service.NewJWTService("secret", 15*time.Minute, time.Hour, nil)
	userSvc := service.NewUserService(logger, &memUsers{users: map[string]domain.User{}}, nil)

	return NewRouter(logger, jwtSvc,
		NewAuthHandler(logger, userSvc, jwtSvc),
		NewSurveyHandler(logger, surveySvc, c.Questions()),
		NewProfileHandler(logger, surveySvc, nil),
	)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type authResponse struct {
	User   domain.User       `json:"user"`
	Tokens service.TokenPair `json:"tokens"`
}

func register(t *testing.T, r *gin.Engine, email string) authResponse {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "display_name": "Ada", "password": "correct horse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	return out
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r, "ada@example.com")
	if reg.User.ID == "" || reg.Tokens.AccessToken == "" {
		t.Fatalf("unexpected register response %+v", reg)
	}

	if rec := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"email": "ada@example.com", "password": "correct horse",
	}); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	if rec := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "ada@example.com", "password": "nope nope",
	}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}
	rec := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{
		"email": "ADA@example.com", "password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": reg.Tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": reg.Tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh: expected 401, got %d", rec.Code)
	}
}

func TestMeAndSessionReset(t *testing.T) {
	r := newTestRouter(t)
	reg := register(t, r, "ada@example.com")
	token := reg.Tokens.AccessToken

	if rec := doJSON(t, r, http.MethodGet, "/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}
	rec := doJSON(t, r, http.MethodGet, "/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.User.ID != reg.User.ID || me.User.Email != "ada@example.com" {
		t.Fatalf("unexpected user %+v", me.User)
	}

	if rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": 1, "score": 4}); rec.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d", rec.Code)
	}
	for i := 0; i < 3; i++ {
		doJSON(t, r, http.MethodPost, "/survey/cursor", token, gin.H{"direction": "next"})
	}
	rec = doJSON(t, r, http.MethodDelete, "/survey/session", token, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"cursor":1`) {
		t.Fatalf("reset: got %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"answered":1`) {
		t.Fatalf("reset must keep answers: %s", rec.Body.String())
	}
}

func TestSurveyFlow(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "ada@example.com").Tokens.AccessToken

	if rec := doJSON(t, r, http.MethodGet, "/survey/state", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/survey/questions", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("questions: expected 200, got %d", rec.Code)
	}
	var qs struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &qs); err != nil || len(qs.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d (%v)", len(qs.Questions), err)
	}

	if rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": 1, "score": 9}); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid score: expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": 42, "score": 3}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown question: expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/survey/cursor", token, gin.H{"direction": "sideways"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction: expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodPost, "/survey/complete", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("early complete: expected 409, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/profile", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("profile before complete: expected 404, got %d", rec.Code)
	}

	for _, a := range catalog.DemoProfiles()[0].Responses.Answers() {
		rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": a.QuestionID, "score": a.Score})
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d: expected 200, got %d: %s", a.QuestionID, rec.Code, rec.Body.String())
		}
	}
	if rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": 1, "score": 3}); rec.Code != http.StatusConflict {
		t.Fatalf("answer after completion without pulse: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/survey/cursor", token, gin.H{"direction": "next"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"cursor":1`) {
		t.Fatalf("cursor: got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodPost, "/survey/complete", token, gin.H{"display_name": "Ada L."})
	if rec.Code != http.StatusCreated {
		t.Fatalf("complete: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, r, http.MethodPost, "/survey/complete", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second complete: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", rec.Code)
	}
	var saved struct {
		Profile domain.Profile `json:"profile"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if saved.Profile.Clan != "Kindred" || saved.Profile.DisplayName != "Ada L." {
		t.Fatalf("unexpected profile %+v", saved.Profile)
	}

	rec = doJSON(t, r, http.MethodGet, "/matches?limit=2", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("matches: expected 200, got %d", rec.Code)
	}
	var report struct {
		Matches        []domain.MatchResult  `json:"matches"`
		Classification engine.Classification `json:"classification"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode matches: %v", err)
	}
	if len(report.Matches) != 2 || report.Matches[0].Identity != "demo-alex-rivera" {
		t.Fatalf("unexpected matches %+v", report.Matches)
	}
	if !report.Classification.Unlocked || report.Classification.Cohort != "Kindred" {
		t.Fatalf("unexpected classification %+v", report.Classification)
	}
	if rec := doJSON(t, r, http.MethodGet, "/matches?limit=-1", token, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative limit: expected 400, got %d", rec.Code)
	}
}

func TestProfileEndpoints(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "ada@example.com").Tokens.AccessToken
	if rec := doJSON(t, r, http.MethodPost, "/survey/answers", token, gin.H{"question_id": 1, "score": 5}); rec.Code != http.StatusOK {
		t.Fatalf("answer: expected 200, got %d", rec.Code)
	}

	rec := doJSON(t, r, http.MethodGet, "/profile/vector", token, nil)
	var vec struct {
		Vector   []float64 `json:"vector"`
		Answered int       `json:"answered"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &vec); err != nil {
		t.Fatalf("decode vector: %v", err)
	}
	if len(vec.Vector) != 10 || vec.Answered != 1 || vec.Vector[0] != 1 || vec.Vector[1] != 0.5 {
		t.Fatalf("unexpected vector %+v", vec)
	}

	rec = doJSON(t, r, http.MethodGet, "/profile/barcode", token, nil)
	var strip struct {
		Patches []domain.Patch `json:"patches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &strip); err != nil {
		t.Fatalf("decode barcode: %v", err)
	}
	if len(strip.Patches) != 10 || !strip.Patches[0].Present || strip.Patches[1].Present {
		t.Fatalf("unexpected patches %+v", strip.Patches)
	}

	rec = doJSON(t, r, http.MethodGet, "/profile/barcode.svg", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("svg: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Fatalf("expected svg content type, got %q", ct)
	}
	if got := strings.Count(rec.Body.String(), "<rect"); got != 2 {
		t.Fatalf("expected background plus one patch, got %d rects", got)
	}
}
