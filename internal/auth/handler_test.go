package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/contanube/contanube/internal/auth"
	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/shared"
	_ "github.com/contanube/contanube/testing"
)

func newAuthRouter(t *testing.T, repo auth.Repository) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo, 720*time.Hour), sessionManager, csrfManager)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			ctx := shared.ContextWithSession(req.Context(), sess)
			req = req.WithContext(ctx)
			next.ServeHTTP(&commitWriter{ResponseWriter: w, sess: sess, sm: sessionManager, req: req}, req)
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return r, sessionManager
}

// commitWriter persists the session right before the first header write, the
// way the application middleware does.
type commitWriter struct {
	http.ResponseWriter
	sess *shared.Session
	sm   *shared.SessionManager
	req  *http.Request
	done bool
}

func (w *commitWriter) WriteHeader(code int) {
	if !w.done {
		w.done = true
		_ = w.sm.Commit(w.req.Context(), w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	if !w.done {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	router, _ := newAuthRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"demo@test.com","password":"123456"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Plan struct {
			ID string `json:"id"`
		} `json:"plan"`
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.User.Email != "demo@test.com" {
		t.Fatalf("user email = %q", payload.User.Email)
	}
	if payload.Plan.ID != billing.PlanFree {
		t.Fatalf("plan = %q", payload.Plan.ID)
	}
	if payload.CSRFToken == "" {
		t.Fatalf("expected csrf token in response")
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Value == "" {
		t.Fatalf("expected session cookie to be set")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	router, _ := newAuthRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"demo@test.com","password":"wrongpass"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Email o contraseña incorrectos") {
		t.Fatalf("expected error detail in body: %s", res.Body.String())
	}
}

func TestLoginValidation(t *testing.T) {
	router, _ := newAuthRouter(t, newStubRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestRegisterConflict(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	router, _ := newAuthRouter(t, repo)

	body := `{"email":"demo@test.com","password":"123456","name":"Otro","company":"Otra SRL"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestMeRequiresSession(t *testing.T) {
	router, _ := newAuthRouter(t, newStubRepo())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestMeAfterLogin(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	router, sessionManager := newAuthRouter(t, repo)

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"demo@test.com","password":"123456"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRes := httptest.NewRecorder()
	router.ServeHTTP(loginRes, loginReq)
	if loginRes.Code != http.StatusOK {
		t.Fatalf("login failed: %d", loginRes.Code)
	}
	cookies := loginRes.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie after login")
	}

	meReq := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	meReq.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: cookies[0].Value})
	meRes := httptest.NewRecorder()
	router.ServeHTTP(meRes, meReq)

	if meRes.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", meRes.Code, meRes.Body.String())
	}
	if !strings.Contains(meRes.Body.String(), "demo@test.com") {
		t.Fatalf("expected user in body: %s", meRes.Body.String())
	}
}
