package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/retailpro/retailpro/internal/auth"
	"github.com/retailpro/retailpro/internal/shared"
	"github.com/retailpro/retailpro/internal/view"
	_ "github.com/retailpro/retailpro/testing"
)

type stubRepo struct {
	user    *auth.User
	profile *auth.Profile

	emailTaken bool
	created    []auth.SignupInput
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) GetProfile(ctx context.Context, userID int64) (*auth.Profile, error) {
	if s.profile == nil {
		return nil, shared.ErrNotFound
	}
	return s.profile, nil
}

func (s *stubRepo) CreateAccount(ctx context.Context, input auth.SignupInput, passwordHash string) (*auth.User, error) {
	if s.emailTaken {
		return nil, auth.ErrEmailTaken
	}
	s.created = append(s.created, input)
	return &auth.User{ID: 1, Email: input.Email, IsActive: true}, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	templates, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := newTestLogger()
	handler := auth.NewHandler(logger, auth.NewService(repo), templates, sessionManager, csrfManager)
	return handler, sessionManager
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func TestLoginPage(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req, sess := withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.ShowLoginForTest(res, req)
	if err := sessionManager.Commit(req.Context(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected login form in body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{
		user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true},
	})

	postData := url.Values{}
	postData.Set("email", "user@test.local")
	postData.Set("password", "wrongpass1")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Invalid email or password") {
		t.Fatalf("expected credential error in body")
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cases := []struct {
		role auth.Role
		want string
	}{
		{auth.RoleOwner, "/dashboard"},
		{auth.RoleClient, "/client/dashboard"},
	}
	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			handler, sessionManager := newAuthHandler(t, &stubRepo{
				user:    &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true},
				profile: &auth.Profile{UserID: 1, Role: tc.role, FullName: "Test User"},
			})

			postData := url.Values{}
			postData.Set("email", "user@test.local")
			postData.Set("password", "correctpass")

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(postData.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req, sess := withSession(t, sessionManager, req)

			res := httptest.NewRecorder()
			handler.HandleLoginForTest(res, req)

			if res.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d", res.Code)
			}
			if loc := res.Header().Get("Location"); loc != tc.want {
				t.Fatalf("expected redirect to %s, got %s", tc.want, loc)
			}
			if sess.User() != "1" {
				t.Fatalf("expected session user 1, got %q", sess.User())
			}
		})
	}
}

func TestLoginWithoutProfileFails(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{
		user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true},
	})

	postData := url.Values{}
	postData.Set("email", "user@test.local")
	postData.Set("password", "correctpass")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "not fully provisioned") {
		t.Fatalf("expected provisioning error in body")
	}
}

func TestSignupEmailTaken(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{emailTaken: true})

	postData := url.Values{}
	postData.Set("email", "dupe@test.local")
	postData.Set("password", "password123")
	postData.Set("confirm_password", "password123")
	postData.Set("full_name", "Dupe User")
	postData.Set("role", "owner")

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleSignupForTest(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "already registered") {
		t.Fatalf("expected duplicate email error in body")
	}
}

func TestSignupSuccessRedirects(t *testing.T) {
	repo := &stubRepo{}
	handler, sessionManager := newAuthHandler(t, repo)

	postData := url.Values{}
	postData.Set("email", "new@test.local")
	postData.Set("password", "password123")
	postData.Set("confirm_password", "password123")
	postData.Set("full_name", "New User")
	postData.Set("shop_name", "Corner Shop")
	postData.Set("role", "client")

	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(postData.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req, _ = withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleSignupForTest(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if loc := res.Header().Get("Location"); loc != "/auth/signup-success" {
		t.Fatalf("expected redirect to /auth/signup-success, got %s", loc)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one created account, got %d", len(repo.created))
	}
	if repo.created[0].Role != auth.RoleClient {
		t.Fatalf("expected client role, got %s", repo.created[0].Role)
	}
}
