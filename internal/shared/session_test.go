package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/retailpro/retailpro/internal/shared"
	_ "github.com/retailpro/retailpro/testing"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("7")
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookies := res.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User() != "7" {
		t.Fatalf("expected user 7, got %q", loaded.User())
	}
	if loaded.Get("theme") != "dark" {
		t.Fatalf("expected stored value, got %q", loaded.Get("theme"))
	}
}

func TestSessionDestroyClearsCookie(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("7")
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	sm.Destroy(sess)
	destroyRes := httptest.NewRecorder()
	if err := sm.Commit(ctx, destroyRes, req, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	cleared := destroyRes.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Fatalf("expected clearing cookie, got %+v", cleared)
	}

	reload := httptest.NewRequest(http.MethodGet, "/", nil)
	reload.AddCookie(cookie)
	loaded, err := sm.Load(ctx, reload)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User() != "" {
		t.Fatalf("expected empty user after destroy, got %q", loaded.User())
	}
}

func TestFlashIsOneTime(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "saved"})

	msg := sess.PopFlash()
	if msg == nil || msg.Message != "saved" {
		t.Fatalf("expected flash, got %+v", msg)
	}
	if again := sess.PopFlash(); again != nil {
		t.Fatalf("expected flash consumed, got %+v", again)
	}
}

func TestCSRFTokenVerification(t *testing.T) {
	csrf := shared.NewCSRFManager("secret")
	sess := &shared.Session{ID: "abc"}
	ctx := context.Background()

	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	again, err := csrf.EnsureToken(ctx, sess)
	if err != nil || again != token {
		t.Fatalf("expected stable token, got %q err %v", again, err)
	}

	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, "forged"); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := csrf.VerifyToken(ctx, sess, ""); err == nil {
		t.Fatalf("expected missing token error")
	}
}
