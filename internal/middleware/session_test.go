package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/sojourn/internal/model"
)

// mockSessionValidator はテスト用のセッション検証モック。
type mockSessionValidator struct {
	validateFn func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error)
}

func (m *mockSessionValidator) ValidateSession(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, sessionID)
	}
	return nil, nil, false, nil
}

var _ SessionValidator = (*mockSessionValidator)(nil)

func testSession(id string) *model.Session {
	return &model.Session{
		ID:            id,
		UserID:        "user-1",
		ActiveExpires: time.Now().Add(24 * time.Hour),
		IdleExpires:   time.Now().Add(15 * 24 * time.Hour),
	}
}

func TestSessionMiddleware_ValidCookie_SetsPrincipal(t *testing.T) {
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			if sessionID != "valid-session" {
				t.Errorf("session ID = %q, want %q", sessionID, "valid-session")
			}
			return &model.User{ID: "user-1", Username: "taro"}, testSession(sessionID), false, nil
		},
	}

	var gotPrincipal *Principal
	handler := NewSessionMiddleware(validator, CookieConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if ok {
			gotPrincipal = p
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotPrincipal == nil {
		t.Fatal("expected principal in context")
	}
	if gotPrincipal.User.ID != "user-1" {
		t.Errorf("principal user ID = %q, want %q", gotPrincipal.User.ID, "user-1")
	}
}

func TestSessionMiddleware_NoCookie_ContinuesAnonymously(t *testing.T) {
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			t.Error("validator should not be called without a cookie")
			return nil, nil, false, nil
		},
	}

	handlerCalled := false
	handler := NewSessionMiddleware(validator, CookieConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if _, ok := PrincipalFromContext(r.Context()); ok {
			t.Error("expected no principal for anonymous request")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("next handler should be called for anonymous request")
	}
}

func TestSessionMiddleware_InvalidSession_ContinuesAnonymously(t *testing.T) {
	// 期限切れ・不明なセッションはエラーではなくnilが返る
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			return nil, nil, false, nil
		},
	}

	handlerCalled := false
	handler := NewSessionMiddleware(validator, CookieConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		if _, ok := PrincipalFromContext(r.Context()); ok {
			t.Error("expected no principal for invalid session")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !handlerCalled {
		t.Error("next handler should be called for invalid session")
	}
}

func TestSessionMiddleware_StoreError_Returns500(t *testing.T) {
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			return nil, nil, false, errors.New("db connection lost")
		},
	}

	handler := NewSessionMiddleware(validator, CookieConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called on store error")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "any-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestSessionMiddleware_RenewedSession_WritesUpdatedCookie(t *testing.T) {
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			return &model.User{ID: "user-1"}, testSession(sessionID), true, nil
		},
	}

	handler := NewSessionMiddleware(validator, CookieConfig{Secure: true})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "renewable-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	var sessionCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be re-issued on renewal")
	}
	if sessionCookie.Value != "renewable-session" {
		t.Errorf("cookie value = %q, want %q", sessionCookie.Value, "renewable-session")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if !sessionCookie.Secure {
		t.Error("session cookie should be Secure when configured")
	}
	if sessionCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sessionCookie.SameSite)
	}
}

func TestSessionMiddleware_ActiveSession_DoesNotRewriteCookie(t *testing.T) {
	validator := &mockSessionValidator{
		validateFn: func(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
			return &model.User{ID: "user-1"}, testSession(sessionID), false, nil
		},
	}

	handler := NewSessionMiddleware(validator, CookieConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "active-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("cookie should not be rewritten for a non-renewed session")
		}
	}
}

func TestRequireSession_NoPrincipal_Returns401(t *testing.T) {
	handler := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called without principal")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestRequireSession_WithPrincipal_CallsNext(t *testing.T) {
	handlerCalled := false
	handler := RequireSession()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	ctx := ContextWithPrincipal(req.Context(), &Principal{
		User:    &model.User{ID: "user-1"},
		Session: testSession("s-1"),
	})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req.WithContext(ctx))

	if !handlerCalled {
		t.Error("next handler should be called with principal")
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := ContextWithPrincipal(context.Background(), &Principal{
		User: &model.User{ID: "user-42"},
	})

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user ID = %q, want %q", userID, "user-42")
	}

	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without principal")
	}
}

func TestClearSessionCookie_ExpiresCookie(t *testing.T) {
	rec := httptest.NewRecorder()

	ClearSessionCookie(rec, CookieConfig{})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies count = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != SessionCookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, SessionCookieName)
	}
	if c.Value != "" {
		t.Errorf("cookie value = %q, want empty", c.Value)
	}
	if c.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", c.MaxAge)
	}
}

func TestSetSessionCookie_NoMaxAge(t *testing.T) {
	rec := httptest.NewRecorder()

	SetSessionCookie(rec, CookieConfig{}, "session-id")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies count = %d, want 1", len(cookies))
	}
	// ブラウザセッションCookie: Max-Ageを指定しない
	if cookies[0].MaxAge != 0 {
		t.Errorf("MaxAge = %d, want 0 (browser session cookie)", cookies[0].MaxAge)
	}
}
