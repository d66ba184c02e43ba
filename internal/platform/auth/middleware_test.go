package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var testSigningKey = []byte("test-signing-key")

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func runJWT(t *testing.T, cfg JWTConfig, authHeader string) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotCtx context.Context
	h := JWTMiddleware(cfg)(func(c echo.Context) error {
		gotCtx = c.Request().Context()
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, gotCtx
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	uid := uuid.New().String()
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"PATIENT"},
	})

	rec, ctx := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := UserIDFromContext(ctx); got != uid {
		t.Errorf("user id = %q, want %q", got, uid)
	}
	roles := RolesFromContext(ctx)
	if len(roles) != 1 || roles[0] != "PATIENT" {
		t.Errorf("roles = %v, want [PATIENT]", roles)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	rec, _ := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_BadFormat(t *testing.T) {
	rec, _ := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Token abc")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_ExpiredToken(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	rec, _ := runJWT(t, JWTConfig{SigningKey: testSigningKey}, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_WrongIssuer(t *testing.T) {
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Issuer:    "https://other.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	cfg := JWTConfig{SigningKey: testSigningKey, Issuer: "https://auth.example.com"}
	rec, _ := runJWT(t, cfg, "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestDevAuthMiddleware_NoToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotCtx context.Context
	h := DevAuthMiddleware()(func(c echo.Context) error {
		gotCtx = c.Request().Context()
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	roles := RolesFromContext(gotCtx)
	if len(roles) != 1 || roles[0] != "ADMIN" {
		t.Errorf("roles = %v, want [ADMIN]", roles)
	}
}

func TestCallerID(t *testing.T) {
	uid := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, uid.String())
	got, err := CallerID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != uid {
		t.Errorf("caller id = %s, want %s", got, uid)
	}

	if _, err := CallerID(context.Background()); err == nil {
		t.Error("expected error for missing caller id")
	}
}
