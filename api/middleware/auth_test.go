package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/ammargroup/storefront-backend/pkg/auth"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/logger"
)

var testJWT = config.JWTConfig{
	Secret:          "middleware-secret",
	Issuer:          "storefront-test",
	AdminTTLMinutes: 60,
	UserTTLMinutes:  120,
}

func adminProtected(t *testing.T) (http.Handler, *int64) {
	t.Helper()
	var seenAdminID int64
	handler := AdminAuth(testJWT, logger.New(logger.Options{ServiceName: "mw-test"}))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenAdminID = AdminIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	return handler, &seenAdminID
}

func TestAdminAuthAcceptsAdminToken(t *testing.T) {
	token, err := pkgauth.MintAdminToken(testJWT, time.Now(), 42, "ops")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler, seenAdminID := adminProtected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body)
	}
	if *seenAdminID != 42 {
		t.Fatalf("admin id not seeded, got %d", *seenAdminID)
	}
}

func TestAdminAuthRejectsMissingHeader(t *testing.T) {
	handler, _ := adminProtected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAdminAuthRejectsShopperToken(t *testing.T) {
	token, err := pkgauth.MintUserToken(testJWT, time.Now(), 3, "jo@example.com")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler, _ := adminProtected(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for shopper token, got %d", rr.Code)
	}
}

func TestUserAuthAcceptsShopperToken(t *testing.T) {
	token, err := pkgauth.MintUserToken(testJWT, time.Now(), 3, "jo@example.com")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var seenEmail string
	handler := UserAuth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenEmail = UserEmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if seenEmail != "jo@example.com" {
		t.Fatalf("email not seeded: %q", seenEmail)
	}
}

func TestAdminAuthRejectsExpiredToken(t *testing.T) {
	token, err := pkgauth.MintAdminToken(testJWT, time.Now().Add(-2*time.Hour), 42, "ops")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	handler, _ := adminProtected(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rr.Code)
	}
}
