package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authsvc "github.com/ammargroup/storefront-backend/internal/auth"
	ordersvc "github.com/ammargroup/storefront-backend/internal/orders"
	productsvc "github.com/ammargroup/storefront-backend/internal/products"
	pkgauth "github.com/ammargroup/storefront-backend/pkg/auth"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/logger"
)

type stubProductService struct{}

func (stubProductService) Create(context.Context, productsvc.CreateProductInput, []productsvc.FileUpload) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{ID: 1}, nil
}

func (stubProductService) Update(context.Context, int64, productsvc.UpdateProductInput, []productsvc.FileUpload) (*productsvc.ProductDTO, int, error) {
	return &productsvc.ProductDTO{ID: 1}, 0, nil
}

func (stubProductService) Delete(context.Context, int64) (int, error) {
	return 0, nil
}

func (stubProductService) DeleteImage(context.Context, int64, string) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{ID: 1}, nil
}

func (stubProductService) Get(context.Context, int64) (*productsvc.ProductDTO, error) {
	return &productsvc.ProductDTO{ID: 1}, nil
}

func (stubProductService) List(context.Context) ([]productsvc.ProductDTO, error) {
	return nil, nil
}

type stubAuthService struct{}

func (stubAuthService) AdminLogin(context.Context, string, string) (*authsvc.AdminSession, error) {
	return &authsvc.AdminSession{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAuthService) UserLogin(context.Context, string, string) (*authsvc.UserSession, error) {
	return &authsvc.UserSession{Token: "t", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubAuthService) Register(context.Context, authsvc.RegisterInput) (*authsvc.UserDTO, error) {
	return &authsvc.UserDTO{ID: 1}, nil
}

type stubOrderService struct{}

func (stubOrderService) Place(context.Context, ordersvc.PlaceOrderInput) (*ordersvc.OrderReceipt, error) {
	return &ordersvc.OrderReceipt{Reference: "ORD-1"}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "router-test"
	cfg.JWT.AdminTTLMinutes = 60
	cfg.JWT.UserTTLMinutes = 60
	return cfg
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(testConfig(), logg, nil, nil, nil, stubAuthService{}, stubProductService{}, stubOrderService{}, nil, nil)
}

func TestPublicRoutesAreReachable(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/api/products", http.StatusOK},
		{http.MethodGet, "/api/products/1", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.want, rec.Code)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodDelete, "/api/products/1/images"},
		{http.MethodGet, "/api/admin/dashboard"},
		{http.MethodGet, "/api/users/me"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without a token, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestUserProfileAcceptsShopperToken(t *testing.T) {
	router := newTestRouter(t)

	token, err := pkgauth.MintUserToken(testConfig().JWT, time.Now(), 42, "buyer@example.com")
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a shopper token, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "buyer@example.com") {
		t.Fatalf("profile body missing email: %s", rec.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
