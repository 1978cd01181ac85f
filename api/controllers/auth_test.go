package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authsvc "github.com/ammargroup/storefront-backend/internal/auth"
	pkgerrors "github.com/ammargroup/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	adminUsername string
	userEmail     string
	registered    *authsvc.RegisterInput
	err           error
}

func (s *stubAuthService) AdminLogin(ctx context.Context, username, password string) (*authsvc.AdminSession, error) {
	s.adminUsername = username
	if s.err != nil {
		return nil, s.err
	}
	return &authsvc.AdminSession{Token: "admin-token", ExpiresAt: time.Now().Add(time.Hour), Username: username}, nil
}

func (s *stubAuthService) UserLogin(ctx context.Context, email, password string) (*authsvc.UserSession, error) {
	s.userEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return &authsvc.UserSession{
		Token:     "user-token",
		ExpiresAt: time.Now().Add(2 * time.Hour),
		User:      authsvc.UserDTO{ID: 8, FullName: "Rosa Quintero", Email: email},
	}, nil
}

func (s *stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.UserDTO, error) {
	s.registered = &input
	if s.err != nil {
		return nil, s.err
	}
	return &authsvc.UserDTO{ID: 9, FullName: input.FullName, Email: input.Email}, nil
}

func TestAdminLoginReturnsSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"back-office","password":"s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	stub := &stubAuthService{}
	AdminLogin(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.adminUsername != "back-office" {
		t.Fatalf("unexpected username %q", stub.adminUsername)
	}
	var envelope struct {
		Data sessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Data.Token != "admin-token" || envelope.Data.Username != "back-office" {
		t.Fatalf("unexpected session payload: %+v", envelope.Data)
	}
	if envelope.Data.User != nil {
		t.Fatal("admin session must not carry a shopper account")
	}
}

func TestAdminLoginRequiresCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"back-office"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	AdminLogin(&stubAuthService{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdminLoginSurfacesUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"username":"back-office","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	AdminLogin(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid credentials") {
		t.Fatalf("expected passthrough message, got %s", rec.Body.String())
	}
}

func TestUserLoginReturnsAccount(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", strings.NewReader(`{"email":"rosa@example.com","password":"s3cret-pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	stub := &stubAuthService{}
	UserLogin(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data sessionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != "rosa@example.com" {
		t.Fatalf("unexpected account payload: %+v", envelope.Data)
	}
}

func TestRegisterUserValidatesPayload(t *testing.T) {
	cases := map[string]string{
		"missing name":   `{"email":"rosa@example.com","password":"longenough1"}`,
		"bad email":      `{"fullName":"Rosa Quintero","email":"not-an-email","password":"longenough1"}`,
		"short password": `{"fullName":"Rosa Quintero","email":"rosa@example.com","password":"short"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			stub := &stubAuthService{}
			RegisterUser(stub, testLogger()).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if stub.registered != nil {
				t.Fatal("service should not be reached on invalid payload")
			}
		})
	}
}

func TestRegisterUserCreatesAccount(t *testing.T) {
	payload := `{"fullName":"Rosa Quintero","email":"rosa@example.com","password":"longenough1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	stub := &stubAuthService{}
	RegisterUser(stub, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.registered == nil || stub.registered.Email != "rosa@example.com" {
		t.Fatalf("unexpected register input: %+v", stub.registered)
	}
}
