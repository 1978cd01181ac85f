package controllers

import (
	"net/http"
	"time"

	"github.com/ammargroup/storefront-backend/api/middleware"
	"github.com/ammargroup/storefront-backend/api/responses"
	"github.com/ammargroup/storefront-backend/api/validators"
	authsvc "github.com/ammargroup/storefront-backend/internal/auth"
	"github.com/ammargroup/storefront-backend/pkg/logger"
)

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Username  string           `json:"username,omitempty"`
	User      *authsvc.UserDTO `json:"user,omitempty"`
}

// AdminLogin authenticates a back-office account.
func AdminLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.AdminLogin(r.Context(), payload.Username, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			Username:  session.Username,
		})
	}
}

// AdminDashboard is a small authenticated probe for the back office.
func AdminDashboard(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"message":  "welcome back",
			"admin_id": middleware.AdminIDFromContext(r.Context()),
			"username": middleware.AdminUsernameFromContext(r.Context()),
		})
	}
}

type userLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserLogin authenticates a shopper account.
func UserLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload userLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UserLogin(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			User:      &session.User,
		})
	}
}

// UserProfile returns the account behind the shopper token.
func UserProfile(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"id":    middleware.UserIDFromContext(r.Context()),
			"email": middleware.UserEmailFromContext(r.Context()),
		})
	}
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterUser creates a shopper account. No token is issued here, the client
// follows up with a login call.
func RegisterUser(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Register(r.Context(), authsvc.RegisterInput{
			FullName: payload.FullName,
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": "user registered successfully",
			"user":    account,
		})
	}
}
