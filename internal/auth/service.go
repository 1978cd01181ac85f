package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/auth"
	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/db/models"
	pkgerrors "github.com/ammargroup/storefront-backend/pkg/errors"
	"github.com/ammargroup/storefront-backend/pkg/security"
	"gorm.io/gorm"
)

// Service exposes login and registration for admins and shoppers.
type Service interface {
	AdminLogin(ctx context.Context, username, password string) (*AdminSession, error)
	UserLogin(ctx context.Context, email, password string) (*UserSession, error)
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
}

// AdminSession is a successful admin login.
type AdminSession struct {
	Token     string
	ExpiresAt time.Time
	Username  string
}

// UserSession is a successful shopper login or registration.
type UserSession struct {
	Token     string
	ExpiresAt time.Time
	User      UserDTO
}

// UserDTO is the account representation returned to the storefront.
type UserDTO struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// RegisterInput holds the validated registration payload.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

type adminLoader interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
}

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type service struct {
	admins      adminLoader
	users       userStore
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService constructs the auth service.
func NewService(admins adminLoader, users userStore, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if admins == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if jwtCfg.Secret == "" || jwtCfg.Issuer == "" {
		return nil, fmt.Errorf("jwt config required")
	}
	return &service{
		admins:      admins,
		users:       users,
		jwtConfig:   jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// AdminLogin verifies admin credentials and mints a session token. Missing
// accounts and bad passwords produce the same message.
func (s *service) AdminLogin(ctx context.Context, username, password string) (*AdminSession, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load admin")
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	now := s.now()
	token, err := auth.MintAdminToken(s.jwtConfig, now, admin.ID, admin.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting admin token")
	}

	return &AdminSession{
		Token:     token,
		ExpiresAt: now.Add(s.jwtConfig.AdminTTL()),
		Username:  admin.Username,
	}, nil
}

// UserLogin verifies shopper credentials and mints a session token.
func (s *service) UserLogin(ctx context.Context, email, password string) (*UserSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}

	return s.mintUserSession(user)
}

// Register creates a shopper account. No token is issued on this path, the
// caller signs in separately.
func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fullName, email and password are required")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}

	return &UserDTO{ID: user.ID, FullName: user.FullName, Email: user.Email}, nil
}

func (s *service) mintUserSession(user *models.User) (*UserSession, error) {
	now := s.now()
	token, err := auth.MintUserToken(s.jwtConfig, now, user.ID, user.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting user token")
	}
	return &UserSession{
		Token:     token,
		ExpiresAt: now.Add(s.jwtConfig.UserTTL()),
		User: UserDTO{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
		},
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}
