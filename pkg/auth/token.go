package auth

import (
	"fmt"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// MintAdminToken issues a signed JWT for an admin with the configured TTL.
func MintAdminToken(cfg config.JWTConfig, now time.Time, adminID int64, username string) (string, error) {
	if err := validateConfig(cfg); err != nil {
		return "", err
	}
	if cfg.AdminTTLMinutes <= 0 {
		return "", fmt.Errorf("admin token TTL must be positive")
	}

	claims := AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AdminTTL())),
		},
	}

	return sign(cfg, claims)
}

// MintUserToken issues a signed JWT for a shopper with the configured TTL.
func MintUserToken(cfg config.JWTConfig, now time.Time, userID int64, email string) (string, error) {
	if err := validateConfig(cfg); err != nil {
		return "", err
	}
	if cfg.UserTTLMinutes <= 0 {
		return "", fmt.Errorf("user token TTL must be positive")
	}

	claims := UserClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.UserTTL())),
		},
	}

	return sign(cfg, claims)
}

// ParseAdminToken validates the JWT string and returns typed admin claims.
func ParseAdminToken(cfg config.JWTConfig, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := parse(cfg, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseUserToken validates the JWT string and returns typed shopper claims.
func ParseUserToken(cfg config.JWTConfig, tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := parse(cfg, tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func validateConfig(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return fmt.Errorf("jwt issuer is required")
	}
	return nil
}

func sign(cfg config.JWTConfig, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func parse(cfg config.JWTConfig, tokenString string, claims jwt.Claims) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}

	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	return err
}
