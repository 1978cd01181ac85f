package auth

import "github.com/golang-jwt/jwt/v5"

// AdminClaims is the typed JWT issued to back-office operators.
type AdminClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaims is the typed JWT issued to shoppers.
type UserClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
