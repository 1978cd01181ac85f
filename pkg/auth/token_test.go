package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "secret",
		Issuer:          "storefront",
		AdminTTLMinutes: 60,
		UserTTLMinutes:  120,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAdminToken(cfg, now, 7, "ammar")
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token does not look like a JWT: %q", token)
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAdminToken returned error: %v", err)
	}
	if claims.AdminID != 7 || claims.Username != "ammar" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(now).Round(time.Minute); got != time.Hour {
		t.Fatalf("expected 1h expiry, got %v", got)
	}
}

func TestMintAndParseUserToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintUserToken(cfg, now, 11, "buyer@example.com")
	if err != nil {
		t.Fatalf("MintUserToken returned error: %v", err)
	}

	claims, err := ParseUserToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseUserToken returned error: %v", err)
	}
	if claims.UserID != 11 || claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if got := claims.ExpiresAt.Time.Sub(now).Round(time.Minute); got != 2*time.Hour {
		t.Fatalf("expected 2h expiry, got %v", got)
	}
}

func TestParseAdminTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	issuedAt := time.Now().UTC().Add(-2 * time.Hour)

	token, err := MintAdminToken(cfg, issuedAt, 1, "ammar")
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}
	if _, err := ParseAdminToken(cfg, token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAdminToken(cfg, time.Now().UTC(), 1, "ammar")
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAdminToken(other, token); err == nil {
		t.Fatal("expected signature mismatch to fail verification")
	}
}

func TestParseAdminTokenRejectsUserToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintUserToken(cfg, time.Now().UTC(), 3, "buyer@example.com")
	if err != nil {
		t.Fatalf("MintUserToken returned error: %v", err)
	}

	claims, err := ParseAdminToken(cfg, token)
	if err != nil {
		return
	}
	// Shopper tokens carry no admin_id; the zero value must never grant access.
	if claims.AdminID != 0 {
		t.Fatalf("unexpected admin id %d", claims.AdminID)
	}
}

func TestMintRequiresConfig(t *testing.T) {
	if _, err := MintAdminToken(config.JWTConfig{}, time.Now(), 1, "x"); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
