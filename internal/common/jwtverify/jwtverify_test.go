package jwtverify

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseTokenUserIDClaim(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": "user-1"})

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", claims.UserID)
	}
	if claims.IsAdmin {
		t.Error("no admin indicator should mean not admin")
	}
}

func TestParseTokenLegacyIDClaim(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"_id": "user-2"})

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != "user-2" {
		t.Errorf("expected legacy _id to be accepted, got %q", claims.UserID)
	}
}

func TestParseTokenAdminByRole(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": "a", "role": "admin"})

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if !claims.IsAdmin {
		t.Error("role admin should set IsAdmin")
	}
}

func TestParseTokenAdminByFlag(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": "a", "isAdmin": true})

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if !claims.IsAdmin {
		t.Error("isAdmin claim should set IsAdmin")
	}
}

func TestParseTokenNonAdminRole(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"userId": "a", "role": "user"})

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.IsAdmin {
		t.Error("role user must not set IsAdmin")
	}
}

func TestParseTokenMissingIdentifier(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "admin"})

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for token without a user identifier")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-ab"), jwt.MapClaims{"userId": "a"})

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for a token signed with a different secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"userId": "a",
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for an expired token")
	}
}

func TestParseTokenRejectsNonHS256(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS384, testSecret, jwt.MapClaims{"userId": "a"})

	if _, err := ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for a non-HS256 token")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("definitely-not-a-token", testSecret); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
