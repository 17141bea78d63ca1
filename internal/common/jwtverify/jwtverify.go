package jwtverify

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the access-token payload the backend cares about.
// Tokens are issued by the account service; this package only verifies them.
type Claims struct {
	UserID  string
	IsAdmin bool
}

// ParseToken verifies an HS256 token against the shared secret and extracts
// the user identifier and admin indicator. The identifier may arrive as
// "userId" or the legacy "_id" claim; the admin indicator as role == "admin"
// or a boolean "isAdmin" claim.
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return Claims{}, err
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims type")
	}

	userID, _ := mapClaims["userId"].(string)
	if userID == "" {
		userID, _ = mapClaims["_id"].(string)
	}
	if userID == "" {
		return Claims{}, errors.New("missing user identifier claim")
	}

	role, _ := mapClaims["role"].(string)
	isAdmin, _ := mapClaims["isAdmin"].(bool)

	return Claims{
		UserID:  userID,
		IsAdmin: role == "admin" || isAdmin,
	}, nil
}
