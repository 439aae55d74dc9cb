package auth

import (
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims identifies the authenticated planner for a request
type UserClaims interface {
	UserID() string
	Source() string
}

// JWTClaims are parsed from a bearer token
type JWTClaims struct {
	UserUUID string `json:"sub"`
	jwt.RegisteredClaims
}

func (c *JWTClaims) UserID() string { return c.UserUUID }
func (c *JWTClaims) Source() string { return "JWT" }

// ParseToken validates an HS256 bearer token against JWT_SECRET and
// returns its claims.
func ParseToken(tokenString string) (*JWTClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not configured")
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserUUID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
