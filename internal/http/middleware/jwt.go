package middleware

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var errInvalidToken = errors.New("invalid token")

// GenerateDeviceToken signs a token embedding displayID in the "sub" claim.
// It is the pairing-side mint: the server never issues tokens itself, and
// this is kept for tooling and tests that need a token DeviceAuth accepts.
// A zero ttl produces a token without expiry.
func GenerateDeviceToken(displayID int, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": displayID,
		"typ": "device",
		"iat": time.Now().Unix(),
	}
	if ttl != 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseDeviceToken verifies signature and expiry and returns the display id.
func parseDeviceToken(tokenString, secret string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 || sub != float64(int(sub)) {
		return 0, errInvalidToken
	}
	return int(sub), nil
}
