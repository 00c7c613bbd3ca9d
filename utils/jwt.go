package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenExpiry reports the exp claim of a JWT access token without verifying
// its signature. The signing key lives with the remote API; the client only
// needs to know whether sending the token is pointless. ok is false for
// opaque tokens and tokens without an exp claim.
func TokenExpiry(tokenString string) (exp time.Time, ok bool) {
	if tokenString == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	switch v := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	default:
		return time.Time{}, false
	}
}

// TokenExpired is true only when the token carries an exp claim that lies
// before now+skew.
func TokenExpired(tokenString string, now time.Time, skew time.Duration) bool {
	exp, ok := TokenExpiry(tokenString)
	if !ok {
		return false
	}
	return !exp.After(now.Add(skew))
}
