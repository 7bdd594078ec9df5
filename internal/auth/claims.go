// ABOUTME: Local JWT claim inspection for persisted tokens
// ABOUTME: Unverified parse of the exp claim; the gateway stays authoritative

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired reports whether the token carries an exp claim in the past.
// The signature is not verified; this is a fast local pre-check so a
// restore doesn't waste a round trip on a token the gateway is certain
// to reject. Tokens that fail to parse or lack an exp claim are NOT
// reported expired, since only the gateway can judge those.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
