package server

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"mooworld/types"
)

// playerClaims is the JWT payload issued on login and consumed on attach:
// "attach (reuse an auth token on a new session)".
type playerClaims struct {
	Player int64 `json:"player"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the session-reuse tokens handed out on
// login. Each server process uses its own random signing key, so tokens do
// not survive a restart — a new login is required after one.
type TokenIssuer struct {
	mu  sync.Mutex
	key []byte
}

func newTokenIssuer() *TokenIssuer {
	key := make([]byte, 32)
	_, _ = rand.Read(key)
	return &TokenIssuer{key: key}
}

// Issue returns a signed token binding the given player object id, valid
// for the given duration.
func (ti *TokenIssuer) Issue(player types.ObjID, ttl time.Duration) (string, error) {
	ti.mu.Lock()
	key := ti.key
	ti.mu.Unlock()

	claims := playerClaims{
		Player: int64(player),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(key)
}

// Verify decodes a token issued by Issue and returns the bound player id.
func (ti *TokenIssuer) Verify(token string) (types.ObjID, error) {
	ti.mu.Lock()
	key := ti.key
	ti.mu.Unlock()

	claims := &playerClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return types.ObjNothing, fmt.Errorf("invalid auth token: %w", err)
	}
	return types.ObjID(claims.Player), nil
}
