package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "type" claim
const (
	TokenTypeClient = "sync_client" // this instance talking to the REST service
	TokenTypeBridge = "bridge"      // a local UI talking to the bridge
)

// refreshBefore is how long before expiry a cached token is replaced
const refreshBefore = time.Minute

// Signer issues HS256 tokens for one instance and reuses them until shortly before expiry
type Signer struct {
	instanceID string
	tokenType  string
	secret     []byte
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewSigner creates a signer. ttl is clamped to at least two minutes.
func NewSigner(instanceID, tokenType, secret string, ttl time.Duration) *Signer {
	if ttl < 2*refreshBefore {
		ttl = 2 * refreshBefore
	}
	return &Signer{
		instanceID: instanceID,
		tokenType:  tokenType,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        time.Now,
	}
}

// Token returns a valid signed token
func (s *Signer) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(refreshBefore).Before(s.expires) {
		return s.token, nil
	}

	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"id":   s.instanceID,
		"type": s.tokenType,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	s.token, s.expires = token, expires
	return token, nil
}

// Validate parses an HS256 token and checks its type claim
func Validate(tokenString, secret, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims["type"] != tokenType {
		return nil, fmt.Errorf("invalid token type: %v", claims["type"])
	}
	return claims, nil
}
