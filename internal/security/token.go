package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mroshb/hanglight/internal/auth"
)

const defaultTokenTTL = 24 * time.Hour

type Claims struct {
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	Handle    string `json:"handle,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts validated claims into the identity the core provisions.
func (c *Claims) Identity() *auth.Identity {
	id := &auth.Identity{ID: c.ProfileID, Email: c.Email}
	if c.Handle != "" {
		id.Metadata = map[string]string{auth.MetadataHandle: c.Handle}
	}
	return id
}

// GenerateJWT creates a new JWT token for an identity. A zero ttl means 24h.
func GenerateJWT(identity *auth.Identity, secret string, ttl time.Duration) (string, error) {
	if identity == nil || identity.ID == "" {
		return "", fmt.Errorf("identity id is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	claims := &Claims{
		ProfileID: identity.ID,
		Email:     identity.Email,
		Handle:    identity.Handle(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT validates and parses a JWT token
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.ProfileID != "" {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// JWTProvider is an auth.Provider backed by HS256 bearer tokens. It holds at
// most one signed-in identity at a time.
type JWTProvider struct {
	secret string

	mu       sync.RWMutex
	current  *auth.Identity
	handlers map[int]func(auth.Event)
	nextID   int
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{
		secret:   secret,
		handlers: make(map[int]func(auth.Event)),
	}
}

func (p *JWTProvider) GetSession(ctx context.Context) (*auth.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, nil
}

func (p *JWTProvider) OnAuthStateChange(handler func(auth.Event)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = handler
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

// SignIn validates token and, on success, notifies subscribers.
func (p *JWTProvider) SignIn(token string) (*auth.Identity, error) {
	claims, err := ValidateJWT(token, p.secret)
	if err != nil {
		return nil, err
	}

	identity := claims.Identity()
	p.mu.Lock()
	p.current = identity
	p.mu.Unlock()

	p.emit(auth.Event{Type: auth.SignedIn, Identity: identity})
	return identity, nil
}

// SignOut drops the current identity and notifies subscribers.
func (p *JWTProvider) SignOut() {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if wasSignedIn {
		p.emit(auth.Event{Type: auth.SignedOut})
	}
}

func (p *JWTProvider) emit(event auth.Event) {
	p.mu.RLock()
	handlers := make([]func(auth.Event), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
