// Package jwthelper issues and verifies the HS256 tokens that identify admins
// and parents.
package jwthelper

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skarbek/skarbek-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the verified payload of a token.
type Claims struct {
	Role    domain.Role `json:"role"`
	Version int         `json:"ver,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the identity attached to a request.
func (c Claims) Principal() (domain.Principal, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return domain.Principal{}, ErrInvalidToken
	}

	return domain.Principal{
		Subject:      uint(id),
		Role:         c.Role,
		TokenVersion: c.Version,
	}, nil
}

type Manager struct {
	key []byte
	now func() time.Time
}

func NewManager(signingKey string) *Manager {
	return &Manager{
		key: []byte(signingKey),
		now: time.Now,
	}
}

// WithClock returns a copy of m that reads time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	return &Manager{
		key: m.key,
		now: now,
	}
}

// Issue signs a token for the principal that expires ttl from now.
func (m *Manager) Issue(subject uint, role domain.Role, version int, ttl time.Duration) (string, error) {
	issuedAt := m.now()

	claims := Claims{
		Role:    role,
		Version: version,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subject), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, nil
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// token. Any other input yields ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (Claims, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			return m.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleParent {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
