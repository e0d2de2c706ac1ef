package token

import (
	"errors"
	"fmt"
	"time"

	autherrors "go-hrms/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

type Claims struct {
	UserID      string `json:"user_id"`
	IsSuperuser bool   `json:"is_superuser"`
	TokenType   Type   `json:"token_type"`
	jwt.RegisteredClaims
}

type Pair struct {
	Access  string
	Refresh string
}

// Manager issues and verifies HS256 tokens.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for issuing and validating tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) Issue(userID uuid.UUID, isSuperuser bool) (Pair, error) {
	access, err := m.sign(userID, isSuperuser, TypeAccess, m.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := m.sign(userID, isSuperuser, TypeRefresh, m.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse verifies raw and requires it to be of the expected type, so a refresh
// token is never accepted as an access token and vice versa.
func (m *Manager) Parse(raw string, expected Type) (*Claims, error) {
	if raw == "" {
		return nil, autherrors.ErrTokenNotFound
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken
	}
	if !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}
	if claims.TokenType != expected {
		return nil, autherrors.ErrWrongTokenType
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, autherrors.ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) sign(userID uuid.UUID, isSuperuser bool, typ Type, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		UserID:      userID.String(),
		IsSuperuser: isSuperuser,
		TokenType:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}
