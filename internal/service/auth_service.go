package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bolx/internal/config"
	"bolx/internal/domain"
)

const accessAudience = "access"

// Claims represents the JWT claims of an API caller.
type Claims struct {
	jwt.RegisteredClaims
	Role domain.Role `json:"role"`
}

// IssuedToken is a signed access token.
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	IssueToken(subject string, role domain.Role, ttl time.Duration) (*IssuedToken, error)
	ValidateToken(tokenString string) (*Claims, error)
	ValidateAPIKey(key string) (*Claims, error)
}

type authService struct {
	jwtCfg  config.JWTConfig
	keyHash [][]byte
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(jwtCfg config.JWTConfig, authCfg config.AuthConfig) AuthService {
	hashes := make([][]byte, 0, len(authCfg.APIKeyHashes))
	for _, h := range authCfg.APIKeyHashes {
		if h = strings.TrimSpace(h); h != "" {
			hashes = append(hashes, []byte(h))
		}
	}
	return &authService{jwtCfg: jwtCfg, keyHash: hashes}
}

func (s *authService) IssueToken(subject string, role domain.Role, ttl time.Duration) (*IssuedToken, error) {
	if subject == "" {
		return nil, errors.New("subject is required")
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		ttl = s.jwtCfg.AccessTokenExpiry
	}

	now := time.Now()
	expiry := now.Add(ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	return &IssuedToken{AccessToken: signed, ExpiresAt: expiry}, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithAudience(accessAudience))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// ValidateAPIKey compares key against every configured bcrypt hash. A match
// authenticates as a service caller.
func (s *authService) ValidateAPIKey(key string) (*Claims, error) {
	if key == "" {
		return nil, domain.ErrUnauthorized
	}
	for _, h := range s.keyHash {
		if bcrypt.CompareHashAndPassword(h, []byte(key)) == nil {
			return &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "api-key"},
				Role:             domain.RoleService,
			}, nil
		}
	}
	return nil, domain.ErrUnauthorized
}
