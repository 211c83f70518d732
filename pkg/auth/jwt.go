package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// Claims are the fields read from the identity provider's access tokens.
// The subject is the user id every query is scoped to.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SecretKey string        // HS256 shared secret
	Issuer    string        // Expected issuer, empty to skip the check
	Audience  string        // Expected audience, empty to skip the check
	TTL       time.Duration // Lifetime of generated tokens
}

// JWTService validates bearer tokens and, for local tooling and tests,
// signs new ones with the same secret
type JWTService struct {
	secretKey []byte
	issuer    string
	audience  string
	ttl       time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key required for HS256")
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	return &JWTService{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		ttl:       cfg.TTL,
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}
	return claims, nil
}

// GenerateToken signs a token for userID
func (s *JWTService) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// UserContext represents user information from JWT
type UserContext struct {
	UserID string
	Email  string
	Role   string
}

// FromClaims builds the request user from validated claims
func FromClaims(c *Claims) *UserContext {
	return &UserContext{UserID: c.Subject, Email: c.Email, Role: c.Role}
}

type contextKey string

const (
	userContextKey  contextKey = "user"
	agentContextKey contextKey = "agent"
)

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// AgentContext identifies the agent project behind a webhook call
type AgentContext struct {
	ProjectID string
	UserID    string
}

// SetAgentInContext adds the authenticated agent project to context
func SetAgentInContext(ctx context.Context, agent *AgentContext) context.Context {
	return context.WithValue(ctx, agentContextKey, agent)
}

// GetAgentFromContext extracts the agent project from context
func GetAgentFromContext(ctx context.Context) (*AgentContext, error) {
	agent, ok := ctx.Value(agentContextKey).(*AgentContext)
	if !ok || agent == nil {
		return nil, errors.New("agent not found in context")
	}
	return agent, nil
}

// HasRole reports whether the user carries one of roles
func (u *UserContext) HasRole(roles ...string) bool {
	return slices.Contains(roles, u.Role)
}
