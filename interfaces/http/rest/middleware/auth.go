package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"observador-backend/application/ports"
	"observador-backend/pkg/auth"
	pkgerrors "observador-backend/pkg/errors"

	"go.uber.org/zap"
)

// APIKeyHeader carries the agent project key on webhook calls
const APIKeyHeader = "X-API-Key"

// Authenticate validates the bearer token and stores the user in the request
// context. Each user then spends from its own rate limit budget.
func Authenticate(
	jwt *auth.JWTService,
	limiter auth.RateLimiter,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) func(next http.Handler) http.Handler {
	userLimiter := auth.NewUserRateLimiter(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				errs.HandleStatus(w, r, http.StatusUnauthorized, "Missing or malformed authorization header")
				return
			}

			claims, err := jwt.ValidateToken(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					errs.HandleStatus(w, r, http.StatusUnauthorized, "Token has expired")
					return
				}
				errs.HandleStatus(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			user := auth.FromClaims(claims)
			if user.UserID == "" {
				errs.HandleStatus(w, r, http.StatusUnauthorized, "Token has no subject")
				return
			}

			if !allow(w, r, userLimiter, user.UserID, errs, logger) {
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
		})
	}
}

// AuthenticateAPIKey resolves the agent project behind X-API-Key. Only the
// hash of the key is looked up.
func AuthenticateAPIKey(
	agents ports.AgentRepository,
	limiter auth.RateLimiter,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) func(next http.Handler) http.Handler {
	agentLimiter := auth.NewAgentRateLimiter(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" {
				errs.Handle(w, r, pkgerrors.ErrInvalidAPIKey)
				return
			}

			project, err := agents.FindProjectByKeyHash(r.Context(), auth.HashAPIKey(key))
			if err != nil {
				if pkgerrors.IsDomainType(err, pkgerrors.DomainNotFoundError) {
					logger.Warn("Unknown API key", zap.String("keyPrefix", auth.KeyPrefix(key)))
					errs.Handle(w, r, pkgerrors.ErrInvalidAPIKey)
					return
				}
				errs.Handle(w, r, err)
				return
			}

			if !allow(w, r, agentLimiter, project.ID, errs, logger) {
				return
			}

			ctx := auth.SetAgentInContext(r.Context(), &auth.AgentContext{
				ProjectID: project.ID,
				UserID:    project.UserID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitByIP throttles callers by client address before any
// authentication work is done
func RateLimitByIP(limiter auth.RateLimiter, errs *pkgerrors.ErrorHandler, logger *zap.Logger) func(next http.Handler) http.Handler {
	ipLimiter := auth.NewIPRateLimiter(limiter)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(w, r, ipLimiter, clientIP(r), errs, logger) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// allow writes 429 and returns false once key has spent its budget. Limiter
// failures let the request through.
func allow(w http.ResponseWriter, r *http.Request, limiter auth.RateLimiter, key string, errs *pkgerrors.ErrorHandler, logger *zap.Logger) bool {
	allowed, err := limiter.Allow(r.Context(), key)
	if err != nil {
		logger.Warn("Rate limiter failed", zap.String("key", key), zap.Error(err))
	}
	if !allowed {
		errs.Handle(w, r, pkgerrors.ErrRateLimitExceeded)
		return false
	}
	return true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// clientIP prefers the address chi's RealIP middleware already resolved
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
