// Package middleware holds the gin handlers that run before the controllers:
// bearer authentication, role gates, request validation tags and request logging.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lshigami/examcore/config"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/repository"
	"github.com/rs/zerolog/log"
)

const userIDKey = "userID"

var errNoSecret = errors.New("jwt secret is not configured")

// Claims are issued by the accounts service. Only the subject is trusted;
// roles are always read from the user record.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(cfg *config.Config) *Authenticator {
	return &Authenticator{secret: []byte(cfg.Auth.JWTSecret)}
}

// Issue signs an HS256 token for userID. The accounts service owns login;
// this exists for local runs and tests.
func (a *Authenticator) Issue(userID uuid.UUID, role model.Role, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errNoSecret
	}
	now := time.Now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies the token and returns its subject as a user ID.
func (a *Authenticator) Parse(tokenStr string) (uuid.UUID, error) {
	if len(a.secret) == 0 {
		return uuid.Nil, errNoSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, errors.New("token is not valid")
	}
	return uuid.Parse(claims.Subject)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's user ID in the context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing bearer token"})
			return
		}
		userID, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.Warn().Err(err).Str("path", ctx.FullPath()).Msg("Rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid bearer token"})
			return
		}
		ctx.Set(userIDKey, userID)
		ctx.Next()
	}
}

// RequireRole lets the request through only when the authenticated user has
// one of the given roles. It must run after RequireAuth.
func RequireRole(users repository.UserRepository, roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := users.GetUser(ctx.Request.Context(), CurrentUser(ctx))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unknown user"})
				return
			}
			log.Error().Err(err).Msg("RequireRole: Failed to load user")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load user"})
			return
		}
		for _, r := range roles {
			if user.Role == r {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "insufficient role"})
	}
}

// CurrentUser returns the ID stored by RequireAuth, or uuid.Nil.
func CurrentUser(ctx *gin.Context) uuid.UUID {
	if v, ok := ctx.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
