package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lshigami/jlpt-assessment/internal/dto"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

const (
	RoleAdmin  = "admin"
	RoleAuthor = "author"
)

// Identity is the caller extracted from the bearer token. Token issuance
// belongs to the auth service.
type Identity struct {
	UserID uint
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Claims is the token payload this service reads.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticate rejects requests without a valid HS256 bearer token.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseBearer(c.GetHeader("Authorization"), secret)
		if err != nil {
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("Authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized", Details: []string{err.Error()}})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole only lets callers holding one of roles through; the
// services check ownership of the individual test.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Unauthorized"})
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "Forbidden"})
	}
}

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func parseBearer(header, secret string) (Identity, error) {
	if secret == "" {
		return Identity{}, errors.New("authentication is not configured")
	}
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(raw) == "" {
		return Identity{}, errors.New("missing bearer token")
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return Identity{}, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return Identity{UserID: uint(uid), Role: claims.Role}, nil
}

// SignToken issues a token for tests and local tooling.
func SignToken(secret string, userID uint, role string) (string, error) {
	claims := Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatUint(uint64(userID), 10)},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
