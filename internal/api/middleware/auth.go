// Package middleware provides gin middleware shared by the API handlers.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/syncup-app/achievements/pkg/logger"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "user_id"

// Auth validates HS256 bearer tokens and stores the subject as the user ID.
func Auth(secret, issuer string, log *logger.Logger) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(c, "invalid authorization header format")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (any, error) {
			return key, nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(c, "token expired")
				return
			}
			log.Debug().Err(err).Msg("Rejected bearer token")
			unauthorized(c, "invalid token")
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 {
			unauthorized(c, "invalid token subject")
			return
		}

		c.Set(UserIDKey, uint(userID))
		c.Next()
	}
}

// UserID returns the authenticated user ID set by Auth.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// UserKey is a rate limit key function keyed by authenticated user.
func UserKey(c *gin.Context) string {
	id, ok := UserID(c)
	if !ok {
		return ""
	}
	return "user:" + strconv.FormatUint(uint64(id), 10)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     msg,
		"timestamp": time.Now().UTC(),
	})
}
