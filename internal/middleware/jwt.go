package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/edulegit-bridge/internal/models"
	appErrors "github.com/noah-isme/edulegit-bridge/pkg/errors"
	"github.com/noah-isme/edulegit-bridge/pkg/response"
)

// ContextUserKey is the gin context key storing API claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid host-platform bearer token.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := parseToken(parts[1], secret)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the acting user's claims, or nil.
func ClaimsFromContext(c *gin.Context) *models.APIClaims {
	if v, exists := c.Get(ContextUserKey); exists {
		if claims, ok := v.(*models.APIClaims); ok {
			return claims
		}
	}
	return nil
}

func parseToken(raw, secret string) (*models.APIClaims, error) {
	claims := &models.APIClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token invalid")
	}
	return claims, nil
}
