// Package middleware provides the authentication middleware: it reads the
// bearer token, verifies it, and attaches the resulting Call Context to the
// request. Everything downstream receives the caller explicitly.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextCallerKey is the gin context key for the authenticated Call Context.
const ContextCallerKey = "caller"

const errInvalidToken = "invalid token"

// AuthRequired returns middleware that validates HMAC-signed bearer tokens
// and injects the Call Context. Requests with a missing, malformed, or
// expired token are rejected with 401.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing token")
			return
		}

		caller, err := ReadClaims(rawToken, cfg.GetJWTSecret())
		if err != nil {
			abortUnauthorized(c, errInvalidToken)
			return
		}

		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// ReadClaims verifies the token signature and expiry, and builds the Call
// Context from its claims. The reader is pure beyond the key.
func ReadClaims(rawToken string, secret []byte) (tenancy.Caller, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return tenancy.Caller{}, errors.New(errInvalidToken)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return tenancy.Caller{}, errors.New(errInvalidToken)
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return tenancy.Caller{}, errors.New(errInvalidToken)
	}

	caller := tenancy.Caller{
		Subject:     subject,
		Authorities: extractAuthorities(claims["authorities"]),
	}

	if raw, ok := claims["organizationId"].(string); ok && strings.TrimSpace(raw) != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			return tenancy.Caller{}, errors.New(errInvalidToken)
		}
		caller.TenantID = &tenantID
	}

	return caller, nil
}

// RequireAuthority returns middleware that checks the caller's authorities.
// Root admins pass every check.
func RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if caller.IsRootAdmin() || caller.HasAuthority(authority) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// GetCaller extracts the Call Context from a Gin context.
func GetCaller(c *gin.Context) (tenancy.Caller, bool) {
	value, ok := c.Get(ContextCallerKey)
	if !ok {
		return tenancy.Caller{}, false
	}

	caller, ok := value.(tenancy.Caller)
	return caller, ok
}

// MustGetCaller extracts the Call Context, aborting with 401 when absent.
// Returns false when the request was aborted.
func MustGetCaller(c *gin.Context) (tenancy.Caller, bool) {
	caller, ok := GetCaller(c)
	if !ok {
		abortUnauthorized(c, "unauthorized")
		return tenancy.Caller{}, false
	}
	return caller, true
}

func extractAuthorities(value interface{}) []string {
	authorities := make([]string, 0)
	if value == nil {
		return authorities
	}

	switch typed := value.(type) {
	case []string:
		return append(authorities, typed...)
	case []interface{}:
		for _, item := range typed {
			if text, ok := item.(string); ok {
				authorities = append(authorities, text)
			}
		}
	}

	return authorities
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}

	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}

	return rawToken, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
