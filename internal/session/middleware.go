package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxClaimsKey = "session_claims"
	CtxFacadeKey = "session_facade"
)

// SessionMiddleware resolves the bearer token to a live session. Browsers
// cannot set headers on websocket upgrades, so a "token" query parameter is
// accepted as well.
func SessionMiddleware(tokens *SessionTokens, sessions *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Verify(raw)
		if errors.Is(err, ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		facade, err := sessions.Get(claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxFacadeKey, facade)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > len("Bearer ") && strings.EqualFold(h[:len("Bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return strings.TrimSpace(c.Query("token"))
}

func MustGetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}

func MustGetFacade(c *gin.Context) *Facade {
	v, ok := c.Get(CtxFacadeKey)
	if !ok {
		return nil
	}
	f, _ := v.(*Facade)
	return f
}
