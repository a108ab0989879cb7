package httpserver

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"fluxo-storefront/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
)

const sessionHeader = "X-Session-Id"

type ctxKey string

const (
	sessionCtxKey ctxKey = "session"
	profileCtxKey ctxKey = "profile"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// sessionMiddleware resolves the anonymous session id from X-Session-Id,
// issuing a new ksuid when the header is absent. The id is echoed back.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(sessionHeader))
		if id == "" {
			id = ksuid.New().String()
		} else if !sessionIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + sessionHeader})
			return
		}
		c.Header(sessionHeader, id)
		ctx := context.WithValue(c.Request.Context(), sessionCtxKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAuth resolves the bearer token to a profile or answers 401.
func requireAuth(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		profile, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), profileCtxKey, profile)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionID(c *gin.Context) string {
	id, _ := c.Request.Context().Value(sessionCtxKey).(string)
	return id
}

func profileFrom(c *gin.Context) (domain.Profile, bool) {
	p, ok := c.Request.Context().Value(profileCtxKey).(domain.Profile)
	return p, ok
}
