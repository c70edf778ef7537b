package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/teamgate/internal/credentials"
)

const (
	contextUserIDKey = "user_id"
	contextOrgIDKey  = "org_id"
	contextRoleKey   = "role"
	contextEmailKey  = "email"
)

// AuthRequired validates the bearer access token and stashes the caller's
// identity on the gin context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.issuer.VerifyAccess(raw)
		if err != nil {
			AbortWithError(c, credentials.ErrInvalidToken)
			return
		}

		c.Set(contextUserIDKey, claims.Subject)
		c.Set(contextOrgIDKey, claims.OrgID)
		c.Set(contextRoleKey, claims.Role)
		c.Set(contextEmailKey, claims.Email)
		c.Next()
	}
}

// RequireOrgAction gates the route on the caller's role in their org.
func (s *Server) RequireOrgAction(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		orgID, ok := orgIDFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subject := "user:" + userID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, orgID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// ClientRateLimit throttles unauthenticated auth endpoints per client
// address. A redis outage fails open.
func (s *Server) ClientRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.limiter.AllowClient(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("rate limiter unavailable, failing open")
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", formatRetryAfter(result.RetryAfter))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func formatRetryAfter(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func userIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	raw, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	value, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func orgIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	raw, ok := c.Get(contextOrgIDKey)
	if !ok {
		return 0, false
	}
	value, ok := raw.(string)
	if !ok {
		return 0, false
	}
	id, err := snowflake.ParseString(value)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func roleFromContext(c *gin.Context) string {
	raw, ok := c.Get(contextRoleKey)
	if !ok {
		return ""
	}
	value, _ := raw.(string)
	return value
}
