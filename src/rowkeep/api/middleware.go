package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"

	claimsKey    = "claims"
	requestIDKey = "request_id"
)

// respondError aborts the request with the status and body derived from err
func respondError(c *gin.Context, err error) {
	status := errors.GetHTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("Request failed", "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)
	}
	c.AbortWithStatusJSON(status, errors.NewResponse(err))
}

// RequestID assigns every request an ID, reusing a well-formed incoming one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// rateLimit returns middleware limiting each client to limit requests per
// minute within the named bucket
func (a *API) rateLimit(bucket string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims := getClaims(c); claims != nil {
			key = "sub:" + claims.Subject
		}
		if ok, wait := a.rateLimiter.Reserve(bucket+":"+key, limit); !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errors.ErrRateLimited.ToResponse())
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// scopeRequired is a middleware that requires a token granting scope.
// It lets every request through when authentication is disabled.
func (a *API) scopeRequired(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.tokens.Enabled() {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			respondError(c, errors.ErrNoToken)
			return
		}

		claims, err := a.tokens.Validate(token)
		if err != nil {
			respondError(c, err)
			return
		}

		if !claims.HasScope(scope) {
			respondError(c, errors.ErrInsufficientScope.WithMessagef("token lacks %s scope", scope))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// getClaims retrieves the token claims stored by scopeRequired
func getClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
