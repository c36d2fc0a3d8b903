package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	identityKey     = "identity"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one and
// stores it in the request context for the logger.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// AccessLogMiddleware logs one record per request. Bodies and headers are
// not logged.
func AccessLogMiddleware(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"route", routeOf(c),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// MetricsMiddleware counts finished requests by method, route and status.
func MetricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.RequestsTotal.WithLabelValues(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

// routeOf returns the matched route template. Raw paths are never used as
// label values, so arbitrary 404 paths cannot grow the label set.
func routeOf(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return unmatchedRoute
}

// CORSMiddleware sets CORS headers for allowed origins. Requests from other
// origins pass through without the headers, so browsers block them.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[strings.ToLower(origin)]; ok {
				setCORSHeaders(c, origin)
			}
		}

		if c.Request.Method == http.MethodOptions && origin != "" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context, origin string) {
	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Vary", "Origin")
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
}

// RequireAuth runs the access gate. A missing token is answered with 401,
// a bad or expired one with 403.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.gate.Authorize(c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			reason := auth.RejectReason(err)
			s.metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
			s.logger.Warn(c.Request.Context(), "access denied", "route", routeOf(c), "reason", reason)

			if reason == auth.ReasonMissingToken {
				respondError(c, http.StatusUnauthorized, msgTokenRequired)
			} else {
				respondError(c, http.StatusForbidden, msgInvalidToken)
			}
			c.Abort()
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}
