package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ua "github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderUserRole  = "X-User-Role"

	requestIDKey = "request_id"
	identityKey  = "identity"
)

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": requestID(c),
		}
		if raw := c.Request.UserAgent(); raw != "" {
			agent := ua.New(raw)
			browser, version := agent.Browser()
			fields["browser"] = strings.TrimSpace(browser + " " + version)
			fields["os"] = agent.OS()
			fields["bot"] = agent.Bot()
		}
		if who, ok := identityFrom(c); ok {
			fields["user_id"] = who.ID
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case status >= http.StatusBadRequest:
			entry.WithField("errors", c.Errors.String()).Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// Identity reads the caller asserted by the upstream identity proxy.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Error:     "missing caller identity",
				Code:      "unauthorized",
				RequestID: requestID(c),
			})
			return
		}
		c.Set(identityKey, domain.Identity{
			ID:          id,
			Email:       strings.TrimSpace(c.GetHeader(HeaderUserEmail)),
			DisplayName: strings.TrimSpace(c.GetHeader(HeaderUserName)),
			Role:        strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole))),
		})
		c.Next()
	}
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	who, ok := v.(domain.Identity)
	return who, ok
}

// caller returns the identity set by Identity. Handlers only run behind it.
func caller(c *gin.Context) domain.Identity {
	who, _ := identityFrom(c)
	return who
}
