package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"galleryserv/src/app"
	"galleryserv/src/auth"
	"galleryserv/src/errs"
	"galleryserv/src/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	principalKey    = "principal"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-Id"
)

// RequestLogger tags every request with an id and stores a request-scoped
// logger in the request context. It writes one access-log line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		reqLog := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		logger.FromContext(c.Request.Context()).HTTPEvent(status).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// CORS applies the allow-list. Requests from other origins are served
// without CORS headers and left for the browser to reject.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[strings.ToLower(strings.TrimSpace(origin))] = struct{}{}
	}
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	_, allowAll := allowed["*"]

	apply := cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok || allowAll || origin == "" {
			apply(c)
			return
		}
		c.Next()
	}
}

// Preflight answers every OPTIONS request with 204. It runs after the CORS
// middleware, which has already written the Access-Control headers.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Authorize verifies the bearer token and binds the principal to the request.
func Authorize(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		log := logger.FromContext(c.Request.Context())

		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			log.Warn("missing or invalid Authorization header")
			abortWithError(c, "authenticate", errs.New(errs.KindUnauthorized, "Missing or invalid Authorization header"))
			return
		}

		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, "authenticate", classifyAuthError(log, err))
			return
		}

		c.Set(principalKey, principal)
		reqLog := log.With().Str("uid", principal.ID).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))
		reqLog.Infof("user authenticated: %s (uid: %s)", principal.DisplayName(), principal.ID)
		c.Next()
	}
}

func classifyAuthError(log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		log.Warn("expired token attempt")
		return errs.Wrap(errs.KindTokenExpired, "Your session has expired. Please sign in again.", err)
	case errors.Is(err, auth.ErrInvalidToken):
		log.Warnf("invalid token: %v", err)
		return errs.Wrap(errs.KindInvalidToken, "Authentication token is invalid", err)
	default:
		log.Errorf("token verification error: %v", err)
		return errs.Wrap(errs.KindAuthenticationFailed, err.Error(), err)
	}
}

// PrincipalFrom returns the principal bound by Authorize.
func PrincipalFrom(c *gin.Context) (app.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return app.Principal{}, false
	}
	principal, ok := value.(app.Principal)
	return principal, ok && principal.ID != ""
}
