package router

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/models"
	"musicosbooking.pt/api/pkg/security"
)

const (
	requestIDHeader = "X-Request-ID"
	adminKeyHeader  = "X-Admin-Key"
	csrfHeader      = "X-CSRF-Token"

	requestIDKey = "request_id"
	tokenKey     = "bearer_token"
)

var (
	errAdminKey      = apperr.Auth("admin_key_invalid", "Chave de administração inválida")
	errMusicianOnly  = apperr.Forbidden("musician_only", "Apenas músicos podem publicar anúncios")
	errTooManyQuotes = apperr.RateLimited("too_many_requests", "Demasiados pedidos. Tente novamente mais tarde.")
)

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger writes one access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}
		event.
			Str("request_id", requestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery turns panics into the generic 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("request_id", requestID(c)).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, global.ErrorResponse(internalErrorMessage, nil))
	})
}

func bearerToken(c *gin.Context) string {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth resolves the bearer token and attaches the identity to the request
// context.
func (h *Handler) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		id, err := h.Accounts.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(tokenKey, token)
		c.Request = c.Request.WithContext(models.ContextWithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func identity(c *gin.Context) models.Identity {
	id, _ := models.IdentityFromContext(c.Request.Context())
	return id
}

// MusicianOnly must run after Auth.
func MusicianOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity(c).Type != models.UserMusician {
			respondError(c, errMusicianOnly)
			return
		}
		c.Next()
	}
}

// AdminKey guards the back-office routes. An empty key disables them.
func (h *Handler) AdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(adminKeyHeader)
		if h.AdminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminAPIKey)) != 1 {
			log.Warn().Str("event", "admin_key_rejected").Str("ip", c.ClientIP()).Msg("security event")
			respondError(c, errAdminKey)
			return
		}
		c.Next()
	}
}

// RateLimit throttles a route per client IP.
func RateLimit(limiter *security.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		decision, err := limiter.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			respondError(c, apperr.External(internalErrorMessage, err))
			return
		}
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(decision.RetryAfter.Round(time.Second).Seconds())))
			respondError(c, errTooManyQuotes)
			return
		}
		c.Next()
	}
}

// CSRFCheck consumes the X-CSRF-Token header.
func (h *Handler) CSRFCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.CSRF.Validate(c.Request.Context(), c.GetHeader(csrfHeader)); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}
