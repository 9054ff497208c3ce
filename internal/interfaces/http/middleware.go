package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/entity"
)

const (
	sessionKey   = "session"
	requestIDKey = "request_id"
)

// SessionClaims are the bearer-token claims a session is built from.
// The subject carries the actor ID.
type SessionClaims struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID string `json:"org,omitempty"`
	SupplierID     string `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	Secret string
	Issuer string // checked when set
}

// requestID tags each request with an ID, reusing the caller's when given
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// cors allows browser portals on other origins to call the API
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []interface{}{
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}
		if session, ok := sessionFrom(c); ok {
			fields = append(fields, "actor_id", session.ActorID)
		}

		if status >= http.StatusInternalServerError {
			s.logger.Error("HTTP request", fields...)
			return
		}
		s.logger.Info("HTTP request", fields...)
	}
}

// sessionAuth verifies the bearer token and stores the resolved session
func sessionAuth(cfg AuthConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(c, "authorization is required")
			return
		}

		claims := &SessionClaims{}
		_, err := parser.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
			return []byte(cfg.Secret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				unauthorized(c, "token expired")
				return
			}
			unauthorized(c, "invalid token")
			return
		}

		session, err := claims.Session()
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Session resolves the caller from verified claims
func (sc *SessionClaims) Session() (entity.Session, error) {
	role := entity.Role(strings.ToUpper(sc.Role))
	if !role.IsValid() {
		return entity.Session{}, errors.New("unknown role")
	}
	if sc.Subject == "" {
		return entity.Session{}, errors.New("token has no subject")
	}
	if role == entity.RoleSupplier && sc.SupplierID == "" {
		return entity.Session{}, errors.New("supplier token has no supplier_id")
	}

	return entity.Session{
		ActorID:        sc.Subject,
		ActorName:      sc.Name,
		Role:           role,
		OrganizationID: sc.OrganizationID,
		SupplierID:     sc.SupplierID,
	}, nil
}

func sessionFrom(c *gin.Context) (entity.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return entity.Session{}, false
	}
	session, ok := v.(entity.Session)
	return session, ok
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Success: false,
		Error:   message,
		Code:    "UNAUTHORIZED",
	})
}
