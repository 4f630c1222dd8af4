package controller

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-receipts/app/session"
	"golang.org/x/time/rate"
)

const adminSessionKey = "admin_session"

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			requestID := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderXRequestID))
			if requestID == "" {
				requestID = uuid.NewString()
				ctx.Request().Header.Set(echo.HeaderXRequestID, requestID)
			}
			ctx.Response().Header().Set(echo.HeaderXRequestID, requestID)
			return next(ctx)
		}
	}
}

// LoginRateLimiter throttles requests per client IP.
type LoginRateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    sync.Mutex
	rate  rate.Limit
	burst int
}

func NewLoginRateLimiter(perMinute, burst int) *LoginRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	return &LoginRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		rate:  rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
	}
}

func (rl *LoginRateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.ips[ip]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.ips[ip] = limiter
	return limiter
}

func (rl *LoginRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !rl.limiter(ctx.RealIP()).Allow() {
				return writeError(ctx, http.StatusTooManyRequests, "Too many login attempts, please try again later")
			}
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) string {
	header := strings.TrimSpace(ctx.Request().Header.Get(echo.HeaderAuthorization))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func adminSessionFromContext(ctx echo.Context) *session.AdminSession {
	sess, _ := ctx.Get(adminSessionKey).(*session.AdminSession)
	return sess
}

func adminActor(ctx echo.Context) string {
	if sess := adminSessionFromContext(ctx); sess != nil {
		return sess.Username
	}
	return ""
}

func pageOrDefault(page int32) int32 {
	if page <= 0 {
		return 1
	}
	return page
}

func limitOrDefault(limit int32) int32 {
	if limit <= 0 {
		return 10
	}
	return limit
}
