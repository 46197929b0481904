package app

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/gymstack/gymstack/internal/observability"
	"github.com/gymstack/gymstack/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
}

// principalHeader carries the authenticated user id, injected by the upstream
// proxy after token verification. Token mechanics live outside this service.
const principalHeader = "X-User-ID"

// principalMiddleware stores the upstream-authenticated user id in context.
// Requests without the header pass through unauthenticated; the authorization
// gates answer 401 where a principal is required.
func principalMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(principalHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				logger.Warn("malformed principal header", slog.String("value", raw))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithUserID(r.Context(), userID)))
		})
	}
}

// MiddlewareStack installs the default middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	return []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		secureMiddleware.Handler,
		httprate.LimitByIP(300, time.Minute),
		cfg.Metrics.Middleware,
		principalMiddleware(cfg.Logger),
	}
}
