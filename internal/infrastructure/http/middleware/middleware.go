package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/burgermaster/blendcalc/internal/infrastructure/http/response"
	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPMetrics receives one observation per served request
type HTTPMetrics interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration, size int)
}

// Metrics records request counts and latencies labelled by route pattern
func Metrics(m HTTPMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordHTTPRequest(r.Method, route, status, time.Since(start), ww.BytesWritten())
		})
	}
}

// RateLimiter limits requests per client address with a token bucket each
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lastGC   time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requestsPerMin per client with the given burst
func NewRateLimiter(requestsPerMin, burst int, logger *zap.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMin) / 60),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		logger:   logger,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

// Handler rejects requests over the limit with TOO_MANY_REQUESTS
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientKey(r)) {
			retryAfter := 60
			if rl.limit > 0 {
				retryAfter = int(time.Duration(float64(time.Second)/float64(rl.limit)).Seconds()) + 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			response.Error(w, r, rl.logger, apperrors.NewTooManyRequestsError())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastGC) > rl.idleTTL {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastGC = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// clientKey relies on chi's RealIP having rewritten RemoteAddr
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
