package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"golang.org/x/time/rate"
)

// accessTokenMiddleware extracts the bearer token from the Authorization
// header, verifies it, and requires the access kind: a signed refresh token
// is never accepted on a protected route. The resolved user ID is stored in
// the request context.
func (s *HTTPServer) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.writeError(w, r, common.ErrUnauthenticated)
			return
		}
		tokenString := strings.TrimPrefix(header, common.BearerPrefix)

		subject, kind, err := s.codec.Verify(tokenString)
		if err != nil || kind != auth.KindAccess {
			s.writeError(w, r, common.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimiter keeps a token bucket per client address for the credential
// endpoints.
type rateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{limiters: make(map[string]*rate.Limiter)}
}

func (l *rateLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[addr]
	if !ok {
		// 5 req/s with bursts of 10 per client
		lim = rate.NewLimiter(5, 10)
		l.limiters[addr] = lim
	}
	return lim.Allow()
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			s.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
