package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/model"
	"golang.org/x/time/rate"
)

// paramKey is the path wildcard used for per-param rate limiting (default: "city").
// The middleware must wrap a handler registered on a pattern that declares it.
var paramKey = "city"

// SetParamKey sets the path wildcard for per-param rate limiting. Used primarily for testing.
func SetParamKey(key string) {
	paramKey = key
}

// the visitor holds the rate limiter and last seen time for a specific key.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	// globalVisitors maps IP addresses to their limiter.
	globalVisitors = make(map[string]*visitor) // key: ip
	// paramVisitors maps IP addresses and city names to their limiter.
	paramVisitors = make(map[string]map[string]*visitor) // key: ip -> city -> visitor
	muGlobal      sync.Mutex
	muParam       sync.Mutex
)

// perMinute converts a configured requests-per-minute rate into a rate.Limit.
func perMinute(r float64) rate.Limit {
	return rate.Limit(r / 60.0)
}

// getGlobalLimiter returns the rate limiter for the given IP address, creating one if it does not exist.
func getGlobalLimiter(ip string) *rate.Limiter {
	muGlobal.Lock()
	defer muGlobal.Unlock()
	v, exists := globalVisitors[ip]
	if !exists {
		r, burst := config.GetGlobalRateLimiterConfig()
		limiter := rate.NewLimiter(perMinute(r), burst)
		globalVisitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// getParamLimiter returns the rate limiter for the given IP address and city, creating one if it does not exist.
func getParamLimiter(ip, param string) *rate.Limiter {
	muParam.Lock()
	defer muParam.Unlock()
	if _, ok := paramVisitors[ip]; !ok {
		paramVisitors[ip] = make(map[string]*visitor)
	}
	v, exists := paramVisitors[ip][param]
	if !exists {
		r, burst := config.GetParamRateLimiterConfig()
		limiter := rate.NewLimiter(perMinute(r), burst)
		paramVisitors[ip][param] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes entries not seen within maxAge.
func cleanupVisitors(maxAge time.Duration) {
	muGlobal.Lock()
	for ip, v := range globalVisitors {
		if time.Since(v.lastSeen) > maxAge {
			delete(globalVisitors, ip)
		}
	}
	muGlobal.Unlock()

	muParam.Lock()
	for ip, paramMap := range paramVisitors {
		for param, v := range paramMap {
			if time.Since(v.lastSeen) > maxAge {
				delete(paramMap, param)
			}
		}
		if len(paramMap) == 0 {
			delete(paramVisitors, ip)
		}
	}
	muParam.Unlock()
}

// StartRateLimiterCleanup starts a background goroutine that drops stale visitors
// every minute, using rate_limiter.cleanup_timeout as the idle cutoff.
func StartRateLimiterCleanup() {
	maxAge := config.GetRateLimiterCleanupTimeout()
	go func() {
		for {
			time.Sleep(time.Minute)
			cleanupVisitors(maxAge)
		}
	}()
}

// ResetVisitors clears all visitor states for both global and per-param limiters. Used primarily for testing.
func ResetVisitors() {
	muGlobal.Lock()
	for k := range globalVisitors {
		delete(globalVisitors, k)
	}
	muGlobal.Unlock()
	muParam.Lock()
	for k := range paramVisitors {
		delete(paramVisitors, k)
	}
	muParam.Unlock()
}

// getIP extracts the client's IP address from the HTTP request, considering X-Forwarded-For headers.
func getIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr // fallback
	}
	return ip
}

func tooManyRequests(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse(msg))
}

// RateLimitMiddleware returns an HTTP middleware that enforces global and per-city rate limiting.
// If the rate limit is exceeded, it responds with a 429 status and a JSON error message.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIP(r)
		param := r.PathValue(paramKey)
		if param == "" {
			// If param is missing, treat as a single bucket
			param = "__none__"
		}
		globalLimiter := getGlobalLimiter(ip)
		paramLimiter := getParamLimiter(ip, param)
		if !globalLimiter.Allow() {
			tooManyRequests(w, "Rate limit exceeded: too many requests per user/IP")
			return
		}
		if !paramLimiter.Allow() {
			tooManyRequests(w, "Rate limit exceeded: too many requests per city per user/IP")
			return
		}
		next.ServeHTTP(w, r)
	})
}
