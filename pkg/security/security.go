package security

import (
	"daily_puzzle_backend/internal/model"
	"daily_puzzle_backend/internal/util"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	allowedMethods = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	allowedHeaders = "Authorization, Content-Type, Accept, Origin, X-Requested-With"
	preflightCache = "600"
)

// CORS 只回显白名单里的Origin，带凭证
func CORS(allowedOrigins []string) gin.HandlerFunc {
	whitelist := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		whitelist[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		if _, ok := whitelist[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", allowedMethods)
			c.Header("Access-Control-Allow-Headers", allowedHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Max-Age", preflightCache)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Secure 常规安全响应头
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// visitorStore 按客户端IP保存限流器，附带后台清理
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorStore(maxRequests int, window time.Duration) *visitorStore {
	s := &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
	}
	go s.evictLoop(window)
	return s
}

func (s *visitorStore) evictLoop(window time.Duration) {
	idle := window * 3
	if idle < time.Minute {
		idle = time.Minute
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		for ip, v := range s.visitors {
			if time.Since(v.lastSeen) > idle {
				delete(s.visitors, ip)
			}
		}
		s.mu.Unlock()
	}
}

func (s *visitorStore) allow(ip string) bool {
	s.mu.Lock()
	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	s.mu.Unlock()

	return v.limiter.Allow()
}

// RateLimiter 全局接口限流，按IP计数
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	store := newVisitorStore(maxRequests, window)

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// SubmissionRateLimiter 答案提交专用的更严限流，管理员不受限
// 必须挂在认证中间件之后，否则读不到登录态。
func SubmissionRateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	store := newVisitorStore(maxRequests, window)

	return func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil && claims.Role == model.Admin {
			c.Next()
			return
		}

		if !store.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "Too many puzzle submission attempts. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
