/*
 * @Description: 频率限制中间件
 * @Author: 安知鱼
 * @Date: 2025-11-08 00:00:00
 * @LastEditTime: 2025-11-08 15:59:28
 * @LastEditors: 安知鱼
 */
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/anzhiyu-c/blog-admin/pkg/response"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter 用于存储每个IP地址的限流器
type ipRateLimiter struct {
	limiters map[string]*limiterInfo
	mu       sync.Mutex
	// 每个IP每分钟允许的请求数
	requestsPerMinute int
	// 突发请求数
	burst int
	// 超过该时长未访问的限流器会被清理
	idleTimeout time.Duration
}

// limiterInfo 存储限流器及其最后访问时间
type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

// newIPRateLimiter 创建一个新的IP限流器
func newIPRateLimiter(requestsPerMinute, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:          make(map[string]*limiterInfo),
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		idleTimeout:       10 * time.Minute,
	}
}

// getLimiter 获取指定IP的限流器
func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	info, exists := i.limiters[ip]
	if !exists {
		// 每分钟补充 requestsPerMinute 个令牌
		limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(i.requestsPerMinute)), i.burst)
		info = &limiterInfo{limiter: limiter}
		i.limiters[ip] = info
	}
	info.lastAccessed = now
	return info.limiter
}

// cleanupStaleEntries 清理长时间未使用的限流器
func (i *ipRateLimiter) cleanupStaleEntries() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for ip, info := range i.limiters {
		if time.Since(info.lastAccessed) > i.idleTimeout {
			delete(i.limiters, ip)
		}
	}
}

func (i *ipRateLimiter) runCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			i.cleanupStaleEntries()
		case <-stop:
			return
		}
	}
}

// RateLimiter 按客户端 IP 限流，用于登录、注册等接口
type RateLimiter struct {
	limiter *ipRateLimiter
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiter requestsPerMinute: 每分钟允许的请求数，burst: 突发请求数
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	r := &RateLimiter{
		limiter: newIPRateLimiter(requestsPerMinute, burst),
		stop:    make(chan struct{}),
	}
	go r.limiter.runCleanup(5*time.Minute, r.stop)
	return r
}

// Stop 停止后台清理协程
func (r *RateLimiter) Stop() {
	r.once.Do(func() { close(r.stop) })
}

func (r *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// gin 根据 TrustedProxies 配置解析 X-Forwarded-For / X-Real-IP
		if !r.limiter.getLimiter(c.ClientIP()).Allow() {
			response.Fail(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
