package handler

import (
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/logger"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestID 请求ID追踪，没有则生成新的
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

// logger 记录请求日志与HTTP指标
func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		// 按路由模式统计，避免ID进入标签
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		h.metrics.RecordRequest(r.Method, path, rw.statusCode, duration)

		logger.WithContext(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("ip", r.RemoteAddr).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("已处理请求")
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithContext(r.Context()).Error().
					Str("stack", string(debug.Stack())).
					Msg("请求处理发生panic")
				h.fail(w, r, apperrors.New(apperrors.CodeInternal, "服务器内部错误").
					WithCause(fmt.Errorf("panic: %v", rec)), nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders 设置安全相关响应头
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}

// rateLimit 按客户端地址限流
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.RateLimit > 0 && !h.limiter(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			h.fail(w, r, apperrors.New(apperrors.CodeRateLimited, "请求过于频繁，请稍后重试"), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// client 单个客户端的限流器及最近一次请求时间
type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

func (h *Handler) limiter(addr string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[addr]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(h.cfg.RateLimit), h.cfg.RateBurst)}
		h.clients[addr] = c
	}
	c.seen = time.Now()
	return c.limiter
}

// cleanup 定期清理空闲客户端的限流器
func (h *Handler) cleanup() {
	ticker := time.NewTicker(h.cfg.RateIdle)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			h.sweep(now)
		}
	}
}

// sweep 删除在 now 之前空闲超过 RateIdle 的客户端，返回删除数量
func (h *Handler) sweep(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := now.Add(-h.cfg.RateIdle)
	removed := 0
	for addr, c := range h.clients {
		if c.seen.Before(cutoff) {
			delete(h.clients, addr)
			removed++
		}
	}
	return removed
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
