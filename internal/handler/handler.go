// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/dutyroster/internal/metrics"
	"github.com/paiban/dutyroster/internal/repository"
	"github.com/paiban/dutyroster/pkg/engine"
)

// Config 处理器配置
type Config struct {
	Timeout     time.Duration // 单次排班请求的最长耗时，0 表示不限制
	RateLimit   float64       // 每个客户端每秒请求数，<=0 表示不限流
	RateBurst   int
	RateIdle    time.Duration // 客户端空闲多久后清理其限流器，<=0 时取10分钟
	Version     string
	MetricsPath string // 为空时不暴露指标端点
}

// Handler HTTP处理器
type Handler struct {
	engine  *engine.Engine
	store   repository.RunStore
	metrics *metrics.Registry
	cfg     Config

	clients map[string]*client
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once

	checks map[string]HealthChecker

	Mux *chi.Mux
}

// NewHandler 创建处理器并注册路由
func NewHandler(eng *engine.Engine, store repository.RunStore, reg *metrics.Registry, cfg Config) *Handler {
	if reg == nil {
		reg = metrics.Default()
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	if cfg.RateIdle <= 0 {
		cfg.RateIdle = 10 * time.Minute
	}
	h := &Handler{
		engine:   eng,
		store:    store,
		metrics:  reg,
		cfg:      cfg,
		clients:  make(map[string]*client),
		stop:     make(chan struct{}),
		checks:   make(map[string]HealthChecker),
		Mux:      chi.NewRouter(),
	}
	h.registerRoutes()

	if cfg.RateLimit > 0 {
		go h.cleanup()
	}
	return h
}

// Close 停止后台清理协程
func (h *Handler) Close() {
	h.once.Do(func() { close(h.stop) })
}

// ServeHTTP 实现 http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(securityHeaders)

	h.Mux.Get("/health", h.Health)
	if h.cfg.MetricsPath != "" {
		h.Mux.Method(http.MethodGet, h.cfg.MetricsPath, h.metrics.Handler())
	}

	h.Mux.Route("/api/v1/schedules", func(r chi.Router) {
		r.Get("/", h.ListSchedules)
		r.With(h.rateLimit).Post("/", h.CreateSchedule)
		r.With(h.rateLimit).Post("/diagnose", h.DiagnoseSchedule)
		r.Get("/{id}", h.GetSchedule)
	})

	h.Mux.Route("/api/v1/constraints", func(r chi.Router) {
		r.Get("/", h.GetConstraintLibrary)
		r.With(h.rateLimit).Post("/", h.ExplainConstraints)
	})
}

// HealthChecker 依赖组件的健康检查
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AddHealthCheck 注册依赖组件，健康检查时逐一探测
func (h *Handler) AddHealthCheck(name string, c HealthChecker) {
	h.checks[name] = c
}

// Health 健康检查，任一依赖不可用时返回 503
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":  "ok",
		"service": "dutyroster",
		"version": h.cfg.Version,
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		components := make(map[string]string, len(names))
		for _, name := range names {
			if err := h.checks[name].Health(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				continue
			}
			components[name] = "ok"
		}
		body["components"] = components
	}
	h.writeJSON(w, r, status, body)
}
