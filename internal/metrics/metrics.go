// Package metrics 提供Prometheus文本格式的监控指标
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 指标名称
const (
	RunsTotal           = "dutyroster_runs_total"
	RunDurationSeconds  = "dutyroster_run_duration_seconds"
	RunLevel            = "dutyroster_run_level"
	LastLevel           = "dutyroster_last_level"
	HTTPRequestsTotal   = "dutyroster_http_requests_total"
	HTTPDurationSeconds = "dutyroster_http_request_duration_seconds"
	ActiveRuns          = "dutyroster_active_runs"
)

// Registry 指标注册表
type Registry struct {
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	mu         sync.RWMutex
}

// Counter 计数器
type Counter struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Gauge 仪表盘
type Gauge struct {
	Name   string
	Help   string
	Labels []string
	values map[string]float64
	mu     sync.RWMutex
}

// Histogram 直方图
type Histogram struct {
	Name    string
	Help    string
	Labels  []string
	Buckets []float64
	counts  map[string][]int
	sums    map[string]float64
	mu      sync.RWMutex
}

// NewRegistry 创建注册表并注册排班指标
func NewRegistry() *Registry {
	r := &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}

	r.NewCounter(RunsTotal, "排班运行次数", []string{"outcome"})
	r.NewHistogram(RunDurationSeconds, "排班求解耗时", []string{"outcome"},
		[]float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120})
	r.NewCounter(RunLevel, "按松弛级别统计的成功运行次数", []string{"level"})
	r.NewGauge(LastLevel, "最近一次成功运行的松弛级别", nil)
	r.NewGauge(ActiveRuns, "正在进行的排班运行数", nil)
	r.NewCounter(HTTPRequestsTotal, "HTTP请求总数", []string{"method", "path", "status"})
	r.NewHistogram(HTTPDurationSeconds, "HTTP请求延迟", []string{"method", "path"},
		[]float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30})
	return r
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default 获取全局注册表
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewCounter 创建计数器
func (r *Registry) NewCounter(name, help string, labels []string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.counters[name] = c
	return c
}

// NewGauge 创建仪表盘
func (r *Registry) NewGauge(name, help string, labels []string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{Name: name, Help: help, Labels: labels, values: make(map[string]float64)}
	r.gauges[name] = g
	return g
}

// NewHistogram 创建直方图
func (r *Registry) NewHistogram(name, help string, labels []string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &Histogram{
		Name:    name,
		Help:    help,
		Labels:  labels,
		Buckets: buckets,
		counts:  make(map[string][]int),
		sums:    make(map[string]float64),
	}
	r.histograms[name] = h
	return h
}

// Counter 获取计数器
func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Gauge 获取仪表盘
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Histogram 获取直方图
func (r *Registry) Histogram(name string) *Histogram {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.histograms[name]
}

// Inc 增加计数
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add 增加指定值
func (c *Counter) Add(value float64, labelValues ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelKey(labelValues)] += value
}

// Value 读取当前值
func (c *Counter) Value(labelValues ...string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[labelKey(labelValues)]
}

// Set 设置值
func (g *Gauge) Set(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] = value
}

// Add 增加指定值
func (g *Gauge) Add(value float64, labelValues ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[labelKey(labelValues)] += value
}

// Value 读取当前值
func (g *Gauge) Value(labelValues ...string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.values[labelKey(labelValues)]
}

// Observe 记录观测值
func (h *Histogram) Observe(value float64, labelValues ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := labelKey(labelValues)
	if _, ok := h.counts[key]; !ok {
		h.counts[key] = make([]int, len(h.Buckets)+1)
	}
	// 每个观测只落入第一个满足的桶，输出时再累加
	idx := sort.SearchFloat64s(h.Buckets, value)
	h.counts[key][idx]++
	h.sums[key] += value
}

// Count 观测次数
func (h *Histogram) Count(labelValues ...string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, n := range h.counts[labelKey(labelValues)] {
		total += n
	}
	return total
}

// RecordRun 记录一次排班运行
func (r *Registry) RecordRun(outcome string, level int, duration time.Duration) {
	r.Counter(RunsTotal).Inc(outcome)
	r.Histogram(RunDurationSeconds).Observe(duration.Seconds(), outcome)
	if level >= 0 && outcome == "solved" {
		r.Counter(RunLevel).Inc(strconv.Itoa(level))
		r.Gauge(LastLevel).Set(float64(level))
	}
}

// RecordRequest 记录HTTP请求
func (r *Registry) RecordRequest(method, path string, status int, duration time.Duration) {
	r.Counter(HTTPRequestsTotal).Inc(method, path, strconv.Itoa(status))
	r.Histogram(HTTPDurationSeconds).Observe(duration.Seconds(), method, path)
}

// TrackActive 标记一次运行开始，返回结束回调
func (r *Registry) TrackActive() func() {
	g := r.Gauge(ActiveRuns)
	g.Add(1)
	return func() { g.Add(-1) }
}

func labelKey(labels []string) string {
	return strings.Join(labels, "\x1f")
}

func formatLabels(names []string, key string, extra ...string) string {
	var vals []string
	if key != "" || len(names) > 0 {
		vals = strings.Split(key, "\x1f")
	}
	parts := make([]string, 0, len(names)+len(extra))
	for i, name := range names {
		val := ""
		if i < len(vals) {
			val = vals[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", name, val))
	}
	parts = append(parts, extra...)
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expose 以Prometheus文本格式输出全部指标
func (r *Registry) Expose(w io.Writer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.counters) {
		c := r.counters[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n", c.Name, c.Help, c.Name)
		c.mu.RLock()
		for _, key := range sortedKeys(c.values) {
			fmt.Fprintf(w, "%s%s %g\n", c.Name, formatLabels(c.Labels, key), c.values[key])
		}
		c.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.gauges) {
		g := r.gauges[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n", g.Name, g.Help, g.Name)
		g.mu.RLock()
		for _, key := range sortedKeys(g.values) {
			fmt.Fprintf(w, "%s%s %g\n", g.Name, formatLabels(g.Labels, key), g.values[key])
		}
		g.mu.RUnlock()
	}

	for _, name := range sortedKeys(r.histograms) {
		h := r.histograms[name]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s histogram\n", h.Name, h.Help, h.Name)
		h.mu.RLock()
		for _, key := range sortedKeys(h.counts) {
			counts := h.counts[key]
			cumulative := 0
			for i, bucket := range h.Buckets {
				cumulative += counts[i]
				le := fmt.Sprintf("le=%q", strconv.FormatFloat(bucket, 'g', -1, 64))
				fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name, formatLabels(h.Labels, key, le), cumulative)
			}
			cumulative += counts[len(h.Buckets)]
			fmt.Fprintf(w, "%s_bucket%s %d\n", h.Name, formatLabels(h.Labels, key, `le="+Inf"`), cumulative)
			fmt.Fprintf(w, "%s_sum%s %g\n", h.Name, formatLabels(h.Labels, key), h.sums[key])
			fmt.Fprintf(w, "%s_count%s %d\n", h.Name, formatLabels(h.Labels, key), cumulative)
		}
		h.mu.RUnlock()
	}
}

// Handler 返回Prometheus格式的指标HTTP处理器
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Expose(w)
	})
}
