// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

type ctxKey string

// RequestIDKey 上下文中的请求ID键
const RequestIDKey ctxKey = "request_id"

// ContextWithRequestID 在上下文中写入请求ID
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID 从上下文读取请求ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID := RequestID(ctx); reqID != "" {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	return NewComponentLogger("scheduler")
}

// NewComponentLogger 创建带组件名的日志器
func NewComponentLogger(component string) *SchedulerLogger {
	l := Get().With().Str("component", component).Logger()
	return &SchedulerLogger{base: &l}
}

// Logger 返回底层日志器
func (l *SchedulerLogger) Logger() *zerolog.Logger {
	return l.base
}

// StartSchedule 记录排班开始
func (l *SchedulerLogger) StartSchedule(runID string, employees, posts, days int) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("posts", posts).
		Int("days", days).
		Msg("开始生成排班")
}

// LevelAttempt 记录某放宽级别的求解结果
func (l *SchedulerLogger) LevelAttempt(level int, status string, duration time.Duration, objective int) {
	l.base.Info().
		Int("level", level).
		Str("status", status).
		Dur("duration", duration).
		Int("objective", objective).
		Msg("放宽级别求解完成")
}

// Relaxed 记录约束放宽
func (l *SchedulerLogger) Relaxed(level int, note string) {
	l.base.Warn().
		Int("level", level).
		Str("note", note).
		Msg("约束放宽")
}

// ConstraintViolation 记录约束违反
func (l *SchedulerLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("约束违反")
}

// ScheduleComplete 记录排班完成
func (l *SchedulerLogger) ScheduleComplete(runID string, duration time.Duration, level int, objective int) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Int("level", level).
		Int("objective", objective).
		Msg("排班生成完成")
}

// ScheduleExhausted 记录所有级别均失败
func (l *SchedulerLogger) ScheduleExhausted(runID string, duration time.Duration, category string) {
	l.base.Error().
		Str("run_id", runID).
		Dur("duration", duration).
		Str("category", category).
		Msg("所有放宽级别均无可行解")
}
