// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/paiban/dutyroster/pkg/engine"
	"github.com/paiban/dutyroster/pkg/model"
	"github.com/paiban/dutyroster/pkg/scheduler/profile"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	API      APIConfig      `envPrefix:"API_"`
	Solver   SolverConfig   `envPrefix:"SOLVER_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `env:"NAME" envDefault:"dutyroster"`
	Env       string `env:"ENV" envDefault:"development"`
	Port      int    `env:"PORT" envDefault:"7012"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// DatabaseConfig 数据库配置，Host 为空时不启用持久化
type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"dutyroster"`
	User            string        `env:"USER" envDefault:"dutyroster"`
	Password        string        `env:"PASSWORD"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	SlowQuery       time.Duration `env:"SLOW_QUERY" envDefault:"100ms"` // 超过该耗时的语句记录警告
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Enabled 是否配置了数据库
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// APIConfig API配置
type APIConfig struct {
	RateLimit    float64       `env:"RATE_LIMIT" envDefault:"2"` // 每个客户端每秒请求数
	RateBurst    int           `env:"RATE_BURST" envDefault:"5"`
	RateIdle     time.Duration `env:"RATE_IDLE" envDefault:"10m"` // 空闲客户端限流器的保留时长
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10m"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10m"`
}

// SolverConfig 求解配置
type SolverConfig struct {
	LevelTimeout  time.Duration `env:"LEVEL_TIMEOUT" envDefault:"30s"` // 每个放宽级别的时限
	BranchLimit   int           `env:"BRANCH_LIMIT" envDefault:"48"`
	MaxNodes      int           `env:"MAX_NODES" envDefault:"200000"`
	Optimize      bool          `env:"OPTIMIZE" envDefault:"true"`
	MaxIterations int           `env:"MAX_ITERATIONS" envDefault:"600"`
	Seed          int64         `env:"SEED" envDefault:"1"`
	WeightsFile   string        `env:"WEIGHTS_FILE"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// EngineOptions 由配置生成引擎参数，设置了权重文件时读取其中的权重与优先级
func (c *Config) EngineOptions() (engine.Options, error) {
	opts := engine.DefaultOptions()
	opts.Timeout = c.Solver.LevelTimeout
	opts.Solver.BranchLimit = c.Solver.BranchLimit
	opts.Solver.MaxNodes = c.Solver.MaxNodes
	opts.Solver.Optimize = c.Solver.Optimize

	optimizer := *opts.Solver.Optimizer
	optimizer.MaxIterations = c.Solver.MaxIterations
	optimizer.Seed = c.Solver.Seed
	opts.Solver.Optimizer = &optimizer

	if c.Solver.WeightsFile != "" {
		wf, err := LoadWeights(c.Solver.WeightsFile)
		if err != nil {
			return opts, err
		}
		opts.Weights = wf.Weights
		opts.Priorities = opts.Priorities.Merge(wf.PriorityTable)
	}
	return opts, nil
}

// WeightsFile 权重文件内容
type WeightsFile struct {
	Weights    profile.Weights `yaml:"weights"`
	Priorities map[string]int  `yaml:"priorities"` // 优先级名 -> 惩罚

	PriorityTable profile.PriorityTable `yaml:"-"`
}

// LoadWeights 读取 YAML 权重文件，未出现的权重取默认值
func LoadWeights(path string) (*WeightsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取权重文件失败: %w", err)
	}
	return ParseWeights(data)
}

// ParseWeights 解析 YAML 权重
func ParseWeights(data []byte) (*WeightsFile, error) {
	wf := &WeightsFile{Weights: profile.DefaultWeights()}
	if err := yaml.Unmarshal(data, wf); err != nil {
		return nil, fmt.Errorf("解析权重文件失败: %w", err)
	}

	wf.PriorityTable = make(profile.PriorityTable, len(wf.Priorities))
	for name, penalty := range wf.Priorities {
		p, err := model.ParsePriority(name)
		if err != nil {
			return nil, fmt.Errorf("权重文件中的优先级 %q: %w", name, err)
		}
		if p == model.PriorityForbidden {
			return nil, fmt.Errorf("优先级 %s 为硬排除，不能设置惩罚", name)
		}
		wf.PriorityTable[p] = penalty
	}
	return wf, nil
}
