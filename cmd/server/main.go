// DutyRoster 月度值班排班服务
// 主程序入口

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/paiban/dutyroster/internal/config"
	"github.com/paiban/dutyroster/internal/database"
	"github.com/paiban/dutyroster/internal/handler"
	"github.com/paiban/dutyroster/internal/metrics"
	"github.com/paiban/dutyroster/internal/repository"
	"github.com/paiban/dutyroster/pkg/engine"
	"github.com/paiban/dutyroster/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("服务异常退出")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	format := cfg.App.LogFormat
	if cfg.IsProduction() {
		format = "json"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: format,
		Output: "stdout",
	})
	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("DutyRoster 排班服务启动")

	opts, err := cfg.EngineOptions()
	if err != nil {
		return fmt.Errorf("加载求解参数失败: %w", err)
	}
	eng, err := engine.New(opts)
	if err != nil {
		return err
	}
	reg := metrics.Default()
	eng.WithRecorder(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store repository.RunStore
		db    *database.DB
	)
	if cfg.Database.Enabled() {
		if db, err = database.New(&cfg.Database); err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		store = repository.NewRunRepository(db)
	} else {
		logger.Warn().Msg("未配置数据库，排班记录仅保存在内存中")
		store = repository.NewMemoryRunStore()
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	h := handler.NewHandler(eng, store, reg, handler.Config{
		Timeout:     cfg.API.Timeout,
		RateLimit:   cfg.API.RateLimit,
		RateBurst:   cfg.API.RateBurst,
		RateIdle:    cfg.API.RateIdle,
		Version:     Version,
		MetricsPath: metricsPath,
	})
	defer h.Close()
	if db != nil {
		h.AddHealthCheck("database", db)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      h,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("正在关闭服务器...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("服务器关闭失败: %w", err)
		}
		logger.Info().Msg("服务器已关闭")
		return nil
	})

	return g.Wait()
}
