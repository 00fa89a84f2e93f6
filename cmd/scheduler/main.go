package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"OnShift/config"
	"OnShift/internal/cache"
	"OnShift/internal/queue"
	"OnShift/internal/repository"
	"OnShift/internal/schedule"
	"OnShift/pkg/logger"
	"OnShift/pkg/metrics"
	"OnShift/pkg/snowflake"
	"OnShift/storage"
	"OnShift/storage/database"
)

// 调度进程：负责打卡码轮换和收班缺勤扫描，与 API 进程分开部署
func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	if err := metrics.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize attendance metrics", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "onshift-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	db := database.DB()
	events := queue.NewEvents()

	rotator := schedule.NewRotator(
		repository.NewOfficeRepository(db),
		cache.NewCodeStore(),
		events,
		cache.TryLock,
		time.Duration(config.Cfg.CodeRotationSeconds)*time.Second,
		time.Duration(config.Cfg.CodeTTLSeconds)*time.Second,
		config.Cfg.IssueWindowStart,
		config.Cfg.IssueWindowEnd,
	)
	go rotator.Run(ctx)

	sweeper := schedule.NewAbsenteeSweeper(
		repository.NewScheduleRepository(db),
		repository.NewAttendanceRepository(db),
		cache.TryLock,
	)

	c := cron.New()
	if err := sweeper.Register(c); err != nil {
		logger.Logger.Fatal("Failed to register absentee sweep", zap.Error(err))
	}
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
