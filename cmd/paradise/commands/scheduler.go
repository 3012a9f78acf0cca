package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DH-11027/paradise/internal/external/naver"
	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/scheduler"
	"github.com/DH-11027/paradise/internal/scheduler/jobs"
	"github.com/DH-11027/paradise/internal/store"
	"github.com/DH-11027/paradise/pkg/config"
	"github.com/DH-11027/paradise/pkg/database"
	"github.com/DH-11027/paradise/pkg/httputil"
	"github.com/DH-11027/paradise/pkg/logger"
	"github.com/DH-11027/paradise/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 데몬 시작",
	Long: `추적 종목을 주기적으로 갱신하는 스케줄러 데몬을 시작합니다.

등록되는 작업:
- series_refresh: REFRESH_CRON (기본 평일 16:30)에 TRACKED_CODES의
  가격/수급을 수집하고 저장소와 캐시를 갱신

Example:
  TRACKED_CODES=005930,000660 go run ./cmd/paradise scheduler
  go run ./cmd/paradise scheduler --run-now`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "시작 직후 갱신 작업 1회 실행")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Paradise Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	if !cfg.Database.Enabled {
		return fmt.Errorf("scheduler requires DB_ENABLED=true")
	}
	if len(cfg.Scheduler.TrackedCodes) == 0 {
		log.Warn("TRACKED_CODES is empty, refresh job will be a no-op")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	st := store.New(db.Pool)
	if err := st.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "paradise")

	httpClient := httputil.New(log)
	fetcher := naver.NewClient(httpClient, cfg.Naver, log)
	processor := pipeline.New(log)

	// standalone daemon: no websocket hub to broadcast to
	refreshJob := jobs.NewRefreshJob(
		cfg.Scheduler.TrackedCodes,
		cfg.Scheduler.RefreshCron,
		fetcher, st, processor, cache, nil, log,
	)

	sched := scheduler.New(log)
	if err := sched.AddJob(refreshJob); err != nil {
		return fmt.Errorf("add refresh job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(refreshJob.Name()); err != nil {
			return fmt.Errorf("run refresh job: %w", err)
		}
	}

	fmt.Printf("\n✅ Scheduler running (%d tracked codes)\n", len(cfg.Scheduler.TrackedCodes))
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
