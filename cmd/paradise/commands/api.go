package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/DH-11027/paradise/internal/api"
	"github.com/DH-11027/paradise/internal/api/handlers"
	"github.com/DH-11027/paradise/internal/external/naver"
	"github.com/DH-11027/paradise/internal/pipeline"
	"github.com/DH-11027/paradise/internal/store"
	"github.com/DH-11027/paradise/pkg/config"
	"github.com/DH-11027/paradise/pkg/database"
	"github.com/DH-11027/paradise/pkg/httputil"
	"github.com/DH-11027/paradise/pkg/logger"
	"github.com/DH-11027/paradise/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `대시보드 REST API 서버를 시작합니다.

이 명령어는:
- CSV 업로드 분석 엔드포인트 제공
- 저장된 종목 시리즈 조회/갱신 제공
- 웹소켓으로 갱신 스냅샷 푸시

Endpoints:
  GET  /health                      - Health check
  POST /api/dashboard               - CSV 업로드 분석
  POST /api/backtest                - 백테스트 실행
  GET  /api/series/{code}           - 저장된 시리즈 조회
  POST /api/series/{code}/refresh   - 시리즈 갱신
  GET  /ws                          - 실시간 스냅샷 푸시

Example:
  go run ./cmd/paradise api
  go run ./cmd/paradise api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Paradise API Server ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// Persistence and fetching are optional; the upload endpoints work
	// without them.
	var st *store.Store
	var fetcher *naver.Client
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		st = store.New(db.Pool)
		if err := st.EnsureSchema(cmd.Context()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")

		httpClient := httputil.New(log)
		fetcher = naver.NewClient(httpClient, cfg.Naver, log)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "paradise")

	processor := pipeline.New(log)

	hub := api.NewHub(log)
	go hub.Run()

	dashboardHandler := handlers.NewDashboardHandler(processor, log)
	seriesHandler := handlers.NewSeriesHandler(st, fetcher, processor, cache, hub, log)

	router := api.NewRouter(dashboardHandler, seriesHandler, hub, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/dashboard")
	fmt.Println("  POST /api/backtest")
	fmt.Println("  GET  /api/series/{code}")
	fmt.Println("  POST /api/series/{code}/refresh")
	fmt.Println("  GET  /ws")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
