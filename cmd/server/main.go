package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"signal-desk/internal/bot"
	"signal-desk/internal/cache"
	"signal-desk/internal/config"
	"signal-desk/internal/db"
	"signal-desk/internal/dedup"
	"signal-desk/internal/handler"
	"signal-desk/internal/job"
	"signal-desk/internal/journal"
	"signal-desk/internal/provider"
	"signal-desk/internal/repository"
	"signal-desk/internal/service"
	"signal-desk/internal/trade"
	"signal-desk/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "signal-desk/docs"
)

var (
	loadEnvFunc               = godotenv.Load
	loadConfigFunc            = config.Load
	initPostgresFunc          = db.InitPostgres
	initRedisFunc             = cache.InitRedis
	initTracerFunc            = tracing.InitTracer
	newTradeRepoFunc          = repository.NewTradeRepository
	newJournalFunc            = journal.New
	newTrackerFunc            = trade.NewTracker
	newMarketDataProviderFunc = provider.NewMarketDataProvider
	newIngestServiceFunc      = service.NewIngestService
	newAutoCloseServiceFunc   = service.NewAutoCloseService
	newAutoClosePollerFunc    = job.NewAutoClosePoller
	startPollerFunc           = func(p *job.AutoClosePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc      = bot.StartTelegramBot
	newHandlerFunc            = handler.New
	newRouterFunc             = gin.Default
	setupSignalNotify         = ossignal.Notify
	waitForSignalFunc         = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc       = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc    = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Signal Desk API
// @version         1.0
// @description     Trading-signal validation and execution service with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations
	tradeRepo := newTradeRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := tradeRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Rehydrate the journal and the open-trade tracker
	var store journal.Store
	if db.Pool != nil {
		store = tradeRepo
	}
	tradeJournal := newJournalFunc(store)
	tracker := newTrackerFunc(cfg.MaxTradesOpen)
	if db.Pool != nil {
		trades, err := tradeRepo.LoadAll(ctx)
		if err != nil {
			log.Printf("Warning: failed to load journal from database: %v", err)
		} else {
			tradeJournal.Load(trades)
			tracker.Load(trades)
		}
	}

	// Duplicate suppression: Redis when available, in-memory otherwise
	var suppressor service.Suppressor
	if cache.Client != nil {
		suppressor = dedup.NewRedisSuppressor(cache.Client)
	} else {
		mem := dedup.NewMemorySuppressor()
		mem.StartSweep(ctx)
		suppressor = mem
	}

	// Create services
	marketData := newMarketDataProviderFunc(tracer)
	ingestService := newIngestServiceFunc(tracer, cfg, tradeJournal, tracker, suppressor, nil)
	autoCloseService := newAutoCloseServiceFunc(tracer, tradeJournal, tracker, marketData, nil)

	// Start auto-close poller (stopped by ctx cancel)
	poller := newAutoClosePollerFunc(tracer, autoCloseService, cfg.AutoClosePollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot and bind its notifier into the services
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	notifier := startTelegramBotFunc(ingestService, tradeJournal, cfg, cfg.TelegramChatID)
	if notifier != nil {
		ingestService.SetNotifier(notifier)
		autoCloseService.SetNotifier(notifier)
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, cfg, ingestService, autoCloseService, tradeJournal, tracker)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("signal-desk"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
