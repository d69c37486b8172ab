package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"signal-desk/internal/journal"
	"signal-desk/internal/provider"
	"signal-desk/internal/repository"
	"signal-desk/internal/service"
	"signal-desk/internal/trade"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc = godotenv.Load
	openPool    = pgxpool.New
)

// One-shot auto-close sweep, for cron environments that cannot reach the
// HTTP endpoint.
func main() {
	loadEnvFunc()

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := openPool(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	tracer := trace.NewNoopTracerProvider().Tracer("sweep")
	tradeRepo := repository.NewTradeRepository(pool, tracer)

	trades, err := tradeRepo.LoadAll(ctx)
	if err != nil {
		log.Fatalf("load trades: %v", err)
	}

	tradeJournal := journal.New(tradeRepo)
	tradeJournal.Load(trades)
	tracker := trade.NewTracker(0)
	tracker.Load(trades)

	marketData := provider.NewMarketDataProvider(tracer)
	autoClose := service.NewAutoCloseService(tracer, tradeJournal, tracker, marketData, nil)

	report, err := autoClose.Sweep(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	log.Printf("sweep complete: checked=%d closed=%d skipped=%d", report.Checked, report.Closed, len(report.Skipped))
	os.Stdout.Write(append(out, '\n'))
}
