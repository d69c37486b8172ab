package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TradeRepository persists the trade journal. The journal remains the
// in-process source of truth; the repository makes it survive restarts.
type TradeRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTradeRepository(pool PgxPool, tracer trace.Tracer) *TradeRepository {
	return &TradeRepository{pool: pool, tracer: tracer}
}

func (r *TradeRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "trade-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS trades (
			id            TEXT PRIMARY KEY,
			open_time     TIMESTAMPTZ NOT NULL,
			asset         TEXT NOT NULL,
			symbol        TEXT NOT NULL,
			signal        TEXT NOT NULL,
			order_type    TEXT NOT NULL,
			entry_price   DOUBLE PRECISION NOT NULL,
			entry_zone    TEXT NOT NULL DEFAULT '',
			stop_loss     DOUBLE PRECISION NOT NULL,
			take_profit   DOUBLE PRECISION NOT NULL,
			tp_targets    JSONB NOT NULL DEFAULT '[]',
			quantity      DOUBLE PRECISION NOT NULL,
			category      TEXT NOT NULL,
			confidence    DOUBLE PRECISION NOT NULL,
			risk_reward   DOUBLE PRECISION NOT NULL,
			reason        TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL,
			close_time    TIMESTAMPTZ,
			exit_price    DOUBLE PRECISION NOT NULL DEFAULT 0,
			pnl           DOUBLE PRECISION NOT NULL DEFAULT 0,
			pnl_percent   DOUBLE PRECISION NOT NULL DEFAULT 0,
			target_hit    TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_trades_status ON trades (status);
		CREATE INDEX IF NOT EXISTS idx_trades_open_time ON trades (open_time DESC);
	`)
	return err
}

// UpsertTrade writes one trade; the close path re-upserts the same id with
// the mutated close fields.
func (r *TradeRepository) UpsertTrade(ctx context.Context, t domain.Trade) error {
	_, span := r.tracer.Start(ctx, "trade-repo.upsert-trade")
	defer span.End()

	targets, err := json.Marshal(t.TakeProfitTargets)
	if err != nil {
		return fmt.Errorf("marshal targets: %w", err)
	}

	var closeTime *time.Time
	if !t.CloseTime.IsZero() {
		ct := t.CloseTime.UTC()
		closeTime = &ct
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO trades (
			id, open_time, asset, symbol, signal, order_type,
			entry_price, entry_zone, stop_loss, take_profit, tp_targets,
			quantity, category, confidence, risk_reward, reason,
			status, close_time, exit_price, pnl, pnl_percent, target_hit
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
		ON CONFLICT (id) DO UPDATE SET
			status      = EXCLUDED.status,
			close_time  = EXCLUDED.close_time,
			exit_price  = EXCLUDED.exit_price,
			pnl         = EXCLUDED.pnl,
			pnl_percent = EXCLUDED.pnl_percent,
			target_hit  = EXCLUDED.target_hit`,
		t.ID,
		t.OpenTime.UTC(),
		strings.ToUpper(t.Asset),
		strings.ToUpper(t.Symbol),
		string(t.Signal),
		string(t.OrderType),
		t.EntryPrice,
		t.EntryZone,
		t.StopLoss,
		t.TakeProfit,
		targets,
		t.Quantity,
		string(t.Category),
		t.Confidence,
		t.RiskReward,
		t.Reason,
		string(t.Status),
		closeTime,
		t.ExitPrice,
		t.PnL,
		t.PnLPercent,
		t.TargetHit,
	)
	return err
}

const selectTradeColumns = `SELECT id, open_time, asset, symbol, signal, order_type,
			entry_price, entry_zone, stop_loss, take_profit, tp_targets,
			quantity, category, confidence, risk_reward, reason,
			status, COALESCE(close_time, to_timestamp(0)), exit_price, pnl, pnl_percent, target_hit
		FROM trades`

// ListTrades returns trades matching the filter, newest open time first.
func (r *TradeRepository) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.Trade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.list-trades")
	defer span.End()

	args := make([]any, 0, 4)
	var sb strings.Builder
	sb.WriteString(selectTradeColumns)
	sb.WriteString(`
		WHERE 1=1`)

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		sb.WriteString(fmt.Sprintf(" AND status = $%d", len(args)))
	}
	if filter.Asset != "" {
		args = append(args, strings.ToUpper(filter.Asset))
		sb.WriteString(fmt.Sprintf(" AND asset = $%d", len(args)))
	}
	if filter.Signal != "" {
		args = append(args, string(filter.Signal))
		sb.WriteString(fmt.Sprintf(" AND signal = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY open_time DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

// LoadAll fetches the entire journal for startup rehydration. No limit:
// truncating here would drop old history from the stats and could hide an
// old open trade from the tracker.
func (r *TradeRepository) LoadAll(ctx context.Context) ([]domain.Trade, error) {
	_, span := r.tracer.Start(ctx, "trade-repo.load-all")
	defer span.End()

	rows, err := r.pool.Query(ctx, selectTradeColumns+" ORDER BY open_time DESC")
	if err != nil {
		return nil, err
	}
	return scanTrades(rows)
}

func scanTrades(rows pgx.Rows) ([]domain.Trade, error) {
	defer rows.Close()

	trades := make([]domain.Trade, 0, 64)
	for rows.Next() {
		var (
			t          domain.Trade
			signal     string
			orderType  string
			category   string
			status     string
			targetJSON []byte
			closeTime  time.Time
		)
		if err := rows.Scan(
			&t.ID, &t.OpenTime, &t.Asset, &t.Symbol, &signal, &orderType,
			&t.EntryPrice, &t.EntryZone, &t.StopLoss, &t.TakeProfit, &targetJSON,
			&t.Quantity, &category, &t.Confidence, &t.RiskReward, &t.Reason,
			&status, &closeTime, &t.ExitPrice, &t.PnL, &t.PnLPercent, &t.TargetHit,
		); err != nil {
			return nil, err
		}
		t.Signal = domain.SignalType(signal)
		t.OrderType = domain.OrderType(orderType)
		t.Category = domain.Category(category)
		t.Status = domain.TradeStatus(status)
		if closeTime.Unix() != 0 {
			t.CloseTime = closeTime
		}
		if len(targetJSON) > 0 {
			if err := json.Unmarshal(targetJSON, &t.TakeProfitTargets); err != nil {
				return nil, fmt.Errorf("unmarshal targets for trade %s: %w", t.ID, err)
			}
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
