package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/journal"
	"signal-desk/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetTrades godoc
// @Summary      List journal trades
// @Description  Returns trades, optionally filtered by status/asset, with optional aggregate stats
// @Tags         bot
// @Produce      json
// @Param        status  query  string  false  "OPEN or CLOSED"
// @Param        asset   query  string  false  "Asset symbol"
// @Param        limit   query  int     false  "Number of trades (default 100, max 1000)"  default(100)
// @Param        stats   query  bool    false  "Include aggregate statistics"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/bot/trades [get]
func (h *Handler) GetTrades(c *gin.Context) {
	if h.tradeJournal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal unavailable"})
		return
	}

	_, span := h.tracer.Start(c.Request.Context(), "handler.get-trades")
	defer span.End()

	filter := domain.TradeFilter{
		Asset: strings.ToUpper(strings.TrimSpace(c.Query("asset"))),
	}
	if filter.Asset != "" {
		span.SetAttributes(attribute.String("asset", filter.Asset))
	}

	if raw := strings.ToUpper(strings.TrimSpace(c.Query("status"))); raw != "" {
		status := domain.TradeStatus(raw)
		if status != domain.StatusOpen && status != domain.StatusClosed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be OPEN or CLOSED"})
			return
		}
		filter.Status = status
	}

	limit := 100
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 1000"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	trades := h.tradeJournal.Filter(filter)
	body := gin.H{"trades": trades, "count": len(trades)}

	if strings.EqualFold(strings.TrimSpace(c.Query("stats")), "true") {
		body["stats"] = journal.Stats(trades)
	}
	c.JSON(http.StatusOK, body)
}

// GetStatus godoc
// @Summary      Bot status
// @Description  Trading flags, aggregate stats, today's stats and open positions
// @Tags         bot
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/bot/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	if h.tradeJournal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal unavailable"})
		return
	}

	_, span := h.tracer.Start(c.Request.Context(), "handler.get-status")
	defer span.End()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	c.JSON(http.StatusOK, gin.H{
		"armed":          h.cfg.Armed,
		"trading":        h.cfg.AllowTrading,
		"open_positions": h.tradeJournal.Open(),
		"stats":          h.tradeJournal.StatsAll(),
		"today":          journal.Stats(h.tradeJournal.ByDateRange(dayStart, now)),
	})
}

// GetAutoClose godoc
// @Summary      Run an auto-close sweep
// @Description  Checks open trades against live prices and closes those at target
// @Tags         bot
// @Produce      json
// @Param        x-cron-secret  header  string  false  "Cron secret"
// @Success      200  {object}  domain.SweepReport
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/bot/auto-close [get]
func (h *Handler) GetAutoClose(c *gin.Context) {
	if h.autoClose == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auto-close service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-auto-close")
	defer span.End()

	if h.cfg.CronSecret != "" && c.GetHeader("x-cron-secret") != h.cfg.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report, err := h.autoClose.Sweep(ctx)
	if err != nil {
		if err == service.ErrSweepInProgress {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
