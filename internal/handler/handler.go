package handler

import (
	"net/http"

	"signal-desk/internal/config"
	"signal-desk/internal/journal"
	"signal-desk/internal/service"
	"signal-desk/internal/trade"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer       trace.Tracer
	cfg          *config.Config
	ingest       *service.IngestService
	autoClose    *service.AutoCloseService
	tradeJournal *journal.Journal
	tracker      *trade.Tracker
}

func New(
	tracer trace.Tracer,
	cfg *config.Config,
	ingest *service.IngestService,
	autoClose *service.AutoCloseService,
	tradeJournal *journal.Journal,
	tracker *trade.Tracker,
) *Handler {
	return &Handler{
		tracer:       tracer,
		cfg:          cfg,
		ingest:       ingest,
		autoClose:    autoClose,
		tradeJournal: tradeJournal,
		tracker:      tracker,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/api/bot/signal", h.PostSignal)
	r.POST("/api/bot/execute", h.PostExecute)
	r.GET("/api/bot/trades", h.GetTrades)
	r.GET("/api/bot/status", h.GetStatus)
	r.GET("/api/bot/auto-close", h.GetAutoClose)
	r.POST("/api/trade/confirm", h.PostConfirm)
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
