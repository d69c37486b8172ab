package handler

import (
	"net/http"
	"strings"

	"signal-desk/internal/domain"
	"signal-desk/internal/service"

	"github.com/gin-gonic/gin"
)

type websiteSignalRequest struct {
	Text     string `json:"text" binding:"required"`
	ChatID   int64  `json:"chat_id"`
	ChatName string `json:"chat_name"`
}

// PostSignal godoc
// @Summary      Ingest a website trading signal
// @Description  Runs the raw signal text through the validation and execution pipeline
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        x-api-key  header  string  false  "Website signal API key"
// @Param        request  body  websiteSignalRequest  true  "Signal text"
// @Success      200  {object}  service.IngestResult
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/bot/signal [post]
func (h *Handler) PostSignal(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-signal")
	defer span.End()

	if h.cfg.WebsiteSignalAPIKey != "" && c.GetHeader("x-api-key") != h.cfg.WebsiteSignalAPIKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	var req websiteSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	res := h.ingest.IngestText(ctx, service.IngestPayload{
		Text:     req.Text,
		ChatID:   h.cfg.ProviderGroupID, // website signals bypass the group gate
		ChatName: req.ChatName,
		Source:   domain.SourceWebsite,
	})

	switch {
	case res.TradingDisabled:
		c.JSON(http.StatusForbidden, res)
	case res.Error != "":
		c.JSON(http.StatusBadRequest, res)
	default:
		c.JSON(http.StatusOK, res)
	}
}

// PostExecute godoc
// @Summary      Execute a trade from structured fields
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        request  body  service.ExecuteRequest  true  "Trade parameters"
// @Success      200  {object}  service.IngestResult
// @Failure      400  {object}  service.IngestResult
// @Failure      403  {object}  service.IngestResult
// @Failure      429  {object}  service.IngestResult
// @Router       /api/bot/execute [post]
func (h *Handler) PostExecute(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-execute")
	defer span.End()

	var req service.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res := h.ingest.ExecuteDirect(ctx, req)
	switch {
	case res.TradingDisabled || res.Disarmed:
		c.JSON(http.StatusForbidden, res)
	case res.Rejected != "":
		if admissionReject(res.Rejected) {
			c.JSON(http.StatusTooManyRequests, res)
		} else {
			c.JSON(http.StatusBadRequest, res)
		}
	default:
		c.JSON(http.StatusOK, res)
	}
}

// PostConfirm godoc
// @Summary      Confirm a manual trade
// @Description  Validates and prices a trade without recording it
// @Tags         trade
// @Accept       json
// @Produce      json
// @Param        request  body  service.ConfirmRequest  true  "Trade parameters"
// @Success      200  {object}  service.ConfirmResult
// @Failure      400  {object}  service.ConfirmResult
// @Router       /api/trade/confirm [post]
func (h *Handler) PostConfirm(c *gin.Context) {
	if h.ingest == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-confirm")
	defer span.End()

	var req service.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res := h.ingest.ConfirmTrade(ctx, req)
	if !res.OK {
		c.JSON(http.StatusBadRequest, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// admissionReject distinguishes capacity rejections from parameter ones.
func admissionReject(reason string) bool {
	return strings.Contains(reason, "max open trades") || strings.Contains(reason, "already open")
}
