package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/edulegit-bridge/internal/dto"
	"github.com/noah-isme/edulegit-bridge/pkg/signature"
)

type webhookProcessor interface {
	Handle(ctx context.Context, payload *dto.WebhookPayload) (*int64, error)
}

type webhookMetrics interface {
	CountWebhookEvent(event, outcome string)
}

// WebhookHandler terminates the EduLegit callback endpoint. Its response
// contract is fixed by the remote service: 400 for anything unreadable,
// 403 for a signature mismatch, otherwise 200 with the handler result as a
// bare JSON body (a record id, or null for a no-op).
type WebhookHandler struct {
	verifier *signature.Verifier
	service  webhookProcessor
	metrics  webhookMetrics
	logger   *zap.Logger
}

// NewWebhookHandler builds a new handler. Metrics are optional.
func NewWebhookHandler(verifier *signature.Verifier, service webhookProcessor, metrics webhookMetrics, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{verifier: verifier, service: service, metrics: metrics, logger: logger}
}

// Handle godoc
// @Summary EduLegit webhook endpoint
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200
// @Failure 400
// @Failure 403
// @Router /callback [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		h.reject(c, "", http.StatusBadRequest, "empty body")
		return
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		h.reject(c, "", http.StatusBadRequest, "malformed json")
		return
	}

	if !h.verifier.IsStructurallyValid(generic) {
		h.reject(c, eventName(generic), http.StatusBadRequest, "invalid structure")
		return
	}
	if !h.verifier.IsAuthentic(generic) {
		h.reject(c, eventName(generic), http.StatusForbidden, "invalid signature")
		return
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.reject(c, eventName(generic), http.StatusBadRequest, "malformed payload")
		return
	}

	result, err := h.service.Handle(c.Request.Context(), &payload)
	if err != nil {
		// Verified payloads that still fail processing answer 400, per the
		// callback protocol.
		h.logger.Error("webhook processing failed", zap.String("event", payload.Event), zap.Error(err))
		h.reject(c, payload.Event, http.StatusBadRequest, "processing failed")
		return
	}

	if h.metrics != nil {
		outcome := "applied"
		if result == nil {
			outcome = "ignored"
		}
		h.metrics.CountWebhookEvent(payload.Event, outcome)
	}
	c.JSON(http.StatusOK, result)
}

func (h *WebhookHandler) reject(c *gin.Context, event string, status int, reason string) {
	h.logger.Warn("webhook rejected",
		zap.Int("status", status),
		zap.String("reason", reason),
		zap.String("ip", c.ClientIP()),
	)
	if h.metrics != nil {
		h.metrics.CountWebhookEvent(event, "rejected")
	}
	c.Status(status)
}

func eventName(payload map[string]interface{}) string {
	if event, ok := payload["event"].(string); ok {
		return event
	}
	return ""
}
