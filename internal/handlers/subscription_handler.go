package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/logging"
	"rebateforge-site/internal/models"
	"rebateforge-site/internal/provider"
	"rebateforge-site/internal/service"
)

const subscribeEndpoint = "POST /api/subscribe"

type SubscriptionHandler struct {
	service *service.SubscriptionService
	logger  *logging.ContextLogger
	tracer  trace.Tracer
}

func NewSubscriptionHandler(service *service.SubscriptionService, logger *logging.ContextLogger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
		tracer:  otel.Tracer("subscription-handler"),
	}
}

// Subscribe answers with one of three fixed bodies. Whatever went wrong
// downstream is logged here and never returned to the caller.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "subscription.handler.subscribe")
	defer span.End()

	var req models.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.ErrorWithTracing(ctx, "Invalid request payload", err, logrus.Fields{
			"endpoint": subscribeEndpoint,
		})
		span.RecordError(err)
		span.SetAttributes(attribute.Int("http.status_code", http.StatusInternalServerError))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrorFailed})
		return
	}

	h.logger.InfoWithTracing(ctx, "Received subscribe request", logrus.Fields{
		"email":    req.Email,
		"endpoint": subscribeEndpoint,
	})

	err := h.service.Subscribe(ctx, req.Email)
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		h.logger.WarnWithTracing(ctx, "Subscribe request without email", logrus.Fields{
			"endpoint": subscribeEndpoint,
		})
		span.SetAttributes(attribute.Int("http.status_code", http.StatusBadRequest))
		c.JSON(http.StatusBadRequest, gin.H{"error": models.ErrorEmailRequired})
		return
	case err != nil:
		h.logger.ErrorWithTracing(ctx, "Error subscribing", err, logrus.Fields{
			"email":      req.Email,
			"error_kind": provider.KindOf(err).String(),
			"endpoint":   subscribeEndpoint,
		})
		span.RecordError(err)
		span.SetAttributes(attribute.Int("http.status_code", http.StatusInternalServerError))
		c.JSON(http.StatusInternalServerError, gin.H{"error": models.ErrorFailed})
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Bool("success", true),
	)
	c.JSON(http.StatusOK, gin.H{"message": models.MessageSubscribed})
}
