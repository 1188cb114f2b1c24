package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/cache"
	"rebateforge-site/internal/logging"
	"rebateforge-site/internal/models"
	"rebateforge-site/internal/provider"
)

var ErrEmailRequired = errors.New("email is required")

type SubscriptionService struct {
	provider   provider.ContactCreator
	tracker    cache.SubmissionTracker
	audienceID string
	logger     *logging.ContextLogger
	tracer     trace.Tracer
}

func NewSubscriptionService(p provider.ContactCreator, tracker cache.SubmissionTracker, audienceID string, logger *logging.ContextLogger) *SubscriptionService {
	if tracker == nil {
		tracker = cache.Disabled{}
	}
	return &SubscriptionService{
		provider:   p,
		tracker:    tracker,
		audienceID: audienceID,
		logger:     logger,
		tracer:     otel.Tracer("subscription-service"),
	}
}

// Subscribe forwards email to the audience provider exactly once. The only
// check is presence; the address format is left to the provider. Repeats
// are forwarded as well and only flagged in logs and traces.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) error {
	ctx, span := s.tracer.Start(ctx, "subscription.service.subscribe",
		trace.WithAttributes(
			attribute.String("subscription.audience_id", s.audienceID),
		))
	defer span.End()

	if email == "" {
		span.SetAttributes(attribute.String("error.kind", provider.KindInvalidInput.String()))
		span.SetStatus(codes.Error, ErrEmailRequired.Error())
		return ErrEmailRequired
	}

	repeat := s.tracker.Seen(ctx, email)
	span.SetAttributes(attribute.Bool("subscription.repeat", repeat))
	if repeat {
		s.logger.WarnWithTracing(ctx, "Repeat subscription attempt, forwarding anyway", logrus.Fields{
			"email": email,
		})
	}

	s.logger.InfoWithTracing(ctx, "Forwarding contact to provider", logrus.Fields{
		"email":       email,
		"audience_id": s.audienceID,
	})

	if err := s.provider.CreateContact(ctx, models.NewContact(email, s.audienceID)); err != nil {
		kind := provider.KindOf(err)
		s.logger.ErrorWithTracing(ctx, "Provider rejected contact", err, logrus.Fields{
			"email":      email,
			"error_kind": kind.String(),
		})
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.kind", kind.String()))
		span.SetStatus(codes.Error, kind.String())
		return err
	}

	s.logger.InfoWithTracing(ctx, "Successfully subscribed contact", logrus.Fields{
		"email": email,
	})
	span.SetAttributes(attribute.Bool("success", true))
	return nil
}
