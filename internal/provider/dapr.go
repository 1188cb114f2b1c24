package provider

import (
	"context"
	"encoding/json"
	"fmt"

	dapr "github.com/dapr/go-sdk/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/models"
)

const daprName = "dapr"

// bindingInvoker is the part of dapr.Client the provider uses.
type bindingInvoker interface {
	InvokeOutputBinding(ctx context.Context, in *dapr.InvokeBindingRequest) error
}

// DaprProvider hands contacts to a Dapr output binding, which is expected to
// front the audience service (for example an HTTP binding with credentials
// held by the sidecar).
type DaprProvider struct {
	client    bindingInvoker
	binding   string
	operation string
	tracer    trace.Tracer
}

func NewDaprProvider(client bindingInvoker, binding, operation string) *DaprProvider {
	return &DaprProvider{
		client:    client,
		binding:   binding,
		operation: operation,
		tracer:    otel.Tracer("provider.dapr"),
	}
}

func (p *DaprProvider) CreateContact(ctx context.Context, contact models.Contact) error {
	ctx, span := p.tracer.Start(ctx, "provider.dapr.create_contact",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("operation", "provider.write"),
			attribute.String("provider.audience_id", contact.AudienceID),
			attribute.String("dapr.binding", p.binding),
			attribute.String("dapr.operation", p.operation),
		))
	defer span.End()

	if err := checkContact(daprName, contact); err != nil {
		return p.fail(span, err)
	}

	data, err := json.Marshal(contact)
	if err != nil {
		return p.fail(span, &Error{Kind: KindInvalidInput, Provider: daprName, Err: fmt.Errorf("failed to marshal contact: %w", err)})
	}

	err = p.client.InvokeOutputBinding(ctx, &dapr.InvokeBindingRequest{
		Name:      p.binding,
		Operation: p.operation,
		Data:      data,
		Metadata: map[string]string{
			"audienceId": contact.AudienceID,
		},
	})
	if err != nil {
		return p.fail(span, wrap(daprName, fmt.Errorf("failed to invoke binding %s: %w", p.binding, err)))
	}

	span.SetAttributes(attribute.Bool("success", true))
	return nil
}

func (p *DaprProvider) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
	return err
}
