package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/resend/resend-go/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/models"
)

const resendName = "resend"

type resendContacts interface {
	CreateWithContext(ctx context.Context, params *resend.CreateContactRequest) (resend.CreateContactResponse, error)
}

// ResendProvider creates contacts through the Resend Contacts API.
type ResendProvider struct {
	contacts resendContacts
	apiKey   string
	tracer   trace.Tracer
}

func NewResendProvider(apiKey string, timeout time.Duration) *ResendProvider {
	client := resend.NewCustomClient(&http.Client{Timeout: timeout}, apiKey)
	return newResendProvider(client.Contacts, apiKey)
}

func newResendProvider(contacts resendContacts, apiKey string) *ResendProvider {
	return &ResendProvider{
		contacts: contacts,
		apiKey:   apiKey,
		tracer:   otel.Tracer("provider.resend"),
	}
}

func (p *ResendProvider) CreateContact(ctx context.Context, contact models.Contact) error {
	ctx, span := p.tracer.Start(ctx, "provider.resend.create_contact",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("operation", "provider.write"),
			attribute.String("provider.audience_id", contact.AudienceID),
		))
	defer span.End()

	if p.apiKey == "" {
		return p.fail(span, &Error{Kind: KindInvalidInput, Provider: resendName, Err: ErrMissingAPIKey})
	}
	if err := checkContact(resendName, contact); err != nil {
		return p.fail(span, err)
	}

	resp, err := p.contacts.CreateWithContext(ctx, &resend.CreateContactRequest{
		Email:        contact.Email,
		Unsubscribed: contact.Unsubscribed,
		AudienceId:   contact.AudienceID,
	})
	if err != nil {
		return p.fail(span, wrap(resendName, err))
	}

	span.SetAttributes(
		attribute.String("provider.contact_id", resp.Id),
		attribute.Bool("success", true),
	)
	return nil
}

func (p *ResendProvider) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
	return err
}
