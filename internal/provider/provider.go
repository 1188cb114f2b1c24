// Package provider forwards contacts to the external audience service.
//
// The service owns storage, deduplication and list lifecycle; adapters here
// only issue one create call per contact and report failures as *Error.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	dapr "github.com/dapr/go-sdk/client"

	"rebateforge-site/internal/config"
	"rebateforge-site/internal/models"
)

type ContactCreator interface {
	CreateContact(ctx context.Context, contact models.Contact) error
}

type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindProviderUnavailable
	KindProviderRejected
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindProviderRejected:
		return "provider_rejected"
	default:
		return "unknown"
	}
}

// Error is returned by every adapter. Kind is for logs and traces only and
// is never shown to callers of the subscribe endpoint.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrMissingAPIKey     = errors.New("provider API key is not configured")
	ErrMissingAudienceID = errors.New("audience id is not configured")
)

// KindOf reports the classification of err. Errors that did not come from an
// adapter are classified by shape: context expiry and network errors are
// unavailability, everything else a rejection.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	if errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrMissingAudienceID) {
		return KindInvalidInput
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindProviderUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindProviderUnavailable
	}
	return KindProviderRejected
}

func wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: classify(err), Provider: name, Err: err}
}

func checkContact(name string, contact models.Contact) error {
	if contact.AudienceID == "" {
		return &Error{Kind: KindInvalidInput, Provider: name, Err: ErrMissingAudienceID}
	}
	return nil
}

// New builds the adapter selected by cfg.Provider.Kind. The returned close
// function releases the adapter's resources and is never nil.
func New(cfg *config.Config) (ContactCreator, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider.Kind {
	case config.ProviderResend:
		return NewResendProvider(cfg.Provider.ResendAPIKey, cfg.Provider.RequestTimeout), noop, nil
	case config.ProviderDapr:
		client, err := dapr.NewClient()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create dapr client: %w", err)
		}
		p := NewDaprProvider(client, cfg.Provider.DaprBinding, cfg.Provider.DaprOperation)
		return p, func() error { client.Close(); return nil }, nil
	case config.ProviderMemory:
		return NewMemoryProvider(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}
}
