package provider

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"rebateforge-site/internal/models"
)

const memoryName = "memory"

// MemoryProvider keeps contacts in process. It does not deduplicate: every
// call appends, the same way every call reaches the real provider.
type MemoryProvider struct {
	mu       sync.RWMutex
	contacts []models.StoredContact
	tracer   trace.Tracer
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		tracer: otel.Tracer("provider.memory"),
	}
}

func (p *MemoryProvider) CreateContact(ctx context.Context, contact models.Contact) error {
	_, span := p.tracer.Start(ctx, "provider.memory.create_contact",
		trace.WithAttributes(
			attribute.String("operation", "provider.write"),
			attribute.String("provider.audience_id", contact.AudienceID),
		))
	defer span.End()

	if err := checkContact(memoryName, contact); err != nil {
		span.RecordError(err)
		return err
	}

	stored := models.StoredContact{ID: uuid.New(), Contact: contact}

	p.mu.Lock()
	p.contacts = append(p.contacts, stored)
	p.mu.Unlock()

	span.SetAttributes(
		attribute.String("provider.contact_id", stored.ID.String()),
		attribute.Bool("success", true),
	)
	return nil
}

// Contacts returns the contacts created for audienceID, oldest first.
func (p *MemoryProvider) Contacts(audienceID string) []models.StoredContact {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []models.StoredContact
	for _, c := range p.contacts {
		if c.AudienceID == audienceID {
			result = append(result, c)
		}
	}
	return result
}
