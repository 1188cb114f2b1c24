package models

import "github.com/google/uuid"

// Fixed response bodies of the subscribe endpoint. Callers only ever see these.
const (
	MessageSubscribed  = "Successfully subscribed!"
	ErrorEmailRequired = "Email is required"
	ErrorFailed        = "Failed to subscribe"
)

type SubscribeRequest struct {
	Email string `json:"email"`
}

// Contact is the record forwarded to the audience provider.
type Contact struct {
	Email        string `json:"email"`
	Unsubscribed bool   `json:"unsubscribed"`
	AudienceID   string `json:"audience_id"`
}

// StoredContact is a contact as kept by the in-process provider.
type StoredContact struct {
	ID uuid.UUID `json:"id"`
	Contact
}

func NewContact(email, audienceID string) Contact {
	return Contact{
		Email:        email,
		Unsubscribed: false,
		AudienceID:   audienceID,
	}
}
