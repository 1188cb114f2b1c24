// Package subscribeform drives the email subscription form: input, the
// idle/loading/success/error lifecycle, and the call to the subscribe
// endpoint.
package subscribeform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	FallbackTransport = "Failed to subscribe"
	FallbackStatus    = "Something went wrong"
)

var (
	ErrEmailRequired  = errors.New("email is required")
	ErrInvalidEmail   = errors.New("email is not a valid address")
	ErrSubmitDisabled = errors.New("a submission is already in progress")
)

var validate = validator.New()

// ValidateEmail runs the checks a browser applies to a required email input.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

type Listener func(Snapshot)

type Controller struct {
	endpoint string
	client   *http.Client

	mu        sync.Mutex
	state     Snapshot
	listeners []Listener
}

func NewController(endpoint string, client *http.Client) *Controller {
	if client == nil {
		client = http.DefaultClient
	}
	return &Controller{endpoint: endpoint, client: client}
}

// OnChange registers l to be called after every state transition.
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() View {
	return c.Snapshot().View()
}

// SetEmail updates the input. It has no effect while the input is disabled.
func (c *Controller) SetEmail(email string) {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		return
	}
	c.state.Email = email
	snap, listeners := c.state, c.listeners
	c.mu.Unlock()

	notify(listeners, snap)
}

// Submit posts the current email to the endpoint and returns the final
// snapshot. Input errors are reported before any state change; every other
// failure ends in StatusError with the email kept.
func (c *Controller) Submit(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.state.Status == StatusLoading {
		c.mu.Unlock()
		return c.Snapshot(), ErrSubmitDisabled
	}
	email := c.state.Email
	if err := ValidateEmail(email); err != nil {
		snap := c.state
		c.mu.Unlock()
		return snap, err
	}
	c.state.Status = StatusLoading
	c.state.ErrorMessage = ""
	snap, listeners := c.state, c.listeners
	c.mu.Unlock()
	notify(listeners, snap)

	msg, err := c.post(ctx, email)

	c.mu.Lock()
	if err != nil {
		c.state.Status = StatusError
		c.state.ErrorMessage = msg
	} else {
		c.state.Status = StatusSuccess
		c.state.Email = ""
	}
	snap, listeners = c.state, c.listeners
	c.mu.Unlock()
	notify(listeners, snap)

	return snap, err
}

type responseBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// post returns the user-facing message alongside any error.
func (c *Controller) post(ctx context.Context, email string) (string, error) {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return FallbackTransport, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return FallbackTransport, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return FallbackTransport, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body responseBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return FallbackTransport, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := body.Error
		if msg == "" {
			msg = FallbackStatus
		}
		return msg, fmt.Errorf("subscribe returned status %d: %s", resp.StatusCode, msg)
	}
	return body.Message, nil
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		l(snap)
	}
}
