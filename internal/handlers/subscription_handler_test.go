package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebateforge-site/internal/logging"
	"rebateforge-site/internal/models"
	"rebateforge-site/internal/provider"
	"rebateforge-site/internal/service"
	"rebateforge-site/internal/web"
)

type stubProvider struct {
	calls []models.Contact
	err   error
}

func (s *stubProvider) CreateContact(ctx context.Context, contact models.Contact) error {
	s.calls = append(s.calls, contact)
	return s.err
}

func newTestRouter(p provider.ContactCreator) (*gin.Engine, *bytes.Buffer) {
	gin.SetMode(gin.TestMode)

	var logs bytes.Buffer
	logger := logging.New(&logs, "debug")
	svc := service.NewSubscriptionService(p, nil, "aud_1", logger)
	h := NewSubscriptionHandler(svc, logger)
	pages := NewPageHandler("/api/subscribe", "test")

	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	router.POST("/api/subscribe", h.Subscribe)
	router.GET("/", pages.Landing)
	router.GET("/health", pages.Health)
	return router, &logs
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubscribeSuccess(t *testing.T) {
	p := &stubProvider{}
	router, _ := newTestRouter(p)

	w := post(router, `{"email":"a@b.com"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Successfully subscribed!"}`, w.Body.String())
	require.Len(t, p.calls, 1)
	assert.Equal(t, models.Contact{Email: "a@b.com", AudienceID: "aud_1"}, p.calls[0])
}

func TestSubscribeAcceptsAnyNonEmptyString(t *testing.T) {
	p := &stubProvider{}
	router, _ := newTestRouter(p)

	for _, email := range []string{"not-an-email", "x", "a@b"} {
		w := post(router, `{"email":"`+email+`"}`)
		assert.Equal(t, http.StatusOK, w.Code, email)
	}
	assert.Len(t, p.calls, 3)
}

func TestSubscribeEmailRequired(t *testing.T) {
	bodies := []string{
		`{}`,
		`{"email":""}`,
		`{"email":null}`,
		`{"name":"Ada","source":"footer"}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			p := &stubProvider{}
			router, _ := newTestRouter(p)

			w := post(router, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Email is required"}`, w.Body.String())
			assert.Empty(t, p.calls)
		})
	}
}

func TestSubscribeProviderFailureIsOpaque(t *testing.T) {
	causes := []error{
		&provider.Error{Kind: provider.KindProviderRejected, Provider: "resend", Err: errors.New("contact already exists")},
		&provider.Error{Kind: provider.KindProviderUnavailable, Provider: "resend", Err: context.DeadlineExceeded},
		&provider.Error{Kind: provider.KindInvalidInput, Provider: "resend", Err: provider.ErrMissingAPIKey},
		errors.New("unexpected"),
	}
	for _, cause := range causes {
		t.Run(cause.Error(), func(t *testing.T) {
			router, logs := newTestRouter(&stubProvider{err: cause})

			w := post(router, `{"email":"a@b.com"}`)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Failed to subscribe"}`, w.Body.String())
			assert.Contains(t, logs.String(), "Error subscribing")
		})
	}
}

func TestSubscribeMalformedBody(t *testing.T) {
	for _, body := range []string{``, `{"email":`, `{"email":42}`} {
		p := &stubProvider{}
		router, _ := newTestRouter(p)

		w := post(router, body)

		assert.Equal(t, http.StatusInternalServerError, w.Code, body)
		assert.JSONEq(t, `{"error":"Failed to subscribe"}`, w.Body.String())
		assert.Empty(t, p.calls)
	}
}

func TestLandingPage(t *testing.T) {
	router, _ := newTestRouter(&stubProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Get Early Access")
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(&stubProvider{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
