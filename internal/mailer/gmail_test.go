package mailer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarbek/skarbek-api/internal/config"
)

type gmailStub struct {
	mu         sync.Mutex
	sendStatus int
	authHeader string
	raw        string
}

func (g *gmailStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc(gmailSendPath, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		g.mu.Lock()
		g.authHeader = r.Header.Get("Authorization")
		g.raw = body["raw"]
		status := g.sendStatus
		g.mu.Unlock()

		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"msg-1"}`))
	})
	return mux
}

func newTestGmailSender(t *testing.T, stub *gmailStub) *GmailSender {
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return NewGmailSender(&config.MailConfig{
		Driver:         "gmail",
		ClientID:       "client",
		ClientSecret:   "secret",
		RefreshToken:   "refresh",
		SenderEmail:    "school@example.com",
		TokenURL:       srv.URL + "/token",
		APIURL:         srv.URL,
		ParentLoginURL: "http://localhost:3000/#/parent/login",
	})
}

func TestGmailSender_SendTemporaryPassword(t *testing.T) {
	stub := &gmailStub{sendStatus: http.StatusOK}
	sender := newTestGmailSender(t, stub)

	err := sender.SendTemporaryPassword(context.Background(), "anna@example.com", "Tmp4Pass9x", "Anna")
	require.NoError(t, err)

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, "Bearer access-123", stub.authHeader)

	decoded, err := base64.URLEncoding.DecodeString(stub.raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "To: anna@example.com")
	assert.Contains(t, string(decoded), "From: school@example.com")
	assert.Contains(t, string(decoded), "Tmp4Pass9x")
	assert.Contains(t, string(decoded), "Hello Anna")
}

func TestGmailSender_APIError(t *testing.T) {
	stub := &gmailStub{sendStatus: http.StatusForbidden}
	sender := newTestGmailSender(t, stub)

	err := sender.SendTemporaryPassword(context.Background(), "anna@example.com", "Tmp4Pass9x", "")
	assert.Error(t, err)
}

func TestGmailSender_NotConfigured(t *testing.T) {
	sender := NewGmailSender(&config.MailConfig{Driver: "gmail"})

	err := sender.SendTemporaryPassword(context.Background(), "anna@example.com", "Tmp4Pass9x", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNew(t *testing.T) {
	s, err := New(&config.MailConfig{Driver: "log"})
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)
	assert.NoError(t, s.SendTemporaryPassword(context.Background(), "a@example.com", "pw", "A"))

	s, err = New(&config.MailConfig{Driver: "gmail"})
	require.NoError(t, err)
	assert.IsType(t, &GmailSender{}, s)

	_, err = New(&config.MailConfig{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}
