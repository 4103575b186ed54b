package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/skarbek/skarbek-api/internal/config"
)

const (
	gmailSendScope = "https://www.googleapis.com/auth/gmail.send"
	gmailSendPath  = "/gmail/v1/users/me/messages/send"
)

// GmailSender sends mail through the Gmail REST API, authenticating with a
// long-lived OAuth refresh token.
type GmailSender struct {
	conf   *config.MailConfig
	oauth  *oauth2.Config
	client *resty.Client
}

func NewGmailSender(conf *config.MailConfig) *GmailSender {
	client := resty.New().
		SetBaseURL(conf.APIURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GmailSender{
		conf: conf,
		oauth: &oauth2.Config{
			ClientID:     conf.ClientID,
			ClientSecret: conf.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  conf.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{gmailSendScope},
		},
		client: client,
	}
}

func (s *GmailSender) configured() bool {
	return s.conf.ClientID != "" && s.conf.ClientSecret != "" &&
		s.conf.RefreshToken != "" && s.conf.SenderEmail != ""
}

func (s *GmailSender) SendTemporaryPassword(ctx context.Context, email, password, name string) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	token, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: s.conf.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("refresh gmail access token -> %w", err)
	}

	raw := s.rawMessage(email, subject, temporaryPasswordBody(password, name, s.conf.ParentLoginURL))

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetBody(map[string]string{"raw": raw}).
		Post(gmailSendPath)
	if err != nil {
		return fmt.Errorf("s.client.Post -> %w", err)
	}

	if resp.IsError() {
		zap.L().Error("gmail API returned an error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("gmail API returned status %d", resp.StatusCode())
	}

	zap.L().Info("temporary password email sent", zap.String("to", email))

	return nil
}

func (s *GmailSender) rawMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + s.conf.SenderEmail + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
