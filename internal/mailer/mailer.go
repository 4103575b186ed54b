// Package mailer delivers temporary passwords to parents.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skarbek/skarbek-api/internal/config"
)

var (
	ErrNotConfigured = errors.New("mail sender is not configured")
)

type Sender interface {
	SendTemporaryPassword(ctx context.Context, email, password, name string) error
}

// New builds the sender selected by conf.Driver.
func New(conf *config.MailConfig) (Sender, error) {
	switch conf.Driver {
	case "gmail":
		return NewGmailSender(conf), nil
	case "log":
		return NewLogSender(conf.ParentLoginURL), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", conf.Driver)
	}
}

const subject = "Your temporary Skarbek password"

func temporaryPasswordBody(password, name, loginURL string) string {
	if name == "" {
		name = "parent"
	}

	return fmt.Sprintf("Hello %s,\n\n"+
		"We generated a temporary password for you: %s\n"+
		"You will have to change it after your first login.\n\n"+
		"Log in here: %s\n\n"+
		"Regards,\nThe Skarbek team\n", name, password, loginURL)
}

// LogSender writes the message to the log instead of sending it. Only meant
// for local development.
type LogSender struct {
	loginURL string
}

func NewLogSender(loginURL string) *LogSender {
	return &LogSender{
		loginURL: loginURL,
	}
}

func (s *LogSender) SendTemporaryPassword(_ context.Context, email, password, name string) error {
	zap.L().Warn("mail driver is log, temporary password not delivered",
		zap.String("to", email),
		zap.String("subject", subject),
		zap.String("body", temporaryPasswordBody(password, name, s.loginURL)),
	)

	return nil
}
