package notifxconsole

import (
	"context"

	"github.com/hayat-market/authgate/pkg/logx"
	"github.com/hayat-market/authgate/pkg/notifx"
)

// Provider logs notifications instead of sending them. Development only.
type Provider struct{}

func NewProvider() *Provider { return &Provider{} }

// SendEmail logs the email details.
func (p *Provider) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	logx.WithFields(logx.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("notifx/console: email")
	if msg.HTMLBody != "" {
		logx.Debugf("notifx/console: html body:\n%s", msg.HTMLBody)
	}
	return nil
}

// SendSMS logs the SMS details.
func (p *Provider) SendSMS(_ context.Context, msg notifx.SMSMessage) error {
	logx.WithFields(logx.Fields{
		"to":   msg.To,
		"body": msg.Body,
	}).Info("notifx/console: sms")
	return nil
}
