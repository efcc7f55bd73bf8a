package notifxsms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/logx"
	"github.com/hayat-market/authgate/pkg/notifx"
)

var smsErrors = errx.NewRegistry("NOTIFX_SMS")

var (
	ErrSendFailed = smsErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "SMS gateway send failed")
)

// GatewayProvider implements notifx.SMSSender against an HTTP SMS gateway.
//
// With Mock enabled the provider logs and reports success without calling
// out, which keeps OTP flows usable in environments without a provisioned
// gateway account.
type GatewayProvider struct {
	url    string
	apiKey string
	mock   bool
	client *http.Client
}

// NewGatewayProvider creates a new SMS gateway provider.
func NewGatewayProvider(url, apiKey string, mock bool) *GatewayProvider {
	return &GatewayProvider{
		url:    url,
		apiKey: apiKey,
		mock:   mock,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS posts the message to the gateway.
func (p *GatewayProvider) SendSMS(ctx context.Context, msg notifx.SMSMessage) error {
	logx.WithFields(logx.Fields{"to": msg.To}).Info("notifx/sms: sending")

	if p.mock {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":   msg.To,
		"body": msg.Body,
	})
	if err != nil {
		return smsErrors.NewWithCause(ErrSendFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return smsErrors.NewWithCause(ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return smsErrors.NewWithCause(ErrSendFailed, err).WithDetail("to", msg.To)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return smsErrors.NewWithCause(ErrSendFailed, fmt.Errorf("gateway returned %d", resp.StatusCode)).
			WithDetail("to", msg.To)
	}
	return nil
}
