package notifx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/hayat-market/authgate/pkg/notifx"
)

type captureEmail struct {
	last notifx.EmailMessage
}

func (c *captureEmail) SendEmail(_ context.Context, msg notifx.EmailMessage) error {
	c.last = msg
	return nil
}

type captureSMS struct {
	last notifx.SMSMessage
}

func (c *captureSMS) SendSMS(_ context.Context, msg notifx.SMSMessage) error {
	c.last = msg
	return nil
}

func TestSendTemplatedEmail(t *testing.T) {
	email := &captureEmail{}
	client := notifx.NewClient(email, nil)

	if err := client.RegisterTemplate("code", `<b>{{.Code}}</b>`); err != nil {
		t.Fatalf("RegisterTemplate: %v", err)
	}

	err := client.SendTemplatedEmail(context.Background(), "code",
		map[string]string{"Code": "123456"},
		notifx.EmailMessage{From: "noreply@x", To: []string{"a@b.c"}, Subject: "Code"})
	if err != nil {
		t.Fatalf("SendTemplatedEmail: %v", err)
	}
	if !strings.Contains(email.last.HTMLBody, "123456") {
		t.Fatalf("rendered body = %q", email.last.HTMLBody)
	}
}

func TestTemplateEscapesHTML(t *testing.T) {
	email := &captureEmail{}
	client := notifx.NewClient(email, nil)
	client.RegisterTemplate("greet", `Hello {{.Name}}`)

	err := client.SendTemplatedEmail(context.Background(), "greet",
		map[string]string{"Name": "<script>x</script>"},
		notifx.EmailMessage{From: "noreply@x", To: []string{"a@b.c"}, Subject: "Hi"})
	if err != nil {
		t.Fatalf("SendTemplatedEmail: %v", err)
	}
	if strings.Contains(email.last.HTMLBody, "<script>") {
		t.Fatal("template output not HTML-escaped")
	}
}

func TestSendEmailValidation(t *testing.T) {
	client := notifx.NewClient(&captureEmail{}, nil)
	ctx := context.Background()

	if err := client.SendEmail(ctx, notifx.EmailMessage{Subject: "s"}); err == nil {
		t.Fatal("no recipients accepted")
	}
	if err := client.SendEmail(ctx, notifx.EmailMessage{To: []string{"a@b.c"}}); err == nil {
		t.Fatal("empty subject accepted")
	}
}

func TestSendSMS(t *testing.T) {
	sms := &captureSMS{}
	client := notifx.NewClient(nil, sms)

	err := client.SendSMS(context.Background(), notifx.SMSMessage{To: "+964770", Body: "code 1"})
	if err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if sms.last.To != "+964770" {
		t.Fatalf("recipient = %q", sms.last.To)
	}

	// No provider configured for the other channel.
	if err := client.SendEmail(context.Background(), notifx.EmailMessage{To: []string{"a@b.c"}, Subject: "s"}); err == nil {
		t.Fatal("send without email provider succeeded")
	}
}
