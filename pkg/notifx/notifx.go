package notifx

import "context"

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// SMSSender sends a single text message.
type SMSSender interface {
	SendSMS(ctx context.Context, msg SMSMessage) error
}

// Client is the entry point for sending notifications through the configured
// providers, with named templates for recurring messages.
type Client struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateRegistry
}

// NewClient creates a notification client. Either provider may be nil when
// that channel is not configured.
func NewClient(email EmailSender, sms SMSSender) *Client {
	return &Client{
		email:     email,
		sms:       sms,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if c.email == nil {
		return notifxErrors.New(ErrSendFailed).WithDetail("reason", "no email provider configured")
	}
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	return c.email.SendEmail(ctx, msg)
}

// SendSMS sends a text message through the configured provider.
func (c *Client) SendSMS(ctx context.Context, msg SMSMessage) error {
	if c.sms == nil {
		return notifxErrors.New(ErrSendFailed).WithDetail("reason", "no sms provider configured")
	}
	if msg.To == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty recipient")
	}
	return c.sms.SendSMS(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template into the HTML body and sends it.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data any, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}
	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
