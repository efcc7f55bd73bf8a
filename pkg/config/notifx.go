package config

// NotifxConfig configures outbound email and SMS delivery.
type NotifxConfig struct {
	EmailProvider string
	FromAddress   string
	FromName      string
	AWSRegion     string

	SMSGatewayURL string
	SMSAPIKey     string
	MockSMS       bool
}

func loadNotifxConfig() NotifxConfig {
	return NotifxConfig{
		EmailProvider: getEnv("NOTIFX_EMAIL_PROVIDER", "console"),
		FromAddress:   getEnv("NOTIFX_FROM_ADDRESS", "noreply@hayat.market"),
		FromName:      getEnv("NOTIFX_FROM_NAME", "Hayat Market"),
		AWSRegion:     getEnv("NOTIFX_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
		SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
		SMSAPIKey:     getEnv("SMS_API_KEY", ""),
		MockSMS:       getEnvBool("MOCK_SMS_PROVIDER", true),
	}
}
