package email

// Provider names accepted by EMAIL_PROVIDER.
const (
	ProviderNone     = "none"
	ProviderPostmark = "postmark"
	ProviderSES      = "ses"
	ProviderSMTP     = "smtp"
	ProviderDev      = "dev"
)

// Config selects and configures the outbound email provider.
type Config struct {
	Provider    string `env:"EMAIL_PROVIDER" envDefault:"none"`
	SenderEmail string `env:"EMAIL_FROM"`
	ReplyTo     string `env:"EMAIL_REPLY_TO"`

	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`

	SESRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	// SMTPSecure dials with implicit TLS. Port 465 implies it.
	SMTPSecure bool `env:"SMTP_SECURE" envDefault:"false"`

	DevDir string `env:"EMAIL_DEV_DIR" envDefault:"tmp/emails"`
}
