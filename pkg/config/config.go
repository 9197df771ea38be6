package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGDSN string `envconfig:"PG_DSN" required:"true"`
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":5000"`
	// PayMongo
	PayMongoSecretKey string `envconfig:"PAYMONGO_SECRET_KEY" required:"true"`
	PayMongoBaseURL   string `envconfig:"PAYMONGO_BASE_URL" default:"https://api.paymongo.com/v1"`
	CheckoutSuccess   string `envconfig:"CHECKOUT_SUCCESS_URL" default:"https://paymongo.com"`
	CheckoutCancel    string `envconfig:"CHECKOUT_CANCEL_URL" default:"https://paymongo.com"`
	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"60"`
	// MQ (optional; webhook fan-out is skipped when unset)
	RabbitURL       string `envconfig:"RABBIT_URL" default:""`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`
	NotifyQueue     string `envconfig:"NOTIFY_QUEUE" default:"notify.payment"`
	// Mail
	SMTPHost  string `envconfig:"SMTP_HOST" default:""`
	SMTPPort  string `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser  string `envconfig:"SMTP_USER" default:""`
	SMTPPass  string `envconfig:"SMTP_PASS" default:""`
	AdminMail string `envconfig:"ADMIN_MAIL" default:""`
	// Verification codes
	CodeTTLMin int `envconfig:"VERIFICATION_CODE_TTL_MIN" default:"10"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
