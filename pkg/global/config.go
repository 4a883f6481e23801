package global

import (
	"errors"
	"time"
)

type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	CORSOrigins   []string
	AdminAPIKey   string

	MongoURI      string
	MongoDatabase string

	RedisAddress  string
	RedisPassword string

	RabbitURL      string
	EventsExchange string
	NotifierQueue  string

	EmailHost     string
	EmailPort     int
	EmailUser     string
	EmailPassword string
	EmailReceive  string

	BankIBAN        string
	BankBIC         string
	BankBeneficiary string
	BankName        string
	BankAddress     string
	BankCurrency    string
	PayPalAccount   string

	OrderTTL   time.Duration
	SessionTTL time.Duration
}

var ErrMissingMongoURI = errors.New("MONGODB_URI is not set in environment variables")

func LoadConfig() Config {
	return Config{
		Port:          GetEnvOrDefault("PORT", "8000"),
		Env:           GetEnvOrDefault("ENV", "development"),
		PublicBaseURL: GetEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8000"),
		CORSOrigins: GetEnvList("CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"https://musicosbooking.pt",
		}),
		AdminAPIKey: GetEnvOrDefault("ADMIN_API_KEY", ""),

		MongoURI:      GetEnvOrDefault("MONGODB_URI", ""),
		MongoDatabase: GetEnvOrDefault("MONGODB_DATABASE", "musicosbooking"),

		RedisAddress:  GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: GetEnvOrDefault("REDIS_PASSWORD", ""),

		RabbitURL:      GetEnvOrDefault("RABBITMQ_URL", ""),
		EventsExchange: GetEnvOrDefault("EVENTS_EXCHANGE", "musicosbooking.events"),
		NotifierQueue:  GetEnvOrDefault("NOTIFIER_QUEUE", "notifier.orders"),

		EmailHost:     GetEnvOrDefault("EMAIL_HOST", ""),
		EmailPort:     GetEnvIntOrDefault("EMAIL_PORT", 587),
		EmailUser:     GetEnvOrDefault("EMAIL_USER", ""),
		EmailPassword: GetEnvOrDefault("EMAIL_PASSWORD", ""),
		EmailReceive:  GetEnvOrDefault("EMAIL_RECEIVE", ""),

		BankIBAN:        GetEnvOrDefault("BANK_IBAN", "LT98 3250 0007 9827 7556"),
		BankBIC:         GetEnvOrDefault("BANK_BIC", "REVOLT21"),
		BankBeneficiary: GetEnvOrDefault("BANK_BENEFICIARY", "Bruno Novaes Souza"),
		BankName:        GetEnvOrDefault("BANK_NAME", "Revolut Bank UAB"),
		BankAddress:     GetEnvOrDefault("BANK_ADDRESS", "Konstitucijos ave. 21B, 08130, Vilnius, Lithuania"),
		BankCurrency:    GetEnvOrDefault("BANK_CURRENCY", "EUR"),
		PayPalAccount:   GetEnvOrDefault("PAYPAL_ACCOUNT", "pagamentos@musicosbooking.pt"),

		OrderTTL:   time.Duration(GetEnvIntOrDefault("ORDER_TTL_DAYS", 7)) * 24 * time.Hour,
		SessionTTL: time.Duration(GetEnvIntOrDefault("SESSION_TTL_HOURS", 24)) * time.Hour,
	}
}

// Validate reports settings the API cannot start without.
func (c Config) Validate() error {
	if c.MongoURI == "" {
		return ErrMissingMongoURI
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
