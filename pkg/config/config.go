package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every variable the gateway reads.
const EnvPrefix = "SHOPGATE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App         AppConfig
	Services    ServicesConfig
	Checkout    CheckoutConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Idempotency IdempotencyConfig
	GCP         GCPConfig
	PubSub      PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Services.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPGATE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPGATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPGATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPGATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ServicesConfig points the gateway at its upstream services.
type ServicesConfig struct {
	CartURL     string        `envconfig:"SHOPGATE_CART_SERVICE_URL"`
	UsersURL    string        `envconfig:"SHOPGATE_USERS_SERVICE_URL"`
	ProductsURL string        `envconfig:"SHOPGATE_PRODUCTS_SERVICE_URL"`
	OrdersURL   string        `envconfig:"SHOPGATE_ORDERS_SERVICE_URL"`
	CallTimeout time.Duration `envconfig:"SHOPGATE_SERVICE_CALL_TIMEOUT" default:"5s"`
}

func (s ServicesConfig) validate() error {
	missing := []string{}
	for name, url := range map[string]string{
		"SHOPGATE_CART_SERVICE_URL":     s.CartURL,
		"SHOPGATE_USERS_SERVICE_URL":    s.UsersURL,
		"SHOPGATE_PRODUCTS_SERVICE_URL": s.ProductsURL,
		"SHOPGATE_ORDERS_SERVICE_URL":   s.OrdersURL,
	} {
		if strings.TrimSpace(url) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing service urls: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CheckoutConfig bounds the checkout pipeline.
type CheckoutConfig struct {
	Deadline         time.Duration `envconfig:"SHOPGATE_CHECKOUT_DEADLINE" default:"30s"`
	CartPageSize     int           `envconfig:"SHOPGATE_CHECKOUT_CART_PAGE_SIZE" default:"100"`
	PriceConcurrency int           `envconfig:"SHOPGATE_CHECKOUT_PRICE_CONCURRENCY" default:"4"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPGATE_REDIS_URL"`
	Address      string        `envconfig:"SHOPGATE_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPGATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPGATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPGATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPGATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPGATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPGATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPGATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SHOPGATE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SHOPGATE_JWT_ISSUER" required:"true"`
}

type IdempotencyConfig struct {
	CheckoutTTL time.Duration `envconfig:"SHOPGATE_IDEMPOTENCY_CHECKOUT_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"SHOPGATE_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"SHOPGATE_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrderEventsTopic string `envconfig:"SHOPGATE_PUBSUB_ORDER_EVENTS_TOPIC"`
}

// Enabled reports whether order event publication is configured.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrderEventsTopic) != ""
}
