package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Primary    Database `env-prefix:"PRIMARY_"`
	Directory  Database `env-prefix:"DIRECTORY_"`
	Limiter    Limiter
	Admin      AdminConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Identity   IdentityConfig
	Discord    DiscordConfig
	Form       FormConfig
	Sweeps     SweepsConfig
	Cache      Cache
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	CorsOrigins    []string      `env:"HTTP_CORS_ORIGINS" env-default:"http://localhost:3000"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AdminConfig struct {
	JWT          JWTConfig
	PasswordSalt string `env:"ADMIN_PASSWORD_SALT" env-required:"true"`
	Email        string `env:"ADMIN_EMAIL" env-required:"true"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH" env-required:"true" env-description:"salted sha256 of the admin password"`
}

type JWTConfig struct {
	AccessTokenTTL time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"1h"`
	SigningKey     string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type SMTPConfig struct {
	Host    string        `env:"SMTP_HOST" env-required:"true"`
	Port    int           `env:"SMTP_PORT" env-required:"true"`
	From    string        `env:"SMTP_FROM" env-required:"true"`
	Pass    string        `env:"SMTP_PASS" env-required:"true"`
	Timeout time.Duration `env:"SMTP_TIMEOUT" env-default:"10s"`
}

type EmailConfig struct {
	Enabled   bool `env:"EMAIL_ENABLED" env-default:"false"`
	Templates EmailTemplates
}

type EmailTemplates struct {
	Invitation string `env:"EMAIL_TEMPLATE_INVITATION" env-default:"invitation.html"`
	Reminder   string `env:"EMAIL_TEMPLATE_REMINDER" env-default:"reminder.html"`
}

// IdentityConfig configures the phone-verification provider. When Enabled is
// false every verification call fails closed.
type IdentityConfig struct {
	Enabled bool          `env:"IDENTITY_ENABLED" env-default:"false"`
	Secret  string        `env:"IDENTITY_SECRET" env-default:""`
	Issuer  string        `env:"IDENTITY_ISSUER" env-default:""`
	Timeout time.Duration `env:"IDENTITY_TIMEOUT" env-default:"5s"`
}

type DiscordConfig struct {
	Enabled      bool   `env:"DISCORD_ENABLED" env-default:"false"`
	ClientID     string `env:"DISCORD_CLIENT_ID" env-default:""`
	ClientSecret string `env:"DISCORD_CLIENT_SECRET" env-default:""`
	RedirectURI  string `env:"DISCORD_REDIRECT_URI" env-default:""`
	GuildID      string `env:"DISCORD_GUILD_ID" env-default:""`
}

// FormConfig holds the lifecycle windows of the onboarding form.
type FormConfig struct {
	PublicURL        string        `env:"FORM_PUBLIC_URL" env-required:"true" env-description:"base URL the emailed links point at"`
	ActivationWindow time.Duration `env:"FORM_ACTIVATION_WINDOW" env-default:"10m"`
	OAuthWindow      time.Duration `env:"FORM_OAUTH_WINDOW" env-default:"30m"`
	LinkWindow       time.Duration `env:"FORM_LINK_WINDOW" env-default:"24h"`
	OtpFreshness     time.Duration `env:"FORM_OTP_FRESHNESS" env-default:"1h"`
	PhoneRegion      string        `env:"FORM_PHONE_REGION" env-default:"IN" env-description:"default region for phone numbers submitted without a country code"`
	MaxReminders     int           `env:"FORM_MAX_REMINDERS" env-default:"3"`
	Retention        time.Duration `env:"FORM_RETENTION" env-default:"2160h" env-description:"how long terminal tokens are kept, default 90 days"`
}

// SweepsConfig holds asynq scheduler specs, either cron or @every syntax.
type SweepsConfig struct {
	StaleActivation string `env:"SWEEP_STALE_ACTIVATION" env-default:"@every 30m"`
	NeverOpened     string `env:"SWEEP_NEVER_OPENED" env-default:"@daily"`
	DeferredResend  string `env:"SWEEP_DEFERRED_RESEND" env-default:"@every 48h"`
	Retention       string `env:"SWEEP_RETENTION" env-default:"@daily"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

func MustLoad() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
