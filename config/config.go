package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is assembled once at startup and handed to every component by value.
type Config struct {
	Server     ServerConfig
	Upload     UploadConfig
	Drive      DriveConfig
	GCS        GCSConfig
	R2         R2Config
	AppsScript AppsScriptConfig
	Email      EmailConfig
	Chat       ChatConfig
	Redis      RedisConfig
	Guard      GuardConfig
}

type ServerConfig struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS"`
	StaticDir      string  `envconfig:"STATIC_DIR"`
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
	GELFAddr       string  `envconfig:"GELF_ADDR"`
}

// UploadConfig covers the form-side file rules and the proxy-side limits.
type UploadConfig struct {
	Backend            string   `envconfig:"UPLOAD_BACKEND" default:"none"`
	AllowedMimeTypes   []string `envconfig:"ALLOWED_FILE_MIME_TYPES" default:"image/jpeg,image/png,image/webp,image/gif"`
	MaxFileSizeMB      int      `envconfig:"MAX_UPLOAD_SIZE_MB" default:"5"`
	MaxFileCount       int      `envconfig:"MAX_UPLOAD_FILES" default:"5"`
	Parallelism        int      `envconfig:"UPLOAD_PARALLELISM" default:"5"`
	ProxyMaxFileSizeMB int      `envconfig:"PROXY_MAX_FILE_SIZE_MB" default:"10"`
	ProxyMaxFiles      int      `envconfig:"PROXY_MAX_FILES" default:"5"`
}

func (u UploadConfig) MaxFileSizeBytes() int64 {
	return int64(u.MaxFileSizeMB) << 20
}

func (u UploadConfig) ProxyMaxFileSizeBytes() int64 {
	return int64(u.ProxyMaxFileSizeMB) << 20
}

type DriveConfig struct {
	ServiceAccountEmail string `envconfig:"GOOGLE_SERVICE_ACCOUNT_EMAIL"`
	PrivateKey          string `envconfig:"GOOGLE_SERVICE_ACCOUNT_PRIVATE_KEY"`
	FolderID            string `envconfig:"GOOGLE_DRIVE_FOLDER_ID"`
}

type GCSConfig struct {
	Bucket          string `envconfig:"GCS_BUCKET"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE_LOCATION"`
	Prefix          string `envconfig:"GCS_PREFIX" default:"quotations/"`
	UniformAccess   bool   `envconfig:"GCS_UNIFORM_ACCESS" default:"false"`
}

type R2Config struct {
	Bucket          string `envconfig:"R2_BUCKET"`
	AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	Endpoint        string `envconfig:"R2_ENDPOINT"`
	Region          string `envconfig:"R2_REGION" default:"auto"`
	PublicDomain    string `envconfig:"R2_PUBLIC_DOMAIN"`
	PublicACL       bool   `envconfig:"R2_PUBLIC_ACL" default:"false"`
	Prefix          string `envconfig:"R2_PREFIX" default:"quotations/"`
}

type AppsScriptConfig struct {
	WebAppURL string `envconfig:"GAS_WEB_APP_URL"`
}

// EmailConfig selects the relay. With EMAIL_RELAY=emailjs the three EmailJS
// identifiers must all be present or the email channel is skipped.
type EmailConfig struct {
	Relay       string        `envconfig:"EMAIL_RELAY" default:"emailjs"`
	Timeout     time.Duration `envconfig:"EMAIL_TIMEOUT" default:"15s"`
	SettleWait  time.Duration `envconfig:"EMAIL_SETTLE_WAIT" default:"0s"`
	EmailJS     EmailJSConfig
	SMTP        SMTPConfig
	SubjectLine string `envconfig:"EMAIL_SUBJECT" default:"New quotation request"`
}

type EmailJSConfig struct {
	Endpoint    string `envconfig:"EMAILJS_ENDPOINT" default:"https://api.emailjs.com/api/v1.0/email/send"`
	ServiceID   string `envconfig:"EMAILJS_SERVICE_ID"`
	TemplateID  string `envconfig:"EMAILJS_TEMPLATE_ID"`
	PublicKey   string `envconfig:"EMAILJS_PUBLIC_KEY"`
	AccessToken string `envconfig:"EMAILJS_PRIVATE_KEY"`
}

type SMTPConfig struct {
	Host     string   `envconfig:"SMTP_HOST"`
	Port     int      `envconfig:"SMTP_PORT" default:"587"`
	Username string   `envconfig:"SMTP_USERNAME"`
	Password string   `envconfig:"SMTP_PASSWORD"`
	From     string   `envconfig:"SMTP_FROM"`
	To       []string `envconfig:"SMTP_TO"`
	TLS      bool     `envconfig:"SMTP_IMPLICIT_TLS" default:"false"`
}

// ChatConfig holds one recipient per site section; the defaults are the
// numbers the site has always used.
type ChatConfig struct {
	BaseURL         string `envconfig:"CHAT_BASE_URL" default:"https://wa.me"`
	QuotationNumber string `envconfig:"CHAT_NUMBER_QUOTATION" default:"+923001234567"`
	HeroNumber      string `envconfig:"CHAT_NUMBER_HERO" default:"+923001234567"`
	ContactNumber   string `envconfig:"CHAT_NUMBER_CONTACT" default:"+923001234567"`
	HeaderNumber    string `envconfig:"CHAT_NUMBER_HEADER" default:"+923234922778"`
	FooterNumber    string `envconfig:"CHAT_NUMBER_FOOTER" default:"+8615650730016"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type GuardConfig struct {
	LockTTL time.Duration `envconfig:"SUBMISSION_LOCK_TTL" default:"2m"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Upload.Backend = strings.ToLower(strings.TrimSpace(c.Upload.Backend))
	c.Email.Relay = strings.ToLower(strings.TrimSpace(c.Email.Relay))

	mimes := make([]string, 0, len(c.Upload.AllowedMimeTypes))
	for _, m := range c.Upload.AllowedMimeTypes {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			mimes = append(mimes, m)
		}
	}
	c.Upload.AllowedMimeTypes = mimes

	if c.Upload.Parallelism < 1 {
		c.Upload.Parallelism = 1
	}
}

func (c *Config) validate() error {
	if c.Upload.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	if c.Upload.MaxFileCount < 0 {
		return fmt.Errorf("MAX_UPLOAD_FILES must not be negative")
	}
	if c.Upload.ProxyMaxFileSizeMB <= 0 || c.Upload.ProxyMaxFiles <= 0 {
		return fmt.Errorf("PROXY_MAX_FILE_SIZE_MB and PROXY_MAX_FILES must be positive")
	}
	switch c.Email.Relay {
	case "emailjs", "smtp", "none":
	default:
		return fmt.Errorf("unsupported EMAIL_RELAY %q (emailjs, smtp, none)", c.Email.Relay)
	}
	return nil
}

// AllowedOriginSet splits ALLOWED_ORIGINS the way the CORS middleware expects.
func (s ServerConfig) AllowedOriginSet() map[string]bool {
	allowed := map[string]bool{}
	for _, origin := range strings.Split(s.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}
