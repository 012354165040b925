package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // pg | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer    string `yaml:"issuer"`
		Secret    string `yaml:"secret"`
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`

		Register struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"register"`

		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
	} `yaml:"rate"`

	SMTP struct {
		Provider string `yaml:"provider"` // smtp | dev
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		TLS      string `yaml:"tls"` // auto | starttls | ssl | none
		SinkDir  string `yaml:"sink_dir"`
	} `yaml:"smtp"`

	Email struct {
		AdminAddress string `yaml:"admin_address"`
		SiteName     string `yaml:"site_name"`
		SiteURL      string `yaml:"site_url"`
		SendTimeout  string `yaml:"send_timeout"`
		Concurrency  int    `yaml:"concurrency"`
		FollowUpDays int    `yaml:"follow_up_days"`
	} `yaml:"email"`

	Mailer struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"mailer"`

	Admin struct {
		Email        string `yaml:"email"`
		PasswordHash string `yaml:"password_hash"` // PHC argon2id
	} `yaml:"admin"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Guardia dura: en prod el sink de desarrollo no es un transporte válido.
	if strings.EqualFold(c.App.Env, "prod") && c.SMTP.Provider == "dev" {
		return nil, fmt.Errorf("smtp.provider=dev is not allowed in prod")
	}

	return &c, nil
}

// LoadOrDefault carga el YAML si existe; si no, arranca con defaults + env.
// Útil para el mailer y las herramientas de línea de comando.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	var c Config
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "pg"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "12h"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Rate.Register.Limit == 0 {
		c.Rate.Register.Limit = 5
	}
	if c.Rate.Register.Window == "" {
		c.Rate.Register.Window = "10m"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.SMTP.Provider == "" {
		c.SMTP.Provider = "smtp"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.SiteName == "" {
		c.Email.SiteName = "Learn2Grow"
	}
	if c.Email.SendTimeout == "" {
		c.Email.SendTimeout = "30s"
	}
	if c.Email.Concurrency == 0 {
		c.Email.Concurrency = 4
	}
	if c.Email.FollowUpDays == 0 {
		c.Email.FollowUpDays = 7
	}
	if c.Mailer.IntervalMinutes == 0 {
		c.Mailer.IntervalMinutes = 60
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 10
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// JWT
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_PROVIDER"); ok {
		c.SMTP.Provider = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvStr("SMTP_TLS"); ok {
		c.SMTP.TLS = v
	}
	if v, ok := getEnvStr("SMTP_SINK_DIR"); ok {
		c.SMTP.SinkDir = v
	}

	// EMAIL
	if v, ok := getEnvStr("EMAIL_ADMIN_ADDRESS"); ok {
		c.Email.AdminAddress = v
	}
	if v, ok := getEnvStr("EMAIL_SITE_NAME"); ok {
		c.Email.SiteName = v
	}
	if v, ok := getEnvStr("EMAIL_SITE_URL"); ok {
		c.Email.SiteURL = v
	}
	if v, ok := getEnvInt("EMAIL_FOLLOW_UP_DAYS"); ok {
		c.Email.FollowUpDays = v
	}

	// MAILER
	if v, ok := getEnvInt("MAILER_INTERVAL_MINUTES"); ok {
		c.Mailer.IntervalMinutes = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_EMAIL"); ok {
		c.Admin.Email = v
	}
	if v, ok := getEnvStr("ADMIN_PASSWORD_HASH"); ok {
		c.Admin.PasswordHash = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// Validate chequea coherencia interna: durations parseables y combinaciones
// de transporte válidas.
func (c *Config) Validate() error {
	for _, d := range []struct {
		name, val string
	}{
		{"jwt.access_ttl", c.JWT.AccessTTL},
		{"rate.window", c.Rate.Window},
		{"rate.register.window", c.Rate.Register.Window},
		{"rate.login.window", c.Rate.Login.Window},
		{"email.send_timeout", c.Email.SendTimeout},
		{"cache.memory.default_ttl", c.Cache.Memory.DefaultTTL},
	} {
		if d.val == "" {
			continue
		}
		if _, err := time.ParseDuration(d.val); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}

	switch c.Storage.Driver {
	case "pg", "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "pg" && c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required for driver pg")
	}

	switch c.SMTP.Provider {
	case "smtp", "dev":
	default:
		return fmt.Errorf("smtp.provider: unknown provider %q", c.SMTP.Provider)
	}
	if c.SMTP.Provider == "smtp" && c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required for provider smtp")
	}

	if c.Email.FollowUpDays < 0 {
		return fmt.Errorf("email.follow_up_days must not be negative")
	}
	return nil
}

// SendTimeoutDuration retorna email.send_timeout parseado. Validate ya
// garantizó que parsea.
func (c *Config) SendTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Email.SendTimeout)
	return d
}

// AccessTTLDuration retorna jwt.access_ttl parseado.
func (c *Config) AccessTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}
