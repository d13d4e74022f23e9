package utils

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PLANTFINDER"

type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

type SessionConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Config struct {
	Addr        string
	HTTPTimeout time.Duration

	Primary   ProviderConfig
	Secondary ProviderConfig

	CatalogPath string // JSON dataset override; empty means the embedded one
	CatalogDB   string // SQLite catalog; takes precedence over CatalogPath

	Session SessionConfig

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.timeout", 12*time.Second)

	v.SetDefault("primary.api_key", "")
	v.SetDefault("primary.base_url", "https://perenual.com/api/v2")
	v.SetDefault("secondary.api_key", "")
	v.SetDefault("secondary.base_url", "https://trefle.io/api/v1")

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.db", "")

	// dev default (change for production)
	v.SetDefault("session.secret", "dev-secret-change-me")
	v.SetDefault("session.issuer", "plantfinder")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads configuration once from PLANTFINDER_* environment
// variables, e.g. PLANTFINDER_PRIMARY_API_KEY or PLANTFINDER_SESSION_TTL.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		Addr:        v.GetString("http.addr"),
		HTTPTimeout: v.GetDuration("http.timeout"),
		Primary: ProviderConfig{
			APIKey:  v.GetString("primary.api_key"),
			BaseURL: strings.TrimRight(v.GetString("primary.base_url"), "/"),
		},
		Secondary: ProviderConfig{
			APIKey:  v.GetString("secondary.api_key"),
			BaseURL: strings.TrimRight(v.GetString("secondary.base_url"), "/"),
		},
		CatalogPath: v.GetString("catalog.path"),
		CatalogDB:   v.GetString("catalog.db"),
		Session: SessionConfig{
			Secret: v.GetString("session.secret"),
			Issuer: v.GetString("session.issuer"),
			TTL:    v.GetDuration("session.ttl"),
		},
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	// if parse fails, fall back to 24h
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 12 * time.Second
	}
	return cfg
}
