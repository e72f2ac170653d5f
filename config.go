package keygate

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the immutable runtime configuration. It is built once at startup
// and passed by reference; nothing reads the environment after that.
type Config struct {
	ListenAddr  string
	DatabaseDSN string

	AccessTokenSecret  string
	AccessTokenTTL     time.Duration
	RefreshTokenSecret string
	RefreshTokenTTL    time.Duration

	Issuer string
	Debug  bool
}

// LoadConfig builds a Config from the environment with development defaults.
// Keys use the KEYGATE_ prefix, e.g. KEYGATE_ACCESS_TOKEN_SECRET.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("KEYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen.addr", ":8080")
	v.SetDefault("database.dsn", "file:keygate.db?cache=shared")
	v.SetDefault("access.token.secret", "dev-access-secret")
	v.SetDefault("access.token.ttl", 15*time.Minute)
	v.SetDefault("refresh.token.secret", "dev-refresh-secret")
	v.SetDefault("refresh.token.ttl", 7*24*time.Hour)
	v.SetDefault("issuer", "keygate")
	v.SetDefault("debug", false)

	return &Config{
		ListenAddr:         v.GetString("listen.addr"),
		DatabaseDSN:        v.GetString("database.dsn"),
		AccessTokenSecret:  v.GetString("access.token.secret"),
		AccessTokenTTL:     v.GetDuration("access.token.ttl"),
		RefreshTokenSecret: v.GetString("refresh.token.secret"),
		RefreshTokenTTL:    v.GetDuration("refresh.token.ttl"),
		Issuer:             v.GetString("issuer"),
		Debug:              v.GetBool("debug"),
	}
}

// AccessSigning returns the signing configuration for the access class.
func (c *Config) AccessSigning() SigningConfig {
	return SigningConfig{Key: []byte(c.AccessTokenSecret), TTL: c.AccessTokenTTL}
}

// RefreshSigning returns the signing configuration for the refresh class.
func (c *Config) RefreshSigning() SigningConfig {
	return SigningConfig{Key: []byte(c.RefreshTokenSecret), TTL: c.RefreshTokenTTL}
}
