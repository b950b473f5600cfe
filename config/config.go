package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingSetting = errors.New("missing required setting")

// Settings holds everything read at startup. Keys in appsettings.yaml mirror
// the field names, e.g. Settings.TimeOut, and every key can be overridden by
// an environment variable such as SETTINGS_TIMEOUT or REDIS_URL.
type Settings struct {
	// Seconds before an upstream request is abandoned.
	TimeOut          int
	AllPlayersURL    string
	LatestPlayersURL string
	// Days a cached player list lives regardless of use.
	RefreshDays int

	BreakerFailures int
	BreakerCooldown time.Duration

	Port          int
	RedisURL      string
	LogLevel      string
	LogFormat     string
	AdminUser     string
	AdminPassword string
}

// Load reads the settings from the config file at path (if non-empty) or from
// appsettings.yaml in the working directory or $CONFIG_PATH, then applies
// environment overrides. A missing config file is not an error, the
// environment alone may be enough.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("appsettings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if p := os.Getenv("CONFIG_PATH"); p != "" {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	s := &Settings{
		TimeOut:          v.GetInt("settings.timeout"),
		AllPlayersURL:    v.GetString("settings.allplayersurl"),
		LatestPlayersURL: v.GetString("settings.latestplayersurl"),
		RefreshDays:      v.GetInt("settings.refreshdays"),
		BreakerFailures:  v.GetInt("settings.breakerfailures"),
		BreakerCooldown:  v.GetDuration("settings.breakercooldown"),
		Port:             v.GetInt("server.port"),
		RedisURL:         v.GetString("redis.url"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
		AdminUser:        v.GetString("admin.user"),
		AdminPassword:    v.GetString("admin.password"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.timeout", 30)
	v.SetDefault("settings.allplayersurl", "")
	v.SetDefault("settings.latestplayersurl", "")
	v.SetDefault("settings.refreshdays", 7)
	v.SetDefault("settings.breakerfailures", 5)
	v.SetDefault("settings.breakercooldown", "30s")
	v.SetDefault("server.port", 3000)
	v.SetDefault("redis.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("admin.user", "")
	v.SetDefault("admin.password", "")
}

func (s *Settings) Validate() error {
	if s.AllPlayersURL == "" {
		return fmt.Errorf("%w: Settings:AllPlayersUrl", ErrMissingSetting)
	}
	if s.LatestPlayersURL == "" {
		return fmt.Errorf("%w: Settings:LatestPlayersUrl", ErrMissingSetting)
	}
	if s.TimeOut <= 0 {
		return fmt.Errorf("Settings:TimeOut must be positive, was %d", s.TimeOut)
	}
	if s.RefreshDays <= 0 {
		return fmt.Errorf("Settings:RefreshDays must be positive, was %d", s.RefreshDays)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("Server:Port is out of range: %d", s.Port)
	}
	return nil
}

func (s *Settings) UpstreamTimeout() time.Duration {
	return time.Duration(s.TimeOut) * time.Second
}

// AbsoluteExpiration is how long a cached list may live from the time it was
// written.
func (s *Settings) AbsoluteExpiration() time.Duration {
	return time.Duration(s.RefreshDays) * 24 * time.Hour
}

// AdminEnabled reports whether the admin routes should be mounted.
func (s *Settings) AdminEnabled() bool {
	return s.AdminUser != "" && s.AdminPassword != ""
}
