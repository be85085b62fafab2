package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// EnvPrefix prefixes every environment override, e.g. MEMORY_SERVER_PORT
const EnvPrefix = "MEMORY"

// Settings holds all server configuration
type Settings struct {
	Server   ServerSettings  `mapstructure:"server"`
	Game     GameSettings    `mapstructure:"game"`
	Sessions SessionSettings `mapstructure:"sessions"`
	Ngrok    NgrokSettings   `mapstructure:"ngrok"`
}

// ServerSettings contains the HTTP listener settings
type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// GameSettings contains card set and timing settings
type GameSettings struct {
	CardSetDir     string        `mapstructure:"card_set_dir"`
	DefaultCardSet string        `mapstructure:"default_card_set" validate:"required"`
	LockoutDelay   time.Duration `mapstructure:"lockout_delay" validate:"gt=0"`
	TickInterval   time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
}

// SessionSettings controls idle session expiry
type SessionSettings struct {
	MaxIdle         time.Duration `mapstructure:"max_idle" validate:"gt=0"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

// NgrokSettings configures the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `mapstructure:"enabled"`
	AuthToken string `mapstructure:"auth_token" validate:"required_if=Enabled true"`
	Domain    string `mapstructure:"domain" validate:"omitempty,hostname"`
}

// Rules converts the timing settings for the engine
func (s *Settings) Rules() engine.Rules {
	return engine.Rules{
		LockoutDelay: s.Game.LockoutDelay,
		TickInterval: s.Game.TickInterval,
	}
}

// Addr returns the host:port the HTTP server listens on
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

var validate = validator.New()

// Validate checks the settings against their validation tags
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("game.card_set_dir", "")
	v.SetDefault("game.default_card_set", BuiltInCardSetID)
	v.SetDefault("game.lockout_delay", engine.DefaultLockoutDelay)
	v.SetDefault("game.tick_interval", engine.DefaultTickInterval)
	v.SetDefault("sessions.max_idle", time.Hour)
	v.SetDefault("sessions.cleanup_interval", 10*time.Minute)
	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.auth_token", "")
	v.SetDefault("ngrok.domain", "")
}

// LoadSettings reads settings from defaults, an optional config file and
// MEMORY_* environment variables, in increasing precedence. With an empty
// path, memorygame.{yaml,json,toml} in the working directory is used if
// present.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("memorygame")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read settings file: %w", err)
			}
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}
