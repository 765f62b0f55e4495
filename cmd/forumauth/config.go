package main

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/forumauth/pkg/db"
	"github.com/dmitrymomot/forumauth/pkg/logger"
	"github.com/dmitrymomot/forumauth/pkg/redis"
)

type config struct {
	Log   logger.Config
	DB    db.Config
	Redis redis.Config

	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Signs the state and session cookies; at least 32 bytes.
	CookieSecret string        `env:"COOKIE_SECRET,required,notEmpty,unset"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	RedirectURL  string        `env:"OAUTH2_REDIRECT_URL"`
	ForumTimeout time.Duration `env:"IPB_TIMEOUT" envDefault:"10s"`

	// YAML file with oauth2_* options written to the settings table at startup.
	SettingsFile      string        `env:"SETTINGS_FILE"`
	SettingsOverwrite bool          `env:"SETTINGS_OVERWRITE"`
	SettingsCacheTTL  time.Duration `env:"SETTINGS_CACHE_TTL" envDefault:"1m"`
}

func loadConfig() (config, error) {
	return env.ParseAs[config]()
}
