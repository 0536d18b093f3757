package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// AUTH_SECRET signs the tokens the suite mints for registered viewers
	AuthSecret string `envconfig:"AUTH_SECRET" default:"e2e-secret"`
	// E2E_DEBUG_JSON allows dumping full frame and response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
