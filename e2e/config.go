package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL"`
	RoomsURL  string `envconfig:"CHAT_ROOMS_URL"`
	APIURL    string `envconfig:"CHAT_API_URL"`
	// E2E_EMAIL and E2E_PASSWORD log into an existing account; when empty a
	// throwaway account is registered.
	Email    string `envconfig:"E2E_EMAIL"`
	Password string `envconfig:"E2E_PASSWORD"`
	// E2E_DEBUG_JSON dumps every published session view as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
