package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the process configuration. HTTPAddr enables the status server when set.
type Config struct {
	Token            string        `env:"TOKEN"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"postgres://localhost:5432/tournamentbot?sslmode=disable"`
	MigrationsPath   string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	CommandPrefix    string        `env:"COMMAND_PREFIX" envDefault:"!"`
	Locale           string        `env:"LOCALE" envDefault:"fr"`
	Timezone         string        `env:"TIMEZONE" envDefault:"Europe/Paris"`
	HTTPAddr         string        `env:"HTTP_ADDR"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	OpenDelay        time.Duration `env:"WINDOW_OPEN_DELAY" envDefault:"10s"`
	PromptTimeout    time.Duration `env:"PROMPT_TIMEOUT" envDefault:"20s"`
	ProgressInterval time.Duration `env:"PROGRESS_INTERVAL" envDefault:"1s"`
}

// Load charge la configuration depuis les variables d'environnement et la valide.
func Load() (*Config, error) {
	// .env est optionnel lorsque les variables sont fournies par l'environnement (Docker, CI, etc.).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: lecture de .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate applique toutes les règles sur la configuration chargée.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN est requis et ne peut pas être vide")
	}

	if strings.TrimSpace(c.CommandPrefix) == "" {
		return fmt.Errorf("config: COMMAND_PREFIX ne peut pas être vide")
	}

	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalide (%q): scheme ou host manquant", c.DatabaseURL)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: LOG_LEVEL invalide (%q)", c.LogLevel)
	}

	for name, d := range map[string]time.Duration{
		"WINDOW_OPEN_DELAY": c.OpenDelay,
		"PROMPT_TIMEOUT":    c.PromptTimeout,
		"PROGRESS_INTERVAL": c.ProgressInterval,
	} {
		if d < 0 || (d == 0 && name != "WINDOW_OPEN_DELAY") {
			return fmt.Errorf("config: %s doit être positif (%s)", name, d)
		}
	}
	return nil
}
