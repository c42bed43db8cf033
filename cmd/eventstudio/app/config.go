package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
)

// loadSettings resolves settings in order of precedence:
// 1. Command-line flags
// 2. EVENTSTUDIO_* environment variables
// 3. .env files
// 4. Config file (--config, else ./.eventstudio.yaml)
// 5. Defaults
func (a *App) loadSettings(logOut io.Writer) error {
	loadEnvFiles()

	for key, value := range config.Defaults().Flatten() {
		a.v.SetDefault(key, value)
	}

	a.v.SetEnvPrefix(strings.TrimSuffix(config.EnvPrefix, "_"))
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".eventstudio")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	settings, err := config.FromConfig(config.New(a.v.AllSettings()))
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = newLogger(logOut, settings.LogLevel)
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are kept.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
