// Package app wires the eventstudio CLI: configuration, logging, and the
// commands that drive a Studio.
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/randalmurphal/eventstudio/pkg/eventstudio"
	"github.com/randalmurphal/eventstudio/pkg/eventstudio/audit"
	"github.com/randalmurphal/eventstudio/pkg/eventstudio/config"
)

// App holds the CLI dependencies resolved before any command runs.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	v          *viper.Viper
	configFile string
	settings   config.Settings
	logger     *slog.Logger

	// openAudit opens the audit store selected by the settings.
	openAudit func(config.AuditSettings) (audit.Store, error)
}

// New creates an App with the given version information.
func New(version, commit, date string) *App {
	return &App{
		version:  version,
		commit:   commit,
		date:     date,
		v:        viper.New(),
		settings: config.Defaults(),
		logger:   slog.New(slog.DiscardHandler),

		openAudit: audit.Open,
	}
}

// Settings returns the resolved settings.
func (a *App) Settings() config.Settings {
	return a.settings
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Studio creates a Studio from the resolved settings. The returned close
// function releases the audit store, if any.
func (a *App) Studio() (*eventstudio.Studio, func() error, error) {
	opts := a.settings.Options(a.logger)
	if a.settings.Audit.Driver == config.AuditNone {
		return eventstudio.New(opts...), func() error { return nil }, nil
	}

	store, err := a.openAudit(a.settings.Audit)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, eventstudio.WithDefaultSupervisor(audit.Factory(store)))
	return eventstudio.New(opts...), store.Close, nil
}

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError prints err and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
