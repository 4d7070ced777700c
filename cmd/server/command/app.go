package command

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ricirt/sms-engine/internal/config"
	"github.com/ricirt/sms-engine/internal/logger"
	"github.com/ricirt/sms-engine/internal/provider"
	"github.com/ricirt/sms-engine/internal/service"
)

// App carries what every subcommand needs. Flags are bound before Execute,
// so configuration is read lazily from inside RunE.
type App struct {
	ConfigFile string
}

// load reads configuration and builds a logger writing its console stream
// to console.
func (a *App) load(console io.Writer) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(a.ConfigFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	log, err := logger.New(cfg.Log, console)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build logger")
	}
	if cfg.Source == "" {
		log.Info("no config file found; using defaults and environment variables")
	} else {
		log.Info("config loaded", zap.String("file", cfg.Source))
	}
	return cfg, log, nil
}

func newService(cfg *config.Config, log *zap.Logger, hooks service.MetricHooks) *service.SMSService {
	gateway := provider.NewSSLWireless(
		cfg.Gateway.BaseURL,
		provider.Credentials{APIToken: cfg.Gateway.APIToken, SID: cfg.Gateway.SID},
		cfg.Gateway.Timeout,
		log,
	)
	return service.NewSMSService(gateway, cfg.Gateway.Timeout, log, hooks)
}
