package container

import (
	"context"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectoinject/loglevel"
	"github.com/Gobusters/ectologger"
)

// New returns the dependency container registered under id, creating it when
// it does not exist yet. Container diagnostics go to logger.
func New(id string, logger ectologger.Logger) (ectocontainer.DIContainer, error) {
	if existing := ectoinject.GetContainer(id); existing != nil {
		return existing, nil
	}

	return ectoinject.NewDIContainer(ectocontainer.DIContainerConfig{
		ID:                       id,
		AllowCaptiveDependencies: true,
		LoggerConfig: &ectocontainer.DIContainerLoggerConfig{
			Prefix:   "ectoinject",
			LogLevel: loglevel.WARN,
			Enabled:  true,
			LogFunc: func(ctx context.Context, level, msg string) {
				log := logger.WithContext(ctx).WithField("container_id", id)
				if level == loglevel.WARN {
					log.Warn(msg)
					return
				}
				log.Debug(msg)
			},
		},
	})
}
