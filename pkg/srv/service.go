package srv

import (
	"context"
	"time"

	"github.com/sandevgo/kagglebot/pkg/log"
)

// ShutdownTimeout bounds the whole shutdown sequence.
const ShutdownTimeout = 15 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches every service in its own goroutine. A service that
// fails to start is logged and stop is called, so the process shuts the
// remaining services down instead of exiting mid-flight.
func StartServices(ctx context.Context, stop context.CancelFunc, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed", service)
				stop()
			}
		}(service)
	}
}

// ShutdownServices waits for ctx to end, then shuts the services down in
// list order on a context detached from ctx.
func ShutdownServices(ctx context.Context, services []Service) {
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()

	for _, service := range services {
		if err := service.Shutdown(sctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", service)
		}
	}
}

// Run is StartServices followed by ShutdownServices.
func Run(ctx context.Context, stop context.CancelFunc, services ...Service) {
	StartServices(ctx, stop, services)
	ShutdownServices(ctx, services)
}
