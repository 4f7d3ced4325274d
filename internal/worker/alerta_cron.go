package worker

// alerta_cron.go runs the threshold monitor sweep. Every tick re-evaluates
// all open and suspended shifts; mail fan-out happens through the monitor's
// publication hook, not here.

import (
	"context"
	"time"

	"cajacontrol/internal/service"

	"github.com/rs/zerolog/log"
)

// AlertaCronConfig holds the sweep dependencies.
type AlertaCronConfig struct {
	Alertas  service.AlertaService
	Interval time.Duration
}

// StartAlertaCron launches the background sweep goroutine. It respects the
// context for graceful shutdown.
func StartAlertaCron(ctx context.Context, cfg AlertaCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("alerta_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alerta_cron: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, cfg)
			}
		}
	}()
}

func sweep(ctx context.Context, cfg AlertaCronConfig) {
	alertas, err := cfg.Alertas.EvaluarActivos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("alerta_cron: sweep failed")
		return
	}
	if len(alertas) > 0 {
		log.Info().Int("hallazgos", len(alertas)).Msg("alerta_cron: sweep finished")
	}
}
