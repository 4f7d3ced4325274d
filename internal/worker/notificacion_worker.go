package worker

// notificacion_worker.go delivers alert mail to the supervision inbox. The
// SMTP relay sits behind the circuit breaker so a dead mail server fast-fails
// instead of stalling the pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"cajacontrol/internal/infra"

	"github.com/rs/zerolog/log"
)

// NotificacionJobPayload is the job envelope sent to QueueNotificaciones.
type NotificacionJobPayload struct {
	ToEmail   string `json:"to_email"`
	Tipo      string `json:"tipo"`
	Severidad string `json:"severidad"`
	TurnoID   string `json:"turno_id"`
	Mensaje   string `json:"mensaje"`
}

// NotificacionWorker sends alert mail through the breaker-guarded mailer.
type NotificacionWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewNotificacionWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *NotificacionWorker {
	return &NotificacionWorker{mailer: mailer, cb: cb}
}

func (w *NotificacionWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload NotificacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		// Malformed payloads never succeed on retry.
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("notificacion_worker: empty to_email, skipping")
		return nil
	}

	subject := fmt.Sprintf("[%s] Alerta de caja: %s", payload.Severidad, payload.Tipo)
	body := fmt.Sprintf("Turno %s\n\n%s\n", payload.TurnoID, payload.Mensaje)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, subject, body, "")
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("notificacion_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("tipo", payload.Tipo).Msg("notificacion_worker: alert mail sent")
	return nil
}
