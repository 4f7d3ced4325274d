package worker

import (
	"context"
	"encoding/json"
	"testing"

	"cajacontrol/internal/infra"

	"github.com/stretchr/testify/assert"
)

func TestProcessPayloadMalformadoNoReintenta(t *testing.T) {
	w := NewNotificacionWorker(nil, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	// nil en lugar de error: un payload corrupto jamás mejora al reintentar.
	err := w.Process(context.Background(), json.RawMessage(`{esto no es json`))
	assert.NoError(t, err)
}

func TestProcessSinDestinatarioSeOmite(t *testing.T) {
	w := NewNotificacionWorker(nil, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	payload, _ := json.Marshal(NotificacionJobPayload{
		Tipo:      "acumulacion_efectivo",
		Severidad: "critical",
		Mensaje:   "efectivo acumulado",
	})
	err := w.Process(context.Background(), payload)
	assert.NoError(t, err)
}
