package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de TurnoCaja. "cerrado" es terminal.
const (
	TurnoActivo     = "activo"
	TurnoSuspendido = "suspendido"
	TurnoCerrado    = "cerrado"
)

// Tipos de relevo (handoff) de turno.
const (
	RelevoApertura    = "apertura"
	RelevoCambioTurno = "cambio_turno"
	RelevoCierre      = "cierre"
	RelevoEmergencia  = "emergencia"
)

// ParseTipoRelevo validates a handoff kind at the boundary, rejecting
// unrecognized values before they reach any transition logic.
func ParseTipoRelevo(s string) (string, error) {
	switch s {
	case RelevoApertura, RelevoCambioTurno, RelevoCierre, RelevoEmergencia:
		return s, nil
	}
	return "", fmt.Errorf("tipo de relevo desconocido: %q", s)
}

// TurnoCaja is one cashier's continuous working period inside a session.
//
// Invariants enforced at the storage boundary (see repository.TurnoRepository):
//   - at most one turno per session in estado "activo"
//   - EfectivoInicial of a turno with a predecessor equals the predecessor's
//     EfectivoFinal exactly (handoff continuity)
type TurnoCaja struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;not null;index"`
	CajeroID     uuid.UUID `gorm:"type:uuid;not null;index"`
	// TurnoAnteriorID links the predecessor shift whose closing cash this
	// shift inherited. Nil for the first shift of a session.
	TurnoAnteriorID *uuid.UUID `gorm:"type:uuid"`
	// TipoRelevo: "apertura" | "cambio_turno" | "cierre" | "emergencia"
	TipoRelevo string `gorm:"type:varchar(20);not null"`
	// Estado: "activo" | "suspendido" | "cerrado"
	Estado string `gorm:"type:varchar(20);not null;default:'activo'"`

	EfectivoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// EfectivoFinal, EfectivoEsperado y Diferencia se fijan al cierre.
	EfectivoFinal    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EfectivoEsperado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia       *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// DesgloseCierre is the denomination snapshot submitted at close, if any.
	DesgloseCierre Desglose `gorm:"type:jsonb"`

	MotivoSuspension *string
	SuspendidoAt     *time.Time
	// UltimaVentaAt feeds the inactivity alert check.
	UltimaVentaAt *time.Time
	Observaciones *string
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// Duracion returns how long the shift has been (or was) open.
func (t *TurnoCaja) Duracion(now time.Time) time.Duration {
	if t.ClosedAt != nil {
		return t.ClosedAt.Sub(t.OpenedAt)
	}
	return now.Sub(t.OpenedAt)
}
