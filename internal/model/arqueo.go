package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de ArqueoCaja.
//
// Un arqueo dentro de la tolerancia cierra la sesión de inmediato
// ("aprobado_automatico"). Fuera de tolerancia queda "pendiente_aprobacion"
// y la sesión permanece abierta hasta que un supervisor lo apruebe con su
// propia justificación ("aprobado"). La aprobación autoriza el cierre pero
// no borra la discrepancia: la sesión queda cuadrada=false para siempre.
const (
	ArqueoAprobadoAutomatico = "aprobado_automatico"
	ArqueoPendiente          = "pendiente_aprobacion"
	ArqueoAprobado           = "aprobado"
)

// ArqueoCaja is the physical till count reconciled against the session's
// expected cash.
type ArqueoCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalContado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalEsperado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desglose      Desglose        `gorm:"type:jsonb;not null"`
	// Estado: "aprobado_automatico" | "pendiente_aprobacion" | "aprobado"
	Estado        string `gorm:"type:varchar(30);not null"`
	Observaciones *string
	// Justificacion is the approver's own justification, mandatory (≥10
	// characters) when approving an out-of-tolerance count.
	Justificacion *string
	ContadoPorID  uuid.UUID  `gorm:"type:uuid;not null"`
	AprobadoPorID *uuid.UUID `gorm:"type:uuid"`
	AprobadoAt    *time.Time
	CreatedAt     time.Time
}
