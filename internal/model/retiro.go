package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de RetiroCaja.
//
// pendiente → autorizado | rechazado (solo supervisor/administrador)
// autorizado → completado (los fondos salen físicamente de la caja)
//
// A withdrawal can never be completed straight from "pendiente", and may be
// cancelled (deleted) only while still "pendiente".
const (
	RetiroPendiente  = "pendiente"
	RetiroAutorizado = "autorizado"
	RetiroRechazado  = "rechazado"
	RetiroCompletado = "completado"
)

// RetiroCaja is a formal withdrawal of cash from the register, e.g. a bank
// deposit run. It belongs to the session and, operationally, to the shift
// whose drawer releases the funds.
type RetiroCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TurnoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo       string          `gorm:"not null"`
	Destino      string          `gorm:"not null"`
	// Estado: "pendiente" | "autorizado" | "rechazado" | "completado"
	Estado          string     `gorm:"type:varchar(20);not null;default:'pendiente'"`
	SolicitadoPorID uuid.UUID  `gorm:"type:uuid;not null"`
	AutorizadoPorID *uuid.UUID `gorm:"type:uuid"`
	MotivoRechazo   *string
	AutorizadoAt    *time.Time
	CompletadoAt    *time.Time
	CreatedAt       time.Time
}
