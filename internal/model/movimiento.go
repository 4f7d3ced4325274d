package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados por ventas y movimientos.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoBilletera     = "billetera"
)

// ParseMetodoPago validates a payment method at the boundary.
func ParseMetodoPago(s string) (string, error) {
	switch s {
	case MetodoEfectivo, MetodoTarjeta, MetodoTransferencia, MetodoBilletera:
		return s, nil
	}
	return "", fmt.Errorf("método de pago desconocido: %q", s)
}

// Direcciones de movimiento manual.
const (
	MovIngresoAdicional = "ingreso_adicional"
	MovEgresoOperativo  = "egreso_operativo"
)

// Estados de MovimientoCaja.
//
// Sub-threshold movements are created directly in "aplicado" and take effect
// immediately. Movements at or above the authorization threshold are created
// in "pendiente" and are held OUT of every cash total until a supervisor
// approves them ("aplicado") or rejects them ("rechazado"). A rejected
// movement never touches a balance.
const (
	MovimientoAplicado  = "aplicado"
	MovimientoPendiente = "pendiente"
	MovimientoRechazado = "rechazado"
)

// MovimientoCaja is a manual, non-sale cash adjustment recorded against a shift.
type MovimientoCaja struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Tipo: "ingreso_adicional" | "egreso_operativo"
	Tipo        string          `gorm:"type:varchar(20);not null"`
	MetodoPago  string          `gorm:"type:varchar(20);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion string          `gorm:"not null"`
	// RequiereAutorizacion is true iff Monto >= the configured threshold.
	RequiereAutorizacion bool `gorm:"not null;default:false"`
	// Estado: "aplicado" | "pendiente" | "rechazado"
	Estado          string     `gorm:"type:varchar(20);not null;default:'aplicado'"`
	CreadoPorID     uuid.UUID  `gorm:"type:uuid;not null"`
	AutorizadoPorID *uuid.UUID `gorm:"type:uuid"`
	MotivoRechazo   *string
	ResueltoAt      *time.Time
	CreatedAt       time.Time
}

// GastoCaja is an operating expense attributed to a shift. It always reduces
// expected cash and applies immediately. There is no approval gate; expenses
// at or above the authorization threshold only raise a warning notification.
type GastoCaja struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria   string          `gorm:"type:varchar(40);not null"`
	Descripcion string          `gorm:"not null"`
	CreadoPorID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
}
