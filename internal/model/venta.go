package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is the completed-sale record ingested from the sales subsystem.
// It is read-only input to the cash conservation formula: this service never
// edits a sale, it only attributes it to the active shift and folds its amount
// into the session projection.
type Venta struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TurnoID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	NumeroTicket int64           `gorm:"not null;uniqueIndex"`
	MetodoPago   string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
}
