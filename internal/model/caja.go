package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de caja registrados en el local.
const (
	CajaPrincipal  = "principal"
	CajaSecundaria = "secundaria"
	CajaMovil      = "movil"
)

// Caja is a physical register. It exists independently of any session;
// at most one SesionCaja may be open against it at a time.
type Caja struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null;uniqueIndex"`
	Ubicacion string    `gorm:"not null"`
	// Tipo: "principal" | "secundaria" | "movil"
	Tipo string `gorm:"type:varchar(20);not null;default:'principal'"`
	// FondoConfigurado is the default opening fund inherited by the first
	// shift of a fresh session when no explicit amount is supplied.
	FondoConfigurado decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activa           bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Estados de SesionCaja.
const (
	SesionAbierta = "abierta"
	SesionCerrada = "cerrada"
)

// SesionCaja is the day-level operating window for one register.
// Its monetary totals are an append-only projection: every sale, applied
// movement, authorized withdrawal and expense increments them atomically
// at the storage layer — they are never recomputed destructively.
type SesionCaja struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioAperturaID uuid.UUID       `gorm:"type:uuid;not null"`
	FondoInicial      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	TotalVentasEfectivo      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVentasTarjeta       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVentasTransferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalVentasBilletera     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalIngresosEfectivo    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEgresosEfectivo     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalRetiros             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalGastos              decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Estado: "abierta" | "cerrada"
	Estado string `gorm:"type:varchar(20);not null;default:'abierta'"`
	// Cuadrada y Diferencia se fijan recién al cierre (arqueo).
	Cuadrada   *bool            `gorm:"type:boolean"`
	Diferencia *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OpenedAt   time.Time
	ClosedAt   *time.Time

	Turnos []TurnoCaja `gorm:"foreignKey:SesionCajaID"`
}

// EfectivoEsperado evaluates the session-level cash conservation formula
// over the projected counters.
func (s *SesionCaja) EfectivoEsperado() decimal.Decimal {
	return s.FondoInicial.
		Add(s.TotalVentasEfectivo).
		Add(s.TotalIngresosEfectivo).
		Sub(s.TotalRetiros).
		Sub(s.TotalGastos).
		Sub(s.TotalEgresosEfectivo)
}
