package dto

import "github.com/shopspring/decimal"

// ─── Retiros ─────────────────────────────────────────────────────────────────

type CrearRetiroRequest struct {
	TurnoID string          `json:"turno_id" validate:"required,uuid"`
	Monto   decimal.Decimal `json:"monto"    validate:"required"`
	Motivo  string          `json:"motivo"   validate:"required,min=5"`
	Destino string          `json:"destino"  validate:"required"`
}

type RechazarRetiroRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

type RetiroResponse struct {
	ID              string          `json:"id"`
	SesionCajaID    string          `json:"sesion_caja_id"`
	TurnoID         string          `json:"turno_id"`
	Monto           decimal.Decimal `json:"monto"`
	Motivo          string          `json:"motivo"`
	Destino         string          `json:"destino"`
	Estado          string          `json:"estado"`
	AutorizadoPorID *string         `json:"autorizado_por_id"`
	CreatedAt       string          `json:"created_at"`
}
