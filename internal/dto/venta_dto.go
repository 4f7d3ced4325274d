package dto

import "github.com/shopspring/decimal"

// RegistrarVentaRequest is the ingest surface for the external sales
// subsystem: one completed sale, already broken down by payment method,
// attributed to the shift it occurred under.
type RegistrarVentaRequest struct {
	TurnoID      string          `json:"turno_id"      validate:"required,uuid"`
	NumeroTicket int64           `json:"numero_ticket" validate:"required,min=1"`
	MetodoPago   string          `json:"metodo_pago"   validate:"required,oneof=efectivo tarjeta transferencia billetera"`
	Monto        decimal.Decimal `json:"monto"         validate:"required"`
}

type VentaResponse struct {
	ID           string          `json:"id"`
	TurnoID      string          `json:"turno_id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	NumeroTicket int64           `json:"numero_ticket"`
	MetodoPago   string          `json:"metodo_pago"`
	Monto        decimal.Decimal `json:"monto"`
	CreatedAt    string          `json:"created_at"`
}
