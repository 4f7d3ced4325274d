package dto

import "github.com/shopspring/decimal"

// ─── Movimientos manuales ────────────────────────────────────────────────────

type CrearMovimientoRequest struct {
	TurnoID     string          `json:"turno_id"    validate:"required,uuid"`
	Tipo        string          `json:"tipo"        validate:"required,oneof=ingreso_adicional egreso_operativo"`
	MetodoPago  string          `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia billetera"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Descripcion string          `json:"descripcion" validate:"required"`
}

type RechazarMovimientoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

type MovimientoResponse struct {
	ID                   string          `json:"id"`
	TurnoID              string          `json:"turno_id"`
	Tipo                 string          `json:"tipo"`
	MetodoPago           string          `json:"metodo_pago"`
	Monto                decimal.Decimal `json:"monto"`
	Descripcion          string          `json:"descripcion"`
	RequiereAutorizacion bool            `json:"requiere_autorizacion"`
	Estado               string          `json:"estado"`
	AutorizadoPorID      *string         `json:"autorizado_por_id"`
	CreatedAt            string          `json:"created_at"`
}

// ─── Gastos ──────────────────────────────────────────────────────────────────

type CrearGastoRequest struct {
	TurnoID     string          `json:"turno_id"    validate:"required,uuid"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Categoria   string          `json:"categoria"   validate:"required"`
	Descripcion string          `json:"descripcion" validate:"required,min=5"`
}

type GastoResponse struct {
	ID          string          `json:"id"`
	TurnoID     string          `json:"turno_id"`
	Monto       decimal.Decimal `json:"monto"`
	Categoria   string          `json:"categoria"`
	Descripcion string          `json:"descripcion"`
	CreatedAt   string          `json:"created_at"`
}
