package dto

import "github.com/shopspring/decimal"

// ─── Cajas ───────────────────────────────────────────────────────────────────

type CrearCajaRequest struct {
	Nombre           string          `json:"nombre"            validate:"required,min=2"`
	Ubicacion        string          `json:"ubicacion"         validate:"required"`
	Tipo             string          `json:"tipo"              validate:"required,oneof=principal secundaria movil"`
	FondoConfigurado decimal.Decimal `json:"fondo_configurado" validate:"min=0"`
}

type CajaResponse struct {
	ID               string          `json:"id"`
	Nombre           string          `json:"nombre"`
	Ubicacion        string          `json:"ubicacion"`
	Tipo             string          `json:"tipo"`
	FondoConfigurado decimal.Decimal `json:"fondo_configurado"`
	Activa           bool            `json:"activa"`
}

// ─── Sesiones ────────────────────────────────────────────────────────────────

type AbrirSesionRequest struct {
	CajaID       string          `json:"caja_id"       validate:"required,uuid"`
	FondoInicial decimal.Decimal `json:"fondo_inicial" validate:"min=0"`
}

// TotalesSesion mirrors the session's append-only monetary projection.
type TotalesSesion struct {
	VentasEfectivo      decimal.Decimal `json:"ventas_efectivo"`
	VentasTarjeta       decimal.Decimal `json:"ventas_tarjeta"`
	VentasTransferencia decimal.Decimal `json:"ventas_transferencia"`
	VentasBilletera     decimal.Decimal `json:"ventas_billetera"`
	IngresosEfectivo    decimal.Decimal `json:"ingresos_efectivo"`
	EgresosEfectivo     decimal.Decimal `json:"egresos_efectivo"`
	Retiros             decimal.Decimal `json:"retiros"`
	Gastos              decimal.Decimal `json:"gastos"`
}

type SesionResponse struct {
	ID               string           `json:"id"`
	CajaID           string           `json:"caja_id"`
	Estado           string           `json:"estado"`
	FondoInicial     decimal.Decimal  `json:"fondo_inicial"`
	Totales          TotalesSesion    `json:"totales"`
	EfectivoEsperado decimal.Decimal  `json:"efectivo_esperado"`
	Cuadrada         *bool            `json:"cuadrada"`
	Diferencia       *decimal.Decimal `json:"diferencia"`
	OpenedAt         string           `json:"opened_at"`
	ClosedAt         *string          `json:"closed_at"`
}

// ─── Arqueo ──────────────────────────────────────────────────────────────────

type DenominacionConteoDTO struct {
	Denominacion int64 `json:"denominacion" validate:"required"`
	Cantidad     int   `json:"cantidad"     validate:"min=0"`
}

type CrearArqueoRequest struct {
	SesionCajaID  string                  `json:"sesion_caja_id" validate:"required,uuid"`
	Desglose      []DenominacionConteoDTO `json:"desglose"       validate:"required,min=1,dive"`
	Observaciones *string                 `json:"observaciones"`
}

type AprobarArqueoRequest struct {
	Justificacion string `json:"justificacion" validate:"required"`
}

type ArqueoResponse struct {
	ID            string                  `json:"id"`
	SesionCajaID  string                  `json:"sesion_caja_id"`
	TotalContado  decimal.Decimal         `json:"total_contado"`
	TotalEsperado decimal.Decimal         `json:"total_esperado"`
	Diferencia    decimal.Decimal         `json:"diferencia"`
	Estado        string                  `json:"estado"`
	Desglose      []DenominacionConteoDTO `json:"desglose"`
	Observaciones *string                 `json:"observaciones"`
	SesionEstado  string                  `json:"sesion_estado"`
	Cuadrada      *bool                   `json:"cuadrada"`
}
