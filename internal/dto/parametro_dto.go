package dto

import "github.com/shopspring/decimal"

// ─── Parametros ──────────────────────────────────────────────────────────────

type ActualizarParametroRequest struct {
	Clave string `json:"clave" validate:"required"`
	Valor string `json:"valor" validate:"required"`
}

// UmbralesResponse expone los umbrales ajustables vigentes.
type UmbralesResponse struct {
	UmbralAutorizacionMovimiento decimal.Decimal `json:"umbral_autorizacion_movimiento"`
	ToleranciaArqueo             decimal.Decimal `json:"tolerancia_arqueo"`
}
