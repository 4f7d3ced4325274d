package dto

import "github.com/shopspring/decimal"

// ─── Turnos ──────────────────────────────────────────────────────────────────

type AbrirTurnoRequest struct {
	SesionCajaID string `json:"sesion_caja_id" validate:"required,uuid"`
	TipoRelevo   string `json:"tipo_relevo"    validate:"required,oneof=apertura cambio_turno cierre emergencia"`
	// EfectivoInicial is honored only for the first shift of a session.
	// On a handoff the predecessor's closing cash is inherited and any
	// client-supplied value that disagrees is rejected.
	EfectivoInicial *decimal.Decimal `json:"efectivo_inicial"`
	TurnoAnteriorID *string          `json:"turno_anterior_id" validate:"omitempty,uuid"`
}

type SuspenderTurnoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=5"`
}

type CerrarTurnoRequest struct {
	// EfectivoFinal is ignored when a desglose is supplied: the denomination
	// ledger total is authoritative over manual entry.
	EfectivoFinal *decimal.Decimal        `json:"efectivo_final"`
	Desglose      []DenominacionConteoDTO `json:"desglose" validate:"omitempty,dive"`
	Observaciones *string                 `json:"observaciones"`
}

type TurnoResponse struct {
	ID               string           `json:"id"`
	SesionCajaID     string           `json:"sesion_caja_id"`
	CajeroID         string           `json:"cajero_id"`
	TurnoAnteriorID  *string          `json:"turno_anterior_id"`
	TipoRelevo       string           `json:"tipo_relevo"`
	Estado           string           `json:"estado"`
	EfectivoInicial  decimal.Decimal  `json:"efectivo_inicial"`
	EfectivoFinal    *decimal.Decimal `json:"efectivo_final"`
	EfectivoEsperado *decimal.Decimal `json:"efectivo_esperado"`
	Diferencia       *decimal.Decimal `json:"diferencia"`
	MotivoSuspension *string          `json:"motivo_suspension"`
	OpenedAt         string           `json:"opened_at"`
	ClosedAt         *string          `json:"closed_at"`
}
