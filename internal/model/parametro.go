package model

import "time"

// Parametro is a tunable business threshold stored as a key/value row.
// Values are read through a short-lived cache (see service.ParametroService);
// callers must tolerate a brief staleness window after an update.
type Parametro struct {
	Clave     string `gorm:"primaryKey"`
	Valor     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Claves de parámetros conocidas.
const (
	ParamUmbralAutorizacion = "umbral_autorizacion_movimiento"
	ParamToleranciaArqueo   = "tolerancia_arqueo"
)
