package dto

// Alerta is an ephemeral monitor finding. It is recomputed on every pass;
// only warning/critical findings are also persisted as notifications.
type Alerta struct {
	Tipo      string `json:"tipo"`
	Severidad string `json:"severidad"` // info | warning | critical
	TurnoID   string `json:"turno_id"`
	CajeroID  string `json:"cajero_id"`
	Mensaje   string `json:"mensaje"`
}
