package model

import (
	"time"

	"github.com/google/uuid"
)

// Severidades de alerta. Solo warning y critical se persisten como
// notificaciones; info es efímero y se devuelve únicamente al llamador.
const (
	SeveridadInfo     = "info"
	SeveridadWarning  = "warning"
	SeveridadCritical = "critical"
)

// Tipos de alerta producidos por el monitor.
const (
	AlertaTurnoLargo          = "turno_largo"
	AlertaDiferenciaAlta      = "diferencia_alta"
	AlertaAcumulacionEfectivo = "acumulacion_efectivo"
	AlertaInactividad         = "inactividad"
	AlertaSuspensionTrabada   = "suspension_trabada"
)

// Notificacion is a persisted alert addressed to a cashier. The monitor is
// stateless: re-evaluating re-fires identical breaches, dedup is up to the
// consumer of this table.
type Notificacion struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TurnoID   *uuid.UUID `gorm:"type:uuid;index"`
	Tipo      string     `gorm:"type:varchar(40);not null"`
	// Severidad: "warning" | "critical"
	Severidad string `gorm:"type:varchar(20);not null"`
	Mensaje   string `gorm:"not null"`
	Leida     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
