package service

import (
	"context"
	"fmt"
	"time"

	"cajacontrol/internal/config"
	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AlertaService es el monitor de umbrales. Es deliberadamente sin estado:
// cada pasada recalcula todo desde los repositorios y devuelve los hallazgos
// del momento. Las severidades warning y critical se persisten además como
// notificaciones para el cajero del turno.
type AlertaService interface {
	// EvaluarTurno runs every check against one shift.
	EvaluarTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.Alerta, error)
	// EvaluarActivos sweeps every open or suspended shift. Read errors on a
	// single shift are logged and skipped so one bad row never starves the
	// rest of the sweep.
	EvaluarActivos(ctx context.Context) ([]dto.Alerta, error)

	ListarNotificaciones(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error)
	MarcarLeida(ctx context.Context, notificacionID uuid.UUID) error
}

type AlertaMonitor struct {
	turnoRepo  repository.TurnoRepository
	notifRepo  repository.NotificacionRepository
	calculos   *CalculosCaja
	parametros ParametroService
	// now is injectable for deterministic tests.
	now func() time.Time
	// onAlerta, when set, receives every persisted finding (the worker pool
	// hook for email fan-out).
	onAlerta func(dto.Alerta)
}

func NewAlertaService(
	turnoRepo repository.TurnoRepository,
	notifRepo repository.NotificacionRepository,
	calculos *CalculosCaja,
	parametros ParametroService,
) *AlertaMonitor {
	return &AlertaMonitor{
		turnoRepo:  turnoRepo,
		notifRepo:  notifRepo,
		calculos:   calculos,
		parametros: parametros,
		now:        time.Now,
	}
}

// OnAlerta registers the fan-out hook invoked for each persisted finding.
func (s *AlertaMonitor) OnAlerta(fn func(dto.Alerta)) { s.onAlerta = fn }

func (s *AlertaMonitor) EvaluarTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.Alerta, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	return s.evaluar(ctx, turno)
}

func (s *AlertaMonitor) EvaluarActivos(ctx context.Context) ([]dto.Alerta, error) {
	turnos, err := s.turnoRepo.ListAbiertos(ctx)
	if err != nil {
		return nil, err
	}
	var todas []dto.Alerta
	for i := range turnos {
		alertas, err := s.evaluar(ctx, &turnos[i])
		if err != nil {
			log.Warn().Err(err).Str("turno_id", turnos[i].ID.String()).
				Msg("monitor: turno omitido en la pasada")
			continue
		}
		todas = append(todas, alertas...)
	}
	return todas, nil
}

func (s *AlertaMonitor) evaluar(ctx context.Context, turno *model.TurnoCaja) ([]dto.Alerta, error) {
	umbrales := s.parametros.Umbrales(ctx)
	now := s.now()
	var alertas []dto.Alerta

	if a := s.checkTurnoLargo(turno, umbrales, now); a != nil {
		alertas = append(alertas, *a)
	}
	if a := s.checkDiferencia(turno, umbrales); a != nil {
		alertas = append(alertas, *a)
	}
	if turno.Estado == model.TurnoActivo {
		a, err := s.checkAcumulacion(ctx, turno, umbrales)
		if err != nil {
			return nil, err
		}
		if a != nil {
			alertas = append(alertas, *a)
		}
		if a := s.checkInactividad(turno, umbrales, now); a != nil {
			alertas = append(alertas, *a)
		}
	}
	if a := s.checkSuspension(turno, umbrales, now); a != nil {
		alertas = append(alertas, *a)
	}

	for _, a := range alertas {
		s.persistir(ctx, turno, a)
	}
	return alertas, nil
}

// ── Checks ────────────────────────────────────────────────────────────────────

func (s *AlertaMonitor) checkTurnoLargo(turno *model.TurnoCaja, u config.Umbrales, now time.Time) *dto.Alerta {
	if turno.Estado == model.TurnoCerrado {
		return nil
	}
	dur := turno.Duracion(now)
	switch {
	case dur > u.TurnoLargoCritico:
		return alerta(turno, model.AlertaTurnoLargo, model.SeveridadCritical,
			fmt.Sprintf("turno abierto hace %s, supera el límite crítico de %s",
				dur.Round(time.Minute), u.TurnoLargoCritico))
	case dur > u.TurnoLargoAdvertencia:
		return alerta(turno, model.AlertaTurnoLargo, model.SeveridadWarning,
			fmt.Sprintf("turno abierto hace %s, supera el límite de %s",
				dur.Round(time.Minute), u.TurnoLargoAdvertencia))
	}
	return nil
}

// checkDiferencia solo aplica a turnos ya cerrados, que son los únicos con
// efectivo contado contra el cual comparar.
func (s *AlertaMonitor) checkDiferencia(turno *model.TurnoCaja, u config.Umbrales) *dto.Alerta {
	if turno.Diferencia == nil || turno.EfectivoEsperado == nil {
		return nil
	}
	diff := turno.Diferencia.Abs()
	if diff.GreaterThan(u.DiferenciaAbsCritica) {
		return alerta(turno, model.AlertaDiferenciaAlta, model.SeveridadCritical,
			fmt.Sprintf("diferencia de cierre de %s excede el límite crítico de %s",
				diff.StringFixed(2), u.DiferenciaAbsCritica.StringFixed(2)))
	}
	pctBreached := false
	if turno.EfectivoEsperado.IsPositive() {
		pct := diff.Div(*turno.EfectivoEsperado).Mul(cien)
		pctBreached = pct.GreaterThan(u.DiferenciaPctAdvertencia)
	}
	if pctBreached || diff.GreaterThan(u.DiferenciaAbsAdvertencia) {
		return alerta(turno, model.AlertaDiferenciaAlta, model.SeveridadWarning,
			fmt.Sprintf("diferencia de cierre de %s sobre un esperado de %s",
				diff.StringFixed(2), turno.EfectivoEsperado.StringFixed(2)))
	}
	return nil
}

// checkAcumulacion mide fondo inicial más ventas en efectivo del turno,
// sin descontar retiros ni gastos.
func (s *AlertaMonitor) checkAcumulacion(ctx context.Context, turno *model.TurnoCaja, u config.Umbrales) (*dto.Alerta, error) {
	ventas, err := s.calculos.VentasEfectivoTurno(ctx, turno.ID)
	if err != nil {
		return nil, err
	}
	acumulado := turno.EfectivoInicial.Add(ventas)
	switch {
	case acumulado.GreaterThan(u.AcumulacionCritica):
		return alerta(turno, model.AlertaAcumulacionEfectivo, model.SeveridadCritical,
			fmt.Sprintf("efectivo acumulado de %s exige un retiro inmediato", acumulado.StringFixed(2))), nil
	case acumulado.GreaterThan(u.AcumulacionAdvertencia):
		return alerta(turno, model.AlertaAcumulacionEfectivo, model.SeveridadWarning,
			fmt.Sprintf("efectivo acumulado de %s, considere un retiro parcial", acumulado.StringFixed(2))), nil
	}
	return nil, nil
}

func (s *AlertaMonitor) checkInactividad(turno *model.TurnoCaja, u config.Umbrales, now time.Time) *dto.Alerta {
	ultima := turno.OpenedAt
	if turno.UltimaVentaAt != nil {
		ultima = *turno.UltimaVentaAt
	}
	if now.Sub(ultima) > u.InactividadVentas {
		return alerta(turno, model.AlertaInactividad, model.SeveridadInfo,
			fmt.Sprintf("sin ventas desde hace %s", now.Sub(ultima).Round(time.Minute)))
	}
	return nil
}

func (s *AlertaMonitor) checkSuspension(turno *model.TurnoCaja, u config.Umbrales, now time.Time) *dto.Alerta {
	if turno.Estado != model.TurnoSuspendido || turno.SuspendidoAt == nil {
		return nil
	}
	dur := now.Sub(*turno.SuspendidoAt)
	switch {
	case dur > u.SuspensionAdvertencia:
		return alerta(turno, model.AlertaSuspensionTrabada, model.SeveridadWarning,
			fmt.Sprintf("turno suspendido hace %s sin reanudar ni cerrar", dur.Round(time.Minute)))
	case dur > u.SuspensionInfo:
		return alerta(turno, model.AlertaSuspensionTrabada, model.SeveridadInfo,
			fmt.Sprintf("turno suspendido hace %s", dur.Round(time.Minute)))
	}
	return nil
}

// ── Notificaciones ────────────────────────────────────────────────────────────

func (s *AlertaMonitor) persistir(ctx context.Context, turno *model.TurnoCaja, a dto.Alerta) {
	if a.Severidad == model.SeveridadInfo {
		return
	}
	notif := &model.Notificacion{
		UsuarioID: turno.CajeroID,
		TurnoID:   &turno.ID,
		Tipo:      a.Tipo,
		Severidad: a.Severidad,
		Mensaje:   a.Mensaje,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		log.Warn().Err(err).Str("tipo", a.Tipo).Str("turno_id", a.TurnoID).
			Msg("monitor: no se pudo persistir la notificación")
		return
	}
	if s.onAlerta != nil {
		s.onAlerta(a)
	}
}

func (s *AlertaMonitor) ListarNotificaciones(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error) {
	return s.notifRepo.ListPorUsuario(ctx, usuarioID, soloNoLeidas)
}

func (s *AlertaMonitor) MarcarLeida(ctx context.Context, notificacionID uuid.UUID) error {
	return s.notifRepo.MarcarLeida(ctx, notificacionID)
}

func alerta(turno *model.TurnoCaja, tipo, severidad, mensaje string) *dto.Alerta {
	return &dto.Alerta{
		Tipo:      tipo,
		Severidad: severidad,
		TurnoID:   turno.ID.String(),
		CajeroID:  turno.CajeroID.String(),
		Mensaje:   mensaje,
	}
}

var cien = decimal.NewFromInt(100)
