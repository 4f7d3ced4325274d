package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TurnoService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	Suspender(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.SuspenderTurnoRequest) (*dto.TurnoResponse, error)
	Reanudar(ctx context.Context, actor Actor, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error)
	ObtenerPorID(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	ObtenerActivoPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.TurnoResponse, error)
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.TurnoResponse, error)
}

type turnoService struct {
	turnoRepo repository.TurnoRepository
	cajaRepo  repository.CajaRepository
	calculos  *CalculosCaja
}

func NewTurnoService(
	turnoRepo repository.TurnoRepository,
	cajaRepo repository.CajaRepository,
	calculos *CalculosCaja,
) TurnoService {
	return &turnoService{turnoRepo: turnoRepo, cajaRepo: cajaRepo, calculos: calculos}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Check-and-create runs under the session row lock: validating "no other
// active shift" and reading the predecessor's closing cash are indivisible
// from the insert, so two concurrent opens can never both succeed.

func (s *turnoService) Abrir(ctx context.Context, actor Actor, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id inválido: %w", err)
	}
	tipoRelevo, err := model.ParseTipoRelevo(req.TipoRelevo)
	if err != nil {
		return nil, err
	}
	if tipoRelevo == model.RelevoEmergencia && !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("un relevo de emergencia requiere supervisor o administrador")
	}
	if req.EfectivoInicial != nil && req.EfectivoInicial.IsNegative() {
		return nil, errors.New("el efectivo inicial no puede ser negativo")
	}

	var turnoAnteriorID *uuid.UUID
	if req.TurnoAnteriorID != nil {
		id, err := uuid.Parse(*req.TurnoAnteriorID)
		if err != nil {
			return nil, fmt.Errorf("turno_anterior_id inválido: %w", err)
		}
		turnoAnteriorID = &id
	}

	turno := &model.TurnoCaja{
		SesionCajaID:    sesionID,
		CajeroID:        actor.ID,
		TurnoAnteriorID: turnoAnteriorID,
		TipoRelevo:      tipoRelevo,
		Estado:          model.TurnoActivo,
		OpenedAt:        time.Now(),
	}

	txErr := runTx(ctx, s.turnoRepo.DB(), func(tx *gorm.DB) error {
		sesion, err := s.cajaRepo.LockSesionTx(tx, sesionID)
		if err != nil {
			return errors.New("sesión de caja no encontrada")
		}
		if sesion.Estado != model.SesionAbierta {
			return errors.New("la sesión de caja ya está cerrada")
		}

		if activo, err := s.turnoRepo.FindActivoPorSesionTx(tx, sesionID); err != nil {
			return err
		} else if activo != nil {
			return errors.New("la sesión ya tiene un turno activo")
		}

		switch {
		case turnoAnteriorID != nil:
			anterior, err := s.turnoRepo.FindByIDTx(tx, *turnoAnteriorID)
			if err != nil {
				return errors.New("turno anterior no encontrado")
			}
			if anterior.SesionCajaID != sesionID {
				return errors.New("el turno anterior pertenece a otra sesión")
			}
			if anterior.Estado != model.TurnoCerrado || anterior.EfectivoFinal == nil {
				return errors.New("el turno anterior aún no está cerrado")
			}
			// Handoff continuity: the predecessor's closing cash is the only
			// admissible opening cash. A disagreeing client value is rejected,
			// not silently corrected.
			if req.EfectivoInicial != nil && !req.EfectivoInicial.Equal(*anterior.EfectivoFinal) {
				return fmt.Errorf("el efectivo inicial debe coincidir con el cierre del turno anterior (%s)",
					anterior.EfectivoFinal.StringFixed(2))
			}
			turno.EfectivoInicial = *anterior.EfectivoFinal
		case req.EfectivoInicial != nil:
			turno.EfectivoInicial = *req.EfectivoInicial
		default:
			// First shift of a fresh session inherits the configured opening fund.
			turno.EfectivoInicial = sesion.FondoInicial
		}

		return s.turnoRepo.CreateTx(tx, turno)
	})
	if txErr != nil {
		return nil, txErr
	}

	return turnoToResponse(turno), nil
}

// ── Suspender / Reanudar ──────────────────────────────────────────────────────

func (s *turnoService) Suspender(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.SuspenderTurnoRequest) (*dto.TurnoResponse, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	switch turno.Estado {
	case model.TurnoActivo:
	case model.TurnoSuspendido:
		return nil, errors.New("transición inválida: el turno ya está suspendido")
	case model.TurnoCerrado:
		return nil, errors.New("transición inválida: el turno ya está cerrado")
	default:
		return nil, fmt.Errorf("estado de turno desconocido: %q", turno.Estado)
	}

	now := time.Now()
	turno.Estado = model.TurnoSuspendido
	turno.MotivoSuspension = &req.Motivo
	turno.SuspendidoAt = &now
	if err := s.turnoRepo.Update(ctx, turno); err != nil {
		return nil, err
	}
	return turnoToResponse(turno), nil
}

func (s *turnoService) Reanudar(ctx context.Context, actor Actor, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	switch turno.Estado {
	case model.TurnoSuspendido:
	case model.TurnoActivo:
		return nil, errors.New("transición inválida: el turno ya está activo")
	case model.TurnoCerrado:
		return nil, errors.New("transición inválida: el turno ya está cerrado")
	default:
		return nil, fmt.Errorf("estado de turno desconocido: %q", turno.Estado)
	}

	turno.Estado = model.TurnoActivo
	turno.SuspendidoAt = nil
	if err := s.turnoRepo.Update(ctx, turno); err != nil {
		return nil, err
	}
	return turnoToResponse(turno), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Evaluates the shift-scoped conservation formula and records the signed gap
// against the physical count. Closing is terminal and never blocks on
// approval — only the session-level arqueo gates on large differences.

func (s *turnoService) Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.TurnoResponse, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	switch turno.Estado {
	case model.TurnoActivo:
	case model.TurnoSuspendido:
		return nil, errors.New("transición inválida: reanude el turno antes de cerrarlo")
	case model.TurnoCerrado:
		return nil, errors.New("transición inválida: el turno ya está cerrado")
	default:
		return nil, fmt.Errorf("estado de turno desconocido: %q", turno.Estado)
	}

	var efectivoFinal decimal.Decimal
	var desglose model.Desglose
	if len(req.Desglose) > 0 {
		// The denomination ledger is authoritative over manual entry.
		desglose = desgloseFromDTO(req.Desglose)
		total, err := desglose.Total()
		if err != nil {
			return nil, err
		}
		efectivoFinal = total
	} else {
		if req.EfectivoFinal == nil {
			return nil, errors.New("se requiere efectivo_final o un desglose de denominaciones")
		}
		if req.EfectivoFinal.IsNegative() {
			return nil, errors.New("el efectivo final no puede ser negativo")
		}
		efectivoFinal = *req.EfectivoFinal
	}

	esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
	if err != nil {
		return nil, err
	}
	diferencia := efectivoFinal.Sub(esperado)

	now := time.Now()
	turno.Estado = model.TurnoCerrado
	turno.EfectivoFinal = &efectivoFinal
	turno.EfectivoEsperado = &esperado
	turno.Diferencia = &diferencia
	turno.DesgloseCierre = desglose
	turno.Observaciones = req.Observaciones
	turno.ClosedAt = &now

	if err := s.turnoRepo.Update(ctx, turno); err != nil {
		return nil, err
	}
	return turnoToResponse(turno), nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *turnoService) ObtenerPorID(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	return turnoToResponse(turno), nil
}

// ObtenerActivoPorSesion returns the session's active shift with the live
// expected-cash figure, the number the register UI polls during a shift.
func (s *turnoService) ObtenerActivoPorSesion(ctx context.Context, sesionID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.turnoRepo.FindActivoPorSesionTx(nil, sesionID)
	if err != nil {
		return nil, err
	}
	if turno == nil {
		return nil, errors.New("la sesión no tiene un turno activo")
	}
	esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
	if err != nil {
		return nil, err
	}
	turno.EfectivoEsperado = &esperado
	return turnoToResponse(turno), nil
}

func (s *turnoService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.TurnoResponse, error) {
	turnos, err := s.turnoRepo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		resp = append(resp, *turnoToResponse(&turnos[i]))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func desgloseFromDTO(items []dto.DenominacionConteoDTO) model.Desglose {
	d := make(model.Desglose, 0, len(items))
	for _, it := range items {
		d = append(d, model.DenominacionConteo{Denominacion: it.Denominacion, Cantidad: it.Cantidad})
	}
	return d
}

func desgloseToDTO(d model.Desglose) []dto.DenominacionConteoDTO {
	items := make([]dto.DenominacionConteoDTO, 0, len(d))
	for _, it := range d {
		items = append(items, dto.DenominacionConteoDTO{Denominacion: it.Denominacion, Cantidad: it.Cantidad})
	}
	return items
}

func turnoToResponse(t *model.TurnoCaja) *dto.TurnoResponse {
	resp := &dto.TurnoResponse{
		ID:               t.ID.String(),
		SesionCajaID:     t.SesionCajaID.String(),
		CajeroID:         t.CajeroID.String(),
		TipoRelevo:       t.TipoRelevo,
		Estado:           t.Estado,
		EfectivoInicial:  t.EfectivoInicial,
		EfectivoFinal:    t.EfectivoFinal,
		EfectivoEsperado: t.EfectivoEsperado,
		Diferencia:       t.Diferencia,
		MotivoSuspension: t.MotivoSuspension,
		OpenedAt:         t.OpenedAt.Format(time.RFC3339),
	}
	if t.TurnoAnteriorID != nil {
		id := t.TurnoAnteriorID.String()
		resp.TurnoAnteriorID = &id
	}
	if t.ClosedAt != nil {
		closed := t.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}
