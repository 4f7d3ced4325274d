package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type MovimientoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error)
	Autorizar(ctx context.Context, actor Actor, movimientoID uuid.UUID) (*dto.MovimientoResponse, error)
	Rechazar(ctx context.Context, actor Actor, movimientoID uuid.UUID, req dto.RechazarMovimientoRequest) (*dto.MovimientoResponse, error)
	Eliminar(ctx context.Context, actor Actor, movimientoID uuid.UUID) error
	ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.MovimientoResponse, error)

	CrearGasto(ctx context.Context, actor Actor, req dto.CrearGastoRequest) (*dto.GastoResponse, error)
	ListarGastosPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.GastoResponse, error)
}

type movimientoService struct {
	movRepo    repository.MovimientoRepository
	turnoRepo  repository.TurnoRepository
	cajaRepo   repository.CajaRepository
	notifRepo  repository.NotificacionRepository
	calculos   *CalculosCaja
	parametros ParametroService
}

func NewMovimientoService(
	movRepo repository.MovimientoRepository,
	turnoRepo repository.TurnoRepository,
	cajaRepo repository.CajaRepository,
	notifRepo repository.NotificacionRepository,
	calculos *CalculosCaja,
	parametros ParametroService,
) MovimientoService {
	return &movimientoService{
		movRepo:    movRepo,
		turnoRepo:  turnoRepo,
		cajaRepo:   cajaRepo,
		notifRepo:  notifRepo,
		calculos:   calculos,
		parametros: parametros,
	}
}

// ── Movimientos manuales ──────────────────────────────────────────────────────

func (s *movimientoService) Crear(ctx context.Context, actor Actor, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	if req.Tipo != model.MovIngresoAdicional && req.Tipo != model.MovEgresoOperativo {
		return nil, fmt.Errorf("tipo de movimiento desconocido: %q", req.Tipo)
	}
	metodo, err := model.ParseMetodoPago(req.MetodoPago)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor que cero")
	}
	if len(strings.TrimSpace(req.Descripcion)) < 5 {
		return nil, errors.New("la descripción debe tener al menos 5 caracteres")
	}

	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	if turno.Estado != model.TurnoActivo {
		return nil, errors.New("solo un turno activo puede registrar movimientos")
	}

	// Un egreso en efectivo no puede exceder el efectivo esperado del turno.
	if req.Tipo == model.MovEgresoOperativo && metodo == model.MetodoEfectivo {
		esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
		if err != nil {
			return nil, err
		}
		if req.Monto.GreaterThan(esperado) {
			return nil, fmt.Errorf("el egreso (%s) excede el efectivo esperado del turno (%s)",
				req.Monto.StringFixed(2), esperado.StringFixed(2))
		}
	}

	umbrales := s.parametros.Umbrales(ctx)
	mov := &model.MovimientoCaja{
		TurnoID:     turnoID,
		Tipo:        req.Tipo,
		MetodoPago:  metodo,
		Monto:       req.Monto,
		Descripcion: strings.TrimSpace(req.Descripcion),
		CreadoPorID: actor.ID,
	}
	if req.Monto.GreaterThanOrEqual(umbrales.UmbralAutorizacionMovimiento) {
		mov.RequiereAutorizacion = true
		mov.Estado = model.MovimientoPendiente
	} else {
		mov.Estado = model.MovimientoAplicado
	}

	txErr := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		if err := s.movRepo.CreateTx(tx, mov); err != nil {
			return err
		}
		if mov.Estado != model.MovimientoAplicado || metodo != model.MetodoEfectivo {
			return nil
		}
		return s.aplicarEnSesion(tx, turno.SesionCajaID, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	return movimientoToResponse(mov), nil
}

func (s *movimientoService) Autorizar(ctx context.Context, actor Actor, movimientoID uuid.UUID) (*dto.MovimientoResponse, error) {
	if !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("autorizar un movimiento requiere supervisor o administrador")
	}

	var mov *model.MovimientoCaja
	txErr := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.movRepo.FindByIDLockTx(tx, movimientoID)
		if err != nil {
			return errors.New("movimiento no encontrado")
		}
		if mov.Estado != model.MovimientoPendiente {
			return errors.New("transición inválida: el movimiento no está pendiente")
		}
		turno, err := s.turnoRepo.FindByIDTx(tx, mov.TurnoID)
		if err != nil {
			return errors.New("turno no encontrado")
		}

		now := time.Now()
		mov.Estado = model.MovimientoAplicado
		mov.AutorizadoPorID = &actor.ID
		mov.ResueltoAt = &now
		if err := s.movRepo.UpdateTx(tx, mov); err != nil {
			return err
		}
		if mov.MetodoPago != model.MetodoEfectivo {
			return nil
		}
		return s.aplicarEnSesion(tx, turno.SesionCajaID, mov)
	})
	if txErr != nil {
		return nil, txErr
	}
	return movimientoToResponse(mov), nil
}

func (s *movimientoService) Rechazar(ctx context.Context, actor Actor, movimientoID uuid.UUID, req dto.RechazarMovimientoRequest) (*dto.MovimientoResponse, error) {
	if !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("rechazar un movimiento requiere supervisor o administrador")
	}
	var mov *model.MovimientoCaja
	txErr := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.movRepo.FindByIDLockTx(tx, movimientoID)
		if err != nil {
			return errors.New("movimiento no encontrado")
		}
		if mov.Estado != model.MovimientoPendiente {
			return errors.New("transición inválida: el movimiento no está pendiente")
		}

		now := time.Now()
		motivo := strings.TrimSpace(req.Motivo)
		mov.Estado = model.MovimientoRechazado
		mov.AutorizadoPorID = &actor.ID
		mov.MotivoRechazo = &motivo
		mov.ResueltoAt = &now
		return s.movRepo.UpdateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}
	return movimientoToResponse(mov), nil
}

// Eliminar borra un movimiento que aún no tocó ningún saldo. Un movimiento
// aplicado es historia contable y no se puede borrar.
func (s *movimientoService) Eliminar(ctx context.Context, actor Actor, movimientoID uuid.UUID) error {
	if !model.PuedeAutorizar(actor.Rol) {
		return errors.New("eliminar un movimiento requiere supervisor o administrador")
	}
	mov, err := s.movRepo.FindByID(ctx, movimientoID)
	if err != nil {
		return errors.New("movimiento no encontrado")
	}
	if mov.Estado == model.MovimientoAplicado {
		return errors.New("un movimiento aplicado no se puede eliminar")
	}
	return s.movRepo.Delete(ctx, movimientoID)
}

func (s *movimientoService) ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.MovimientoResponse, error) {
	movs, err := s.movRepo.ListPorTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		resp = append(resp, *movimientoToResponse(&movs[i]))
	}
	return resp, nil
}

// aplicarEnSesion proyecta el efecto en efectivo del movimiento sobre los
// contadores de la sesión, dentro de la misma transacción.
func (s *movimientoService) aplicarEnSesion(tx *gorm.DB, sesionID uuid.UUID, mov *model.MovimientoCaja) error {
	columna := repository.ColIngresosEfectivo
	if mov.Tipo == model.MovEgresoOperativo {
		columna = repository.ColEgresosEfectivo
	}
	return s.cajaRepo.IncrementarTotalTx(tx, sesionID, columna, mov.Monto)
}

// ── Gastos ────────────────────────────────────────────────────────────────────

func (s *movimientoService) CrearGasto(ctx context.Context, actor Actor, req dto.CrearGastoRequest) (*dto.GastoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	if !req.Monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor que cero")
	}
	if len(strings.TrimSpace(req.Descripcion)) < 5 {
		return nil, errors.New("la descripción debe tener al menos 5 caracteres")
	}

	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	if turno.Estado != model.TurnoActivo {
		return nil, errors.New("solo un turno activo puede registrar gastos")
	}

	esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
	if err != nil {
		return nil, err
	}
	if req.Monto.GreaterThan(esperado) {
		return nil, fmt.Errorf("el gasto (%s) excede el efectivo esperado del turno (%s)",
			req.Monto.StringFixed(2), esperado.StringFixed(2))
	}

	gasto := &model.GastoCaja{
		TurnoID:     turnoID,
		Monto:       req.Monto,
		Categoria:   req.Categoria,
		Descripcion: strings.TrimSpace(req.Descripcion),
		CreadoPorID: actor.ID,
	}
	txErr := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		if err := s.movRepo.CreateGastoTx(tx, gasto); err != nil {
			return err
		}
		return s.cajaRepo.IncrementarTotalTx(tx, turno.SesionCajaID, repository.ColGastos, gasto.Monto)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Los gastos no tienen puerta de autorización; por encima del umbral solo
	// se avisa al cajero del turno.
	umbrales := s.parametros.Umbrales(ctx)
	if req.Monto.GreaterThanOrEqual(umbrales.UmbralAutorizacionMovimiento) {
		notif := &model.Notificacion{
			UsuarioID: turno.CajeroID,
			TurnoID:   &turno.ID,
			Tipo:      "gasto_alto",
			Severidad: model.SeveridadWarning,
			Mensaje: fmt.Sprintf("Gasto de %s registrado por encima del umbral de autorización (%s)",
				gasto.Monto.StringFixed(2), umbrales.UmbralAutorizacionMovimiento.StringFixed(2)),
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			log.Warn().Err(err).Str("turno_id", turno.ID.String()).
				Msg("no se pudo registrar la notificación de gasto alto")
		}
	}

	return gastoToResponse(gasto), nil
}

func (s *movimientoService) ListarGastosPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.GastoResponse, error) {
	gastos, err := s.movRepo.ListGastosPorTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.GastoResponse, 0, len(gastos))
	for i := range gastos {
		resp = append(resp, *gastoToResponse(&gastos[i]))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func movimientoToResponse(m *model.MovimientoCaja) *dto.MovimientoResponse {
	resp := &dto.MovimientoResponse{
		ID:                   m.ID.String(),
		TurnoID:              m.TurnoID.String(),
		Tipo:                 m.Tipo,
		MetodoPago:           m.MetodoPago,
		Monto:                m.Monto,
		Descripcion:          m.Descripcion,
		RequiereAutorizacion: m.RequiereAutorizacion,
		Estado:               m.Estado,
		CreatedAt:            m.CreatedAt.Format(time.RFC3339),
	}
	if m.AutorizadoPorID != nil {
		id := m.AutorizadoPorID.String()
		resp.AutorizadoPorID = &id
	}
	return resp
}

func gastoToResponse(g *model.GastoCaja) *dto.GastoResponse {
	return &dto.GastoResponse{
		ID:          g.ID.String(),
		TurnoID:     g.TurnoID.String(),
		Monto:       g.Monto,
		Categoria:   g.Categoria,
		Descripcion: g.Descripcion,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}
