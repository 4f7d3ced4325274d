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
	"gorm.io/gorm"
)

type RetiroService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearRetiroRequest) (*dto.RetiroResponse, error)
	Autorizar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error)
	Rechazar(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.RechazarRetiroRequest) (*dto.RetiroResponse, error)
	Completar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error)
	Cancelar(ctx context.Context, actor Actor, retiroID uuid.UUID) error
	ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RetiroResponse, error)
}

type retiroService struct {
	retiroRepo repository.RetiroRepository
	turnoRepo  repository.TurnoRepository
	cajaRepo   repository.CajaRepository
	calculos   *CalculosCaja
}

func NewRetiroService(
	retiroRepo repository.RetiroRepository,
	turnoRepo repository.TurnoRepository,
	cajaRepo repository.CajaRepository,
	calculos *CalculosCaja,
) RetiroService {
	return &retiroService{
		retiroRepo: retiroRepo,
		turnoRepo:  turnoRepo,
		cajaRepo:   cajaRepo,
		calculos:   calculos,
	}
}

// Crear registra la solicitud en "pendiente". Todo retiro pasa por
// autorización sin importar el monto.
func (s *retiroService) Crear(ctx context.Context, actor Actor, req dto.CrearRetiroRequest) (*dto.RetiroResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	if !req.Monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor que cero")
	}
	if len(strings.TrimSpace(req.Motivo)) < 5 {
		return nil, errors.New("el motivo debe tener al menos 5 caracteres")
	}

	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	if turno.Estado != model.TurnoActivo {
		return nil, errors.New("solo un turno activo puede solicitar retiros")
	}

	esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
	if err != nil {
		return nil, err
	}
	if req.Monto.GreaterThan(esperado) {
		return nil, fmt.Errorf("el retiro (%s) excede el efectivo esperado del turno (%s)",
			req.Monto.StringFixed(2), esperado.StringFixed(2))
	}

	retiro := &model.RetiroCaja{
		SesionCajaID:    turno.SesionCajaID,
		TurnoID:         turnoID,
		Monto:           req.Monto,
		Motivo:          strings.TrimSpace(req.Motivo),
		Destino:         req.Destino,
		Estado:          model.RetiroPendiente,
		SolicitadoPorID: actor.ID,
	}
	if err := s.retiroRepo.Create(ctx, retiro); err != nil {
		return nil, err
	}
	return retiroToResponse(retiro), nil
}

// Autorizar libera los fondos: desde este momento el retiro descuenta del
// efectivo esperado aunque el sobre aún no haya salido físicamente.
func (s *retiroService) Autorizar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error) {
	if !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("autorizar un retiro requiere supervisor o administrador")
	}

	var retiro *model.RetiroCaja
	txErr := runTx(ctx, s.retiroRepo.DB(), func(tx *gorm.DB) error {
		var err error
		retiro, err = s.retiroRepo.FindByIDLockTx(tx, retiroID)
		if err != nil {
			return errors.New("retiro no encontrado")
		}
		if retiro.Estado != model.RetiroPendiente {
			return errors.New("transición inválida: el retiro no está pendiente")
		}
		turno, err := s.turnoRepo.FindByIDTx(tx, retiro.TurnoID)
		if err != nil {
			return errors.New("turno no encontrado")
		}

		// El efectivo pudo bajar entre la solicitud y la aprobación.
		esperado, err := s.calculos.EfectivoEsperadoTurno(ctx, turno)
		if err != nil {
			return err
		}
		if retiro.Monto.GreaterThan(esperado) {
			return fmt.Errorf("el retiro (%s) ya excede el efectivo esperado del turno (%s)",
				retiro.Monto.StringFixed(2), esperado.StringFixed(2))
		}

		now := time.Now()
		retiro.Estado = model.RetiroAutorizado
		retiro.AutorizadoPorID = &actor.ID
		retiro.AutorizadoAt = &now
		if err := s.retiroRepo.UpdateTx(tx, retiro); err != nil {
			return err
		}
		return s.cajaRepo.IncrementarTotalTx(tx, retiro.SesionCajaID, repository.ColRetiros, retiro.Monto)
	})
	if txErr != nil {
		return nil, txErr
	}
	return retiroToResponse(retiro), nil
}

func (s *retiroService) Rechazar(ctx context.Context, actor Actor, retiroID uuid.UUID, req dto.RechazarRetiroRequest) (*dto.RetiroResponse, error) {
	if !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("rechazar un retiro requiere supervisor o administrador")
	}
	var retiro *model.RetiroCaja
	txErr := runTx(ctx, s.retiroRepo.DB(), func(tx *gorm.DB) error {
		var err error
		retiro, err = s.retiroRepo.FindByIDLockTx(tx, retiroID)
		if err != nil {
			return errors.New("retiro no encontrado")
		}
		if retiro.Estado != model.RetiroPendiente {
			return errors.New("transición inválida: el retiro no está pendiente")
		}

		motivo := strings.TrimSpace(req.Motivo)
		retiro.Estado = model.RetiroRechazado
		retiro.AutorizadoPorID = &actor.ID
		retiro.MotivoRechazo = &motivo
		return s.retiroRepo.UpdateTx(tx, retiro)
	})
	if txErr != nil {
		return nil, txErr
	}
	return retiroToResponse(retiro), nil
}

// Completar confirma la salida física del dinero. No vuelve a descontar
// nada: el descuento ocurrió en la autorización.
func (s *retiroService) Completar(ctx context.Context, actor Actor, retiroID uuid.UUID) (*dto.RetiroResponse, error) {
	retiro, err := s.retiroRepo.FindByID(ctx, retiroID)
	if err != nil {
		return nil, errors.New("retiro no encontrado")
	}
	if retiro.Estado != model.RetiroAutorizado {
		return nil, errors.New("transición inválida: solo un retiro autorizado se puede completar")
	}

	now := time.Now()
	retiro.Estado = model.RetiroCompletado
	retiro.CompletadoAt = &now
	if err := s.retiroRepo.UpdateTx(nil, retiro); err != nil {
		return nil, err
	}
	return retiroToResponse(retiro), nil
}

// Cancelar elimina una solicitud que nadie resolvió todavía.
func (s *retiroService) Cancelar(ctx context.Context, actor Actor, retiroID uuid.UUID) error {
	retiro, err := s.retiroRepo.FindByID(ctx, retiroID)
	if err != nil {
		return errors.New("retiro no encontrado")
	}
	if retiro.Estado != model.RetiroPendiente {
		return errors.New("solo un retiro pendiente se puede cancelar")
	}
	if retiro.SolicitadoPorID != actor.ID && !model.PuedeAutorizar(actor.Rol) {
		return errors.New("solo el solicitante o un supervisor puede cancelar el retiro")
	}
	return s.retiroRepo.Delete(ctx, retiroID)
}

func (s *retiroService) ListarPorSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RetiroResponse, error) {
	retiros, err := s.retiroRepo.ListPorSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RetiroResponse, 0, len(retiros))
	for i := range retiros {
		resp = append(resp, *retiroToResponse(&retiros[i]))
	}
	return resp, nil
}

func retiroToResponse(r *model.RetiroCaja) *dto.RetiroResponse {
	resp := &dto.RetiroResponse{
		ID:           r.ID.String(),
		SesionCajaID: r.SesionCajaID.String(),
		TurnoID:      r.TurnoID.String(),
		Monto:        r.Monto,
		Motivo:       r.Motivo,
		Destino:      r.Destino,
		Estado:       r.Estado,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.AutorizadoPorID != nil {
		id := r.AutorizadoPorID.String()
		resp.AutorizadoPorID = &id
	}
	return resp
}
