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
	"gorm.io/gorm"
)

// VentaService es la superficie de ingesta del subsistema externo de ventas.
// Cada venta completada ya viene liquidada por método de pago; aquí solo se
// atribuye al turno y se proyecta sobre los totales de la sesión.
type VentaService interface {
	Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.VentaResponse, error)
}

type ventaService struct {
	ventaRepo repository.VentaRepository
	turnoRepo repository.TurnoRepository
	cajaRepo  repository.CajaRepository
}

func NewVentaService(
	ventaRepo repository.VentaRepository,
	turnoRepo repository.TurnoRepository,
	cajaRepo repository.CajaRepository,
) VentaService {
	return &ventaService{ventaRepo: ventaRepo, turnoRepo: turnoRepo, cajaRepo: cajaRepo}
}

func (s *ventaService) Registrar(ctx context.Context, actor Actor, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, fmt.Errorf("turno_id inválido: %w", err)
	}
	metodo, err := model.ParseMetodoPago(req.MetodoPago)
	if err != nil {
		return nil, err
	}
	if !req.Monto.IsPositive() {
		return nil, errors.New("el monto debe ser mayor que cero")
	}

	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, errors.New("turno no encontrado")
	}
	if turno.Estado != model.TurnoActivo {
		return nil, errors.New("solo un turno activo puede registrar ventas")
	}

	columna, err := repository.ColumnaVentas(metodo)
	if err != nil {
		return nil, err
	}

	venta := &model.Venta{
		SesionCajaID: turno.SesionCajaID,
		TurnoID:      turnoID,
		NumeroTicket: req.NumeroTicket,
		MetodoPago:   metodo,
		Monto:        req.Monto,
	}
	txErr := runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.ventaRepo.CreateTx(tx, venta); err != nil {
			return err
		}
		if err := s.cajaRepo.IncrementarTotalTx(tx, turno.SesionCajaID, columna, venta.Monto); err != nil {
			return err
		}
		now := time.Now()
		turno.UltimaVentaAt = &now
		return s.turnoRepo.UpdateTx(tx, turno)
	})
	if txErr != nil {
		return nil, txErr
	}

	return ventaToResponse(venta), nil
}

func (s *ventaService) ListarPorTurno(ctx context.Context, turnoID uuid.UUID) ([]dto.VentaResponse, error) {
	ventas, err := s.ventaRepo.ListPorTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		resp = append(resp, *ventaToResponse(&ventas[i]))
	}
	return resp, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		TurnoID:      v.TurnoID.String(),
		SesionCajaID: v.SesionCajaID.String(),
		NumeroTicket: v.NumeroTicket,
		MetodoPago:   v.MetodoPago,
		Monto:        v.Monto,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}
