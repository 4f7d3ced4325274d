package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cajacontrol/internal/dto"
	"cajacontrol/internal/infra"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SesionService interface {
	CrearCaja(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error)
	ListarCajas(ctx context.Context) ([]dto.CajaResponse, error)

	Abrir(ctx context.Context, actor Actor, req dto.AbrirSesionRequest) (*dto.SesionResponse, error)
	Obtener(ctx context.Context, sesionID uuid.UUID) (*dto.SesionResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error)

	CrearArqueo(ctx context.Context, actor Actor, req dto.CrearArqueoRequest) (*dto.ArqueoResponse, error)
	AprobarArqueo(ctx context.Context, actor Actor, arqueoID uuid.UUID, req dto.AprobarArqueoRequest) (*dto.ArqueoResponse, error)
	ObtenerArqueo(ctx context.Context, arqueoID uuid.UUID) (*dto.ArqueoResponse, error)
	// GenerarActaArqueo writes the till-count certificate PDF and returns its path.
	GenerarActaArqueo(ctx context.Context, arqueoID uuid.UUID, storagePath string) (string, error)
}

type sesionService struct {
	cajaRepo   repository.CajaRepository
	arqueoRepo repository.ArqueoRepository
	turnoRepo  repository.TurnoRepository
	parametros ParametroService
}

func NewSesionService(
	cajaRepo repository.CajaRepository,
	arqueoRepo repository.ArqueoRepository,
	turnoRepo repository.TurnoRepository,
	parametros ParametroService,
) SesionService {
	return &sesionService{
		cajaRepo:   cajaRepo,
		arqueoRepo: arqueoRepo,
		turnoRepo:  turnoRepo,
		parametros: parametros,
	}
}

// ── Cajas ─────────────────────────────────────────────────────────────────────

func (s *sesionService) CrearCaja(ctx context.Context, req dto.CrearCajaRequest) (*dto.CajaResponse, error) {
	caja := &model.Caja{
		Nombre:           req.Nombre,
		Ubicacion:        req.Ubicacion,
		Tipo:             req.Tipo,
		FondoConfigurado: req.FondoConfigurado,
		Activa:           true,
	}
	if err := s.cajaRepo.CreateCaja(ctx, caja); err != nil {
		return nil, err
	}
	return cajaToResponse(caja), nil
}

func (s *sesionService) ListarCajas(ctx context.Context) ([]dto.CajaResponse, error) {
	cajas, err := s.cajaRepo.ListCajas(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CajaResponse, 0, len(cajas))
	for i := range cajas {
		resp = append(resp, *cajaToResponse(&cajas[i]))
	}
	return resp, nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *sesionService) Abrir(ctx context.Context, actor Actor, req dto.AbrirSesionRequest) (*dto.SesionResponse, error) {
	cajaID, err := uuid.Parse(req.CajaID)
	if err != nil {
		return nil, fmt.Errorf("caja_id inválido: %w", err)
	}
	caja, err := s.cajaRepo.FindCajaByID(ctx, cajaID)
	if err != nil {
		return nil, errors.New("caja no encontrada")
	}
	if !caja.Activa {
		return nil, errors.New("la caja está desactivada")
	}
	if existing, err := s.cajaRepo.FindSesionAbiertaPorCaja(ctx, cajaID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.New("ya existe una sesión abierta para esta caja")
	}
	if req.FondoInicial.IsNegative() {
		return nil, errors.New("el fondo inicial no puede ser negativo")
	}

	fondo := req.FondoInicial
	if fondo.IsZero() {
		fondo = caja.FondoConfigurado
	}
	sesion := &model.SesionCaja{
		CajaID:            cajaID,
		UsuarioAperturaID: actor.ID,
		FondoInicial:      fondo,
		Estado:            model.SesionAbierta,
		OpenedAt:          time.Now(),
	}
	if err := s.cajaRepo.CreateSesion(ctx, sesion); err != nil {
		return nil, err
	}
	return sesionToResponse(sesion), nil
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

func (s *sesionService) Obtener(ctx context.Context, sesionID uuid.UUID) (*dto.SesionResponse, error) {
	sesion, err := s.cajaRepo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	return sesionToResponse(sesion), nil
}

func (s *sesionService) Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error) {
	sesiones, total, err := s.cajaRepo.ListSesiones(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.SesionResponse, 0, len(sesiones))
	for i := range sesiones {
		resp = append(resp, *sesionToResponse(&sesiones[i]))
	}
	return resp, total, nil
}

// ── Arqueo ────────────────────────────────────────────────────────────────────
// The session-level till count. Inside tolerance the session closes at once
// with cuadrada=true. Outside tolerance the count is persisted as pending,
// observations become mandatory, and the session stays open until a
// supervisor approves with their own justification — the approval authorizes
// closing despite the discrepancy, it never erases it.

func (s *sesionService) CrearArqueo(ctx context.Context, actor Actor, req dto.CrearArqueoRequest) (*dto.ArqueoResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id inválido: %w", err)
	}

	desglose := desgloseFromDTO(req.Desglose)
	totalContado, err := desglose.Total()
	if err != nil {
		return nil, err
	}
	// Foot-gun guard: a zero physical count is almost certainly an omitted
	// count, never a real empty drawer. Rejected regardless of the expected
	// total.
	if totalContado.IsZero() {
		return nil, errors.New("el total contado no puede ser cero: repita el conteo")
	}

	if pendiente, err := s.arqueoRepo.FindPendientePorSesion(ctx, sesionID); err != nil {
		return nil, err
	} else if pendiente != nil {
		return nil, errors.New("la sesión ya tiene un arqueo pendiente de aprobación")
	}

	umbrales := s.parametros.Umbrales(ctx)
	arqueo := &model.ArqueoCaja{
		SesionCajaID:  sesionID,
		TotalContado:  totalContado,
		Desglose:      desglose,
		Observaciones: req.Observaciones,
		ContadoPorID:  actor.ID,
	}
	var sesion *model.SesionCaja

	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		sesion, err = s.cajaRepo.LockSesionTx(tx, sesionID)
		if err != nil {
			return errors.New("sesión de caja no encontrada")
		}
		if sesion.Estado != model.SesionAbierta {
			return errors.New("la sesión ya está cerrada")
		}
		if activo, err := s.turnoRepo.FindActivoPorSesionTx(tx, sesionID); err != nil {
			return err
		} else if activo != nil {
			return errors.New("cierre el turno activo antes del arqueo")
		}

		esperado := sesion.EfectivoEsperado()
		diferencia := totalContado.Sub(esperado)
		arqueo.TotalEsperado = esperado
		arqueo.Diferencia = diferencia

		if diferencia.Abs().LessThanOrEqual(umbrales.ToleranciaArqueo) {
			now := time.Now()
			cuadrada := true
			arqueo.Estado = model.ArqueoAprobadoAutomatico
			sesion.Estado = model.SesionCerrada
			sesion.Cuadrada = &cuadrada
			sesion.Diferencia = &diferencia
			sesion.ClosedAt = &now
			if err := s.cajaRepo.UpdateSesionTx(tx, sesion); err != nil {
				return err
			}
		} else {
			if req.Observaciones == nil || strings.TrimSpace(*req.Observaciones) == "" {
				return errors.New("diferencia fuera de tolerancia: las observaciones son obligatorias")
			}
			arqueo.Estado = model.ArqueoPendiente
			// La sesión queda abierta hasta la aprobación del supervisor.
		}

		return s.arqueoRepo.CreateTx(tx, arqueo)
	})
	if txErr != nil {
		return nil, txErr
	}

	return arqueoToResponse(arqueo, sesion), nil
}

func (s *sesionService) AprobarArqueo(ctx context.Context, actor Actor, arqueoID uuid.UUID, req dto.AprobarArqueoRequest) (*dto.ArqueoResponse, error) {
	if !model.PuedeAutorizar(actor.Rol) {
		return nil, errors.New("aprobar un arqueo requiere supervisor o administrador")
	}
	umbrales := s.parametros.Umbrales(ctx)
	justificacion := strings.TrimSpace(req.Justificacion)
	if len(justificacion) < umbrales.MinJustificacionAprobacion {
		return nil, fmt.Errorf("la justificación debe tener al menos %d caracteres",
			umbrales.MinJustificacionAprobacion)
	}

	var arqueo *model.ArqueoCaja
	var sesion *model.SesionCaja

	txErr := runTx(ctx, s.cajaRepo.DB(), func(tx *gorm.DB) error {
		var err error
		arqueo, err = s.arqueoRepo.FindByIDTx(tx, arqueoID)
		if err != nil {
			return errors.New("arqueo no encontrado")
		}
		if arqueo.Estado != model.ArqueoPendiente {
			return errors.New("transición inválida: el arqueo no está pendiente de aprobación")
		}

		sesion, err = s.cajaRepo.LockSesionTx(tx, arqueo.SesionCajaID)
		if err != nil {
			return errors.New("sesión de caja no encontrada")
		}

		now := time.Now()
		cuadrada := false
		arqueo.Estado = model.ArqueoAprobado
		arqueo.AprobadoPorID = &actor.ID
		arqueo.AprobadoAt = &now
		arqueo.Justificacion = &justificacion
		if err := s.arqueoRepo.UpdateTx(tx, arqueo); err != nil {
			return err
		}

		// Se autoriza el cierre; la discrepancia queda registrada para siempre.
		sesion.Estado = model.SesionCerrada
		sesion.Cuadrada = &cuadrada
		sesion.Diferencia = &arqueo.Diferencia
		sesion.ClosedAt = &now
		return s.cajaRepo.UpdateSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}

	return arqueoToResponse(arqueo, sesion), nil
}

func (s *sesionService) ObtenerArqueo(ctx context.Context, arqueoID uuid.UUID) (*dto.ArqueoResponse, error) {
	arqueo, err := s.arqueoRepo.FindByID(ctx, arqueoID)
	if err != nil {
		return nil, errors.New("arqueo no encontrado")
	}
	sesion, err := s.cajaRepo.FindSesionByID(ctx, arqueo.SesionCajaID)
	if err != nil {
		return nil, errors.New("sesión de caja no encontrada")
	}
	return arqueoToResponse(arqueo, sesion), nil
}

func (s *sesionService) GenerarActaArqueo(ctx context.Context, arqueoID uuid.UUID, storagePath string) (string, error) {
	arqueo, err := s.arqueoRepo.FindByID(ctx, arqueoID)
	if err != nil {
		return "", errors.New("arqueo no encontrado")
	}
	sesion, err := s.cajaRepo.FindSesionByID(ctx, arqueo.SesionCajaID)
	if err != nil {
		return "", errors.New("sesión de caja no encontrada")
	}
	return infra.GenerateArqueoPDF(arqueo, sesion, storagePath)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func cajaToResponse(c *model.Caja) *dto.CajaResponse {
	return &dto.CajaResponse{
		ID:               c.ID.String(),
		Nombre:           c.Nombre,
		Ubicacion:        c.Ubicacion,
		Tipo:             c.Tipo,
		FondoConfigurado: c.FondoConfigurado,
		Activa:           c.Activa,
	}
}

func sesionToResponse(s *model.SesionCaja) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:           s.ID.String(),
		CajaID:       s.CajaID.String(),
		Estado:       s.Estado,
		FondoInicial: s.FondoInicial,
		Totales: dto.TotalesSesion{
			VentasEfectivo:      s.TotalVentasEfectivo,
			VentasTarjeta:       s.TotalVentasTarjeta,
			VentasTransferencia: s.TotalVentasTransferencia,
			VentasBilletera:     s.TotalVentasBilletera,
			IngresosEfectivo:    s.TotalIngresosEfectivo,
			EgresosEfectivo:     s.TotalEgresosEfectivo,
			Retiros:             s.TotalRetiros,
			Gastos:              s.TotalGastos,
		},
		EfectivoEsperado: s.EfectivoEsperado(),
		Cuadrada:         s.Cuadrada,
		Diferencia:       s.Diferencia,
		OpenedAt:         s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		closed := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closed
	}
	return resp
}

func arqueoToResponse(a *model.ArqueoCaja, s *model.SesionCaja) *dto.ArqueoResponse {
	resp := &dto.ArqueoResponse{
		ID:            a.ID.String(),
		SesionCajaID:  a.SesionCajaID.String(),
		TotalContado:  a.TotalContado,
		TotalEsperado: a.TotalEsperado,
		Diferencia:    a.Diferencia,
		Estado:        a.Estado,
		Desglose:      desgloseToDTO(a.Desglose),
		Observaciones: a.Observaciones,
	}
	if s != nil {
		resp.SesionEstado = s.Estado
		resp.Cuadrada = s.Cuadrada
	}
	return resp
}
