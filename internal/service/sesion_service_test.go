package service

import (
	"context"
	"testing"

	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSesionService(e *escenario, arqueoRepo repository.ArqueoRepository) SesionService {
	return NewSesionService(e.cajaRepo, arqueoRepo, e.turnoRepo, defaultUmbrales())
}

// fakeArqueoRepo lives here because only the session tests exercise it.
type fakeArqueoRepo struct {
	arqueos map[uuid.UUID]*model.ArqueoCaja
}

func newFakeArqueoRepo() *fakeArqueoRepo {
	return &fakeArqueoRepo{arqueos: make(map[uuid.UUID]*model.ArqueoCaja)}
}

func (r *fakeArqueoRepo) DB() *gorm.DB { return nil }

func (r *fakeArqueoRepo) CreateTx(_ *gorm.DB, a *model.ArqueoCaja) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.arqueos[a.ID] = a
	return nil
}

func (r *fakeArqueoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ArqueoCaja, error) {
	a, ok := r.arqueos[id]
	if !ok {
		return nil, errNotFound
	}
	return a, nil
}

func (r *fakeArqueoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.ArqueoCaja, error) {
	a, ok := r.arqueos[id]
	if !ok {
		return nil, errNotFound
	}
	return a, nil
}

func (r *fakeArqueoRepo) FindPendientePorSesion(_ context.Context, sesionID uuid.UUID) (*model.ArqueoCaja, error) {
	for _, a := range r.arqueos {
		if a.SesionCajaID == sesionID && a.Estado == model.ArqueoPendiente {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeArqueoRepo) UpdateTx(_ *gorm.DB, a *model.ArqueoCaja) error {
	r.arqueos[a.ID] = a
	return nil
}

func (r *fakeArqueoRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.ArqueoCaja, error) {
	var out []model.ArqueoCaja
	for _, a := range r.arqueos {
		if a.SesionCajaID == sesionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

var _ repository.ArqueoRepository = (*fakeArqueoRepo)(nil)

func cerrarTurnoBase(t *testing.T, e *escenario) {
	t.Helper()
	now := e.turno.OpenedAt
	e.turno.Estado = model.TurnoCerrado
	e.turno.ClosedAt = &now
}

func TestAbrirSesionUsaFondoConfigurado(t *testing.T) {
	e := nuevoEscenario(50000)
	delete(e.cajaRepo.sesiones, e.sesion.ID)
	svc := newSesionService(e, newFakeArqueoRepo())

	resp, err := svc.Abrir(context.Background(), e.cajero, dto.AbrirSesionRequest{
		CajaID: e.caja.ID.String(),
	})

	require.NoError(t, err)
	assert.Equal(t, model.SesionAbierta, resp.Estado)
	assert.Equal(t, "50000", resp.FondoInicial.String())
}

func TestAbrirSegundaSesionMismaCajaFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newSesionService(e, newFakeArqueoRepo())

	_, err := svc.Abrir(context.Background(), e.cajero, dto.AbrirSesionRequest{
		CajaID:       e.caja.ID.String(),
		FondoInicial: decimal.NewFromInt(20000),
	})
	assert.ErrorContains(t, err, "ya existe una sesión abierta")
}

func TestArqueoDentroDeToleranciaCierraCuadrada(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	svc := newSesionService(e, newFakeArqueoRepo())

	// Esperado 50000, contado 48000: |diferencia| = 2000 <= tolerancia 5000.
	resp, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
			{Denominacion: 5000, Cantidad: 1},
			{Denominacion: 1000, Cantidad: 3},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, model.ArqueoAprobadoAutomatico, resp.Estado)
	assert.Equal(t, "-2000", resp.Diferencia.String())
	assert.Equal(t, model.SesionCerrada, resp.SesionEstado)
	require.NotNil(t, resp.Cuadrada)
	assert.True(t, *resp.Cuadrada)
}

func TestArqueoFueraDeToleranciaQuedaPendiente(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	svc := newSesionService(e, newFakeArqueoRepo())

	resp, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
		},
		Observaciones: ptrStr("faltante detectado al contar, se revisará cámara"),
	})

	require.NoError(t, err)
	assert.Equal(t, model.ArqueoPendiente, resp.Estado)
	assert.Equal(t, "-10000", resp.Diferencia.String())
	// La sesión sigue abierta hasta la aprobación.
	assert.Equal(t, model.SesionAbierta, resp.SesionEstado)
	assert.Nil(t, resp.Cuadrada)
}

func TestArqueoFueraDeToleranciaSinObservacionesFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	svc := newSesionService(e, newFakeArqueoRepo())

	_, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
		},
	})
	assert.ErrorContains(t, err, "las observaciones son obligatorias")
}

func TestArqueoConteoCeroRechazado(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	svc := newSesionService(e, newFakeArqueoRepo())

	_, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 0},
		},
		Observaciones: ptrStr("caja vacía supuestamente"),
	})
	assert.ErrorContains(t, err, "no puede ser cero")
}

func TestArqueoConTurnoActivoFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newSesionService(e, newFakeArqueoRepo())

	_, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 50000, Cantidad: 1},
		},
	})
	assert.ErrorContains(t, err, "cierre el turno activo")
}

func TestArqueoSegundoPendienteFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	arqueoRepo := newFakeArqueoRepo()
	svc := newSesionService(e, arqueoRepo)

	_, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
		},
		Observaciones: ptrStr("faltante pendiente de revisión"),
	})
	require.NoError(t, err)

	_, err = svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
		},
		Observaciones: ptrStr("segundo intento de conteo"),
	})
	assert.ErrorContains(t, err, "ya tiene un arqueo pendiente")
}

func TestAprobarArqueoCierraDescuadrada(t *testing.T) {
	e := nuevoEscenario(50000)
	cerrarTurnoBase(t, e)
	arqueoRepo := newFakeArqueoRepo()
	svc := newSesionService(e, arqueoRepo)

	pendiente, err := svc.CrearArqueo(context.Background(), e.cajero, dto.CrearArqueoRequest{
		SesionCajaID: e.sesion.ID.String(),
		Desglose: []dto.DenominacionConteoDTO{
			{Denominacion: 20000, Cantidad: 2},
		},
		Observaciones: ptrStr("faltante de 10000 al contar"),
	})
	require.NoError(t, err)

	arqueoID := uuid.MustParse(pendiente.ID)

	// Un cajero no puede aprobar.
	_, err = svc.AprobarArqueo(context.Background(), e.cajero, arqueoID, dto.AprobarArqueoRequest{
		Justificacion: "se revisó la cámara y se descarta hurto",
	})
	assert.ErrorContains(t, err, "requiere supervisor o administrador")

	// Justificación por debajo del mínimo.
	_, err = svc.AprobarArqueo(context.Background(), e.supervisor(), arqueoID, dto.AprobarArqueoRequest{
		Justificacion: "ok",
	})
	assert.ErrorContains(t, err, "al menos 10 caracteres")

	resp, err := svc.AprobarArqueo(context.Background(), e.supervisor(), arqueoID, dto.AprobarArqueoRequest{
		Justificacion: "se revisó la cámara y se descarta hurto",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ArqueoAprobado, resp.Estado)
	assert.Equal(t, model.SesionCerrada, resp.SesionEstado)
	// La aprobación autoriza el cierre pero no borra la discrepancia.
	require.NotNil(t, resp.Cuadrada)
	assert.False(t, *resp.Cuadrada)
	assert.Equal(t, "-10000", resp.Diferencia.String())

	// Un arqueo ya aprobado no se vuelve a aprobar.
	_, err = svc.AprobarArqueo(context.Background(), e.supervisor(), arqueoID, dto.AprobarArqueoRequest{
		Justificacion: "aprobación repetida por error",
	})
	assert.ErrorContains(t, err, "no está pendiente de aprobación")
}
