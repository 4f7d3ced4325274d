package service

import (
	"context"
	"testing"

	"cajacontrol/internal/dto"
	"cajacontrol/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRetiroService(e *escenario) RetiroService {
	return NewRetiroService(e.retiroRepo, e.turnoRepo, e.cajaRepo, e.calculos)
}

func solicitarRetiro(t *testing.T, e *escenario, svc RetiroService, monto int64) *dto.RetiroResponse {
	t.Helper()
	resp, err := svc.Crear(context.Background(), e.cajero, dto.CrearRetiroRequest{
		TurnoID: e.turno.ID.String(),
		Monto:   decimal.NewFromInt(monto),
		Motivo:  "consignación bancaria de la tarde",
		Destino: "Bancolombia cta 1234",
	})
	require.NoError(t, err)
	return resp
}

func TestRetiroSiempreNacePendiente(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newRetiroService(e)

	// Incluso un monto chico pasa por autorización.
	resp := solicitarRetiro(t, e, svc, 1000)
	assert.Equal(t, model.RetiroPendiente, resp.Estado)
	assert.True(t, e.sesion.TotalRetiros.IsZero())
}

func TestRetiroNoPuedeExcederEsperado(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newRetiroService(e)

	_, err := svc.Crear(context.Background(), e.cajero, dto.CrearRetiroRequest{
		TurnoID: e.turno.ID.String(),
		Monto:   decimal.NewFromInt(60000),
		Motivo:  "consignación bancaria de la tarde",
		Destino: "Bancolombia cta 1234",
	})
	assert.ErrorContains(t, err, "excede el efectivo esperado")
}

func TestAutorizarRetiroDescuentaUnaVez(t *testing.T) {
	e := nuevoEscenario(50000)
	e.ventaEfectivo(100000)
	svc := newRetiroService(e)

	resp := solicitarRetiro(t, e, svc, 80000)
	retiroID := mustUUID(t, resp.ID)

	_, err := svc.Autorizar(context.Background(), e.cajero, retiroID)
	assert.ErrorContains(t, err, "requiere supervisor o administrador")

	autorizado, err := svc.Autorizar(context.Background(), e.supervisor(), retiroID)
	require.NoError(t, err)
	assert.Equal(t, model.RetiroAutorizado, autorizado.Estado)
	assert.Equal(t, "80000", e.sesion.TotalRetiros.String())
	// La resolución relee la fila con bloqueo dentro de la transacción.
	assert.Equal(t, 1, e.retiroRepo.lecturasBloqueadas)

	// Completar confirma la salida física; no descuenta de nuevo.
	completado, err := svc.Completar(context.Background(), e.cajero, retiroID)
	require.NoError(t, err)
	assert.Equal(t, model.RetiroCompletado, completado.Estado)
	assert.Equal(t, "80000", e.sesion.TotalRetiros.String())
}

func TestAutorizarReverificaElEfectivo(t *testing.T) {
	e := nuevoEscenario(50000)
	e.ventaEfectivo(100000)
	svc := newRetiroService(e)

	resp := solicitarRetiro(t, e, svc, 120000)
	retiroID := mustUUID(t, resp.ID)

	// Entre la solicitud y la aprobación un gasto bajó el efectivo del turno.
	e.movRepo.gastos[e.turno.ID] = &model.GastoCaja{
		TurnoID: e.turno.ID,
		Monto:   decimal.NewFromInt(40000),
	}

	_, err := svc.Autorizar(context.Background(), e.supervisor(), retiroID)
	assert.ErrorContains(t, err, "ya excede el efectivo esperado")
}

func TestCompletarSoloDesdeAutorizado(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newRetiroService(e)

	resp := solicitarRetiro(t, e, svc, 10000)
	_, err := svc.Completar(context.Background(), e.cajero, mustUUID(t, resp.ID))
	assert.ErrorContains(t, err, "solo un retiro autorizado")
}

func TestRechazarRetiro(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newRetiroService(e)

	resp := solicitarRetiro(t, e, svc, 10000)
	rechazado, err := svc.Rechazar(context.Background(), e.supervisor(), mustUUID(t, resp.ID), dto.RechazarRetiroRequest{
		Motivo: "el camión de valores ya pasó",
	})

	require.NoError(t, err)
	assert.Equal(t, model.RetiroRechazado, rechazado.Estado)
	assert.True(t, e.sesion.TotalRetiros.IsZero())
}

func TestCancelarRetiro(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newRetiroService(e)

	resp := solicitarRetiro(t, e, svc, 10000)
	retiroID := mustUUID(t, resp.ID)

	// Un tercero sin rol de supervisión no puede cancelar.
	otro := Actor{ID: e.supervisor().ID, Rol: model.RolCajero}
	err := svc.Cancelar(context.Background(), otro, retiroID)
	assert.ErrorContains(t, err, "solo el solicitante o un supervisor")

	// El solicitante sí.
	err = svc.Cancelar(context.Background(), e.cajero, retiroID)
	require.NoError(t, err)

	// Un retiro autorizado ya no se cancela.
	resp = solicitarRetiro(t, e, svc, 10000)
	retiroID = mustUUID(t, resp.ID)
	_, err = svc.Autorizar(context.Background(), e.supervisor(), retiroID)
	require.NoError(t, err)
	err = svc.Cancelar(context.Background(), e.cajero, retiroID)
	assert.ErrorContains(t, err, "solo un retiro pendiente")
}
