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

func newMovimientoService(e *escenario) MovimientoService {
	return NewMovimientoService(e.movRepo, e.turnoRepo, e.cajaRepo, e.notifRepo, e.calculos, defaultUmbrales())
}

func TestMovimientoBajoUmbralSeAplica(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	resp, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(99999),
		Descripcion: "fondo de cambio adicional",
	})

	require.NoError(t, err)
	assert.Equal(t, model.MovimientoAplicado, resp.Estado)
	assert.False(t, resp.RequiereAutorizacion)
	assert.Equal(t, "99999", e.sesion.TotalIngresosEfectivo.String())
}

func TestMovimientoEnElUmbralQuedaPendiente(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	// Exactamente en el umbral (>=) ya requiere autorización.
	resp, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(100000),
		Descripcion: "ingreso grande de gerencia",
	})

	require.NoError(t, err)
	assert.Equal(t, model.MovimientoPendiente, resp.Estado)
	assert.True(t, resp.RequiereAutorizacion)
	// Pendiente no toca ningún total.
	assert.True(t, e.sesion.TotalIngresosEfectivo.IsZero())
}

func TestAutorizarMovimientoAplicaTotales(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	pendiente, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(150000),
		Descripcion: "ingreso grande de gerencia",
	})
	require.NoError(t, err)
	movID := mustUUID(t, pendiente.ID)

	// El cajero no puede autorizar su propio movimiento.
	_, err = svc.Autorizar(context.Background(), e.cajero, movID)
	assert.ErrorContains(t, err, "requiere supervisor o administrador")

	resp, err := svc.Autorizar(context.Background(), e.supervisor(), movID)
	require.NoError(t, err)
	assert.Equal(t, model.MovimientoAplicado, resp.Estado)
	assert.Equal(t, "150000", e.sesion.TotalIngresosEfectivo.String())
	// La resolución relee la fila con bloqueo dentro de la transacción.
	assert.Equal(t, 1, e.movRepo.lecturasBloqueadas)

	// Autorizar dos veces es una transición inválida y no duplica el total.
	_, err = svc.Autorizar(context.Background(), e.supervisor(), movID)
	assert.ErrorContains(t, err, "no está pendiente")
	assert.Equal(t, "150000", e.sesion.TotalIngresosEfectivo.String())
}

func TestRechazarMovimientoNoTocaTotales(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	pendiente, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(200000),
		Descripcion: "monto dudoso sin soporte",
	})
	require.NoError(t, err)

	movID := mustUUID(t, pendiente.ID)
	resp, err := svc.Rechazar(context.Background(), e.supervisor(), movID, dto.RechazarMovimientoRequest{
		Motivo: "sin comprobante de origen",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovimientoRechazado, resp.Estado)
	assert.True(t, e.sesion.TotalIngresosEfectivo.IsZero())

	// El motivo va en su propio campo; la descripción original queda intacta.
	guardado := e.movRepo.movimientos[movID]
	assert.Equal(t, "monto dudoso sin soporte", guardado.Descripcion)
	require.NotNil(t, guardado.MotivoRechazo)
	assert.Equal(t, "sin comprobante de origen", *guardado.MotivoRechazo)
}

func TestEliminarMovimientoAplicadoFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	aplicado, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(5000),
		Descripcion: "cambio de la otra caja",
	})
	require.NoError(t, err)

	err = svc.Eliminar(context.Background(), e.supervisor(), mustUUID(t, aplicado.ID))
	assert.ErrorContains(t, err, "no se puede eliminar")

	pendiente, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(500000),
		Descripcion: "ingreso aún sin autorizar",
	})
	require.NoError(t, err)

	err = svc.Eliminar(context.Background(), e.supervisor(), mustUUID(t, pendiente.ID))
	assert.NoError(t, err)
}

func TestEgresoEfectivoNoPuedeExcederEsperado(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	_, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovEgresoOperativo,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(60000),
		Descripcion: "pago a proveedor urgente",
	})
	assert.ErrorContains(t, err, "excede el efectivo esperado")

	// Con más ventas en efectivo el mismo egreso sí cabe.
	e.ventaEfectivo(30000)
	_, err = svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovEgresoOperativo,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(60000),
		Descripcion: "pago a proveedor urgente",
	})
	assert.NoError(t, err)
}

func TestMovimientoEnTurnoSuspendidoFalla(t *testing.T) {
	e := nuevoEscenario(50000)
	e.turno.Estado = model.TurnoSuspendido
	svc := newMovimientoService(e)

	_, err := svc.Crear(context.Background(), e.cajero, dto.CrearMovimientoRequest{
		TurnoID:     e.turno.ID.String(),
		Tipo:        model.MovIngresoAdicional,
		MetodoPago:  model.MetodoEfectivo,
		Monto:       decimal.NewFromInt(1000),
		Descripcion: "ingreso durante pausa",
	})
	assert.ErrorContains(t, err, "solo un turno activo")
}

func TestGastoAplicaDirectoYNotificaSobreUmbral(t *testing.T) {
	e := nuevoEscenario(50000)
	e.ventaEfectivo(200000)
	svc := newMovimientoService(e)

	// Gasto chico: aplica sin notificación.
	_, err := svc.CrearGasto(context.Background(), e.cajero, dto.CrearGastoRequest{
		TurnoID:     e.turno.ID.String(),
		Monto:       decimal.NewFromInt(8000),
		Categoria:   "insumos",
		Descripcion: "rollos de papel térmico",
	})
	require.NoError(t, err)
	assert.Equal(t, "8000", e.sesion.TotalGastos.String())
	assert.Empty(t, e.notifRepo.notifs)

	// Gasto sobre el umbral: aplica igual pero avisa al cajero.
	_, err = svc.CrearGasto(context.Background(), e.cajero, dto.CrearGastoRequest{
		TurnoID:     e.turno.ID.String(),
		Monto:       decimal.NewFromInt(120000),
		Categoria:   "mantenimiento",
		Descripcion: "reparación del datáfono",
	})
	require.NoError(t, err)
	assert.Equal(t, "128000", e.sesion.TotalGastos.String())
	require.Len(t, e.notifRepo.notifs, 1)
	assert.Equal(t, "gasto_alto", e.notifRepo.notifs[0].Tipo)
	assert.Equal(t, model.SeveridadWarning, e.notifRepo.notifs[0].Severidad)
	assert.Equal(t, e.cajero.ID, e.notifRepo.notifs[0].UsuarioID)
}

func TestGastoNoPuedeExcederEsperado(t *testing.T) {
	e := nuevoEscenario(50000)
	svc := newMovimientoService(e)

	_, err := svc.CrearGasto(context.Background(), e.cajero, dto.CrearGastoRequest{
		TurnoID:     e.turno.ID.String(),
		Monto:       decimal.NewFromInt(70000),
		Categoria:   "insumos",
		Descripcion: "compra grande de insumos",
	})
	assert.ErrorContains(t, err, "excede el efectivo esperado")
}
