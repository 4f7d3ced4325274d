package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cajacontrol/internal/config"
	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories backing the service tests. All DB() methods return
// nil so runTx executes the callback directly, without a real transaction.

var errNotFound = errors.New("not found")

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("uuid inválido %q: %v", s, err)
	}
	return id
}

// ── CajaRepository ────────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	cajas    map[uuid.UUID]*model.Caja
	sesiones map[uuid.UUID]*model.SesionCaja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{
		cajas:    make(map[uuid.UUID]*model.Caja),
		sesiones: make(map[uuid.UUID]*model.SesionCaja),
	}
}

func (r *fakeCajaRepo) DB() *gorm.DB { return nil }

func (r *fakeCajaRepo) CreateCaja(_ context.Context, c *model.Caja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cajas[c.ID] = c
	return nil
}

func (r *fakeCajaRepo) FindCajaByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, errNotFound
	}
	return c, nil
}

func (r *fakeCajaRepo) ListCajas(_ context.Context) ([]model.Caja, error) {
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCajaRepo) UpdateCaja(_ context.Context, c *model.Caja) error {
	r.cajas[c.ID] = c
	return nil
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *fakeCajaRepo) FindSesionAbiertaPorCaja(_ context.Context, cajaID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.CajaID == cajaID && s.Estado == model.SesionAbierta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCajaRepo) LockSesionTx(_ *gorm.DB, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *fakeCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) IncrementarTotalTx(_ *gorm.DB, sesionID uuid.UUID, columna string, monto decimal.Decimal) error {
	s, ok := r.sesiones[sesionID]
	if !ok {
		return errNotFound
	}
	switch columna {
	case repository.ColVentasEfectivo:
		s.TotalVentasEfectivo = s.TotalVentasEfectivo.Add(monto)
	case repository.ColVentasTarjeta:
		s.TotalVentasTarjeta = s.TotalVentasTarjeta.Add(monto)
	case repository.ColVentasTransferencia:
		s.TotalVentasTransferencia = s.TotalVentasTransferencia.Add(monto)
	case repository.ColVentasBilletera:
		s.TotalVentasBilletera = s.TotalVentasBilletera.Add(monto)
	case repository.ColIngresosEfectivo:
		s.TotalIngresosEfectivo = s.TotalIngresosEfectivo.Add(monto)
	case repository.ColEgresosEfectivo:
		s.TotalEgresosEfectivo = s.TotalEgresosEfectivo.Add(monto)
	case repository.ColRetiros:
		s.TotalRetiros = s.TotalRetiros.Add(monto)
	case repository.ColGastos:
		s.TotalGastos = s.TotalGastos.Add(monto)
	default:
		return errors.New("columna desconocida: " + columna)
	}
	return nil
}

func (r *fakeCajaRepo) ListSesiones(_ context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	all := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		all = append(all, *s)
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── TurnoRepository ───────────────────────────────────────────────────────────

type fakeTurnoRepo struct {
	turnos map[uuid.UUID]*model.TurnoCaja
}

func newFakeTurnoRepo() *fakeTurnoRepo {
	return &fakeTurnoRepo{turnos: make(map[uuid.UUID]*model.TurnoCaja)}
}

func (r *fakeTurnoRepo) DB() *gorm.DB { return nil }

func (r *fakeTurnoRepo) CreateTx(_ *gorm.DB, t *model.TurnoCaja) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TurnoCaja, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, errNotFound
	}
	return t, nil
}

func (r *fakeTurnoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.TurnoCaja, error) {
	t, ok := r.turnos[id]
	if !ok {
		return nil, errNotFound
	}
	return t, nil
}

func (r *fakeTurnoRepo) FindActivoPorSesionTx(_ *gorm.DB, sesionID uuid.UUID) (*model.TurnoCaja, error) {
	for _, t := range r.turnos {
		if t.SesionCajaID == sesionID && t.Estado == model.TurnoActivo {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTurnoRepo) Update(_ context.Context, t *model.TurnoCaja) error {
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) UpdateTx(_ *gorm.DB, t *model.TurnoCaja) error {
	r.turnos[t.ID] = t
	return nil
}

func (r *fakeTurnoRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.TurnoCaja, error) {
	var out []model.TurnoCaja
	for _, t := range r.turnos {
		if t.SesionCajaID == sesionID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTurnoRepo) ListAbiertos(_ context.Context) ([]model.TurnoCaja, error) {
	var out []model.TurnoCaja
	for _, t := range r.turnos {
		if t.Estado == model.TurnoActivo || t.Estado == model.TurnoSuspendido {
			out = append(out, *t)
		}
	}
	return out, nil
}

var _ repository.TurnoRepository = (*fakeTurnoRepo)(nil)

// ── MovimientoRepository ──────────────────────────────────────────────────────

type fakeMovimientoRepo struct {
	movimientos map[uuid.UUID]*model.MovimientoCaja
	gastos      map[uuid.UUID]*model.GastoCaja
	// lecturasBloqueadas cuenta las lecturas FOR UPDATE que hizo el servicio.
	lecturasBloqueadas int
}

func newFakeMovimientoRepo() *fakeMovimientoRepo {
	return &fakeMovimientoRepo{
		movimientos: make(map[uuid.UUID]*model.MovimientoCaja),
		gastos:      make(map[uuid.UUID]*model.GastoCaja),
	}
}

func (r *fakeMovimientoRepo) DB() *gorm.DB { return nil }

func (r *fakeMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos[m.ID] = m
	return nil
}

func (r *fakeMovimientoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	m, ok := r.movimientos[id]
	if !ok {
		return nil, errNotFound
	}
	return m, nil
}

func (r *fakeMovimientoRepo) FindByIDLockTx(_ *gorm.DB, id uuid.UUID) (*model.MovimientoCaja, error) {
	r.lecturasBloqueadas++
	m, ok := r.movimientos[id]
	if !ok {
		return nil, errNotFound
	}
	return m, nil
}

func (r *fakeMovimientoRepo) UpdateTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	r.movimientos[m.ID] = m
	return nil
}

func (r *fakeMovimientoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.movimientos, id)
	return nil
}

func (r *fakeMovimientoRepo) ListPorTurno(_ context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.TurnoID == turnoID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) SumAplicadosPorTurno(_ context.Context, turnoID uuid.UUID) (repository.SumasMovimientos, error) {
	var sumas repository.SumasMovimientos
	for _, m := range r.movimientos {
		if m.TurnoID != turnoID || m.Estado != model.MovimientoAplicado || m.MetodoPago != model.MetodoEfectivo {
			continue
		}
		if m.Tipo == model.MovIngresoAdicional {
			sumas.IngresosEfectivo = sumas.IngresosEfectivo.Add(m.Monto)
		} else {
			sumas.EgresosEfectivo = sumas.EgresosEfectivo.Add(m.Monto)
		}
	}
	return sumas, nil
}

func (r *fakeMovimientoRepo) CreateGastoTx(_ *gorm.DB, g *model.GastoCaja) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.CreatedAt = time.Now()
	r.gastos[g.ID] = g
	return nil
}

func (r *fakeMovimientoRepo) ListGastosPorTurno(_ context.Context, turnoID uuid.UUID) ([]model.GastoCaja, error) {
	var out []model.GastoCaja
	for _, g := range r.gastos {
		if g.TurnoID == turnoID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) SumGastosPorTurno(_ context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, g := range r.gastos {
		if g.TurnoID == turnoID {
			total = total.Add(g.Monto)
		}
	}
	return total, nil
}

var _ repository.MovimientoRepository = (*fakeMovimientoRepo)(nil)

// ── RetiroRepository ──────────────────────────────────────────────────────────

type fakeRetiroRepo struct {
	retiros            map[uuid.UUID]*model.RetiroCaja
	lecturasBloqueadas int
}

func newFakeRetiroRepo() *fakeRetiroRepo {
	return &fakeRetiroRepo{retiros: make(map[uuid.UUID]*model.RetiroCaja)}
}

func (r *fakeRetiroRepo) DB() *gorm.DB { return nil }

func (r *fakeRetiroRepo) Create(_ context.Context, ret *model.RetiroCaja) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	ret.CreatedAt = time.Now()
	r.retiros[ret.ID] = ret
	return nil
}

func (r *fakeRetiroRepo) FindByID(_ context.Context, id uuid.UUID) (*model.RetiroCaja, error) {
	ret, ok := r.retiros[id]
	if !ok {
		return nil, errNotFound
	}
	return ret, nil
}

func (r *fakeRetiroRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error) {
	ret, ok := r.retiros[id]
	if !ok {
		return nil, errNotFound
	}
	return ret, nil
}

func (r *fakeRetiroRepo) FindByIDLockTx(_ *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error) {
	r.lecturasBloqueadas++
	ret, ok := r.retiros[id]
	if !ok {
		return nil, errNotFound
	}
	return ret, nil
}

func (r *fakeRetiroRepo) UpdateTx(_ *gorm.DB, ret *model.RetiroCaja) error {
	r.retiros[ret.ID] = ret
	return nil
}

func (r *fakeRetiroRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.retiros, id)
	return nil
}

func (r *fakeRetiroRepo) ListPorSesion(_ context.Context, sesionID uuid.UUID) ([]model.RetiroCaja, error) {
	var out []model.RetiroCaja
	for _, ret := range r.retiros {
		if ret.SesionCajaID == sesionID {
			out = append(out, *ret)
		}
	}
	return out, nil
}

func (r *fakeRetiroRepo) SumAutorizadosPorTurno(_ context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, ret := range r.retiros {
		if ret.TurnoID == turnoID && (ret.Estado == model.RetiroAutorizado || ret.Estado == model.RetiroCompletado) {
			total = total.Add(ret.Monto)
		}
	}
	return total, nil
}

var _ repository.RetiroRepository = (*fakeRetiroRepo)(nil)

// ── VentaRepository ───────────────────────────────────────────────────────────

type fakeVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
}

func newFakeVentaRepo() *fakeVentaRepo {
	return &fakeVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *fakeVentaRepo) DB() *gorm.DB { return nil }

func (r *fakeVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas[v.ID] = v
	return nil
}

func (r *fakeVentaRepo) ListPorTurno(_ context.Context, turnoID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.TurnoID == turnoID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVentaRepo) SumPorMetodoTurno(_ context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{
		model.MetodoEfectivo:      decimal.Zero,
		model.MetodoTarjeta:       decimal.Zero,
		model.MetodoTransferencia: decimal.Zero,
		model.MetodoBilletera:     decimal.Zero,
	}
	for _, v := range r.ventas {
		if v.TurnoID == turnoID {
			sums[v.MetodoPago] = sums[v.MetodoPago].Add(v.Monto)
		}
	}
	return sums, nil
}

var _ repository.VentaRepository = (*fakeVentaRepo)(nil)

// ── NotificacionRepository ────────────────────────────────────────────────────

type fakeNotifRepo struct {
	notifs []model.Notificacion
}

func newFakeNotifRepo() *fakeNotifRepo { return &fakeNotifRepo{} }

func (r *fakeNotifRepo) Create(_ context.Context, n *model.Notificacion) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.notifs = append(r.notifs, *n)
	return nil
}

func (r *fakeNotifRepo) ListPorUsuario(_ context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error) {
	var out []model.Notificacion
	for _, n := range r.notifs {
		if n.UsuarioID != usuarioID {
			continue
		}
		if soloNoLeidas && n.Leida {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotifRepo) MarcarLeida(_ context.Context, id uuid.UUID) error {
	for i := range r.notifs {
		if r.notifs[i].ID == id {
			r.notifs[i].Leida = true
			return nil
		}
	}
	return errNotFound
}

var _ repository.NotificacionRepository = (*fakeNotifRepo)(nil)

// ── ParametroRepository ───────────────────────────────────────────────────────

type fakeParametroRepo struct {
	params map[string]string
	err    error
}

func newFakeParametroRepo() *fakeParametroRepo {
	return &fakeParametroRepo{params: make(map[string]string)}
}

func (r *fakeParametroRepo) FindAll(_ context.Context) ([]model.Parametro, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]model.Parametro, 0, len(r.params))
	for clave, valor := range r.params {
		out = append(out, model.Parametro{Clave: clave, Valor: valor})
	}
	return out, nil
}

func (r *fakeParametroRepo) Upsert(_ context.Context, p *model.Parametro) error {
	r.params[p.Clave] = p.Valor
	return nil
}

var _ repository.ParametroRepository = (*fakeParametroRepo)(nil)

// ── ParametroService con umbrales fijos ───────────────────────────────────────

type fixedUmbrales struct {
	umbrales config.Umbrales
}

func (f *fixedUmbrales) Umbrales(_ context.Context) config.Umbrales { return f.umbrales }
func (f *fixedUmbrales) Actualizar(_ context.Context, _, _ string) error {
	return nil
}
func (f *fixedUmbrales) Invalidate() {}

func defaultUmbrales() *fixedUmbrales {
	return &fixedUmbrales{umbrales: config.UmbralesPorDefecto()}
}

// ── Escenario base ────────────────────────────────────────────────────────────

// escenario bundles every fake plus an open session with one active shift,
// the starting point of most tests.
type escenario struct {
	cajaRepo   *fakeCajaRepo
	turnoRepo  *fakeTurnoRepo
	movRepo    *fakeMovimientoRepo
	retiroRepo *fakeRetiroRepo
	ventaRepo  *fakeVentaRepo
	notifRepo  *fakeNotifRepo
	calculos   *CalculosCaja

	caja   *model.Caja
	sesion *model.SesionCaja
	turno  *model.TurnoCaja
	cajero Actor
}

func nuevoEscenario(fondo int64) *escenario {
	e := &escenario{
		cajaRepo:   newFakeCajaRepo(),
		turnoRepo:  newFakeTurnoRepo(),
		movRepo:    newFakeMovimientoRepo(),
		retiroRepo: newFakeRetiroRepo(),
		ventaRepo:  newFakeVentaRepo(),
		notifRepo:  newFakeNotifRepo(),
	}
	e.calculos = NewCalculosCaja(e.ventaRepo, e.movRepo, e.retiroRepo)
	e.cajero = Actor{ID: uuid.New(), Rol: model.RolCajero}

	e.caja = &model.Caja{
		ID:               uuid.New(),
		Nombre:           "Caja Principal",
		Ubicacion:        "Piso 1",
		Tipo:             model.CajaPrincipal,
		FondoConfigurado: decimal.NewFromInt(fondo),
		Activa:           true,
	}
	e.cajaRepo.cajas[e.caja.ID] = e.caja

	e.sesion = &model.SesionCaja{
		ID:                uuid.New(),
		CajaID:            e.caja.ID,
		UsuarioAperturaID: e.cajero.ID,
		FondoInicial:      decimal.NewFromInt(fondo),
		Estado:            model.SesionAbierta,
		OpenedAt:          time.Now(),
	}
	e.cajaRepo.sesiones[e.sesion.ID] = e.sesion

	e.turno = &model.TurnoCaja{
		ID:              uuid.New(),
		SesionCajaID:    e.sesion.ID,
		CajeroID:        e.cajero.ID,
		TipoRelevo:      model.RelevoApertura,
		Estado:          model.TurnoActivo,
		EfectivoInicial: decimal.NewFromInt(fondo),
		OpenedAt:        time.Now(),
	}
	e.turnoRepo.turnos[e.turno.ID] = e.turno

	return e
}

func (e *escenario) supervisor() Actor {
	return Actor{ID: uuid.New(), Rol: model.RolSupervisor}
}

func (e *escenario) ventaEfectivo(monto int64) {
	e.ventaRepo.ventas[uuid.New()] = &model.Venta{
		ID:           uuid.New(),
		SesionCajaID: e.sesion.ID,
		TurnoID:      e.turno.ID,
		NumeroTicket: int64(len(e.ventaRepo.ventas) + 1),
		MetodoPago:   model.MetodoEfectivo,
		Monto:        decimal.NewFromInt(monto),
	}
}
