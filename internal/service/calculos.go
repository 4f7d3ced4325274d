package service

import (
	"context"

	"cajacontrol/internal/model"
	"cajacontrol/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor is the acting user as resolved by the auth middleware. Services gate
// emergency handoffs, approvals and deletions on its role before touching
// any state.
type Actor struct {
	ID  uuid.UUID
	Rol string
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// CalculosCaja evaluates the shift-scoped cash conservation formula:
//
//	esperado = efectivo_inicial + ventas_efectivo + ingresos_adicionales_efectivo
//	         − retiros − gastos − egresos_operativos_efectivo
//
// Every read is scoped to one shift so concurrent and handoff shifts never
// double count.
type CalculosCaja struct {
	ventas      repository.VentaRepository
	movimientos repository.MovimientoRepository
	retiros     repository.RetiroRepository
}

func NewCalculosCaja(
	ventas repository.VentaRepository,
	movimientos repository.MovimientoRepository,
	retiros repository.RetiroRepository,
) *CalculosCaja {
	return &CalculosCaja{ventas: ventas, movimientos: movimientos, retiros: retiros}
}

// EfectivoEsperadoTurno returns the cash the formula predicts is in the
// drawer of one shift right now.
func (c *CalculosCaja) EfectivoEsperadoTurno(ctx context.Context, turno *model.TurnoCaja) (decimal.Decimal, error) {
	ventas, err := c.ventas.SumPorMetodoTurno(ctx, turno.ID)
	if err != nil {
		return decimal.Zero, err
	}
	movs, err := c.movimientos.SumAplicadosPorTurno(ctx, turno.ID)
	if err != nil {
		return decimal.Zero, err
	}
	retiros, err := c.retiros.SumAutorizadosPorTurno(ctx, turno.ID)
	if err != nil {
		return decimal.Zero, err
	}
	gastos, err := c.movimientos.SumGastosPorTurno(ctx, turno.ID)
	if err != nil {
		return decimal.Zero, err
	}

	return turno.EfectivoInicial.
		Add(ventas[model.MetodoEfectivo]).
		Add(movs.IngresosEfectivo).
		Sub(retiros).
		Sub(gastos).
		Sub(movs.EgresosEfectivo), nil
}

// VentasEfectivoTurno returns only the cumulative cash sales of one shift
// (the cash-buildup alert input).
func (c *CalculosCaja) VentasEfectivoTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	ventas, err := c.ventas.SumPorMetodoTurno(ctx, turnoID)
	if err != nil {
		return decimal.Zero, err
	}
	return ventas[model.MetodoEfectivo], nil
}
