package repository

import (
	"context"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaRepository interface {
	DB() *gorm.DB

	CreateTx(tx *gorm.DB, v *model.Venta) error
	ListPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.Venta, error)
	// SumPorMetodoTurno aggregates this shift's sales by payment method.
	// Reads for the expected-cash formula are always shift-scoped.
	SumPorMetodoTurno(ctx context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error)
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return r.tx(tx).Create(v).Error
}

func (r *ventaRepo) ListPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) SumPorMetodoTurno(ctx context.Context, turnoID uuid.UUID) (map[string]decimal.Decimal, error) {
	type fila struct {
		MetodoPago string
		Total      decimal.Decimal
	}
	var filas []fila
	err := r.db.WithContext(ctx).
		Model(&model.Venta{}).
		Select("metodo_pago, COALESCE(SUM(monto), 0) AS total").
		Where("turno_id = ?", turnoID).
		Group("metodo_pago").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	sums := map[string]decimal.Decimal{
		model.MetodoEfectivo:      decimal.Zero,
		model.MetodoTarjeta:       decimal.Zero,
		model.MetodoTransferencia: decimal.Zero,
		model.MetodoBilletera:     decimal.Zero,
	}
	for _, f := range filas {
		sums[f.MetodoPago] = f.Total
	}
	return sums, nil
}
