package repository

import (
	"context"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SumasMovimientos are the applied manual-movement cash totals of one shift.
// Pending and rejected movements never count.
type SumasMovimientos struct {
	IngresosEfectivo decimal.Decimal
	EgresosEfectivo  decimal.Decimal
}

type MovimientoRepository interface {
	DB() *gorm.DB

	CreateTx(tx *gorm.DB, m *model.MovimientoCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error)
	// FindByIDLockTx reads the movement row FOR UPDATE inside tx so that
	// concurrent resolutions of the same movement are serialized.
	FindByIDLockTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoCaja, error)
	UpdateTx(tx *gorm.DB, m *model.MovimientoCaja) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error)
	// SumAplicadosPorTurno returns the cash effect of applied movements,
	// scoped strictly to one shift to avoid double counting across handoffs.
	SumAplicadosPorTurno(ctx context.Context, turnoID uuid.UUID) (SumasMovimientos, error)

	CreateGastoTx(tx *gorm.DB, g *model.GastoCaja) error
	ListGastosPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.GastoCaja, error)
	SumGastosPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *movimientoRepo) CreateTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return r.tx(tx).Create(m).Error
}

func (r *movimientoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *movimientoRepo) FindByIDLockTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	err := r.tx(tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&m, id).Error
	return &m, err
}

func (r *movimientoRepo) UpdateTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return r.tx(tx).Save(m).Error
}

func (r *movimientoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.MovimientoCaja{}, id).Error
}

func (r *movimientoRepo) ListPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) SumAplicadosPorTurno(ctx context.Context, turnoID uuid.UUID) (SumasMovimientos, error) {
	type fila struct {
		Tipo  string
		Total decimal.Decimal
	}
	var filas []fila
	err := r.db.WithContext(ctx).
		Model(&model.MovimientoCaja{}).
		Select("tipo, COALESCE(SUM(monto), 0) AS total").
		Where("turno_id = ? AND estado = ? AND metodo_pago = ?",
			turnoID, model.MovimientoAplicado, model.MetodoEfectivo).
		Group("tipo").
		Scan(&filas).Error
	if err != nil {
		return SumasMovimientos{}, err
	}
	sumas := SumasMovimientos{IngresosEfectivo: decimal.Zero, EgresosEfectivo: decimal.Zero}
	for _, f := range filas {
		switch f.Tipo {
		case model.MovIngresoAdicional:
			sumas.IngresosEfectivo = f.Total
		case model.MovEgresoOperativo:
			sumas.EgresosEfectivo = f.Total
		}
	}
	return sumas, nil
}

func (r *movimientoRepo) CreateGastoTx(tx *gorm.DB, g *model.GastoCaja) error {
	return r.tx(tx).Create(g).Error
}

func (r *movimientoRepo) ListGastosPorTurno(ctx context.Context, turnoID uuid.UUID) ([]model.GastoCaja, error) {
	var gastos []model.GastoCaja
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("created_at ASC").
		Find(&gastos).Error
	return gastos, err
}

func (r *movimientoRepo) SumGastosPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.GastoCaja{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("turno_id = ?", turnoID).
		Scan(&total).Error
	return total, err
}
