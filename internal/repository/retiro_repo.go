package repository

import (
	"context"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RetiroRepository interface {
	DB() *gorm.DB

	Create(ctx context.Context, ret *model.RetiroCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RetiroCaja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error)
	// FindByIDLockTx reads the withdrawal row FOR UPDATE inside tx so that
	// concurrent resolutions of the same withdrawal are serialized.
	FindByIDLockTx(tx *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error)
	UpdateTx(tx *gorm.DB, ret *model.RetiroCaja) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.RetiroCaja, error)
	// SumAutorizadosPorTurno sums withdrawals that already left (or are
	// officially released from) the drawer: estados autorizado y completado.
	SumAutorizadosPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error)
}

type retiroRepo struct{ db *gorm.DB }

func NewRetiroRepository(db *gorm.DB) RetiroRepository { return &retiroRepo{db: db} }

func (r *retiroRepo) DB() *gorm.DB { return r.db }

func (r *retiroRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *retiroRepo) Create(ctx context.Context, ret *model.RetiroCaja) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *retiroRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RetiroCaja, error) {
	var ret model.RetiroCaja
	err := r.db.WithContext(ctx).First(&ret, id).Error
	return &ret, err
}

func (r *retiroRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error) {
	var ret model.RetiroCaja
	err := r.tx(tx).First(&ret, id).Error
	return &ret, err
}

func (r *retiroRepo) FindByIDLockTx(tx *gorm.DB, id uuid.UUID) (*model.RetiroCaja, error) {
	var ret model.RetiroCaja
	err := r.tx(tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&ret, id).Error
	return &ret, err
}

func (r *retiroRepo) UpdateTx(tx *gorm.DB, ret *model.RetiroCaja) error {
	return r.tx(tx).Save(ret).Error
}

func (r *retiroRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.RetiroCaja{}, id).Error
}

func (r *retiroRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.RetiroCaja, error) {
	var retiros []model.RetiroCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&retiros).Error
	return retiros, err
}

func (r *retiroRepo) SumAutorizadosPorTurno(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&model.RetiroCaja{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("turno_id = ? AND estado IN ?", turnoID,
			[]string{model.RetiroAutorizado, model.RetiroCompletado}).
		Scan(&total).Error
	return total, err
}
