package repository

import (
	"context"
	"errors"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArqueoRepository interface {
	DB() *gorm.DB

	CreateTx(tx *gorm.DB, a *model.ArqueoCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ArqueoCaja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ArqueoCaja, error)
	// FindPendientePorSesion returns nil, nil when the session has no till
	// count awaiting supervisor approval.
	FindPendientePorSesion(ctx context.Context, sesionID uuid.UUID) (*model.ArqueoCaja, error)
	UpdateTx(tx *gorm.DB, a *model.ArqueoCaja) error
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.ArqueoCaja, error)
}

type arqueoRepo struct{ db *gorm.DB }

func NewArqueoRepository(db *gorm.DB) ArqueoRepository { return &arqueoRepo{db: db} }

func (r *arqueoRepo) DB() *gorm.DB { return r.db }

func (r *arqueoRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *arqueoRepo) CreateTx(tx *gorm.DB, a *model.ArqueoCaja) error {
	return r.tx(tx).Create(a).Error
}

func (r *arqueoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ArqueoCaja, error) {
	var a model.ArqueoCaja
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *arqueoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.ArqueoCaja, error) {
	var a model.ArqueoCaja
	err := r.tx(tx).First(&a, id).Error
	return &a, err
}

func (r *arqueoRepo) FindPendientePorSesion(ctx context.Context, sesionID uuid.UUID) (*model.ArqueoCaja, error) {
	var a model.ArqueoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND estado = ?", sesionID, model.ArqueoPendiente).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *arqueoRepo) UpdateTx(tx *gorm.DB, a *model.ArqueoCaja) error {
	return r.tx(tx).Save(a).Error
}

func (r *arqueoRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.ArqueoCaja, error) {
	var arqueos []model.ArqueoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&arqueos).Error
	return arqueos, err
}
