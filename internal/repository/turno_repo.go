package repository

import (
	"context"
	"errors"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TurnoRepository interface {
	DB() *gorm.DB

	CreateTx(tx *gorm.DB, t *model.TurnoCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TurnoCaja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TurnoCaja, error)
	// FindActivoPorSesionTx returns nil, nil when the session has no active shift.
	// Must run inside the same transaction that locked the session row, so the
	// check-then-create pair is indivisible.
	FindActivoPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) (*model.TurnoCaja, error)
	Update(ctx context.Context, t *model.TurnoCaja) error
	UpdateTx(tx *gorm.DB, t *model.TurnoCaja) error
	ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.TurnoCaja, error)
	// ListAbiertos returns every shift still in "activo" or "suspendido"
	// across all sessions, the alert monitor's working set.
	ListAbiertos(ctx context.Context) ([]model.TurnoCaja, error)
}

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) DB() *gorm.DB { return r.db }

func (r *turnoRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *turnoRepo) CreateTx(tx *gorm.DB, t *model.TurnoCaja) error {
	return r.tx(tx).Create(t).Error
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TurnoCaja, error) {
	var t model.TurnoCaja
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *turnoRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.TurnoCaja, error) {
	var t model.TurnoCaja
	err := r.tx(tx).First(&t, id).Error
	return &t, err
}

func (r *turnoRepo) FindActivoPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) (*model.TurnoCaja, error) {
	var t model.TurnoCaja
	err := r.tx(tx).
		Where("sesion_caja_id = ? AND estado = ?", sesionID, model.TurnoActivo).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) Update(ctx context.Context, t *model.TurnoCaja) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *turnoRepo) UpdateTx(tx *gorm.DB, t *model.TurnoCaja) error {
	return r.tx(tx).Save(t).Error
}

func (r *turnoRepo) ListPorSesion(ctx context.Context, sesionID uuid.UUID) ([]model.TurnoCaja, error) {
	var turnos []model.TurnoCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("opened_at ASC").
		Find(&turnos).Error
	return turnos, err
}

func (r *turnoRepo) ListAbiertos(ctx context.Context) ([]model.TurnoCaja, error) {
	var turnos []model.TurnoCaja
	err := r.db.WithContext(ctx).
		Where("estado IN ?", []string{model.TurnoActivo, model.TurnoSuspendido}).
		Find(&turnos).Error
	return turnos, err
}
