package repository

import (
	"context"

	"cajacontrol/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ParametroRepository interface {
	FindAll(ctx context.Context) ([]model.Parametro, error)
	Upsert(ctx context.Context, p *model.Parametro) error
}

type parametroRepo struct{ db *gorm.DB }

func NewParametroRepository(db *gorm.DB) ParametroRepository { return &parametroRepo{db: db} }

func (r *parametroRepo) FindAll(ctx context.Context) ([]model.Parametro, error) {
	var params []model.Parametro
	err := r.db.WithContext(ctx).Find(&params).Error
	return params, err
}

func (r *parametroRepo) Upsert(ctx context.Context, p *model.Parametro) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "clave"}},
			DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
		}).
		Create(p).Error
}
