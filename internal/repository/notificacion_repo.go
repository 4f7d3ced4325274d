package repository

import (
	"context"

	"cajacontrol/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificacionRepository interface {
	Create(ctx context.Context, n *model.Notificacion) error
	ListPorUsuario(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error)
	MarcarLeida(ctx context.Context, id uuid.UUID) error
}

type notificacionRepo struct{ db *gorm.DB }

func NewNotificacionRepository(db *gorm.DB) NotificacionRepository {
	return &notificacionRepo{db: db}
}

func (r *notificacionRepo) Create(ctx context.Context, n *model.Notificacion) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificacionRepo) ListPorUsuario(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error) {
	var notifs []model.Notificacion
	q := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID)
	if soloNoLeidas {
		q = q.Where("leida = false")
	}
	err := q.Order("created_at DESC").Limit(200).Find(&notifs).Error
	return notifs, err
}

func (r *notificacionRepo) MarcarLeida(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Notificacion{}).
		Where("id = ?", id).
		UpdateColumn("leida", true).Error
}
