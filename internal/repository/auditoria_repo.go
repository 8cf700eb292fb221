package repository

import (
	"context"

	"fisiogest/internal/model"

	"gorm.io/gorm"
)

type AuditoriaRepository interface {
	Create(ctx context.Context, a *model.Auditoria) error
	ListRecientes(ctx context.Context, limite int) ([]model.Auditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) Create(ctx context.Context, a *model.Auditoria) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditoriaRepo) ListRecientes(ctx context.Context, limite int) ([]model.Auditoria, error) {
	var eventos []model.Auditoria
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limite).Find(&eventos).Error
	return eventos, err
}
