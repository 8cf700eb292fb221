package repository

import (
	"context"

	"fisiogest/internal/dto"
	"fisiogest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PacienteRepository interface {
	Create(ctx context.Context, p *model.Paciente) error
	Update(ctx context.Context, p *model.Paciente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Paciente, error)
	// UpdateEstadisticas persists the projector's counters without touching
	// the rest of the row.
	UpdateEstadisticas(ctx context.Context, id uuid.UUID, est model.EstadisticasPaciente) error
	List(ctx context.Context, filtro dto.PacienteFiltro) ([]model.Paciente, int64, error)
}

type pacienteRepo struct{ db *gorm.DB }

func NewPacienteRepository(db *gorm.DB) PacienteRepository { return &pacienteRepo{db: db} }

func (r *pacienteRepo) Create(ctx context.Context, p *model.Paciente) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pacienteRepo) Update(ctx context.Context, p *model.Paciente) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pacienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Paciente, error) {
	var p model.Paciente
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *pacienteRepo) UpdateEstadisticas(ctx context.Context, id uuid.UUID, est model.EstadisticasPaciente) error {
	return r.db.WithContext(ctx).Model(&model.Paciente{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"est_total_sesiones":  est.TotalSesiones,
			"est_total_pagado":    est.TotalPagado,
			"est_saldo_pendiente": est.SaldoPendiente,
			"est_ultima_sesion":   est.UltimaSesion,
		}).Error
}

func (r *pacienteRepo) List(ctx context.Context, filtro dto.PacienteFiltro) ([]model.Paciente, int64, error) {
	var pacientes []model.Paciente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Paciente{}).Where("activo = true")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filtro.Page - 1) * filtro.Limit
	err := q.Order("apellido ASC, nombre ASC").Offset(offset).Limit(filtro.Limit).Find(&pacientes).Error
	return pacientes, total, err
}
