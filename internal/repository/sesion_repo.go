package repository

import (
	"context"
	"time"

	"fisiogest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenPaciente is the raw aggregation the statistics projector persists
// onto the patient record.
type ResumenPaciente struct {
	TotalSesiones  int64
	TotalPagado    decimal.Decimal
	SaldoPendiente decimal.Decimal
	UltimaSesion   *time.Time
}

type SesionRepository interface {
	Create(ctx context.Context, s *model.Sesion) error
	Update(ctx context.Context, s *model.Sesion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error)
	// MaxNumeroOrdenDia returns the highest order number assigned on dia
	// (a UTC-truncated date), 0 when the day has no sessions yet.
	MaxNumeroOrdenDia(ctx context.Context, dia time.Time) (int, error)
	CountByPaciente(ctx context.Context, pacienteID uuid.UUID) (int64, error)
	// ListByDia returns the day's sessions ordered by (numero_orden_dia,
	// hora_entrada).
	ListByDia(ctx context.Context, dia time.Time) ([]model.Sesion, error)
	ListByPaciente(ctx context.Context, pacienteID uuid.UUID) ([]model.Sesion, error)
	// ListPendientes returns unpaid sessions newest-first, capped at limite.
	ListPendientes(ctx context.Context, pacienteID *uuid.UUID, limite int) ([]model.Sesion, error)
	// ResumenPaciente aggregates all of a patient's sessions in one query.
	ResumenPaciente(ctx context.Context, pacienteID uuid.UUID) (*ResumenPaciente, error)
}

type sesionRepo struct{ db *gorm.DB }

func NewSesionRepository(db *gorm.DB) SesionRepository { return &sesionRepo{db: db} }

func (r *sesionRepo) Create(ctx context.Context, s *model.Sesion) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sesionRepo) Update(ctx context.Context, s *model.Sesion) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sesionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sesion, error) {
	var s model.Sesion
	err := r.db.WithContext(ctx).Preload("Paciente").First(&s, id).Error
	return &s, err
}

func (r *sesionRepo) MaxNumeroOrdenDia(ctx context.Context, dia time.Time) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Sesion{}).
		Where("fecha_dia = ?", dia).
		Select("COALESCE(MAX(numero_orden_dia), 0)").
		Scan(&max).Error
	return max, err
}

func (r *sesionRepo) CountByPaciente(ctx context.Context, pacienteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Sesion{}).
		Where("paciente_id = ?", pacienteID).
		Count(&count).Error
	return count, err
}

func (r *sesionRepo) ListByDia(ctx context.Context, dia time.Time) ([]model.Sesion, error) {
	var sesiones []model.Sesion
	err := r.db.WithContext(ctx).Preload("Paciente").
		Where("fecha_dia = ?", dia).
		Order("numero_orden_dia ASC, hora_entrada ASC NULLS LAST").
		Find(&sesiones).Error
	return sesiones, err
}

func (r *sesionRepo) ListByPaciente(ctx context.Context, pacienteID uuid.UUID) ([]model.Sesion, error) {
	var sesiones []model.Sesion
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", pacienteID).
		Order("fecha DESC, numero_orden_dia DESC").
		Find(&sesiones).Error
	return sesiones, err
}

func (r *sesionRepo) ListPendientes(ctx context.Context, pacienteID *uuid.UUID, limite int) ([]model.Sesion, error) {
	q := r.db.WithContext(ctx).Preload("Paciente").Where("pago_pagado = false")
	if pacienteID != nil {
		q = q.Where("paciente_id = ?", *pacienteID)
	}
	var sesiones []model.Sesion
	err := q.Order("fecha DESC").Limit(limite).Find(&sesiones).Error
	return sesiones, err
}

func (r *sesionRepo) ResumenPaciente(ctx context.Context, pacienteID uuid.UUID) (*ResumenPaciente, error) {
	var resumen ResumenPaciente
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                                                      AS total_sesiones,
		       COALESCE(SUM(CASE WHEN pago_pagado     THEN pago_monto ELSE 0 END), 0) AS total_pagado,
		       COALESCE(SUM(CASE WHEN NOT pago_pagado THEN pago_monto ELSE 0 END), 0) AS saldo_pendiente,
		       MAX(fecha)                                                    AS ultima_sesion
		FROM sesiones
		WHERE paciente_id = ?`, pacienteID).Scan(&resumen).Error
	return &resumen, err
}
