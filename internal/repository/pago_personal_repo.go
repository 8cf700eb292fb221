package repository

import (
	"context"
	"time"

	"fisiogest/internal/dto"
	"fisiogest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PagoPersonalRepository is the data access contract for the payroll ledger.
// Services depend on this interface, not on the concrete GORM implementation.
type PagoPersonalRepository interface {
	Create(ctx context.Context, p *model.PagoPersonal) error
	Update(ctx context.Context, p *model.PagoPersonal) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PagoPersonal, error)
	// FindByClaveNatural looks up the single entry for (anio, mes, semana,
	// fecha). Returns gorm.ErrRecordNotFound when absent.
	FindByClaveNatural(ctx context.Context, anio, mes, semana int, fecha time.Time) (*model.PagoPersonal, error)
	// ListByMes returns a month's entries ordered by (semana_del_mes, fecha).
	ListByMes(ctx context.Context, anio, mes int) ([]model.PagoPersonal, error)
	List(ctx context.Context, filtro dto.PagoPersonalFiltro) ([]model.PagoPersonal, error)
}

type pagoPersonalRepo struct{ db *gorm.DB }

func NewPagoPersonalRepository(db *gorm.DB) PagoPersonalRepository {
	return &pagoPersonalRepo{db: db}
}

func (r *pagoPersonalRepo) Create(ctx context.Context, p *model.PagoPersonal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pagoPersonalRepo) Update(ctx context.Context, p *model.PagoPersonal) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pagoPersonalRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.PagoPersonal{}, id).Error
}

func (r *pagoPersonalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PagoPersonal, error) {
	var p model.PagoPersonal
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *pagoPersonalRepo) FindByClaveNatural(ctx context.Context, anio, mes, semana int, fecha time.Time) (*model.PagoPersonal, error) {
	var p model.PagoPersonal
	err := r.db.WithContext(ctx).
		Where("anio = ? AND mes = ? AND semana_del_mes = ? AND fecha = ?", anio, mes, semana, fecha).
		First(&p).Error
	return &p, err
}

func (r *pagoPersonalRepo) ListByMes(ctx context.Context, anio, mes int) ([]model.PagoPersonal, error) {
	var pagos []model.PagoPersonal
	err := r.db.WithContext(ctx).
		Where("anio = ? AND mes = ?", anio, mes).
		Order("semana_del_mes ASC, fecha ASC").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoPersonalRepo) List(ctx context.Context, filtro dto.PagoPersonalFiltro) ([]model.PagoPersonal, error) {
	q := r.db.WithContext(ctx).Model(&model.PagoPersonal{})
	if filtro.Anio != nil {
		q = q.Where("anio = ?", *filtro.Anio)
	}
	if filtro.Mes != nil {
		q = q.Where("mes = ?", *filtro.Mes)
	}
	if filtro.Estado != nil && *filtro.Estado != "" {
		q = q.Where("estado = ?", *filtro.Estado)
	}
	var pagos []model.PagoPersonal
	err := q.Order("fecha ASC").Find(&pagos).Error
	return pagos, err
}
