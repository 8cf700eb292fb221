package service

import (
	"context"
	"errors"

	"fisiogest/internal/apierror"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EstadisticasService keeps each patient's derived counters in sync with
// their sessions. Refrescar is a full recompute: running it twice without
// intervening writes yields the same result, so stale counters left by a
// crashed session write self-heal on the next call.
type EstadisticasService interface {
	Refrescar(ctx context.Context, pacienteID uuid.UUID) (*model.EstadisticasPaciente, error)
}

type estadisticasService struct {
	sesiones  repository.SesionRepository
	pacientes repository.PacienteRepository
}

func NewEstadisticasService(sesiones repository.SesionRepository, pacientes repository.PacienteRepository) EstadisticasService {
	return &estadisticasService{sesiones: sesiones, pacientes: pacientes}
}

func (s *estadisticasService) Refrescar(ctx context.Context, pacienteID uuid.UUID) (*model.EstadisticasPaciente, error) {
	if _, err := s.pacientes.FindByID(ctx, pacienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("paciente %s no encontrado", pacienteID)
		}
		return nil, err
	}

	resumen, err := s.sesiones.ResumenPaciente(ctx, pacienteID)
	if err != nil {
		return nil, err
	}

	// COUNT(*) = 0 means the patient has no sessions; the SUM coalescing in
	// the repository already yields zeros and a nil UltimaSesion.
	est := model.EstadisticasPaciente{
		TotalSesiones:  int(resumen.TotalSesiones),
		TotalPagado:    resumen.TotalPagado,
		SaldoPendiente: resumen.SaldoPendiente,
		UltimaSesion:   resumen.UltimaSesion,
	}

	if err := s.pacientes.UpdateEstadisticas(ctx, pacienteID, est); err != nil {
		return nil, err
	}
	return &est, nil
}
