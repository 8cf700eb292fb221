package service

import (
	"context"
	"errors"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/dto"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PacienteService interface {
	Crear(ctx context.Context, req dto.CrearPacienteRequest) (*dto.PacienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PacienteResponse, error)
	Listar(ctx context.Context, filtro dto.PacienteFiltro) (*dto.PacienteListResponse, error)
	// Historial refreshes the patient's statistics before returning, so the
	// counters are correct even if a post-write hook failed silently.
	Historial(ctx context.Context, id uuid.UUID) (*dto.HistorialPacienteResponse, error)
}

type pacienteService struct {
	repo         repository.PacienteRepository
	sesionRepo   repository.SesionRepository
	estadisticas EstadisticasService
}

func NewPacienteService(repo repository.PacienteRepository, sesionRepo repository.SesionRepository, estadisticas EstadisticasService) PacienteService {
	return &pacienteService{repo: repo, sesionRepo: sesionRepo, estadisticas: estadisticas}
}

func (s *pacienteService) Crear(ctx context.Context, req dto.CrearPacienteRequest) (*dto.PacienteResponse, error) {
	paciente := &model.Paciente{
		Nombre:       req.Nombre,
		Apellido:     req.Apellido,
		Documento:    req.Documento,
		Telefono:     req.Telefono,
		Email:        req.Email,
		Diagnostico:  req.Diagnostico,
		SesionesPlan: req.SesionesPlan,
		Activo:       true,
	}
	if req.FechaNacimiento != nil {
		nacimiento, err := ParseFecha(*req.FechaNacimiento)
		if err != nil {
			return nil, err
		}
		paciente.FechaNacimiento = &nacimiento
	}

	if err := s.repo.Create(ctx, paciente); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflictof("ya existe un paciente con ese documento")
		}
		return nil, err
	}
	return pacienteToResponse(paciente), nil
}

func (s *pacienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.PacienteResponse, error) {
	paciente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("paciente %s no encontrado", id)
		}
		return nil, err
	}
	return pacienteToResponse(paciente), nil
}

func (s *pacienteService) Listar(ctx context.Context, filtro dto.PacienteFiltro) (*dto.PacienteListResponse, error) {
	if filtro.Page < 1 {
		filtro.Page = 1
	}
	if filtro.Limit < 1 || filtro.Limit > 100 {
		filtro.Limit = 20
	}

	pacientes, total, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PacienteResponse, 0, len(pacientes))
	for i := range pacientes {
		items = append(items, *pacienteToResponse(&pacientes[i]))
	}

	totalPages := int((total + int64(filtro.Limit) - 1) / int64(filtro.Limit))
	return &dto.PacienteListResponse{
		Items: items,
		Pagination: dto.Pagination{
			Page:        filtro.Page,
			Limit:       filtro.Limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: filtro.Page < totalPages,
			HasPrevPage: filtro.Page > 1,
		},
	}, nil
}

func (s *pacienteService) Historial(ctx context.Context, id uuid.UUID) (*dto.HistorialPacienteResponse, error) {
	if _, err := s.estadisticas.Refrescar(ctx, id); err != nil {
		// A not-found here is authoritative; other errors fall back to the
		// stored counters.
		if apierror.IsNoEncontrado(err) {
			return nil, err
		}
	}

	paciente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("paciente %s no encontrado", id)
		}
		return nil, err
	}

	sesiones, err := s.sesionRepo.ListByPaciente(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.HistorialPacienteResponse{
		Paciente: *pacienteToResponse(paciente),
		Sesiones: make([]dto.SesionResponse, 0, len(sesiones)),
	}
	for i := range sesiones {
		resp.Sesiones = append(resp.Sesiones, *sesionToResponse(&sesiones[i], paciente))
	}
	return resp, nil
}

func pacienteToResponse(p *model.Paciente) *dto.PacienteResponse {
	est := dto.EstadisticasPacienteResponse{
		TotalSesiones:  p.Estadisticas.TotalSesiones,
		TotalPagado:    p.Estadisticas.TotalPagado.Round(2),
		SaldoPendiente: p.Estadisticas.SaldoPendiente.Round(2),
	}
	if p.Estadisticas.UltimaSesion != nil {
		f := p.Estadisticas.UltimaSesion.UTC().Format(time.RFC3339)
		est.UltimaSesion = &f
	}
	return &dto.PacienteResponse{
		ID:           p.ID.String(),
		Nombre:       p.Nombre,
		Apellido:     p.Apellido,
		Documento:    p.Documento,
		Telefono:     p.Telefono,
		Email:        p.Email,
		Diagnostico:  p.Diagnostico,
		SesionesPlan: p.SesionesPlan,
		Estadisticas: est,
		Activo:       p.Activo,
	}
}
