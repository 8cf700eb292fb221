package service_test

import (
	"context"
	"fmt"
	"testing"

	"fisiogest/internal/apierror"
	"fisiogest/internal/audit"
	"fisiogest/internal/dto"
	"fisiogest/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPacienteSvc() (service.PacienteService, *stubPacienteRepo, *stubSesionRepo) {
	pacienteRepo := newStubPacienteRepo()
	sesionRepo := newStubSesionRepo()
	estadisticas := service.NewEstadisticasService(sesionRepo, pacienteRepo)
	svc := service.NewPacienteService(pacienteRepo, sesionRepo, estadisticas)
	return svc, pacienteRepo, sesionRepo
}

func TestCrearPaciente(t *testing.T) {
	svc, _, _ := buildPacienteSvc()
	doc := "30123456"

	resp, err := svc.Crear(context.Background(), dto.CrearPacienteRequest{
		Nombre:       "Ana",
		Apellido:     "García",
		Documento:    &doc,
		SesionesPlan: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.SesionesPlan)
	assert.True(t, resp.Activo)

	// Duplicate documento surfaces as a conflict.
	_, err = svc.Crear(context.Background(), dto.CrearPacienteRequest{
		Nombre: "Otra", Apellido: "Persona", Documento: &doc,
	})
	assert.True(t, apierror.IsConflicto(err))
}

func TestListarPaginacion(t *testing.T) {
	svc, pacienteRepo, _ := buildPacienteSvc()
	for i := 0; i < 25; i++ {
		p := crearPaciente(pacienteRepo, 0)
		p.Apellido = fmt.Sprintf("Apellido%02d", i)
	}

	pagina, err := svc.Listar(context.Background(), dto.PacienteFiltro{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, pagina.Items, 10)
	assert.Equal(t, int64(25), pagina.Pagination.Total)
	assert.Equal(t, 3, pagina.Pagination.TotalPages)
	assert.True(t, pagina.Pagination.HasNextPage)
	assert.True(t, pagina.Pagination.HasPrevPage)

	ultima, err := svc.Listar(context.Background(), dto.PacienteFiltro{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, ultima.Items, 5)
	assert.False(t, ultima.Pagination.HasNextPage)

	// Out-of-range values fall back to defaults.
	defecto, err := svc.Listar(context.Background(), dto.PacienteFiltro{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, defecto.Pagination.Page)
	assert.Equal(t, 20, defecto.Pagination.Limit)
}

func TestHistorialRefrescaEstadisticas(t *testing.T) {
	svc, pacienteRepo, sesionRepo := buildPacienteSvc()
	ctx := context.Background()
	p := crearPaciente(pacienteRepo, 5)

	sesionSvc := service.NewSesionService(sesionRepo, pacienteRepo,
		service.NewEstadisticasService(sesionRepo, pacienteRepo), audit.NopSink{}, nil)
	req := sesionReq(p.ID, "2025-07-01")
	pagado := true
	req.Pago = &dto.PagoSesionRequest{Monto: d("8000"), Pagado: &pagado}
	_, err := sesionSvc.Registrar(ctx, req, uuid.New())
	require.NoError(t, err)

	// Simulate a missed post-write refresh: wipe the stored counters.
	p.Estadisticas.TotalSesiones = 0
	p.Estadisticas.TotalPagado = d("0")

	historial, err := svc.Historial(ctx, p.ID)
	require.NoError(t, err)

	assert.Len(t, historial.Sesiones, 1)
	assert.Equal(t, 1, historial.Paciente.Estadisticas.TotalSesiones)
	assert.True(t, d("8000").Equal(historial.Paciente.Estadisticas.TotalPagado))
	assert.Equal(t, "Sesión 1 de 5", historial.Sesiones[0].Etiqueta)

	_, err = svc.Historial(ctx, uuid.New())
	assert.True(t, apierror.IsNoEncontrado(err))
}
