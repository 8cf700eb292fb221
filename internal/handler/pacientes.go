package handler

import (
	"net/http"

	"fisiogest/internal/apierror"
	"fisiogest/internal/dto"
	"fisiogest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PacientesHandler struct {
	svc          service.PacienteService
	estadisticas service.EstadisticasService
}

func NewPacientesHandler(svc service.PacienteService, estadisticas service.EstadisticasService) *PacientesHandler {
	return &PacientesHandler{svc: svc, estadisticas: estadisticas}
}

func (h *PacientesHandler) Crear(c *gin.Context) {
	var req dto.CrearPacienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PacientesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PacientesHandler) Listar(c *gin.Context) {
	var filtro dto.PacienteFiltro
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns the patient's sessions plus refreshed statistics.
func (h *PacientesHandler) Historial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefrescarEstadisticas recomputes the patient's counters from scratch. The
// recompute is idempotent, so this endpoint doubles as the manual repair tool
// after a missed post-write refresh.
func (h *PacientesHandler) RefrescarEstadisticas(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	est, err := h.estadisticas.Refrescar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}
