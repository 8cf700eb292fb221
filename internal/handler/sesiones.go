package handler

import (
	"net/http"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/dto"
	"fisiogest/internal/middleware"
	"fisiogest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SesionesHandler struct{ svc service.SesionService }

func NewSesionesHandler(svc service.SesionService) *SesionesHandler {
	return &SesionesHandler{svc: svc}
}

// Registrar creates a new session, assigning its day-order and per-patient
// sequence numbers.
func (h *SesionesHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	profesionalID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Registrar(c.Request.Context(), req, profesionalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SesionesHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ActualizarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago marks the session as paid and dispatches the receipt job.
func (h *SesionesHandler) RegistrarPago(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarPagoSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancelar cancels a session; when nueva_fecha is present it spawns the
// replacement session and links both.
func (h *SesionesHandler) Cancelar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	var profesionalID *uuid.UUID
	if claims != nil {
		if uid, err := uuid.Parse(claims.UserID); err == nil {
			profesionalID = &uid
		}
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req, profesionalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanillaDiaria returns the day sheet: sessions in arrival order plus the
// day's collected / pending totals.
func (h *SesionesHandler) PlanillaDiaria(c *gin.Context) {
	fecha := c.Query("fecha")
	if fecha == "" {
		fecha = time.Now().UTC().Format("2006-01-02")
	}
	resp, err := h.svc.PlanillaDiaria(c.Request.Context(), fecha)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SesionesHandler) PagosPendientes(c *gin.Context) {
	var filtro dto.PagosPendientesFiltro
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.PagosPendientes(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
