package handler

import (
	"net/http"
	"strconv"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/dto"
	"fisiogest/internal/middleware"
	"fisiogest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PagosPersonalHandler struct{ svc service.PagoPersonalService }

func NewPagosPersonalHandler(svc service.PagoPersonalService) *PagosPersonalHandler {
	return &PagosPersonalHandler{svc: svc}
}

// Upsert creates or replaces the payroll entry identified by its natural key
// (anio, mes, semana_del_mes, fecha). Returns 201 on create, 200 on update.
func (h *PagosPersonalHandler) Upsert(c *gin.Context) {
	var req dto.PagoPersonalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Upsert(c.Request.Context(), req, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if resp.Creado {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// UpsertMasivo processes a batch of payroll entries row by row. Rows that fail
// do not roll back the ones already written.
func (h *PagosPersonalHandler) UpsertMasivo(c *gin.Context) {
	var req dto.UpsertMasivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.UpsertMasivo(c.Request.Context(), req, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlanillaMensual returns the month sheet grouped by week and weekday, with
// week subtotals and the month's distribution totals.
func (h *PagosPersonalHandler) PlanillaMensual(c *gin.Context) {
	now := time.Now().UTC()
	anio, err := queryInt(c, "anio", now.Year())
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("anio invalido"))
		return
	}
	mes, err := queryInt(c, "mes", int(now.Month()))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("mes invalido"))
		return
	}

	resp, err := h.svc.PlanillaMensual(c.Request.Context(), anio, mes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagosPersonalHandler) Estadisticas(c *gin.Context) {
	var filtro dto.PagoPersonalFiltro
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Estadisticas(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagosPersonalHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.PagoPersonalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Actualizar(c.Request.Context(), id, req, usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PagosPersonalHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
