package handler

import (
	"net/http"

	"fisiogest/internal/apierror"
	"fisiogest/internal/dto"
	"fisiogest/internal/repository"

	"github.com/gin-gonic/gin"
)

// AuditoriaHandler exposes the read side of the audit log. Events are
// appended only by the worker pool; this handler never writes.
type AuditoriaHandler struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaHandler(repo repository.AuditoriaRepository) *AuditoriaHandler {
	return &AuditoriaHandler{repo: repo}
}

// Listar returns the most recent audit events, newest first.
// GET /v1/auditoria?limite=100
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	limite, err := queryInt(c, "limite", 100)
	if err != nil || limite < 1 || limite > 500 {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("limite debe ser un entero entre 1 y 500"))
		return
	}

	eventos, err := h.repo.ListRecientes(c.Request.Context(), limite)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.AuditoriaResponse, 0, len(eventos))
	for _, ev := range eventos {
		resp = append(resp, dto.AuditoriaResponse{
			ID:        ev.ID,
			UsuarioID: ev.UsuarioID,
			Accion:    ev.Accion,
			Entidad:   ev.Entidad,
			EntidadID: ev.EntidadID,
			Detalle:   ev.Detalle,
			Fecha:     ev.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
