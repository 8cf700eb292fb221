package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fisiogest/internal/dto"
	"fisiogest/internal/handler"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditoriaRepo struct {
	eventos []model.Auditoria
}

var _ repository.AuditoriaRepository = (*stubAuditoriaRepo)(nil)

func (r *stubAuditoriaRepo) Create(_ context.Context, a *model.Auditoria) error {
	r.eventos = append(r.eventos, *a)
	return nil
}

func (r *stubAuditoriaRepo) ListRecientes(_ context.Context, limite int) ([]model.Auditoria, error) {
	// Newest first, same ordering as the gorm query.
	out := make([]model.Auditoria, 0, limite)
	for i := len(r.eventos) - 1; i >= 0 && len(out) < limite; i-- {
		out = append(out, r.eventos[i])
	}
	return out, nil
}

func auditoriaRouter(repo repository.AuditoriaRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/auditoria", handler.NewAuditoriaHandler(repo).Listar)
	return r
}

func TestListarAuditoria(t *testing.T) {
	repo := &stubAuditoriaRepo{}
	usuario := uuid.New()
	for i, accion := range []string{"sesion.registrar", "sesion.pago", "pago_personal.upsert"} {
		entidadID := uuid.New()
		require.NoError(t, repo.Create(context.Background(), &model.Auditoria{
			ID:        uuid.New(),
			UsuarioID: &usuario,
			Accion:    accion,
			Entidad:   "sesion",
			EntidadID: &entidadID,
			CreatedAt: time.Date(2025, 7, 1, 10, i, 0, 0, time.UTC),
		}))
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?limite=2", nil)
	auditoriaRouter(repo).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []dto.AuditoriaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "pago_personal.upsert", resp[0].Accion)
	assert.Equal(t, "sesion.pago", resp[1].Accion)
	assert.Equal(t, usuario, *resp[0].UsuarioID)
}

func TestListarAuditoriaLimiteInvalido(t *testing.T) {
	r := auditoriaRouter(&stubAuditoriaRepo{})

	for _, limite := range []string{"0", "501", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/auditoria?limite="+limite, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "limite=%s", limite)
	}
}
