package worker

import (
	"context"
	"encoding/json"

	"fisiogest/internal/audit"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AuditoriaWorker persists queued audit events. Failed jobs go to the DLQ
// after a bounded number of retries.
type AuditoriaWorker struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaWorker(repo repository.AuditoriaRepository) *AuditoriaWorker {
	return &AuditoriaWorker{repo: repo}
}

func (w *AuditoriaWorker) Process(ctx context.Context, rdb *redis.Client, job Job) {
	var ev audit.Event
	if err := json.Unmarshal(job.Payload, &ev); err != nil {
		log.Error().Err(err).Msg("auditoria: payload inválido")
		return
	}

	registro := &model.Auditoria{
		UsuarioID: ev.UsuarioID,
		Accion:    ev.Accion,
		Entidad:   ev.Entidad,
		EntidadID: ev.EntidadID,
		Detalle:   ev.Detalle,
	}
	if err := w.repo.Create(ctx, registro); err != nil {
		log.Error().Err(err).Str("accion", ev.Accion).Msg("auditoria: persistencia falló")
		retryOrDeadLetter(ctx, rdb, QueueAuditoria, job, err.Error())
	}
}
