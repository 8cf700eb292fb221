package worker

import (
	"context"
	"encoding/json"

	"fisiogest/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReciboJobPayload identifies the paid session whose receipt must be rendered.
type ReciboJobPayload struct {
	SesionID string `json:"sesion_id"`
}

// GeneradorRecibos renders the receipt document for a paid session and
// returns a reference to it (file path in this deployment).
type GeneradorRecibos interface {
	GenerarRecibo(ctx context.Context, sesionID uuid.UUID) (string, error)
}

// ReciboWorker renders receipt PDFs for paid sessions and stores the
// reference back on the session record.
type ReciboWorker struct {
	repo      repository.SesionRepository
	generador GeneradorRecibos
}

func NewReciboWorker(repo repository.SesionRepository, generador GeneradorRecibos) *ReciboWorker {
	return &ReciboWorker{repo: repo, generador: generador}
}

func (w *ReciboWorker) Process(ctx context.Context, rdb *redis.Client, job Job) {
	var payload ReciboJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("recibo: payload inválido")
		return
	}
	sesionID, err := uuid.Parse(payload.SesionID)
	if err != nil {
		log.Error().Str("sesion_id", payload.SesionID).Msg("recibo: id inválido")
		return
	}

	referencia, err := w.generador.GenerarRecibo(ctx, sesionID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("recibo: generación falló")
		retryOrDeadLetter(ctx, rdb, QueueRecibos, job, err.Error())
		return
	}

	sesion, err := w.repo.FindByID(ctx, sesionID)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("recibo: sesión no encontrada")
		return
	}
	sesion.Pago.Recibo = &referencia
	if err := w.repo.Update(ctx, sesion); err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionID).Msg("recibo: actualización falló")
		retryOrDeadLetter(ctx, rdb, QueueRecibos, job, err.Error())
	}
}
