package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/audit"
	"fisiogest/internal/dto"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"
	"fisiogest/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SesionService interface {
	Registrar(ctx context.Context, req dto.RegistrarSesionRequest, profesionalID uuid.UUID) (*dto.SesionResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSesionRequest) (*dto.SesionResponse, error)
	RegistrarPago(ctx context.Context, id uuid.UUID, req dto.RegistrarPagoSesionRequest) (*dto.SesionResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarSesionRequest, profesionalID *uuid.UUID) (*dto.CancelarSesionResponse, error)
	PlanillaDiaria(ctx context.Context, fecha string) (*dto.PlanillaDiariaResponse, error)
	PagosPendientes(ctx context.Context, filtro dto.PagosPendientesFiltro) (*dto.PagosPendientesResponse, error)
}

type sesionService struct {
	repo         repository.SesionRepository
	pacienteRepo repository.PacienteRepository
	estadisticas EstadisticasService
	auditoria    audit.Sink
	dispatcher   *worker.Dispatcher
}

func NewSesionService(
	repo repository.SesionRepository,
	pacienteRepo repository.PacienteRepository,
	estadisticas EstadisticasService,
	auditoria audit.Sink,
	dispatcher *worker.Dispatcher,
) SesionService {
	return &sesionService{
		repo:         repo,
		pacienteRepo: pacienteRepo,
		estadisticas: estadisticas,
		auditoria:    auditoria,
		dispatcher:   dispatcher,
	}
}

const pendientesLimiteDefault = 100

// ── Registrar ────────────────────────────────────────────────────────────────
// Assigns both sequence numbers at creation:
//   - NumeroOrdenDia: max existing for the UTC day + 1.
//   - NumeroSesionPaciente: count of all the patient's sessions + 1, unless
//     supplied explicitly.
//
// The read-max-then-insert has a race window under concurrent registration
// for the same day; the unique index (fecha_dia, numero_orden_dia) closes it
// with a single retry instead of a lock. Low front-desk write volume makes
// more than one retry unnecessary.

func (s *sesionService) Registrar(ctx context.Context, req dto.RegistrarSesionRequest, profesionalID uuid.UUID) (*dto.SesionResponse, error) {
	pacienteID, err := uuid.Parse(req.PacienteID)
	if err != nil {
		return nil, apierror.Validacionf("paciente_id inválido: %q", req.PacienteID)
	}
	paciente, err := s.pacienteRepo.FindByID(ctx, pacienteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("paciente %s no encontrado", req.PacienteID)
		}
		return nil, err
	}

	fecha, err := ParseFecha(req.Fecha)
	if err != nil {
		return nil, err
	}

	numeroSesion := 0
	if req.NumeroSesionPaciente != nil {
		numeroSesion = *req.NumeroSesionPaciente
	} else {
		total, err := s.repo.CountByPaciente(ctx, pacienteID)
		if err != nil {
			return nil, err
		}
		numeroSesion = int(total) + 1
	}

	sesion := &model.Sesion{
		PacienteID:           pacienteID,
		Fecha:                fecha,
		FechaDia:             DiaUTC(fecha),
		TipoSesion:           "tratamiento",
		HoraEntrada:          req.HoraEntrada,
		HoraSalida:           req.HoraSalida,
		DuracionMinutos:      duracionMinutos(req.HoraEntrada, req.HoraSalida),
		NumeroSesionPaciente: numeroSesion,
		Tratamiento:          req.Tratamiento,
		Evolucion:            req.Evolucion,
		Estado:               "programada",
		ProfesionalID:        &profesionalID,
	}
	if req.TipoSesion != "" {
		sesion.TipoSesion = req.TipoSesion
	}
	if req.Pago != nil {
		sesion.Pago.Monto = req.Pago.Monto
		sesion.Pago.Metodo = req.Pago.Metodo
		if req.Pago.Pagado != nil && *req.Pago.Pagado {
			sesion.Pago.Pagado = true
			ahora := time.Now().UTC()
			sesion.Pago.FechaPago = &ahora
		}
	}

	if err := s.crearConOrden(ctx, sesion); err != nil {
		return nil, err
	}

	s.refrescarEstadisticas(ctx, pacienteID)
	s.auditoria.Record(ctx, audit.Event{
		UsuarioID: &profesionalID, Accion: "sesion.registrar",
		Entidad: "sesion", EntidadID: &sesion.ID,
		Detalle: fmt.Sprintf("Sesión %d del %s", sesion.NumeroOrdenDia, req.Fecha),
	})

	sesion.Paciente = paciente
	return sesionToResponse(sesion, paciente), nil
}

// crearConOrden assigns NumeroOrdenDia and inserts, retrying once when a
// concurrent registration took the same number.
func (s *sesionService) crearConOrden(ctx context.Context, sesion *model.Sesion) error {
	for intento := 0; intento < 2; intento++ {
		max, err := s.repo.MaxNumeroOrdenDia(ctx, sesion.FechaDia)
		if err != nil {
			return err
		}
		sesion.NumeroOrdenDia = max + 1

		err = s.repo.Create(ctx, sesion)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return apierror.Conflictof("no se pudo asignar número de orden para el día %s", sesion.FechaDia.Format("2006-01-02"))
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *sesionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarSesionRequest) (*dto.SesionResponse, error) {
	sesion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Estado != nil && *req.Estado != sesion.Estado {
		if esEstadoTerminal(sesion.Estado) {
			return nil, apierror.Validacionf("la sesión ya está %s y no admite transiciones", sesion.Estado)
		}
		sesion.Estado = *req.Estado
	}
	if req.TipoSesion != nil {
		sesion.TipoSesion = *req.TipoSesion
	}
	if req.HoraEntrada != nil {
		sesion.HoraEntrada = req.HoraEntrada
	}
	if req.HoraSalida != nil {
		sesion.HoraSalida = req.HoraSalida
	}
	sesion.DuracionMinutos = duracionMinutos(sesion.HoraEntrada, sesion.HoraSalida)
	if req.Tratamiento != nil {
		sesion.Tratamiento = req.Tratamiento
	}
	if req.Evolucion != nil {
		sesion.Evolucion = req.Evolucion
	}

	if err := s.repo.Update(ctx, sesion); err != nil {
		return nil, err
	}

	s.refrescarEstadisticas(ctx, sesion.PacienteID)
	return sesionToResponse(sesion, sesion.Paciente), nil
}

// ── RegistrarPago ────────────────────────────────────────────────────────────
// Merges payment fields, forces Pagado=true and stamps FechaPago when unset.
// A receipt PDF is generated asynchronously; its failure never surfaces.

func (s *sesionService) RegistrarPago(ctx context.Context, id uuid.UUID, req dto.RegistrarPagoSesionRequest) (*dto.SesionResponse, error) {
	sesion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Monto != nil {
		if req.Monto.IsNegative() {
			return nil, apierror.Validacionf("monto no puede ser negativo")
		}
		sesion.Pago.Monto = *req.Monto
	}
	if req.Metodo != nil {
		sesion.Pago.Metodo = req.Metodo
	}
	if req.Recibo != nil {
		sesion.Pago.Recibo = req.Recibo
	}
	sesion.Pago.Pagado = true
	if sesion.Pago.FechaPago == nil {
		ahora := time.Now().UTC()
		sesion.Pago.FechaPago = &ahora
	}

	if err := s.repo.Update(ctx, sesion); err != nil {
		return nil, err
	}

	s.refrescarEstadisticas(ctx, sesion.PacienteID)
	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueRecibo(ctx, worker.ReciboJobPayload{SesionID: sesion.ID.String()}); err != nil {
			log.Warn().Err(err).Str("sesion_id", sesion.ID.String()).Msg("recibo: encolado falló")
		}
	}
	s.auditoria.Record(ctx, audit.Event{
		Accion: "sesion.pago", Entidad: "sesion", EntidadID: &sesion.ID,
		Detalle: fmt.Sprintf("Pago de %s registrado", sesion.Pago.Monto.StringFixed(2)),
	})

	return sesionToResponse(sesion, sesion.Paciente), nil
}

// ── Cancelar ─────────────────────────────────────────────────────────────────
// Cancels the session and, when NuevaFecha is present, spawns its
// replacement: a new sesión on the new day keeping the same
// NumeroSesionPaciente (it is the same treatment slot), payment amount and
// method carried over but unpaid, with only a forward link on the original.
// The two writes are not atomic; a crash in between leaves a cancelación
// without its replacement, which the front desk resolves by registering one.

func (s *sesionService) Cancelar(ctx context.Context, id uuid.UUID, req dto.CancelarSesionRequest, profesionalID *uuid.UUID) (*dto.CancelarSesionResponse, error) {
	if req.Motivo == "" {
		return nil, apierror.Validacionf("motivo de cancelación requerido")
	}

	sesion, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if esEstadoTerminal(sesion.Estado) {
		return nil, apierror.Validacionf("la sesión ya está %s", sesion.Estado)
	}

	sesion.Estado = "cancelada"
	sesion.MotivoCancelacion = &req.Motivo

	var reprogramada *model.Sesion
	if req.NuevaFecha != nil {
		nuevaFecha, err := ParseFecha(*req.NuevaFecha)
		if err != nil {
			return nil, err
		}

		nota := fmt.Sprintf("Reprogramada desde el %s. Motivo: %s",
			sesion.Fecha.UTC().Format("2006-01-02"), req.Motivo)
		reprogramada = &model.Sesion{
			PacienteID:           sesion.PacienteID,
			Fecha:                nuevaFecha,
			FechaDia:             DiaUTC(nuevaFecha),
			TipoSesion:           sesion.TipoSesion,
			HoraEntrada:          sesion.HoraEntrada,
			HoraSalida:           sesion.HoraSalida,
			DuracionMinutos:      sesion.DuracionMinutos,
			NumeroSesionPaciente: sesion.NumeroSesionPaciente,
			Tratamiento:          sesion.Tratamiento,
			Evolucion:            &nota,
			Estado:               "reprogramada",
			ProfesionalID:        profesionalID,
			Pago: model.PagoSesion{
				Monto:  sesion.Pago.Monto,
				Metodo: sesion.Pago.Metodo,
				Pagado: false,
			},
		}
		if err := s.crearConOrden(ctx, reprogramada); err != nil {
			return nil, err
		}

		dia := reprogramada.FechaDia
		sesion.ReprogramadaFecha = &dia
		sesion.ReprogramadaSesionID = &reprogramada.ID
	}

	if err := s.repo.Update(ctx, sesion); err != nil {
		return nil, err
	}

	s.refrescarEstadisticas(ctx, sesion.PacienteID)
	s.auditoria.Record(ctx, audit.Event{
		UsuarioID: profesionalID, Accion: "sesion.cancelar",
		Entidad: "sesion", EntidadID: &sesion.ID, Detalle: req.Motivo,
	})

	resp := &dto.CancelarSesionResponse{Sesion: *sesionToResponse(sesion, sesion.Paciente)}
	if reprogramada != nil {
		resp.Reprogramada = sesionToResponse(reprogramada, sesion.Paciente)
	}
	return resp, nil
}

// ── PlanillaDiaria ───────────────────────────────────────────────────────────
// Day sheet: the day's sessions in arrival order plus revenue totals.
// Only completadas count toward cobrado/pendiente; cancellations and
// no-shows are counted separately.

func (s *sesionService) PlanillaDiaria(ctx context.Context, fecha string) (*dto.PlanillaDiariaResponse, error) {
	dia, err := ParseFecha(fecha)
	if err != nil {
		return nil, err
	}

	sesiones, err := s.repo.ListByDia(ctx, DiaUTC(dia))
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanillaDiariaResponse{
		Fecha:    fecha,
		Sesiones: make([]dto.SesionResponse, 0, len(sesiones)),
	}
	cobrado := decimal.Zero
	pendiente := decimal.Zero

	for i := range sesiones {
		ses := &sesiones[i]
		resp.Sesiones = append(resp.Sesiones, *sesionToResponse(ses, ses.Paciente))

		switch ses.Estado {
		case "completada":
			if ses.Pago.Pagado {
				cobrado = cobrado.Add(ses.Pago.Monto)
			} else {
				pendiente = pendiente.Add(ses.Pago.Monto)
			}
		case "cancelada":
			resp.Totales.Canceladas++
		case "no_asistio":
			resp.Totales.NoAsistio++
		}
	}

	resp.Totales.Cobrado = cobrado.Round(2)
	resp.Totales.Pendiente = pendiente.Round(2)
	return resp, nil
}

// ── PagosPendientes ──────────────────────────────────────────────────────────
// Breakdown maps are folded over the fetched page, not the full matching
// population — with a limit in play they are page-local. Kept as-is pending
// a product decision; splitting page vs. global aggregates changes the
// contract.

func (s *sesionService) PagosPendientes(ctx context.Context, filtro dto.PagosPendientesFiltro) (*dto.PagosPendientesResponse, error) {
	var pacienteID *uuid.UUID
	if filtro.PacienteID != nil && *filtro.PacienteID != "" {
		id, err := uuid.Parse(*filtro.PacienteID)
		if err != nil {
			return nil, apierror.Validacionf("paciente_id inválido: %q", *filtro.PacienteID)
		}
		pacienteID = &id
	}
	limite := filtro.Limite
	if limite < 1 || limite > pendientesLimiteDefault {
		limite = pendientesLimiteDefault
	}

	sesiones, err := s.repo.ListPendientes(ctx, pacienteID, limite)
	if err != nil {
		return nil, err
	}

	resp := &dto.PagosPendientesResponse{
		Sesiones:  make([]dto.SesionResponse, 0, len(sesiones)),
		PorEstado: make(map[string]dto.ResumenEstado),
		PorMetodo: make(map[string]dto.ResumenEstado),
	}
	total := decimal.Zero

	for i := range sesiones {
		ses := &sesiones[i]
		resp.Sesiones = append(resp.Sesiones, *sesionToResponse(ses, ses.Paciente))
		total = total.Add(ses.Pago.Monto)

		porEstado := resp.PorEstado[ses.Estado]
		porEstado.Cantidad++
		porEstado.Monto = porEstado.Monto.Add(ses.Pago.Monto).Round(2)
		resp.PorEstado[ses.Estado] = porEstado

		metodo := "sin_metodo"
		if ses.Pago.Metodo != nil {
			metodo = *ses.Pago.Metodo
		}
		porMetodo := resp.PorMetodo[metodo]
		porMetodo.Cantidad++
		porMetodo.Monto = porMetodo.Monto.Add(ses.Pago.Monto).Round(2)
		resp.PorMetodo[metodo] = porMetodo
	}

	resp.TotalPendiente = total.Round(2)
	resp.Cantidad = len(sesiones)
	return resp, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *sesionService) buscar(ctx context.Context, id uuid.UUID) (*model.Sesion, error) {
	sesion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("sesión %s no encontrada", id)
		}
		return nil, err
	}
	return sesion, nil
}

// refrescarEstadisticas is the best-effort post-write hook: a projector
// failure is logged and swallowed so the primary write stays committed.
func (s *sesionService) refrescarEstadisticas(ctx context.Context, pacienteID uuid.UUID) {
	if _, err := s.estadisticas.Refrescar(ctx, pacienteID); err != nil {
		log.Error().Err(err).Str("paciente_id", pacienteID.String()).
			Msg("estadísticas: refresco post-escritura falló")
	}
}

func esEstadoTerminal(estado string) bool {
	switch estado {
	case "cancelada", "completada", "no_asistio":
		return true
	}
	return false
}

// duracionMinutos derives the session length from HH:MM entry/exit times.
// Nil when either end is missing or malformed, or the interval is negative.
func duracionMinutos(entrada, salida *string) *int {
	if entrada == nil || salida == nil {
		return nil
	}
	e, errE := time.Parse("15:04", *entrada)
	s, errS := time.Parse("15:04", *salida)
	if errE != nil || errS != nil {
		return nil
	}
	minutos := int(s.Sub(e).Minutes())
	if minutos < 0 {
		return nil
	}
	return &minutos
}

func sesionToResponse(ses *model.Sesion, paciente *model.Paciente) *dto.SesionResponse {
	resp := &dto.SesionResponse{
		ID:                   ses.ID.String(),
		PacienteID:           ses.PacienteID.String(),
		Fecha:                ses.Fecha.UTC().Format("2006-01-02"),
		TipoSesion:           ses.TipoSesion,
		HoraEntrada:          ses.HoraEntrada,
		HoraSalida:           ses.HoraSalida,
		DuracionMinutos:      ses.DuracionMinutos,
		NumeroOrdenDia:       ses.NumeroOrdenDia,
		NumeroSesionPaciente: ses.NumeroSesionPaciente,
		Tratamiento:          ses.Tratamiento,
		Evolucion:            ses.Evolucion,
		Estado:               ses.Estado,
		MotivoCancelacion:    ses.MotivoCancelacion,
		Pago: dto.PagoSesionResponse{
			Monto:  ses.Pago.Monto.Round(2),
			Metodo: ses.Pago.Metodo,
			Pagado: ses.Pago.Pagado,
			Recibo: ses.Pago.Recibo,
		},
	}
	if ses.Pago.FechaPago != nil {
		f := ses.Pago.FechaPago.UTC().Format(time.RFC3339)
		resp.Pago.FechaPago = &f
	}
	if ses.ReprogramadaFecha != nil && ses.ReprogramadaSesionID != nil {
		resp.ReprogramadaA = &dto.ReprogramacionResponse{
			Fecha:    ses.ReprogramadaFecha.Format("2006-01-02"),
			SesionID: ses.ReprogramadaSesionID.String(),
		}
	}
	if paciente != nil {
		resp.Paciente = paciente.Apellido + ", " + paciente.Nombre
		resp.Etiqueta = etiquetaSesion(ses.NumeroSesionPaciente, paciente.SesionesPlan)
	} else {
		resp.Etiqueta = etiquetaSesion(ses.NumeroSesionPaciente, 0)
	}
	return resp
}

// etiquetaSesion builds the day-sheet label: "Sesión N de M" when the
// treatment plan length is known, "Sesión N" otherwise.
func etiquetaSesion(numero, plan int) string {
	if numero < 1 {
		return ""
	}
	if plan > 0 {
		return fmt.Sprintf("Sesión %d de %d", numero, plan)
	}
	return fmt.Sprintf("Sesión %d", numero)
}
