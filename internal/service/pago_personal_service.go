package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/audit"
	"fisiogest/internal/dto"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PagoPersonalService interface {
	Upsert(ctx context.Context, req dto.PagoPersonalRequest, usuarioID uuid.UUID) (*dto.UpsertPagoResponse, error)
	UpsertMasivo(ctx context.Context, req dto.UpsertMasivoRequest, usuarioID uuid.UUID) (*dto.UpsertMasivoResponse, error)
	PlanillaMensual(ctx context.Context, anio, mes int) (*dto.PlanillaMensualResponse, error)
	Estadisticas(ctx context.Context, filtro dto.PagoPersonalFiltro) (*dto.EstadisticasPagosResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.PagoPersonalRequest, usuarioID uuid.UUID) (*dto.PagoPersonalResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type pagoPersonalService struct {
	repo      repository.PagoPersonalRepository
	rdb       *redis.Client
	auditoria audit.Sink
}

const planillaCacheTTL = 5 * time.Minute

// NewPagoPersonalService builds the payroll ledger service. rdb may be nil
// (unit test mode): the month-sheet cache is then skipped entirely.
func NewPagoPersonalService(repo repository.PagoPersonalRepository, rdb *redis.Client, auditoria audit.Sink) PagoPersonalService {
	return &pagoPersonalService{repo: repo, rdb: rdb, auditoria: auditoria}
}

var estadosPago = map[string]bool{
	"pendiente": true, "procesando": true, "pagado": true, "cancelado": true,
}

// ── Upsert ───────────────────────────────────────────────────────────────────
// Upsert-by-natural-key: one row per (anio, mes, semana, fecha). The unique
// index backs the read-then-write; a duplicate-key insert from a concurrent
// upsert is retried once as an update.

func (s *pagoPersonalService) Upsert(ctx context.Context, req dto.PagoPersonalRequest, usuarioID uuid.UUID) (*dto.UpsertPagoResponse, error) {
	fecha, periodo, err := s.resolverEntrada(&req)
	if err != nil {
		return nil, err
	}

	existente, err := s.repo.FindByClaveNatural(ctx, periodo.Anio, periodo.Mes, periodo.SemanaDelMes, fecha)
	switch {
	case err == nil:
		actualizado, err := s.aplicar(ctx, existente, req, *periodo, fecha, usuarioID, false)
		if err != nil {
			return nil, err
		}
		return &dto.UpsertPagoResponse{Pago: *pagoToResponse(actualizado), Creado: false}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		creado, err := s.crear(ctx, req, *periodo, fecha, usuarioID)
		if err != nil {
			return nil, err
		}
		return &dto.UpsertPagoResponse{Pago: *pagoToResponse(creado), Creado: true}, nil

	default:
		return nil, err
	}
}

// resolverEntrada validates the request and derives the period, honoring
// per-field overrides.
func (s *pagoPersonalService) resolverEntrada(req *dto.PagoPersonalRequest) (time.Time, *Periodo, error) {
	fecha, err := ParseFecha(req.Fecha)
	if err != nil {
		return time.Time{}, nil, err
	}
	if req.Monto.IsNegative() {
		return time.Time{}, nil, apierror.Validacionf("monto no puede ser negativo")
	}

	periodo := ResolverPeriodo(fecha)
	if req.Anio != nil {
		periodo.Anio = *req.Anio
	}
	if req.Mes != nil {
		periodo.Mes = *req.Mes
	}
	if req.SemanaDelMes != nil {
		periodo.SemanaDelMes = *req.SemanaDelMes
	}
	if req.DiaSemana != nil {
		periodo.DiaSemana = *req.DiaSemana
	}

	if !EsDiaSemanaValido(periodo.DiaSemana) {
		return time.Time{}, nil, apierror.Validacionf("dia_semana inválido: %q", periodo.DiaSemana)
	}
	if req.Estado != nil && !estadosPago[*req.Estado] {
		return time.Time{}, nil, apierror.Validacionf("estado inválido: %q", *req.Estado)
	}
	return fecha, &periodo, nil
}

func (s *pagoPersonalService) crear(ctx context.Context, req dto.PagoPersonalRequest, periodo Periodo, fecha time.Time, usuarioID uuid.UUID) (*model.PagoPersonal, error) {
	pago := &model.PagoPersonal{
		Anio:         periodo.Anio,
		Mes:          periodo.Mes,
		SemanaDelMes: periodo.SemanaDelMes,
		DiaSemana:    periodo.DiaSemana,
		Fecha:        fecha,
		Monto:        req.Monto,
		Distribucion: CalcularDistribucion(req.Monto, distribucionDeRequest(req.Distribucion)),
		Notas:        req.Notas,
		Estado:       "pendiente",
		CreadoPorID:  usuarioID,
	}
	if req.Estado != nil {
		pago.Estado = *req.Estado
	}

	err := s.repo.Create(ctx, pago)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against a concurrent upsert for the same day:
		// converge by re-reading and merging.
		existente, findErr := s.repo.FindByClaveNatural(ctx, periodo.Anio, periodo.Mes, periodo.SemanaDelMes, fecha)
		if findErr != nil {
			return nil, apierror.Conflictof("conflicto al registrar el pago del %s", req.Fecha)
		}
		return s.aplicar(ctx, existente, req, periodo, fecha, usuarioID, true)
	}
	if err != nil {
		return nil, err
	}

	s.invalidarPlanilla(ctx, periodo.Anio, periodo.Mes)
	s.auditoria.Record(ctx, audit.Event{
		UsuarioID: &usuarioID, Accion: "pago_personal.crear",
		Entidad: "pago_personal", EntidadID: &pago.ID,
		Detalle: fmt.Sprintf("Pago del %s por %s", req.Fecha, req.Monto.StringFixed(2)),
	})
	return pago, nil
}

// aplicar merges an upsert request onto an existing row.
func (s *pagoPersonalService) aplicar(ctx context.Context, existente *model.PagoPersonal, req dto.PagoPersonalRequest, periodo Periodo, fecha time.Time, usuarioID uuid.UUID, trasConflicto bool) (*model.PagoPersonal, error) {
	existente.DiaSemana = periodo.DiaSemana
	existente.Fecha = fecha
	existente.Monto = req.Monto
	if req.Notas != nil {
		existente.Notas = req.Notas
	}
	if req.Estado != nil {
		existente.Estado = *req.Estado
	}

	// A distribution supplied with the request wins; otherwise the stored one
	// is re-validated against the (possibly new) monto.
	dist := distribucionDeRequest(req.Distribucion)
	if dist == nil {
		dist = &existente.Distribucion
	}
	existente.Distribucion = CalcularDistribucion(req.Monto, dist)
	existente.ModificadoPorID = &usuarioID

	if err := s.repo.Update(ctx, existente); err != nil {
		if trasConflicto {
			return nil, apierror.Conflictof("conflicto persistente al registrar el pago del %s", req.Fecha)
		}
		return nil, err
	}

	s.invalidarPlanilla(ctx, periodo.Anio, periodo.Mes)
	s.auditoria.Record(ctx, audit.Event{
		UsuarioID: &usuarioID, Accion: "pago_personal.actualizar",
		Entidad: "pago_personal", EntidadID: &existente.ID,
		Detalle: fmt.Sprintf("Pago del %s actualizado a %s", req.Fecha, req.Monto.StringFixed(2)),
	})
	return existente, nil
}

// ── UpsertMasivo ─────────────────────────────────────────────────────────────
// Sequential, non-transactional import: each row succeeds or fails on its
// own, and rows before a failure stay committed. The caller receives per-row
// error detail instead of a first-failure abort.

func (s *pagoPersonalService) UpsertMasivo(ctx context.Context, req dto.UpsertMasivoRequest, usuarioID uuid.UUID) (*dto.UpsertMasivoResponse, error) {
	resp := &dto.UpsertMasivoResponse{Pagos: make([]dto.PagoPersonalResponse, 0, len(req.Pagos))}

	for i, fila := range req.Pagos {
		resultado, err := s.Upsert(ctx, fila, usuarioID)
		if err != nil {
			resp.Fallidos++
			resp.Errores = append(resp.Errores, dto.ErrorFila{Fila: i, Fecha: fila.Fecha, Detalle: err.Error()})
			continue
		}
		if resultado.Creado {
			resp.Creados++
		} else {
			resp.Actualizados++
		}
		resp.Pagos = append(resp.Pagos, resultado.Pago)
	}
	return resp, nil
}

// ── PlanillaMensual ──────────────────────────────────────────────────────────
// Derived month sheet: week → weekday → day record, with per-week subtotals
// and grand totals. Monetary aggregates accumulate unrounded and are rounded
// once at the output boundary.

func (s *pagoPersonalService) PlanillaMensual(ctx context.Context, anio, mes int) (*dto.PlanillaMensualResponse, error) {
	if mes < 1 || mes > 12 {
		return nil, apierror.Validacionf("mes inválido: %d", mes)
	}

	cacheKey := claveplanilla(anio, mes)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached dto.PlanillaMensualResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	pagos, err := s.repo.ListByMes(ctx, anio, mes)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanillaMensualResponse{
		Anio:    anio,
		Mes:     mes,
		Semanas: make(map[int]*dto.SemanaPlanilla),
	}

	total := decimal.Zero
	var totalDist model.Distribucion
	subtotales := make(map[int]decimal.Decimal)
	subtotalesDist := make(map[int]model.Distribucion)

	for _, p := range pagos {
		semana, ok := resp.Semanas[p.SemanaDelMes]
		if !ok {
			semana = &dto.SemanaPlanilla{Dias: make(map[string]dto.DiaPlanilla)}
			resp.Semanas[p.SemanaDelMes] = semana
		}
		fechaClave := p.Fecha.Format("2006-01-02")
		semana.Dias[fechaClave] = dto.DiaPlanilla{
			Fecha:        fechaClave,
			DiaSemana:    p.DiaSemana,
			Monto:        p.Monto.Round(2),
			Distribucion: distToResponse(p.Distribucion),
			Estado:       p.Estado,
			Notas:        p.Notas,
		}
		subtotales[p.SemanaDelMes] = subtotales[p.SemanaDelMes].Add(p.Monto)
		subtotalesDist[p.SemanaDelMes] = sumarDistribucion(subtotalesDist[p.SemanaDelMes], p.Distribucion)
		total = total.Add(p.Monto)
		totalDist = sumarDistribucion(totalDist, p.Distribucion)
	}

	for num, semana := range resp.Semanas {
		semana.Subtotal = subtotales[num].Round(2)
		semana.SubtotalDistribucion = distToResponse(redondearDistribucion(subtotalesDist[num]))
	}
	resp.TotalGeneral = total.Round(2)
	resp.TotalDistribucion = distToResponse(redondearDistribucion(totalDist))

	if s.rdb != nil {
		if raw, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, raw, planillaCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", cacheKey).Msg("planilla: cache set falló")
			}
		}
	}
	return resp, nil
}

// ── Estadisticas ─────────────────────────────────────────────────────────────

func (s *pagoPersonalService) Estadisticas(ctx context.Context, filtro dto.PagoPersonalFiltro) (*dto.EstadisticasPagosResponse, error) {
	pagos, err := s.repo.List(ctx, filtro)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var totalDist model.Distribucion
	porEstado := make(map[string]dto.ResumenEstado)

	for _, p := range pagos {
		total = total.Add(p.Monto)
		totalDist = sumarDistribucion(totalDist, p.Distribucion)
		resumen := porEstado[p.Estado]
		resumen.Cantidad++
		resumen.Monto = resumen.Monto.Add(p.Monto).Round(2)
		porEstado[p.Estado] = resumen
	}

	return &dto.EstadisticasPagosResponse{
		Cantidad:          int64(len(pagos)),
		MontoTotal:        total.Round(2),
		TotalDistribucion: distToResponse(redondearDistribucion(totalDist)),
		PorEstado:         porEstado,
	}, nil
}

// ── Actualizar / Eliminar ────────────────────────────────────────────────────
// Administrative corrections: period fields re-derive when the date moves,
// the distribution re-runs when monto or distribución changed, and delete is
// hard — these are bookkeeping fixes, not business records.

func (s *pagoPersonalService) Actualizar(ctx context.Context, id uuid.UUID, req dto.PagoPersonalRequest, usuarioID uuid.UUID) (*dto.PagoPersonalResponse, error) {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NoEncontradof("pago %s no encontrado", id)
		}
		return nil, err
	}

	fecha, periodo, err := s.resolverEntrada(&req)
	if err != nil {
		return nil, err
	}

	viejoAnio, viejoMes := pago.Anio, pago.Mes
	pago.Anio = periodo.Anio
	pago.Mes = periodo.Mes
	pago.SemanaDelMes = periodo.SemanaDelMes
	pago.DiaSemana = periodo.DiaSemana
	pago.Fecha = fecha
	pago.Monto = req.Monto
	if req.Notas != nil {
		pago.Notas = req.Notas
	}
	if req.Estado != nil {
		pago.Estado = *req.Estado
	}

	dist := distribucionDeRequest(req.Distribucion)
	if dist == nil {
		dist = &pago.Distribucion
	}
	pago.Distribucion = CalcularDistribucion(req.Monto, dist)
	pago.ModificadoPorID = &usuarioID

	if err := s.repo.Update(ctx, pago); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflictof("ya existe un pago para el %s", req.Fecha)
		}
		return nil, err
	}

	s.invalidarPlanilla(ctx, viejoAnio, viejoMes)
	s.invalidarPlanilla(ctx, pago.Anio, pago.Mes)
	return pagoToResponse(pago), nil
}

func (s *pagoPersonalService) Eliminar(ctx context.Context, id uuid.UUID) error {
	pago, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NoEncontradof("pago %s no encontrado", id)
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidarPlanilla(ctx, pago.Anio, pago.Mes)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func claveplanilla(anio, mes int) string {
	return fmt.Sprintf("planilla:%04d-%02d", anio, mes)
}

func (s *pagoPersonalService) invalidarPlanilla(ctx context.Context, anio, mes int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, claveplanilla(anio, mes)).Err(); err != nil {
		log.Warn().Err(err).Int("anio", anio).Int("mes", mes).Msg("planilla: invalidación de cache falló")
	}
}

func distribucionDeRequest(req *dto.DistribucionRequest) *model.Distribucion {
	if req == nil {
		return nil
	}
	return &model.Distribucion{
		Consultorio: req.Consultorio,
		Insumos:     req.Insumos,
		Profesional: req.Profesional,
	}
}

func sumarDistribucion(a, b model.Distribucion) model.Distribucion {
	return model.Distribucion{
		Consultorio: a.Consultorio.Add(b.Consultorio),
		Insumos:     a.Insumos.Add(b.Insumos),
		Profesional: a.Profesional.Add(b.Profesional),
	}
}

func redondearDistribucion(d model.Distribucion) model.Distribucion {
	return model.Distribucion{
		Consultorio: d.Consultorio.Round(2),
		Insumos:     d.Insumos.Round(2),
		Profesional: d.Profesional.Round(2),
	}
}

func distToResponse(d model.Distribucion) dto.DistribucionResponse {
	return dto.DistribucionResponse{
		Consultorio: d.Consultorio,
		Insumos:     d.Insumos,
		Profesional: d.Profesional,
	}
}

func pagoToResponse(p *model.PagoPersonal) *dto.PagoPersonalResponse {
	var modificadoPor *string
	if p.ModificadoPorID != nil {
		s := p.ModificadoPorID.String()
		modificadoPor = &s
	}
	return &dto.PagoPersonalResponse{
		ID:            p.ID.String(),
		Anio:          p.Anio,
		Mes:           p.Mes,
		SemanaDelMes:  p.SemanaDelMes,
		DiaSemana:     p.DiaSemana,
		Fecha:         p.Fecha.Format("2006-01-02"),
		Monto:         p.Monto.Round(2),
		Distribucion:  distToResponse(p.Distribucion),
		Notas:         p.Notas,
		Estado:        p.Estado,
		CreadoPor:     p.CreadoPorID.String(),
		ModificadoPor: modificadoPor,
	}
}
