package service_test

import (
	"context"
	"sort"
	"time"

	"fisiogest/internal/dto"
	"fisiogest/internal/model"
	"fisiogest/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubPagoRepo is an in-memory PagoPersonalRepository. It enforces the
// natural-key unique index like the real table and can simulate losing the
// read-then-insert race via duplicarCreate / ocultarFind.
type stubPagoRepo struct {
	pagos map[uuid.UUID]*model.PagoPersonal
	// duplicarCreate makes the next N Create calls fail with ErrDuplicatedKey.
	duplicarCreate int
	// ocultarFind makes the next N FindByClaveNatural calls miss even when
	// the row exists, mimicking a concurrent insert between read and write.
	ocultarFind int
}

func newStubPagoRepo() *stubPagoRepo {
	return &stubPagoRepo{pagos: make(map[uuid.UUID]*model.PagoPersonal)}
}

func (r *stubPagoRepo) buscarClave(anio, mes, semana int, fecha time.Time) *model.PagoPersonal {
	for _, p := range r.pagos {
		if p.Anio == anio && p.Mes == mes && p.SemanaDelMes == semana && p.Fecha.Equal(fecha) {
			return p
		}
	}
	return nil
}

func (r *stubPagoRepo) Create(_ context.Context, p *model.PagoPersonal) error {
	if r.duplicarCreate > 0 {
		r.duplicarCreate--
		return gorm.ErrDuplicatedKey
	}
	if r.buscarClave(p.Anio, p.Mes, p.SemanaDelMes, p.Fecha) != nil {
		return gorm.ErrDuplicatedKey
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pagos[p.ID] = p
	return nil
}

func (r *stubPagoRepo) Update(_ context.Context, p *model.PagoPersonal) error {
	if _, ok := r.pagos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.pagos[p.ID] = p
	return nil
}

func (r *stubPagoRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.pagos, id)
	return nil
}

func (r *stubPagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PagoPersonal, error) {
	p, ok := r.pagos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPagoRepo) FindByClaveNatural(_ context.Context, anio, mes, semana int, fecha time.Time) (*model.PagoPersonal, error) {
	if r.ocultarFind > 0 {
		r.ocultarFind--
		return nil, gorm.ErrRecordNotFound
	}
	if p := r.buscarClave(anio, mes, semana, fecha); p != nil {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPagoRepo) ListByMes(_ context.Context, anio, mes int) ([]model.PagoPersonal, error) {
	var out []model.PagoPersonal
	for _, p := range r.pagos {
		if p.Anio == anio && p.Mes == mes {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SemanaDelMes != out[j].SemanaDelMes {
			return out[i].SemanaDelMes < out[j].SemanaDelMes
		}
		return out[i].Fecha.Before(out[j].Fecha)
	})
	return out, nil
}

func (r *stubPagoRepo) List(_ context.Context, filtro dto.PagoPersonalFiltro) ([]model.PagoPersonal, error) {
	var out []model.PagoPersonal
	for _, p := range r.pagos {
		if filtro.Anio != nil && p.Anio != *filtro.Anio {
			continue
		}
		if filtro.Mes != nil && p.Mes != *filtro.Mes {
			continue
		}
		if filtro.Estado != nil && *filtro.Estado != "" && p.Estado != *filtro.Estado {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

var _ repository.PagoPersonalRepository = (*stubPagoRepo)(nil)

// stubSesionRepo is an in-memory SesionRepository enforcing the per-day order
// unique index.
type stubSesionRepo struct {
	sesiones       map[uuid.UUID]*model.Sesion
	duplicarCreate int
}

func newStubSesionRepo() *stubSesionRepo {
	return &stubSesionRepo{sesiones: make(map[uuid.UUID]*model.Sesion)}
}

func (r *stubSesionRepo) Create(_ context.Context, s *model.Sesion) error {
	if r.duplicarCreate > 0 {
		r.duplicarCreate--
		return gorm.ErrDuplicatedKey
	}
	for _, existente := range r.sesiones {
		if existente.FechaDia.Equal(s.FechaDia) && existente.NumeroOrdenDia == s.NumeroOrdenDia {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubSesionRepo) Update(_ context.Context, s *model.Sesion) error {
	if _, ok := r.sesiones[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.sesiones[s.ID] = s
	return nil
}

func (r *stubSesionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sesion, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSesionRepo) MaxNumeroOrdenDia(_ context.Context, dia time.Time) (int, error) {
	max := 0
	for _, s := range r.sesiones {
		if s.FechaDia.Equal(dia) && s.NumeroOrdenDia > max {
			max = s.NumeroOrdenDia
		}
	}
	return max, nil
}

func (r *stubSesionRepo) CountByPaciente(_ context.Context, pacienteID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range r.sesiones {
		if s.PacienteID == pacienteID {
			n++
		}
	}
	return n, nil
}

func (r *stubSesionRepo) ListByDia(_ context.Context, dia time.Time) ([]model.Sesion, error) {
	var out []model.Sesion
	for _, s := range r.sesiones {
		if s.FechaDia.Equal(dia) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroOrdenDia < out[j].NumeroOrdenDia })
	return out, nil
}

func (r *stubSesionRepo) ListByPaciente(_ context.Context, pacienteID uuid.UUID) ([]model.Sesion, error) {
	var out []model.Sesion
	for _, s := range r.sesiones {
		if s.PacienteID == pacienteID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	return out, nil
}

func (r *stubSesionRepo) ListPendientes(_ context.Context, pacienteID *uuid.UUID, limite int) ([]model.Sesion, error) {
	var out []model.Sesion
	for _, s := range r.sesiones {
		if s.Pago.Pagado {
			continue
		}
		if pacienteID != nil && s.PacienteID != *pacienteID {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.After(out[j].Fecha) })
	if len(out) > limite {
		out = out[:limite]
	}
	return out, nil
}

func (r *stubSesionRepo) ResumenPaciente(_ context.Context, pacienteID uuid.UUID) (*repository.ResumenPaciente, error) {
	resumen := &repository.ResumenPaciente{
		TotalPagado:    decimal.Zero,
		SaldoPendiente: decimal.Zero,
	}
	for _, s := range r.sesiones {
		if s.PacienteID != pacienteID {
			continue
		}
		resumen.TotalSesiones++
		if s.Pago.Pagado {
			resumen.TotalPagado = resumen.TotalPagado.Add(s.Pago.Monto)
		} else {
			resumen.SaldoPendiente = resumen.SaldoPendiente.Add(s.Pago.Monto)
		}
		if resumen.UltimaSesion == nil || s.Fecha.After(*resumen.UltimaSesion) {
			f := s.Fecha
			resumen.UltimaSesion = &f
		}
	}
	return resumen, nil
}

var _ repository.SesionRepository = (*stubSesionRepo)(nil)

// stubPacienteRepo is an in-memory PacienteRepository.
type stubPacienteRepo struct {
	pacientes map[uuid.UUID]*model.Paciente
}

func newStubPacienteRepo() *stubPacienteRepo {
	return &stubPacienteRepo{pacientes: make(map[uuid.UUID]*model.Paciente)}
}

func (r *stubPacienteRepo) Create(_ context.Context, p *model.Paciente) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Documento != nil {
		for _, existente := range r.pacientes {
			if existente.Documento != nil && *existente.Documento == *p.Documento {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.pacientes[p.ID] = p
	return nil
}

func (r *stubPacienteRepo) Update(_ context.Context, p *model.Paciente) error {
	if _, ok := r.pacientes[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.pacientes[p.ID] = p
	return nil
}

func (r *stubPacienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Paciente, error) {
	p, ok := r.pacientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPacienteRepo) UpdateEstadisticas(_ context.Context, id uuid.UUID, est model.EstadisticasPaciente) error {
	p, ok := r.pacientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Estadisticas = est
	return nil
}

func (r *stubPacienteRepo) List(_ context.Context, filtro dto.PacienteFiltro) ([]model.Paciente, int64, error) {
	var activos []model.Paciente
	for _, p := range r.pacientes {
		if p.Activo {
			activos = append(activos, *p)
		}
	}
	sort.Slice(activos, func(i, j int) bool { return activos[i].Apellido < activos[j].Apellido })

	total := int64(len(activos))
	desde := (filtro.Page - 1) * filtro.Limit
	if desde > len(activos) {
		desde = len(activos)
	}
	hasta := desde + filtro.Limit
	if hasta > len(activos) {
		hasta = len(activos)
	}
	return activos[desde:hasta], total, nil
}

var _ repository.PacienteRepository = (*stubPacienteRepo)(nil)
