package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type PagoSesionRequest struct {
	Monto  decimal.Decimal `json:"monto"  validate:"min=0"`
	Metodo *string         `json:"metodo" validate:"omitempty,oneof=efectivo debito credito transferencia"`
	Pagado *bool           `json:"pagado"`
}

type RegistrarSesionRequest struct {
	PacienteID  string  `json:"paciente_id" validate:"required,uuid"`
	Fecha       string  `json:"fecha"       validate:"required"`
	TipoSesion  string  `json:"tipo_sesion" validate:"omitempty,oneof=tratamiento evaluacion seguimiento"`
	HoraEntrada *string `json:"hora_entrada" validate:"omitempty,len=5"`
	HoraSalida  *string `json:"hora_salida"  validate:"omitempty,len=5"`

	// NumeroSesionPaciente override — assigned from the patient's history
	// when omitted.
	NumeroSesionPaciente *int `json:"numero_sesion_paciente" validate:"omitempty,min=1"`

	Tratamiento *string            `json:"tratamiento"`
	Evolucion   *string            `json:"evolucion"`
	Pago        *PagoSesionRequest `json:"pago"`
}

type ActualizarSesionRequest struct {
	TipoSesion  *string `json:"tipo_sesion" validate:"omitempty,oneof=tratamiento evaluacion seguimiento"`
	HoraEntrada *string `json:"hora_entrada" validate:"omitempty,len=5"`
	HoraSalida  *string `json:"hora_salida"  validate:"omitempty,len=5"`
	Tratamiento *string `json:"tratamiento"`
	Evolucion   *string `json:"evolucion"`
	Estado      *string `json:"estado" validate:"omitempty,oneof=programada completada cancelada no_asistio reprogramada"`
}

type RegistrarPagoSesionRequest struct {
	Monto  *decimal.Decimal `json:"monto"  validate:"omitempty,min=0"`
	Metodo *string          `json:"metodo" validate:"omitempty,oneof=efectivo debito credito transferencia"`
	Recibo *string          `json:"recibo"`
}

type CancelarSesionRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
	// NuevaFecha, when present, spawns the replacement sesión.
	NuevaFecha *string `json:"nueva_fecha"`
}

type PagosPendientesFiltro struct {
	PacienteID *string `form:"paciente_id"`
	Limite     int     `form:"limite"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoSesionResponse struct {
	Monto     decimal.Decimal `json:"monto"`
	Metodo    *string         `json:"metodo,omitempty"`
	Pagado    bool            `json:"pagado"`
	FechaPago *string         `json:"fecha_pago,omitempty"`
	Recibo    *string         `json:"recibo,omitempty"`
}

type ReprogramacionResponse struct {
	Fecha    string `json:"fecha"`
	SesionID string `json:"sesion_id"`
}

type SesionResponse struct {
	ID                   string             `json:"id"`
	PacienteID           string             `json:"paciente_id"`
	Paciente             string             `json:"paciente,omitempty"`
	Fecha                string             `json:"fecha"`
	TipoSesion           string             `json:"tipo_sesion"`
	HoraEntrada          *string            `json:"hora_entrada,omitempty"`
	HoraSalida           *string            `json:"hora_salida,omitempty"`
	DuracionMinutos      *int               `json:"duracion_minutos,omitempty"`
	NumeroOrdenDia       int                `json:"numero_orden_dia"`
	NumeroSesionPaciente int                `json:"numero_sesion_paciente"`
	// Etiqueta is the human label for the day sheet: "Sesión N de M" when the
	// patient has a treatment plan, "Sesión N" otherwise.
	Etiqueta          string                  `json:"etiqueta,omitempty"`
	Tratamiento       *string                 `json:"tratamiento,omitempty"`
	Evolucion         *string                 `json:"evolucion,omitempty"`
	Pago              PagoSesionResponse      `json:"pago"`
	Estado            string                  `json:"estado"`
	MotivoCancelacion *string                 `json:"motivo_cancelacion,omitempty"`
	ReprogramadaA     *ReprogramacionResponse `json:"reprogramada_a,omitempty"`
}

type CancelarSesionResponse struct {
	Sesion       SesionResponse  `json:"sesion"`
	Reprogramada *SesionResponse `json:"reprogramada,omitempty"`
}

type TotalesPlanillaDiaria struct {
	Cobrado    decimal.Decimal `json:"cobrado"`
	Pendiente  decimal.Decimal `json:"pendiente"`
	Canceladas int             `json:"canceladas"`
	NoAsistio  int             `json:"no_asistio"`
}

type PlanillaDiariaResponse struct {
	Fecha    string                `json:"fecha"`
	Sesiones []SesionResponse      `json:"sesiones"`
	Totales  TotalesPlanillaDiaria `json:"totales"`
}

type PagosPendientesResponse struct {
	Sesiones       []SesionResponse `json:"sesiones"`
	TotalPendiente decimal.Decimal  `json:"total_pendiente"`
	Cantidad       int              `json:"cantidad"`
	// Breakdowns cover the returned page only, not the full matching set.
	PorEstado map[string]ResumenEstado `json:"por_estado"`
	PorMetodo map[string]ResumenEstado `json:"por_metodo"`
}
