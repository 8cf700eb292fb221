package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PagoSesion is the payment sub-record embedded in every Sesion.
// Metodo: "efectivo" | "debito" | "credito" | "transferencia"
type PagoSesion struct {
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Metodo    *string         `gorm:"type:varchar(20)"`
	Pagado    bool            `gorm:"not null;default:false"`
	FechaPago *time.Time
	Recibo    *string
}

// Sesion is one clinical visit for a patient.
//
// Estado: "programada" | "completada" | "cancelada" | "no_asistio" | "reprogramada".
// programada may move to any of the other four; cancelada may additionally gain
// a ReprogramadaA link while spawning the replacement sesión. Sessions are never
// physically deleted.
type Sesion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PacienteID uuid.UUID `gorm:"type:uuid;not null;index"`
	Paciente   *Paciente `gorm:"foreignKey:PacienteID"`

	Fecha time.Time `gorm:"not null;index"`
	// FechaDia is Fecha truncated to its UTC calendar day. It backs the
	// per-day order uniqueness and the day-sheet query.
	FechaDia   time.Time `gorm:"type:date;not null;uniqueIndex:uq_sesiones_orden_dia"`
	TipoSesion string    `gorm:"type:varchar(20);not null;default:'tratamiento'"`

	HoraEntrada     *string `gorm:"type:varchar(5)"` // HH:MM
	HoraSalida      *string `gorm:"type:varchar(5)"`
	DuracionMinutos *int

	// NumeroOrdenDia is 1-based and strictly increasing within a calendar day.
	NumeroOrdenDia int `gorm:"not null;uniqueIndex:uq_sesiones_orden_dia"`
	// NumeroSesionPaciente is the Nth session in the patient's history. A
	// reprogramación keeps the original number: it is the same treatment slot.
	NumeroSesionPaciente int `gorm:"not null"`

	Tratamiento *string
	Evolucion   *string

	Pago PagoSesion `gorm:"embedded;embeddedPrefix:pago_"`

	Estado            string  `gorm:"type:varchar(20);not null;default:'programada'"`
	MotivoCancelacion *string `gorm:"type:varchar(500)"`

	// Forward-only reschedule link, set when a cancelación spawns a new sesión.
	ReprogramadaFecha    *time.Time `gorm:"type:date"`
	ReprogramadaSesionID *uuid.UUID `gorm:"type:uuid"`

	ProfesionalID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sesion) TableName() string { return "sesiones" }
