package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadisticasPaciente are derived counters maintained by the statistics
// projector. They are never authoritative: the projector can always rebuild
// them from the patient's sesiones.
type EstadisticasPaciente struct {
	TotalSesiones  int             `gorm:"not null;default:0"`
	TotalPagado    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoPendiente decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	UltimaSesion   *time.Time
}

// Paciente is a clinic patient record.
type Paciente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Apellido  string    `gorm:"not null"`
	Documento *string   `gorm:"uniqueIndex"`
	Telefono  *string
	Email     *string

	FechaNacimiento *time.Time `gorm:"type:date"`
	Diagnostico     *string

	// SesionesPlan is the planned length of the treatment (the M in
	// "Sesión N de M" on the day sheet); 0 = no plan defined.
	SesionesPlan int `gorm:"not null;default:0"`

	Estadisticas EstadisticasPaciente `gorm:"embedded;embeddedPrefix:est_"`

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Paciente) TableName() string { return "pacientes" }
