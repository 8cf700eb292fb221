package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Distribucion is the fixed 30/20/50 split of a day's income.
// Profesional always absorbs the rounding remainder so the three
// parts sum exactly to the day's monto.
type Distribucion struct {
	Consultorio decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"consultorio"`
	Insumos     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"insumos"`
	Profesional decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"profesional"`
}

// Suma returns consultorio + insumos + profesional.
func (d Distribucion) Suma() decimal.Decimal {
	return d.Consultorio.Add(d.Insumos).Add(d.Profesional)
}

// PagoPersonal is one calendar day's total clinic income and its split.
// The natural key (anio, mes, semana_del_mes, fecha) has a unique index:
// upserts for the same day converge onto a single row.
// Estado: "pendiente" | "procesando" | "pagado" | "cancelado"
type PagoPersonal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Anio         int       `gorm:"not null;uniqueIndex:uq_pagos_personal_periodo"`
	Mes          int       `gorm:"not null;uniqueIndex:uq_pagos_personal_periodo"`
	SemanaDelMes int       `gorm:"not null;uniqueIndex:uq_pagos_personal_periodo"`
	// DiaSemana is one of the seven lowercase Spanish day names, Sunday-first.
	DiaSemana    string          `gorm:"type:varchar(10);not null"`
	Fecha        time.Time       `gorm:"type:date;not null;uniqueIndex:uq_pagos_personal_periodo"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Distribucion Distribucion    `gorm:"embedded;embeddedPrefix:dist_"`
	Notas        *string         `gorm:"type:varchar(500)"`
	Estado       string          `gorm:"type:varchar(20);not null;default:'pendiente'"`

	CreadoPorID     uuid.UUID  `gorm:"type:uuid;not null"`
	ModificadoPorID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PagoPersonal) TableName() string { return "pagos_personal" }
