package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearPacienteRequest struct {
	Nombre          string  `json:"nombre"   validate:"required,min=2"`
	Apellido        string  `json:"apellido" validate:"required,min=2"`
	Documento       *string `json:"documento"`
	Telefono        *string `json:"telefono"`
	Email           *string `json:"email" validate:"omitempty,email"`
	FechaNacimiento *string `json:"fecha_nacimiento"`
	Diagnostico     *string `json:"diagnostico"`
	SesionesPlan    int     `json:"sesiones_plan" validate:"min=0"`
}

type PacienteFiltro struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type EstadisticasPacienteResponse struct {
	TotalSesiones  int             `json:"total_sesiones"`
	TotalPagado    decimal.Decimal `json:"total_pagado"`
	SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
	UltimaSesion   *string         `json:"ultima_sesion,omitempty"`
}

type PacienteResponse struct {
	ID           string                       `json:"id"`
	Nombre       string                       `json:"nombre"`
	Apellido     string                       `json:"apellido"`
	Documento    *string                      `json:"documento,omitempty"`
	Telefono     *string                      `json:"telefono,omitempty"`
	Email        *string                      `json:"email,omitempty"`
	Diagnostico  *string                      `json:"diagnostico,omitempty"`
	SesionesPlan int                          `json:"sesiones_plan"`
	Estadisticas EstadisticasPacienteResponse `json:"estadisticas"`
	Activo       bool                         `json:"activo"`
}

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

type PacienteListResponse struct {
	Items      []PacienteResponse `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

type HistorialPacienteResponse struct {
	Paciente PacienteResponse `json:"paciente"`
	Sesiones []SesionResponse `json:"sesiones"`
}
