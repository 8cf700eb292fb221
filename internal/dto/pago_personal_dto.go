package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DistribucionRequest struct {
	Consultorio decimal.Decimal `json:"consultorio" validate:"min=0"`
	Insumos     decimal.Decimal `json:"insumos"     validate:"min=0"`
	Profesional decimal.Decimal `json:"profesional" validate:"min=0"`
}

type PagoPersonalRequest struct {
	Fecha string          `json:"fecha" validate:"required"`
	Monto decimal.Decimal `json:"monto" validate:"min=0"`

	// Period overrides — resolved from Fecha when omitted.
	Anio         *int    `json:"anio"           validate:"omitempty,min=2000"`
	Mes          *int    `json:"mes"            validate:"omitempty,min=1,max=12"`
	SemanaDelMes *int    `json:"semana_del_mes" validate:"omitempty,min=1,max=5"`
	DiaSemana    *string `json:"dia_semana"`

	Distribucion *DistribucionRequest `json:"distribucion"`
	Notas        *string              `json:"notas"  validate:"omitempty,max=500"`
	Estado       *string              `json:"estado" validate:"omitempty,oneof=pendiente procesando pagado cancelado"`
}

type UpsertMasivoRequest struct {
	Pagos []PagoPersonalRequest `json:"pagos" validate:"required,min=1,dive"`
}

type PagoPersonalFiltro struct {
	Anio   *int    `form:"anio"`
	Mes    *int    `form:"mes"`
	Estado *string `form:"estado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DistribucionResponse struct {
	Consultorio decimal.Decimal `json:"consultorio"`
	Insumos     decimal.Decimal `json:"insumos"`
	Profesional decimal.Decimal `json:"profesional"`
}

type PagoPersonalResponse struct {
	ID           string               `json:"id"`
	Anio         int                  `json:"anio"`
	Mes          int                  `json:"mes"`
	SemanaDelMes int                  `json:"semana_del_mes"`
	DiaSemana    string               `json:"dia_semana"`
	Fecha        string               `json:"fecha"`
	Monto        decimal.Decimal      `json:"monto"`
	Distribucion DistribucionResponse `json:"distribucion"`
	Notas        *string              `json:"notas,omitempty"`
	Estado       string               `json:"estado"`
	CreadoPor    string               `json:"creado_por"`
	ModificadoPor *string             `json:"modificado_por,omitempty"`
}

type UpsertPagoResponse struct {
	Pago   PagoPersonalResponse `json:"pago"`
	Creado bool                 `json:"creado"`
}

// ErrorFila carries the row-level outcome of a failed bulk-import entry.
// Bulk imports are not transactional: rows before a failure stay committed.
type ErrorFila struct {
	Fila    int    `json:"fila"`
	Fecha   string `json:"fecha"`
	Detalle string `json:"detalle"`
}

type UpsertMasivoResponse struct {
	Creados      int                    `json:"creados"`
	Actualizados int                    `json:"actualizados"`
	Fallidos     int                    `json:"fallidos"`
	Errores      []ErrorFila            `json:"errores,omitempty"`
	Pagos        []PagoPersonalResponse `json:"pagos"`
}

// ─── Planilla mensual ────────────────────────────────────────────────────────

type DiaPlanilla struct {
	Fecha        string               `json:"fecha"`
	DiaSemana    string               `json:"dia_semana"`
	Monto        decimal.Decimal      `json:"monto"`
	Distribucion DistribucionResponse `json:"distribucion"`
	Estado       string               `json:"estado"`
	Notas        *string              `json:"notas,omitempty"`
}

type SemanaPlanilla struct {
	// Dias is keyed by fecha (YYYY-MM-DD): a manual semana_del_mes override
	// can put two rows with the same weekday into one week.
	Dias                 map[string]DiaPlanilla `json:"dias"`
	Subtotal             decimal.Decimal        `json:"subtotal"`
	SubtotalDistribucion DistribucionResponse   `json:"subtotal_distribucion"`
}

type PlanillaMensualResponse struct {
	Anio              int                     `json:"anio"`
	Mes               int                     `json:"mes"`
	Semanas           map[int]*SemanaPlanilla `json:"semanas"`
	TotalGeneral      decimal.Decimal         `json:"total_general"`
	TotalDistribucion DistribucionResponse    `json:"total_distribucion"`
}

// ─── Estadísticas ────────────────────────────────────────────────────────────

type ResumenEstado struct {
	Cantidad int             `json:"cantidad"`
	Monto    decimal.Decimal `json:"monto"`
}

type EstadisticasPagosResponse struct {
	Cantidad          int64                    `json:"cantidad"`
	MontoTotal        decimal.Decimal          `json:"monto_total"`
	TotalDistribucion DistribucionResponse     `json:"total_distribucion"`
	PorEstado         map[string]ResumenEstado `json:"por_estado"`
}
