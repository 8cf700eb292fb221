package model

import (
	"time"

	"github.com/google/uuid"
)

// Auditoria is an append-only audit event. Events are written asynchronously
// by the worker pool; a lost event never fails the operation that emitted it.
type Auditoria struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID *uuid.UUID `gorm:"type:uuid;index"`
	// Accion: "<entidad>.<operacion>", e.g. "sesion.registrar"
	Accion    string     `gorm:"type:varchar(50);not null"`
	Entidad   string     `gorm:"type:varchar(30);not null"`
	EntidadID *uuid.UUID `gorm:"type:uuid"`
	Detalle   string
	CreatedAt time.Time
}

func (Auditoria) TableName() string { return "auditorias" }
