package dto

import (
	"time"

	"github.com/google/uuid"
)

type AuditoriaResponse struct {
	ID        uuid.UUID  `json:"id"`
	UsuarioID *uuid.UUID `json:"usuario_id,omitempty"`
	Accion    string     `json:"accion"`
	Entidad   string     `json:"entidad"`
	EntidadID *uuid.UUID `json:"entidad_id,omitempty"`
	Detalle   string     `json:"detalle,omitempty"`
	Fecha     time.Time  `json:"fecha"`
}
