// Package audit defines the fire-and-forget audit sink consumed by the
// services. The production implementation enqueues events onto the worker
// queue; a failed Record never propagates to the operation that emitted it.
package audit

import (
	"context"

	"github.com/google/uuid"
)

// Event is one audit record.
type Event struct {
	UsuarioID *uuid.UUID `json:"usuario_id,omitempty"`
	Accion    string     `json:"accion"`
	Entidad   string     `json:"entidad"`
	EntidadID *uuid.UUID `json:"entidad_id,omitempty"`
	Detalle   string     `json:"detalle,omitempty"`
}

// Sink accepts audit events best-effort. Implementations must never block
// the caller on downstream failures.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// NopSink discards every event. Used in unit tests.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}
