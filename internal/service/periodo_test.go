package service_test

import (
	"testing"
	"time"

	"fisiogest/internal/apierror"
	"fisiogest/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPeriodo(t *testing.T) {
	casos := []struct {
		fecha     string
		anio      int
		mes       int
		semana    int
		diaSemana string
	}{
		{"2025-07-01", 2025, 7, 1, "martes"},
		{"2025-07-06", 2025, 7, 1, "domingo"},
		{"2025-07-07", 2025, 7, 1, "lunes"},
		{"2025-07-08", 2025, 7, 2, "martes"},
		{"2025-07-15", 2025, 7, 3, "martes"},
		{"2025-07-29", 2025, 7, 5, "martes"},
		{"2025-07-31", 2025, 7, 5, "jueves"},
		{"2024-02-29", 2024, 2, 5, "jueves"},
		{"2025-12-01", 2025, 12, 1, "lunes"},
	}

	for _, c := range casos {
		fecha, err := service.ParseFecha(c.fecha)
		require.NoError(t, err, c.fecha)

		p := service.ResolverPeriodo(fecha)
		assert.Equal(t, c.anio, p.Anio, c.fecha)
		assert.Equal(t, c.mes, p.Mes, c.fecha)
		assert.Equal(t, c.semana, p.SemanaDelMes, c.fecha)
		assert.Equal(t, c.diaSemana, p.DiaSemana, c.fecha)
	}
}

func TestParseFechaInvalida(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "01/07/2025", "2025-07-32", "ayer"} {
		_, err := service.ParseFecha(s)
		require.Error(t, err, s)
		assert.True(t, apierror.IsValidacion(err), s)
	}
}

func TestParseFechaEsUTC(t *testing.T) {
	fecha, err := service.ParseFecha("2025-07-01")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, fecha.Location())
	assert.Equal(t, 0, fecha.Hour())
	assert.Equal(t, 1, fecha.Day())
}

func TestDiaUTC(t *testing.T) {
	// 23:30 in UTC-3 is already the next calendar day in UTC; the day key
	// must follow UTC, not the wall clock.
	zona := time.FixedZone("ART", -3*60*60)
	local := time.Date(2025, 7, 1, 23, 30, 0, 0, zona)

	dia := service.DiaUTC(local)

	assert.Equal(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), dia)
}

func TestEsDiaSemanaValido(t *testing.T) {
	assert.True(t, service.EsDiaSemanaValido("martes"))
	assert.True(t, service.EsDiaSemanaValido("domingo"))
	assert.False(t, service.EsDiaSemanaValido("Martes"))
	assert.False(t, service.EsDiaSemanaValido("miércoles"))
	assert.False(t, service.EsDiaSemanaValido(""))
}
