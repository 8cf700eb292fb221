package service_test

import (
	"testing"

	"fisiogest/internal/model"
	"fisiogest/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalcularDistribucionReparte30_20_50(t *testing.T) {
	dist := service.CalcularDistribucion(d("110000"), nil)

	assert.True(t, d("33000").Equal(dist.Consultorio), "consultorio: %s", dist.Consultorio)
	assert.True(t, d("22000").Equal(dist.Insumos), "insumos: %s", dist.Insumos)
	assert.True(t, d("55000").Equal(dist.Profesional), "profesional: %s", dist.Profesional)
}

func TestCalcularDistribucionSumaExacta(t *testing.T) {
	// Profesional absorbs the rounding remainder: the three parts must sum
	// exactly to the monto for any amount, including awkward centavo cases.
	montos := []string{"0.01", "0.10", "33.33", "99.99", "1000.01", "12345.67", "99999.99"}

	for _, m := range montos {
		monto := d(m)
		dist := service.CalcularDistribucion(monto, nil)
		assert.True(t, monto.Equal(dist.Suma()),
			"monto %s: suma %s", monto, dist.Suma())
	}
}

func TestCalcularDistribucionRespetaManual(t *testing.T) {
	manual := &model.Distribucion{
		Consultorio: d("40000"),
		Insumos:     d("10000"),
		Profesional: d("60000"),
	}

	dist := service.CalcularDistribucion(d("110000"), manual)

	require.True(t, d("40000").Equal(dist.Consultorio))
	require.True(t, d("10000").Equal(dist.Insumos))
	require.True(t, d("60000").Equal(dist.Profesional))
	assert.True(t, d("110000").Equal(dist.Suma()))
}

func TestCalcularDistribucionRecalculaDesviada(t *testing.T) {
	// Manual split drifted more than half a unit from the monto: recompute.
	manual := &model.Distribucion{
		Consultorio: d("30000"),
		Insumos:     d("20000"),
		Profesional: d("50000"),
	}

	dist := service.CalcularDistribucion(d("110000"), manual)

	assert.True(t, d("33000").Equal(dist.Consultorio))
	assert.True(t, d("22000").Equal(dist.Insumos))
	assert.True(t, d("55000").Equal(dist.Profesional))
}

func TestCalcularDistribucionManualEnCero(t *testing.T) {
	// An all-zero manual distribution never passes through.
	manual := &model.Distribucion{}

	dist := service.CalcularDistribucion(d("1000"), manual)

	assert.True(t, d("1000").Equal(dist.Suma()))
	assert.True(t, d("300").Equal(dist.Consultorio))
}

func TestCalcularDistribucionMontoCero(t *testing.T) {
	dist := service.CalcularDistribucion(decimal.Zero, nil)

	assert.True(t, dist.Consultorio.IsZero())
	assert.True(t, dist.Insumos.IsZero())
	assert.True(t, dist.Profesional.IsZero())
}
