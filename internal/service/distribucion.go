package service

import (
	"fisiogest/internal/model"

	"github.com/shopspring/decimal"
)

// Fixed split ratios for a day's income: 30% consultorio, 20% insumos,
// 50% profesional.
var (
	ratioConsultorio = decimal.New(30, -2)
	ratioInsumos     = decimal.New(20, -2)

	// toleranciaDistribucion is the maximum deviation between a manual
	// distribution's sum and the day's monto before it gets recomputed.
	toleranciaDistribucion = decimal.New(5, -1)
)

// CalcularDistribucion computes the 3-way split of monto.
//
// A manual distribution passes through untouched when its sum stays within
// half a unit of monto; otherwise (nil, all-zero, or drifted) the split is
// recomputed from the fixed ratios. Consultorio and insumos are rounded to 2
// decimals (shopspring's Round: half away from zero); profesional is then
// monto − consultorio − insumos, never rounded independently, so the three
// parts always sum exactly to monto.
func CalcularDistribucion(monto decimal.Decimal, existente *model.Distribucion) model.Distribucion {
	if existente != nil {
		suma := existente.Suma()
		if !suma.IsZero() && suma.Sub(monto).Abs().LessThanOrEqual(toleranciaDistribucion) {
			return *existente
		}
	}

	consultorio := monto.Mul(ratioConsultorio).Round(2)
	insumos := monto.Mul(ratioInsumos).Round(2)
	return model.Distribucion{
		Consultorio: consultorio,
		Insumos:     insumos,
		Profesional: monto.Sub(consultorio).Sub(insumos),
	}
}
