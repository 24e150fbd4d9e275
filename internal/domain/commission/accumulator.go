package commission

import "github.com/shopspring/decimal"

// WeightedAverage promedio ponderado Σ(x·w)/Σw. Devuelve cero si Σw <= 0.
func WeightedAverage(values, weights []decimal.Decimal) decimal.Decimal {
	sumW := decimal.Zero
	num := decimal.Zero
	for i := range weights {
		sumW = sumW.Add(weights[i])
		num = num.Add(values[i].Mul(weights[i]))
	}
	if sumW.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return num.Div(sumW)
}

// CollaboratorAccumulator acumula (valor, tasa, factor) por ítem para un colaborador.
type CollaboratorAccumulator struct {
	values  []decimal.Decimal
	rates   []decimal.Decimal
	factors []decimal.Decimal
}

// Add registra un ítem.
func (a *CollaboratorAccumulator) Add(value, rate, factor decimal.Decimal) {
	a.values = append(a.values, value)
	a.rates = append(a.rates, rate)
	a.factors = append(a.factors, factor)
}

// Len cantidad de ítems acumulados.
func (a *CollaboratorAccumulator) Len() int { return len(a.values) }

// TotalValue Σ valores.
func (a *CollaboratorAccumulator) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, v := range a.values {
		total = total.Add(v)
	}
	return total
}

// Finalize TCMP = Σ(tasa·valor)/Σvalor, FCMP = Σ(factor·valor)/Σvalor; ambos 0 si Σvalor == 0.
func (a *CollaboratorAccumulator) Finalize() (tcmp, fcmp decimal.Decimal) {
	return WeightedAverage(a.rates, a.values), WeightedAverage(a.factors, a.values)
}
