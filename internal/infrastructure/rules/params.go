// Package rules implementa los servicios de tabla que alimentan el cálculo de tasas:
// identificación de colaboradores, reglas de comisión y evaluación de metas.
package rules

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Metas reconocidas en PESOS y METAS.
const (
	GoalLineRevenue          = "line_revenue"
	GoalLineConversion       = "line_conversion"
	GoalIndividualRevenue    = "individual_revenue"
	GoalIndividualConversion = "individual_conversion"
	GoalProfitability        = "profitability"
)

var goalAliases = map[string]string{
	"faturamento_linha":      GoalLineRevenue,
	"conversao_linha":        GoalLineConversion,
	"faturamento_individual": GoalIndividualRevenue,
	"conversao_individual":   GoalIndividualConversion,
	"rentabilidade":          GoalProfitability,
}

// CanonicalGoal normaliza el nombre de una meta (acepta los nombres en portugués de las planillas).
// Devuelve "" si la meta no es reconocida.
func CanonicalGoal(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case GoalLineRevenue, GoalLineConversion, GoalIndividualRevenue, GoalIndividualConversion, GoalProfitability:
		return n
	}
	return goalAliases[n]
}

// Params parámetros de comisión (archivo YAML).
type Params struct {
	CapFCMax               float64                       `yaml:"cap_fc_max"`
	CapAttainmentMax       float64                       `yaml:"cap_attainment_max"`
	InvoicedStatus         string                        `yaml:"invoiced_status"`
	EligibleCommissionType string                        `yaml:"eligible_commission_type"`
	LegacyScopeToken       string                        `yaml:"legacy_scope_token"`
	GoalWeights            map[string]map[string]float64 `yaml:"goal_weights"` // cargo -> meta -> peso (%)
}

// DefaultParams valores usados cuando el archivo no existe o omite una clave.
func DefaultParams() Params {
	return Params{
		CapFCMax:               1.0,
		CapAttainmentMax:       1.0,
		InvoicedStatus:         "FATURADO",
		EligibleCommissionType: "Recebimento",
		LegacyScopeToken:       "__legacy__",
		GoalWeights:            map[string]map[string]float64{},
	}
}

// LoadParams lee el YAML en path. Path vacío devuelve los valores por defecto.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("leer parámetros %s: %w", path, err)
	}
	return ParseParams(raw)
}

// ParseParams decodifica el YAML sobre los valores por defecto.
func ParseParams(raw []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return DefaultParams(), fmt.Errorf("decodificar parámetros: %w", err)
	}
	if p.CapFCMax <= 0 {
		return DefaultParams(), fmt.Errorf("cap_fc_max debe ser positivo: %v", p.CapFCMax)
	}
	if p.CapAttainmentMax <= 0 {
		return DefaultParams(), fmt.Errorf("cap_attainment_max debe ser positivo: %v", p.CapAttainmentMax)
	}
	weights := make(map[string]map[string]float64, len(p.GoalWeights))
	for role, goals := range p.GoalWeights {
		norm := make(map[string]float64, len(goals))
		for g, w := range goals {
			canon := CanonicalGoal(g)
			if canon == "" {
				return DefaultParams(), fmt.Errorf("meta desconocida %q para el cargo %q", g, role)
			}
			norm[canon] = w
		}
		weights[strings.TrimSpace(role)] = norm
	}
	p.GoalWeights = weights
	return p, nil
}

// Weight peso (fracción 0-1) de la meta para el cargo.
func (p Params) Weight(role, goal string) decimal.Decimal {
	w, ok := p.GoalWeights[role][goal]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(w).Div(decimal.NewFromInt(100))
}
