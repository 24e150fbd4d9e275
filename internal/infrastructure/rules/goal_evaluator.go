package rules

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

type goalKey struct {
	goal string
	key  string
}

type goalValue struct {
	target   decimal.Decimal
	realized decimal.Decimal
}

// GoalEvaluator calcula el factor de corrección: Σ peso(cargo, meta) × min(atingimento, cap),
// limitado por cap_fc_max.
type GoalEvaluator struct {
	params Params
	goals  map[goalKey]goalValue
	capAtt decimal.Decimal
	capFC  decimal.Decimal
}

// NewGoalEvaluator indexa METAS; filas con meta desconocida se ignoran.
func NewGoalEvaluator(t Tables, p Params) *GoalEvaluator {
	g := &GoalEvaluator{
		params: p,
		goals:  make(map[goalKey]goalValue, len(t.Goals)),
		capAtt: decimal.NewFromFloat(p.CapAttainmentMax),
		capFC:  decimal.NewFromFloat(p.CapFCMax),
	}
	for _, row := range t.Goals {
		goal := CanonicalGoal(row.GoalType)
		if goal == "" {
			continue
		}
		k := goalKey{goal, normKey(row.Key)}
		if _, dup := g.goals[k]; dup {
			continue
		}
		g.goals[k] = goalValue{target: row.Target, realized: row.Realized}
	}
	return g
}

// Attainment realizado / meta; meta <= 0 devuelve 0.
func Attainment(realized, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return realized.Div(target)
}

// CorrectionFactor nunca falla: metas sin peso o sin fila en METAS aportan 0.
func (g *GoalEvaluator) CorrectionFactor(_ context.Context, item entity.CommercialItem, collab entity.Collaborator) (decimal.Decimal, entity.FactorDetail, error) {
	s := scopeOf(item.Line, item.Group, item.Subgroup, item.MerchandiseType)
	keys := map[string]string{
		GoalLineRevenue:          s.line,
		GoalLineConversion:       s.line,
		GoalIndividualRevenue:    normKey(collab.Name),
		GoalIndividualConversion: normKey(collab.Name),
		GoalProfitability:        s.profitabilityKey(),
	}

	goals := make([]string, 0, len(keys))
	for goal := range keys {
		goals = append(goals, goal)
	}
	sort.Strings(goals)

	var detail entity.FactorDetail
	total := decimal.Zero
	for _, goal := range goals {
		weight := g.params.Weight(collab.Role, goal)
		if weight.IsZero() {
			continue
		}
		v := g.goals[goalKey{goal, keys[goal]}]
		att := decimal.Min(Attainment(v.realized, v.target), g.capAtt)
		contrib := weight.Mul(att)
		total = total.Add(contrib)
		detail.Components = append(detail.Components, entity.FactorComponent{
			Goal:         goal,
			Weight:       weight,
			Attainment:   att,
			Contribution: contrib,
		})
	}
	if total.GreaterThan(g.capFC) {
		total = g.capFC
		detail.Capped = true
	}
	return total, detail, nil
}
