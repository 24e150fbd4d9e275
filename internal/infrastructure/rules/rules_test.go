package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/rules"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item() entity.CommercialItem {
	return entity.CommercialItem{
		ProcessID:           "100002",
		Line:                "Hidrologia",
		Group:               "Sensores",
		Subgroup:            "Nivel",
		MerchandiseType:     "Revenda",
		ItemValue:           dec("20000"),
		InternalConsultant:  "Bruno",
		SalesRepresentative: "Ana",
	}
}

// ── Parámetros ───────────────────────────────────────────────────────────────

func TestParseParams_DefaultsYAliases(t *testing.T) {
	p, err := rules.ParseParams([]byte(`
cap_fc_max: 1.2
goal_weights:
  Consultor Interno:
    faturamento_linha: 40
    individual_revenue: 60
`))
	require.NoError(t, err)
	assert.Equal(t, 1.2, p.CapFCMax)
	assert.Equal(t, 1.0, p.CapAttainmentMax, "clave omitida conserva el default")
	assert.Equal(t, "FATURADO", p.InvoicedStatus)
	assert.True(t, p.Weight("Consultor Interno", rules.GoalLineRevenue).Equal(dec("0.4")))
	assert.True(t, p.Weight("Consultor Interno", rules.GoalIndividualRevenue).Equal(dec("0.6")))
	assert.True(t, p.Weight("Gerente", rules.GoalLineRevenue).IsZero())
}

func TestParseParams_MetaDesconocida(t *testing.T) {
	_, err := rules.ParseParams([]byte("goal_weights:\n  X:\n    ventas_luna: 10\n"))
	require.Error(t, err)
}

func TestLoadParams_SinRutaUsaDefaults(t *testing.T) {
	p, err := rules.LoadParams("")
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultParams().LegacyScopeToken, p.LegacyScopeToken)
}

// ── Identificación de colaboradores ──────────────────────────────────────────

func TestCollaboratorIdentifier_FiltraOrdenaYDeduplica(t *testing.T) {
	tables := rules.Tables{
		Collaborators: []rules.CollaboratorRow{
			{Name: "Ana", Role: "Representante", CommissionType: "Recebimento"},
			{Name: "Bruno", Role: "Consultor Interno", CommissionType: "Faturamento"},
			{Name: "Carla", Role: "Gerente Linha", CommissionType: "recebimento"},
			{Name: "Davi", Role: "", CommissionType: "Recebimento"},
		},
		Assignments: []rules.AssignmentRow{
			{Line: "Hidrologia", Group: "Sensores", Subgroup: "Nivel", MerchandiseType: "Revenda", Collaborator: "Carla"},
			{Line: "Hidrologia", Group: "Sensores", Subgroup: "Nivel", MerchandiseType: "Revenda", Collaborator: "Davi"},
			{Line: "Outra", Collaborator: "Eva"},
		},
	}
	id := rules.NewCollaboratorIdentifier(tables, rules.DefaultParams())

	second := item()
	second.SalesRepresentative = " ana "
	got, err := id.Identify(context.Background(), "100002", []entity.CommercialItem{item(), second})
	require.NoError(t, err)
	assert.Equal(t, []entity.Collaborator{
		{Name: "Ana", Role: "Representante"},
		{Name: "Carla", Role: "Gerente Linha"},
		{Name: "Davi", Role: "N/A"},
	}, got, "Bruno cobra por facturación, Ana aparece una sola vez")
}

func TestCollaboratorIdentifier_SinItems(t *testing.T) {
	id := rules.NewCollaboratorIdentifier(rules.Tables{}, rules.DefaultParams())
	got, err := id.Identify(context.Background(), "1", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── Reglas de comisión ───────────────────────────────────────────────────────

func TestRateRules_CadenaDeRespaldo(t *testing.T) {
	tables := rules.Tables{RateRules: []rules.RateRuleRow{
		{Line: "__legacy__", MerchandiseType: "__legacy__", Role: "Representante", PoolPct: dec("1"), RoleSharePct: dec("100")},
		{Line: "Hidrologia", Role: "Representante", PoolPct: dec("2"), RoleSharePct: dec("100")},
		{Line: "Hidrologia", Group: "Sensores", Subgroup: "__legacy__", MerchandiseType: "Revenda", Role: "Representante", PoolPct: dec("5"), RoleSharePct: dec("50")},
		{Line: "Hidrologia", Group: "Sensores", Subgroup: "Nivel", MerchandiseType: "Revenda", Role: "Consultor Interno", PoolPct: dec("10"), RoleSharePct: dec("40")},
	}}
	rr := rules.NewRateRules(tables, rules.DefaultParams())
	ctx := context.Background()

	// exacto
	r, err := rr.Rule(ctx, item(), "Consultor Interno")
	require.NoError(t, err)
	assert.True(t, r.Rate().Equal(dec("0.04")), "10%% × 40%% = 0,04; got %s", r.Rate())

	// sin subgrupo (token legado)
	r, err = rr.Rule(ctx, item(), "Representante")
	require.NoError(t, err)
	assert.True(t, r.Rate().Equal(dec("0.025")))

	// solo línea
	other := item()
	other.MerchandiseType = "Fabricacao"
	r, err = rr.Rule(ctx, other, "Representante")
	require.NoError(t, err)
	assert.True(t, r.Rate().Equal(dec("0.02")))

	// comodín global
	other.Line = "Geotecnia"
	r, err = rr.Rule(ctx, other, "Representante")
	require.NoError(t, err)
	assert.True(t, r.Rate().Equal(dec("0.01")))
}

func TestRateRules_SinRegla(t *testing.T) {
	rr := rules.NewRateRules(rules.Tables{}, rules.DefaultParams())
	_, err := rr.Rule(context.Background(), item(), "Gerente")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ── Metas ────────────────────────────────────────────────────────────────────

func TestGoalEvaluator_FactorPonderadoConCaps(t *testing.T) {
	p := rules.DefaultParams()
	p.CapFCMax = 1.0
	p.CapAttainmentMax = 1.2
	p.GoalWeights = map[string]map[string]float64{
		"Representante": {
			rules.GoalLineRevenue:       50,
			rules.GoalIndividualRevenue: 30,
			rules.GoalProfitability:     20,
		},
	}
	tables := rules.Tables{Goals: []rules.GoalRow{
		{GoalType: "faturamento_linha", Key: "Hidrologia", Target: dec("100"), Realized: dec("80")},
		{GoalType: rules.GoalIndividualRevenue, Key: "Ana", Target: dec("100"), Realized: dec("150")},
		{GoalType: rules.GoalProfitability, Key: "Hidrologia|Sensores|Nivel|Revenda", Target: dec("0"), Realized: dec("5")},
	}}
	ev := rules.NewGoalEvaluator(tables, p)

	fc, detail, err := ev.CorrectionFactor(context.Background(), item(), entity.Collaborator{Name: "Ana", Role: "Representante"})
	require.NoError(t, err)
	// 0,5·0,8 + 0,3·min(1,5; 1,2) + 0,2·0 = 0,4 + 0,36 = 0,76
	assert.True(t, fc.Equal(dec("0.76")), "fc=%s", fc)
	assert.False(t, detail.Capped)
	assert.Len(t, detail.Components, 3)
}

func TestGoalEvaluator_CapFC(t *testing.T) {
	p := rules.DefaultParams()
	p.CapAttainmentMax = 2
	p.GoalWeights = map[string]map[string]float64{"Representante": {rules.GoalLineRevenue: 100}}
	tables := rules.Tables{Goals: []rules.GoalRow{
		{GoalType: rules.GoalLineRevenue, Key: "hidrologia", Target: dec("100"), Realized: dec("180")},
	}}
	ev := rules.NewGoalEvaluator(tables, p)

	fc, detail, err := ev.CorrectionFactor(context.Background(), item(), entity.Collaborator{Name: "Ana", Role: "Representante"})
	require.NoError(t, err)
	assert.True(t, fc.Equal(dec("1")))
	assert.True(t, detail.Capped)
}

func TestAttainment_MetaNoPositiva(t *testing.T) {
	assert.True(t, rules.Attainment(dec("10"), dec("0")).IsZero())
	assert.True(t, rules.Attainment(dec("10"), dec("-1")).IsZero())
	assert.True(t, rules.Attainment(dec("50"), dec("200")).Equal(dec("0.25")))
}
