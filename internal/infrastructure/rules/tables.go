package rules

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateRuleRow fila de CONFIG_COMISSAO.
type RateRuleRow struct {
	Line            string
	Group           string
	Subgroup        string
	MerchandiseType string
	Role            string
	PoolPct         decimal.Decimal
	RoleSharePct    decimal.Decimal
}

// CollaboratorRow fila de COLABORADORES.
type CollaboratorRow struct {
	Name           string
	Role           string
	CommissionType string
}

// AssignmentRow fila de ATRIBUICOES (colaborador de gestión por contexto de ítem).
type AssignmentRow struct {
	Line            string
	Group           string
	Subgroup        string
	MerchandiseType string
	Collaborator    string
}

// GoalRow fila de METAS.
type GoalRow struct {
	GoalType string
	Key      string
	Target   decimal.Decimal
	Realized decimal.Decimal
}

// Tables contenido del libro de reglas.
type Tables struct {
	RateRules     []RateRuleRow
	Collaborators []CollaboratorRow
	Assignments   []AssignmentRow
	Goals         []GoalRow
}

func normKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type scope struct {
	line, group, subgroup, mtype string
}

func scopeOf(line, group, subgroup, mtype string) scope {
	return scope{normKey(line), normKey(group), normKey(subgroup), normKey(mtype)}
}

func (s scope) profitabilityKey() string {
	return strings.Join([]string{s.line, s.group, s.subgroup, s.mtype}, "|")
}
