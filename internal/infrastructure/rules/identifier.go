package rules

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

const unknownRole = "N/A"

// CollaboratorIdentifier identifica colaboradores operativos (consultor interno, representante)
// y de gestión (ATRIBUICOES) que cobran por recebimento.
type CollaboratorIdentifier struct {
	roles       map[string]string // nombre normalizado -> cargo
	names       map[string]string // nombre normalizado -> nombre original
	eligible    map[string]bool
	assignments map[scope][]string
}

// NewCollaboratorIdentifier construye los índices a partir de las tablas.
func NewCollaboratorIdentifier(t Tables, p Params) *CollaboratorIdentifier {
	id := &CollaboratorIdentifier{
		roles:       make(map[string]string, len(t.Collaborators)),
		names:       make(map[string]string, len(t.Collaborators)),
		eligible:    make(map[string]bool),
		assignments: make(map[scope][]string),
	}
	eligibleType := normKey(p.EligibleCommissionType)
	for _, c := range t.Collaborators {
		k := normKey(c.Name)
		if k == "" {
			continue
		}
		if _, ok := id.roles[k]; !ok {
			id.roles[k] = strings.TrimSpace(c.Role)
			id.names[k] = strings.TrimSpace(c.Name)
		}
		if normKey(c.CommissionType) == eligibleType {
			id.eligible[k] = true
		}
	}
	for _, a := range t.Assignments {
		s := scopeOf(a.Line, a.Group, a.Subgroup, a.MerchandiseType)
		id.assignments[s] = append(id.assignments[s], a.Collaborator)
	}
	return id
}

// Identify devuelve los colaboradores elegibles ordenados por nombre, sin duplicados (nombre, cargo).
func (id *CollaboratorIdentifier) Identify(_ context.Context, _ string, items []entity.CommercialItem) ([]entity.Collaborator, error) {
	if len(items) == 0 {
		return nil, nil
	}
	var candidates []string
	for _, it := range items {
		candidates = append(candidates, it.InternalConsultant, it.SalesRepresentative)
	}
	first := items[0]
	candidates = append(candidates, id.assignments[scopeOf(first.Line, first.Group, first.Subgroup, first.MerchandiseType)]...)

	seen := make(map[string]bool)
	var out []entity.Collaborator
	for _, raw := range candidates {
		k := normKey(raw)
		if k == "" || k == "NAN" || !id.eligible[k] {
			continue
		}
		role := id.roles[k]
		if role == "" {
			role = unknownRole
		}
		dedup := k + "\x00" + strings.ToUpper(role)
		if seen[dedup] {
			continue
		}
		seen[dedup] = true
		out = append(out, entity.Collaborator{Name: id.names[k], Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
