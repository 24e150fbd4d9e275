package xlsx

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/receivables-commissions/internal/infrastructure/rules"
)

// Hojas del libro de reglas.
const (
	SheetRateRules     = "CONFIG_COMISSAO"
	SheetCollaborators = "COLABORADORES"
	SheetAssignments   = "ATRIBUICOES"
	SheetGoals         = "METAS"
)

// LoadRules lee las cuatro hojas. ATRIBUICOES y METAS son opcionales.
func LoadRules(path string) (rules.Tables, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return rules.Tables{}, fmt.Errorf("abrir reglas %s: %w", path, err)
	}
	defer f.Close()

	var (
		out  rules.Tables
		errs []error
	)
	if out.RateRules, err = loadRateRules(f); err != nil {
		errs = append(errs, err)
	}
	if out.Collaborators, err = loadCollaborators(f); err != nil {
		errs = append(errs, err)
	}
	if hasSheet(f, SheetAssignments) {
		if out.Assignments, err = loadAssignments(f); err != nil {
			errs = append(errs, err)
		}
	}
	if hasSheet(f, SheetGoals) {
		if out.Goals, err = loadGoals(f); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return rules.Tables{}, fmt.Errorf("reglas %s: %w", path, err)
	}
	return out, nil
}

func hasSheet(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func loadRateRules(f *excelize.File) ([]rules.RateRuleRow, error) {
	t, err := readTable(f, SheetRateRules)
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(map[string][]string{
		"line":  {"linha"},
		"group": {"grupo"},
		"sub":   {"subgrupo"},
		"mtype": {"tipo_mercadoria", "tipo de mercadoria"},
		"role":  {"cargo"},
		"pool":  {"taxa_rateio_maximo_pct", "taxa rateio maximo", "pool_pct"},
		"share": {"fatia_cargo_pct", "fatia cargo", "role_share_pct"},
	})
	if err != nil {
		return nil, err
	}
	var out []rules.RateRuleRow
	for i, r := range t.rows {
		if isBlank(r) {
			continue
		}
		pool, err := parseAmount(cell(r, cols["pool"]))
		if err != nil {
			return nil, fmt.Errorf("%s fila %d: %w", t.sheet, t.sourceRow(i), err)
		}
		share, err := parseAmount(cell(r, cols["share"]))
		if err != nil {
			return nil, fmt.Errorf("%s fila %d: %w", t.sheet, t.sourceRow(i), err)
		}
		out = append(out, rules.RateRuleRow{
			Line:            cell(r, cols["line"]),
			Group:           cell(r, cols["group"]),
			Subgroup:        cell(r, cols["sub"]),
			MerchandiseType: cell(r, cols["mtype"]),
			Role:            cell(r, cols["role"]),
			PoolPct:         pool,
			RoleSharePct:    share,
		})
	}
	return out, nil
}

func loadCollaborators(f *excelize.File) ([]rules.CollaboratorRow, error) {
	t, err := readTable(f, SheetCollaborators)
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(map[string][]string{
		"name": {"nome_colaborador", "nome", "colaborador"},
		"role": {"cargo"},
		"type": {"tipo_comissao", "tipo de comissao"},
	})
	if err != nil {
		return nil, err
	}
	var out []rules.CollaboratorRow
	for _, r := range t.rows {
		if isBlank(r) {
			continue
		}
		out = append(out, rules.CollaboratorRow{
			Name:           cell(r, cols["name"]),
			Role:           cell(r, cols["role"]),
			CommissionType: cell(r, cols["type"]),
		})
	}
	return out, nil
}

func loadAssignments(f *excelize.File) ([]rules.AssignmentRow, error) {
	t, err := readTable(f, SheetAssignments)
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(map[string][]string{
		"line":   {"linha"},
		"group":  {"grupo"},
		"sub":    {"subgrupo"},
		"mtype":  {"tipo_mercadoria", "tipo de mercadoria"},
		"collab": {"colaborador", "nome_colaborador"},
	})
	if err != nil {
		return nil, err
	}
	var out []rules.AssignmentRow
	for _, r := range t.rows {
		if isBlank(r) {
			continue
		}
		out = append(out, rules.AssignmentRow{
			Line:            cell(r, cols["line"]),
			Group:           cell(r, cols["group"]),
			Subgroup:        cell(r, cols["sub"]),
			MerchandiseType: cell(r, cols["mtype"]),
			Collaborator:    cell(r, cols["collab"]),
		})
	}
	return out, nil
}

func loadGoals(f *excelize.File) ([]rules.GoalRow, error) {
	t, err := readTable(f, SheetGoals)
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(map[string][]string{
		"type":     {"tipo_meta", "meta"},
		"key":      {"chave", "key"},
		"target":   {"valor_meta", "alvo", "target"},
		"realized": {"realizado", "realized"},
	})
	if err != nil {
		return nil, err
	}
	var out []rules.GoalRow
	for i, r := range t.rows {
		if isBlank(r) {
			continue
		}
		target, err := parseAmount(cell(r, cols["target"]))
		if err != nil {
			return nil, fmt.Errorf("%s fila %d: %w", t.sheet, t.sourceRow(i), err)
		}
		realized, err := parseAmount(cell(r, cols["realized"]))
		if err != nil {
			return nil, fmt.Errorf("%s fila %d: %w", t.sheet, t.sourceRow(i), err)
		}
		out = append(out, rules.GoalRow{
			GoalType: cell(r, cols["type"]),
			Key:      cell(r, cols["key"]),
			Target:   target,
			Realized: realized,
		})
	}
	return out, nil
}
