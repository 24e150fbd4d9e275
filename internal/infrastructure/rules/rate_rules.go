package rules

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// RateRules busca la regla de CONFIG_COMISSAO más específica para un ítem y cargo.
// Un campo vacío o igual al token legado en la tabla actúa como comodín en los niveles relajados.
type RateRules struct {
	rows   []RateRuleRow
	legacy string

	mu    sync.Mutex
	cache map[ruleKey]*RateRuleRow
}

type ruleKey struct {
	scope
	role string
}

// NewRateRules construye el buscador de reglas.
func NewRateRules(t Tables, p Params) *RateRules {
	return &RateRules{
		rows:   t.RateRules,
		legacy: normKey(p.LegacyScopeToken),
		cache:  make(map[ruleKey]*RateRuleRow),
	}
}

// Rule devuelve domain.ErrNotFound si ningún nivel de la cadena tiene regla para el cargo.
func (r *RateRules) Rule(_ context.Context, item entity.CommercialItem, role string) (entity.RateRule, error) {
	key := ruleKey{scopeOf(item.Line, item.Group, item.Subgroup, item.MerchandiseType), normKey(role)}

	r.mu.Lock()
	row, cached := r.cache[key]
	if !cached {
		row = r.lookup(key)
		r.cache[key] = row
	}
	r.mu.Unlock()

	if row == nil {
		return entity.RateRule{}, fmt.Errorf("%w: regla para %s/%s/%s/%s cargo %s",
			domain.ErrNotFound, item.Line, item.Group, item.Subgroup, item.MerchandiseType, role)
	}
	return entity.RateRule{PoolPct: row.PoolPct, RoleSharePct: row.RoleSharePct}, nil
}

// lookup recorre de lo más específico a lo más general:
// exacto, sin subgrupo, sin grupo ni subgrupo, solo línea, y el comodín global (línea y tipo legado).
func (r *RateRules) lookup(k ruleKey) *RateRuleRow {
	levels := []func(s scope) bool{
		func(s scope) bool {
			return s.line == k.line && s.group == k.group && s.subgroup == k.subgroup && s.mtype == k.mtype
		},
		func(s scope) bool {
			return s.line == k.line && s.group == k.group && r.wild(s.subgroup) && s.mtype == k.mtype
		},
		func(s scope) bool {
			return s.line == k.line && r.wild(s.group) && r.wild(s.subgroup) && s.mtype == k.mtype
		},
		func(s scope) bool {
			return s.line == k.line && r.wild(s.group) && r.wild(s.subgroup) && r.wild(s.mtype)
		},
		func(s scope) bool {
			return r.legacy != "" && s.line == r.legacy && s.mtype == r.legacy
		},
	}
	for _, match := range levels {
		for i := range r.rows {
			row := &r.rows[i]
			if normKey(row.Role) != k.role {
				continue
			}
			if match(scopeOf(row.Line, row.Group, row.Subgroup, row.MerchandiseType)) {
				return row
			}
		}
	}
	return nil
}

func (r *RateRules) wild(v string) bool {
	return v == "" || (r.legacy != "" && v == r.legacy)
}
