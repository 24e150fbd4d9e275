package receivables

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/commission"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/pkg/logger"
)

// RateResult TCMP/FCMP por colaborador de un proceso.
type RateResult struct {
	TCMP          entity.RateMap
	FCMP          entity.RateMap
	Roles         map[string]string
	Collaborators []entity.Collaborator
	Items         int // ítems con valor positivo considerados
}

// HasCollaborators indica si hubo colaboradores elegibles.
func (r RateResult) HasCollaborators() bool { return len(r.Collaborators) > 0 }

// HasPositiveRate indica si algún colaborador tiene TCMP > 0.
func (r RateResult) HasPositiveRate() bool {
	for _, v := range r.TCMP {
		if v.IsPositive() {
			return true
		}
	}
	return false
}

// RateCalculator calcula TCMP y FCMP ponderados por valor de ítem.
type RateCalculator struct {
	identifier CollaboratorIdentifier
	rules      RateRuleProvider
	goals      GoalEvaluator
	log        *logger.Logger
}

// NewRateCalculator construye el calculador con sus servicios externos.
func NewRateCalculator(identifier CollaboratorIdentifier, rules RateRuleProvider, goals GoalEvaluator, log *logger.Logger) *RateCalculator {
	if log == nil {
		log = logger.Nop()
	}
	return &RateCalculator{identifier: identifier, rules: rules, goals: goals, log: log}
}

// Calculate devuelve ErrNoRateData si el proceso no tiene ítems en la base comercial.
// Errores de regla o de metas en un ítem cuentan como tasa/factor 0 y se registran.
func (c *RateCalculator) Calculate(ctx context.Context, dataset *commission.CommercialDataset, processID string) (RateResult, error) {
	items := dataset.Items(processID)
	if len(items) == 0 {
		return RateResult{}, fmt.Errorf("%w: %s sin ítems en la base comercial", domain.ErrNoRateData, processID)
	}
	collaborators, err := c.identifier.Identify(ctx, processID, items)
	if err != nil {
		return RateResult{}, fmt.Errorf("identificar colaboradores de %s: %w", processID, err)
	}

	res := RateResult{
		TCMP:          entity.RateMap{},
		FCMP:          entity.RateMap{},
		Roles:         make(map[string]string, len(collaborators)),
		Collaborators: collaborators,
	}
	for _, it := range items {
		if it.ItemValue.IsPositive() {
			res.Items++
		}
	}

	for _, collab := range collaborators {
		var acc commission.CollaboratorAccumulator
		for _, it := range items {
			if !it.ItemValue.IsPositive() {
				continue
			}
			acc.Add(it.ItemValue, c.itemRate(ctx, processID, it, collab), c.itemFactor(ctx, processID, it, collab))
		}
		tcmp, fcmp := acc.Finalize()
		res.TCMP[collab.Name] = tcmp
		res.FCMP[collab.Name] = fcmp
		res.Roles[collab.Name] = collab.Role
	}
	return res, nil
}

func (c *RateCalculator) itemRate(ctx context.Context, processID string, it entity.CommercialItem, collab entity.Collaborator) decimal.Decimal {
	rule, err := c.rules.Rule(ctx, it, collab.Role)
	if err != nil {
		c.log.Warn().Err(err).
			Str("process_id", processID).
			Str("collaborator", collab.Name).
			Str("role", collab.Role).
			Msg("regla de comisión no encontrada, tasa 0")
		return decimal.Zero
	}
	return rule.Rate()
}

func (c *RateCalculator) itemFactor(ctx context.Context, processID string, it entity.CommercialItem, collab entity.Collaborator) decimal.Decimal {
	factor, _, err := c.goals.CorrectionFactor(ctx, it, collab)
	if err != nil {
		c.log.Warn().Err(err).
			Str("process_id", processID).
			Str("collaborator", collab.Name).
			Msg("factor de corrección no disponible, factor 0")
		return decimal.Zero
	}
	return factor
}
