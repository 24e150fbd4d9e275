package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/domain/repository"
)

// Asegura que LedgerRepo implementa repository.LedgerRepository.
var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS receivable_process_ledger (
	process_id                   TEXT PRIMARY KEY,
	total_value                  NUMERIC NOT NULL,
	total_advanced               NUMERIC NOT NULL,
	total_regular_paid           NUMERIC NOT NULL,
	total_paid_accumulated       NUMERIC NOT NULL,
	total_commission_advanced    NUMERIC NOT NULL,
	total_commission_regular     NUMERIC NOT NULL,
	total_commission_accumulated NUMERIC NOT NULL,
	rate_calc_status             TEXT NOT NULL,
	reconciliation_status        TEXT NOT NULL,
	invoicing_period             TEXT NOT NULL DEFAULT '',
	tcmp                         JSONB NOT NULL DEFAULT '{}',
	fcmp                         JSONB NOT NULL DEFAULT '{}',
	collaborator_roles           JSONB NOT NULL DEFAULT '{}',
	advanced_commission          JSONB NOT NULL DEFAULT '{}',
	first_payment_date           TIMESTAMPTZ,
	last_payment_date            TIMESTAMPTZ,
	payment_count                INTEGER NOT NULL DEFAULT 0,
	last_updated                 TIMESTAMPTZ
)`

const ledgerColumns = `process_id, total_value, total_advanced, total_regular_paid, total_paid_accumulated,
	total_commission_advanced, total_commission_regular, total_commission_accumulated,
	rate_calc_status, reconciliation_status, invoicing_period,
	tcmp, fcmp, collaborator_roles, advanced_commission,
	first_payment_date, last_payment_date, payment_count, last_updated`

// LedgerRepo snapshot del ledger en PostgreSQL. Save reemplaza todo dentro de una transacción.
type LedgerRepo struct {
	db *sql.DB
	tx *TxRunner
}

// NewLedgerRepository construye el adaptador sobre db (ver OpenDB).
func NewLedgerRepository(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db, tx: NewTxRunner(db)}
}

// EnsureSchema crea la tabla si no existe.
func (r *LedgerRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ledgerSchema); err != nil {
		return fmt.Errorf("crear tabla del ledger: %w", err)
	}
	return nil
}

// Load lee todos los procesos ordenados por id.
func (r *LedgerRepo) Load(ctx context.Context) ([]entity.ProcessState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ledgerColumns+` FROM receivable_process_ledger ORDER BY process_id`)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var (
		out  []entity.ProcessState
		errs []error
	)
	for rows.Next() {
		st, err := scanProcessState(rows)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrLedgerCorrupt, errors.Join(errs...))
	}
	return out, nil
}

// Save borra e inserta el snapshot completo; ante cualquier error no queda nada aplicado.
func (r *LedgerRepo) Save(ctx context.Context, states []entity.ProcessState) error {
	return r.tx.Run(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM receivable_process_ledger`); err != nil {
			return fmt.Errorf("clear ledger: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO receivable_process_ledger (`+ledgerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`)
		if err != nil {
			return fmt.Errorf("prepare insert ledger: %w", err)
		}
		defer stmt.Close()

		for _, st := range states {
			args, err := processStateArgs(st)
			if err != nil {
				return fmt.Errorf("codificar %s: %w", st.ProcessID, err)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: proceso %s", domain.ErrDuplicate, st.ProcessID)
				}
				return fmt.Errorf("insert ledger %s: %w", st.ProcessID, err)
			}
		}
		return nil
	})
}

func processStateArgs(st entity.ProcessState) ([]any, error) {
	var blobs [4][]byte
	for i, v := range []any{st.TCMP, st.FCMP, st.CollaboratorRoles, st.AdvancedCommission} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		blobs[i] = b
	}
	return []any{
		st.ProcessID,
		st.TotalValue,
		st.TotalAdvanced,
		st.TotalRegularPaid,
		st.TotalPaidAccumulated,
		st.TotalCommissionAdvanced,
		st.TotalCommissionRegular,
		st.TotalCommissionAccumulated,
		string(st.RateCalcStatus),
		string(st.ReconciliationStatus),
		st.InvoicingPeriod.String(),
		string(blobs[0]),
		string(blobs[1]),
		string(blobs[2]),
		string(blobs[3]),
		nullTime(st.FirstPaymentDate),
		nullTime(st.LastPaymentDate),
		st.PaymentCount,
		nullTime(st.LastUpdated),
	}, nil
}

func scanProcessState(rows *sql.Rows) (entity.ProcessState, error) {
	var (
		st                     entity.ProcessState
		rateStatus, recStatus  string
		period                 string
		tcmp, fcmp, roles, adv []byte
		first, last, updated   sql.NullTime
	)
	if err := rows.Scan(
		&st.ProcessID, &st.TotalValue, &st.TotalAdvanced, &st.TotalRegularPaid, &st.TotalPaidAccumulated,
		&st.TotalCommissionAdvanced, &st.TotalCommissionRegular, &st.TotalCommissionAccumulated,
		&rateStatus, &recStatus, &period,
		&tcmp, &fcmp, &roles, &adv,
		&first, &last, &st.PaymentCount, &updated,
	); err != nil {
		return st, fmt.Errorf("scan ledger: %w", err)
	}

	var errs []error
	var err error
	if st.RateCalcStatus, err = entity.ParseRateCalcStatus(rateStatus); err != nil {
		errs = append(errs, err)
	}
	if st.ReconciliationStatus, err = entity.ParseReconciliationStatus(recStatus); err != nil {
		errs = append(errs, err)
	}
	if st.InvoicingPeriod, err = entity.ParsePeriod(period); err != nil {
		errs = append(errs, err)
	}
	st.TCMP, st.FCMP, st.AdvancedCommission = entity.RateMap{}, entity.RateMap{}, entity.RateMap{}
	st.CollaboratorRoles = map[string]string{}
	for _, target := range []struct {
		raw []byte
		dst any
	}{{tcmp, &st.TCMP}, {fcmp, &st.FCMP}, {roles, &st.CollaboratorRoles}, {adv, &st.AdvancedCommission}} {
		if len(target.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(target.raw, target.dst); err != nil {
			errs = append(errs, err)
		}
	}
	st.FirstPaymentDate = first.Time
	st.LastPaymentDate = last.Time
	st.LastUpdated = updated.Time
	if err := errors.Join(errs...); err != nil {
		return st, fmt.Errorf("%s: %w", st.ProcessID, err)
	}
	return st, nil
}
