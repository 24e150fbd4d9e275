package xlsx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// SheetLedger hoja del snapshot (también presente en el libro de salidas).
const SheetLedger = "LEDGER"

var ledgerHeaders = []string{
	"process_id",
	"total_value",
	"total_advanced",
	"total_regular_paid",
	"total_paid_accumulated",
	"total_commission_advanced",
	"total_commission_regular",
	"total_commission_accumulated",
	"payment_status",
	"rate_calc_status",
	"reconciliation_status",
	"invoicing_period",
	"tcmp",
	"fcmp",
	"collaborator_roles",
	"advanced_commission",
	"first_payment_date",
	"last_payment_date",
	"payment_count",
	"last_updated",
}

// LedgerStore snapshot del ledger en un xlsx. Save escribe un temporal y lo renombra.
type LedgerStore struct {
	path string
}

// NewLedgerStore crea el store sobre path.
func NewLedgerStore(path string) *LedgerStore {
	return &LedgerStore{path: path}
}

// Load devuelve un snapshot vacío si el archivo aún no existe (primera ejecución).
func (s *LedgerStore) Load(ctx context.Context) ([]entity.ProcessState, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("abrir ledger %s: %w", s.path, err)
	}
	defer f.Close()

	if !hasSheet(f, SheetLedger) {
		return nil, fmt.Errorf("%w: %s sin hoja %s", domain.ErrLedgerCorrupt, s.path, SheetLedger)
	}
	rows, err := f.GetRows(SheetLedger, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer ledger %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var (
		out  []entity.ProcessState
		errs []error
	)
	for i, r := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(r) {
			continue
		}
		st, err := decodeLedgerRow(r)
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", i+2, err))
			continue
		}
		out = append(out, st)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrLedgerCorrupt, s.path, errors.Join(errs...))
	}
	return out, nil
}

// Save reemplaza el snapshot completo. Si falla, el archivo anterior queda intacto.
func (s *LedgerStore) Save(ctx context.Context, states []entity.ProcessState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetLedger); err != nil {
		return err
	}
	if err := writeRow(f, SheetLedger, 1, toAny(ledgerHeaders)); err != nil {
		return err
	}
	for i, st := range states {
		rec, err := encodeLedgerRow(st)
		if err != nil {
			return fmt.Errorf("codificar %s: %w", st.ProcessID, err)
		}
		if err := writeRow(f, SheetLedger, i+2, toAny(rec)); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("crear directorio del ledger: %w", err)
		}
	}
	// SaveAs exige extensión de libro; el temporal se escribe por WriteTo.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "ledger-*.xlsx")
	if err != nil {
		return fmt.Errorf("crear ledger temporal: %w", err)
	}
	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("escribir ledger temporal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("cerrar ledger temporal: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("reemplazar ledger %s: %w", s.path, err)
	}
	return nil
}

func encodeLedgerRow(st entity.ProcessState) ([]string, error) {
	tcmp, err := json.Marshal(st.TCMP)
	if err != nil {
		return nil, err
	}
	fcmp, err := json.Marshal(st.FCMP)
	if err != nil {
		return nil, err
	}
	roles, err := json.Marshal(st.CollaboratorRoles)
	if err != nil {
		return nil, err
	}
	adv, err := json.Marshal(st.AdvancedCommission)
	if err != nil {
		return nil, err
	}
	period := ""
	if !st.InvoicingPeriod.IsZero() {
		period = st.InvoicingPeriod.String()
	}
	return []string{
		st.ProcessID,
		st.TotalValue.String(),
		st.TotalAdvanced.String(),
		st.TotalRegularPaid.String(),
		st.TotalPaidAccumulated.String(),
		st.TotalCommissionAdvanced.String(),
		st.TotalCommissionRegular.String(),
		st.TotalCommissionAccumulated.String(),
		string(st.PaymentStatus()),
		string(st.RateCalcStatus),
		string(st.ReconciliationStatus),
		period,
		string(tcmp),
		string(fcmp),
		string(roles),
		string(adv),
		formatInstant(st.FirstPaymentDate),
		formatInstant(st.LastPaymentDate),
		strconv.Itoa(st.PaymentCount),
		formatInstant(st.LastUpdated),
	}, nil
}

func decodeLedgerRow(r []string) (entity.ProcessState, error) {
	var errs []error
	num := func(j int) decimal.Decimal {
		v := cell(r, j)
		if v == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q no es numérico", ledgerHeaders[j], v))
		}
		return d
	}
	rateMap := func(j int) entity.RateMap {
		m := entity.RateMap{}
		if v := cell(r, j); v != "" {
			if err := json.Unmarshal([]byte(v), &m); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ledgerHeaders[j], err))
			}
		}
		return m
	}
	instant := func(j int) time.Time {
		v := cell(r, j)
		if v == "" {
			return time.Time{}
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ledgerHeaders[j], err))
		}
		return t
	}

	st := entity.ProcessState{
		ProcessID:                  cell(r, 0),
		TotalValue:                 num(1),
		TotalAdvanced:              num(2),
		TotalRegularPaid:           num(3),
		TotalPaidAccumulated:       num(4),
		TotalCommissionAdvanced:    num(5),
		TotalCommissionRegular:     num(6),
		TotalCommissionAccumulated: num(7),
		TCMP:                       rateMap(12),
		FCMP:                       rateMap(13),
		AdvancedCommission:         rateMap(15),
		FirstPaymentDate:           instant(16),
		LastPaymentDate:            instant(17),
		LastUpdated:                instant(19),
		CollaboratorRoles:          map[string]string{},
	}
	// columna 8 (payment_status) es derivada y se ignora
	var err error
	if st.RateCalcStatus, err = entity.ParseRateCalcStatus(cell(r, 9)); err != nil {
		errs = append(errs, err)
	}
	if st.ReconciliationStatus, err = entity.ParseReconciliationStatus(cell(r, 10)); err != nil {
		errs = append(errs, err)
	}
	if st.InvoicingPeriod, err = entity.ParsePeriod(cell(r, 11)); err != nil {
		errs = append(errs, err)
	}
	if v := cell(r, 14); v != "" {
		if err := json.Unmarshal([]byte(v), &st.CollaboratorRoles); err != nil {
			errs = append(errs, fmt.Errorf("collaborator_roles: %w", err))
		}
	}
	if v := cell(r, 18); v != "" {
		if st.PaymentCount, err = strconv.Atoi(v); err != nil {
			errs = append(errs, fmt.Errorf("payment_count: %w", err))
		}
	}
	return st, errors.Join(errs...)
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// writeRow escribe la fila completa a partir de la columna A.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	return f.SetSheetRow(sheet, cellName(1, row), &values)
}
