package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/postgres"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var columns = []string{
	"process_id", "total_value", "total_advanced", "total_regular_paid", "total_paid_accumulated",
	"total_commission_advanced", "total_commission_regular", "total_commission_accumulated",
	"rate_calc_status", "reconciliation_status", "invoicing_period",
	"tcmp", "fcmp", "collaborator_roles", "advanced_commission",
	"first_payment_date", "last_payment_date", "payment_count", "last_updated",
}

func newRepo(t *testing.T) (*postgres.LedgerRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return postgres.NewLedgerRepository(db), mock
}

func states() []entity.ProcessState {
	a := entity.NewProcessState("100002", dec("20000"))
	a.TotalAdvanced = dec("7500")
	a.TotalPaidAccumulated = dec("7500")
	a.TCMP = entity.RateMap{"Ana": dec("0.05")}
	b := entity.NewProcessState("100003", dec("500"))
	return []entity.ProcessState{a, b}
}

// ── Save ─────────────────────────────────────────────────────────────────────

func TestLedgerRepo_Save_ReemplazaEnTransaccion(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM receivable_process_ledger").WillReturnResult(sqlmock.NewResult(0, 5))
	prep := mock.ExpectPrepare("INSERT INTO receivable_process_ledger")
	for _, st := range states() {
		args := make([]driver.Value, len(columns))
		for i := range args {
			args[i] = sqlmock.AnyArg()
		}
		args[0] = st.ProcessID
		prep.ExpectExec().WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), states()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Save_ErrorHaceRollback(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM receivable_process_ledger").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO receivable_process_ledger")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), states())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "100003")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Save_FallaBegin(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

	err := repo.Save(context.Background(), states())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLedgerRepo_Load(t *testing.T) {
	repo, mock := newRepo(t)
	paid := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow("100002", "20000", "7500", "0", "7500", "375", "0", "375",
			"CALCULATED", "PENDING", "03/2025",
			`{"Ana":"0.05"}`, `{"Ana":"0.8"}`, `{"Ana":"Representante"}`, `{"Ana":"375"}`,
			paid, paid, int64(1), paid).
		AddRow("100003", "500", "0", "0", "0", "0", "0", "0",
			"PENDING", "PENDING", "",
			"{}", "{}", "{}", "{}",
			nil, nil, int64(0), nil)
	mock.ExpectQuery("FROM receivable_process_ledger ORDER BY process_id").WillReturnRows(rows)

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "100002", a.ProcessID)
	assert.True(t, a.TotalCommissionAccumulated.Equal(dec("375")))
	assert.Equal(t, entity.RateCalcCalculated, a.RateCalcStatus)
	assert.Equal(t, entity.Period{Month: 3, Year: 2025}, a.InvoicingPeriod)
	assert.True(t, a.FCMP["Ana"].Equal(dec("0.8")))
	assert.Equal(t, "Representante", a.CollaboratorRoles["Ana"])
	assert.True(t, a.FirstPaymentDate.Equal(paid))
	assert.NoError(t, a.Validate())

	b := got[1]
	assert.True(t, b.FirstPaymentDate.IsZero())
	assert.Empty(t, b.TCMP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_Load_EstadoDesconocido(t *testing.T) {
	repo, mock := newRepo(t)
	rows := sqlmock.NewRows(columns).
		AddRow("1", "1", "0", "0", "0", "0", "0", "0", "DONE", "PENDING", "",
			"{}", "{}", "{}", "{}", nil, nil, int64(0), nil)
	mock.ExpectQuery("FROM receivable_process_ledger").WillReturnRows(rows)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLedgerCorrupt))
}

func TestLedgerRepo_EnsureSchema(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS receivable_process_ledger").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
