package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/receivables-commissions/internal/application/dto"
	"github.com/jhoicas/receivables-commissions/internal/application/receivables"
	"github.com/jhoicas/receivables-commissions/internal/domain"
	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
	"github.com/jhoicas/receivables-commissions/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/receivables-commissions/internal/interfaces/http"
)

// stubRunner devuelve un reporte fijo o el error configurado.
type stubRunner struct {
	err    error
	called entity.Period
}

func (s *stubRunner) Run(_ context.Context, p entity.Period) (*receivables.RunReport, error) {
	s.called = p
	if s.err != nil {
		return nil, s.err
	}
	return &receivables.RunReport{RunID: "run-1", Period: p, Outcome: receivables.OutcomeSuccess}, nil
}

func buildAPI(t *testing.T, runner receivables.Runner) *fiber.App {
	t.Helper()
	st := entity.NewProcessState("100002", decimal.RequireFromString("20000"))
	st.TotalAdvanced = decimal.RequireFromString("7500")
	st.TotalPaidAccumulated = decimal.RequireFromString("7500")
	repo := memory.NewLedgerRepository(st, entity.NewProcessState("100003", decimal.RequireFromString("500")))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		LedgerQuery:    receivables.NewLedgerQueryUseCase(repo),
		RunUC:          receivables.NewRunUseCase(runner),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# ok\n")) }),
		JWTSecret:      testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ── Procesos ─────────────────────────────────────────────────────────────────

func TestProcesses_ListPaginado(t *testing.T) {
	app := buildAPI(t, &stubRunner{})
	resp := call(t, app, http.MethodGet, "/api/processes?limit=1&offset=0", apphttp.RoleAnalyst, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ProcessListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "100002", out.Items[0].ProcessID)
	assert.Equal(t, "PARTIAL", out.Items[0].PaymentStatus)
	assert.True(t, out.Items[0].OutstandingBalance.Equal(decimal.RequireFromString("12500")))
	assert.Equal(t, 2, out.Page.Total)
}

func TestProcesses_GetByID(t *testing.T) {
	app := buildAPI(t, &stubRunner{})

	resp := call(t, app, http.MethodGet, "/api/processes/100003", apphttp.RoleAdmin, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	missing := call(t, app, http.MethodGet, "/api/processes/999", apphttp.RoleAdmin, "")
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestProcesses_SinToken(t *testing.T) {
	app := buildAPI(t, &stubRunner{})
	resp := call(t, app, http.MethodGet, "/api/processes", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── Ejecuciones ──────────────────────────────────────────────────────────────

func TestRuns_AdminEjecuta(t *testing.T) {
	runner := &stubRunner{}
	app := buildAPI(t, runner)
	resp := call(t, app, http.MethodPost, "/api/runs", apphttp.RoleAdmin, `{"month":3,"year":2025}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "SUCCESS", out.Outcome)
	assert.Equal(t, "03/2025", out.Period)
	assert.Equal(t, entity.Period{Month: 3, Year: 2025}, runner.called)
}

func TestRuns_AnalystProhibido(t *testing.T) {
	app := buildAPI(t, &stubRunner{})
	resp := call(t, app, http.MethodPost, "/api/runs", apphttp.RoleAnalyst, `{"month":3,"year":2025}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRuns_PeriodoInvalido(t *testing.T) {
	app := buildAPI(t, &stubRunner{})
	resp := call(t, app, http.MethodPost, "/api/runs", apphttp.RoleAdmin, `{"month":13,"year":2025}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRuns_EnCursoDevuelve409(t *testing.T) {
	app := buildAPI(t, &stubRunner{err: domain.ErrRunInProgress})
	resp := call(t, app, http.MethodPost, "/api/runs", apphttp.RoleAdmin, `{"month":3,"year":2025}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "RUN_IN_PROGRESS")
}

func TestMetrics_Expuesto(t *testing.T) {
	app := buildAPI(t, &stubRunner{})
	resp := call(t, app, http.MethodGet, "/metrics", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
