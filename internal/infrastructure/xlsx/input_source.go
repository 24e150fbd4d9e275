package xlsx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

var financialColumns = map[string][]string{
	"document": {"Documento", "Document", "Doc"},
	"amount":   {"Valor Líquido", "Valor Liquido", "Net Amount"},
	"date":     {"Data de Baixa", "Data Baixa", "Settlement Date"},
	"type":     {"Tipo de Baixa", "Tipo Baixa", "Settlement Type"},
}

var commercialColumns = map[string][]string{
	"process": {"Processo", "Process"},
	"invoice": {"Numero NF", "Número NF", "NF"},
	"date":    {"Dt Emissão", "Data Emissão", "Dt Emissao NF"},
	"status":  {"Status Processo", "Status"},
	"value":   {"Valor Realizado", "Valor"},
}

// InputSource lee el razón financiero y la base comercial de archivos xlsx.
type InputSource struct {
	FinancialPath  string
	CommercialPath string
	// PaidType valor de "Tipo de Baixa" que identifica un pago (comparación sin mayúsculas).
	PaidType string
}

// NewInputSource construye la fuente con las rutas configuradas.
func NewInputSource(financialPath, commercialPath, paidType string) *InputSource {
	return &InputSource{FinancialPath: financialPath, CommercialPath: commercialPath, PaidType: paidType}
}

// LoadFinancial filtra por tipo pagado y mes del período. Documentos en mayúsculas.
// Filas con monto no positivo se descartan; fecha o monto ilegibles en filas pagadas son error.
func (s *InputSource) LoadFinancial(ctx context.Context, period entity.Period) ([]entity.FinancialRow, error) {
	f, err := excelize.OpenFile(s.FinancialPath)
	if err != nil {
		return nil, fmt.Errorf("abrir razón financiero %s: %w", s.FinancialPath, err)
	}
	defer f.Close()

	t, err := readTable(f, "")
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(financialColumns)
	if err != nil {
		return nil, err
	}

	paid := strings.ToUpper(strings.TrimSpace(s.PaidType))
	var (
		out  []entity.FinancialRow
		errs []error
	)
	for i, r := range t.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(r) || strings.ToUpper(cell(r, cols["type"])) != paid {
			continue
		}
		line := t.sourceRow(i)
		date, err := parseDate(cell(r, cols["date"]))
		if err == nil && date.IsZero() {
			err = errors.New("fecha de baja vacía")
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", line, err))
			continue
		}
		if !period.Contains(date) {
			continue
		}
		amount, err := parseAmount(cell(r, cols["amount"]))
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", line, err))
			continue
		}
		if !amount.IsPositive() {
			continue
		}
		out = append(out, entity.FinancialRow{
			Document:       strings.ToUpper(cell(r, cols["document"])),
			NetAmount:      amount,
			SettlementDate: date,
			SettlementType: cell(r, cols["type"]),
			SourceRow:      line,
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("razón financiero %s: %w", s.FinancialPath, errors.Join(errs...))
	}
	return out, nil
}

// LoadCommercial lee todos los ítems; filas sin proceso se ignoran.
func (s *InputSource) LoadCommercial(ctx context.Context) ([]entity.CommercialItem, error) {
	f, err := excelize.OpenFile(s.CommercialPath)
	if err != nil {
		return nil, fmt.Errorf("abrir base comercial %s: %w", s.CommercialPath, err)
	}
	defer f.Close()

	t, err := readTable(f, "")
	if err != nil {
		return nil, err
	}
	cols, err := t.requireColumns(commercialColumns)
	if err != nil {
		return nil, err
	}
	optional := func(aliases ...string) int {
		if j, ok := t.column(aliases...); ok {
			return j
		}
		return -1
	}
	line := optional("Negócio", "Negocio", "Linha")
	group := optional("Grupo")
	subgroup := optional("Subgrupo")
	mtype := optional("Tipo de Mercadoria")
	consultant := optional("Consultor Interno")
	rep := optional("Representante-pedido", "Representante")

	var (
		out  []entity.CommercialItem
		errs []error
	)
	for i, r := range t.rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pid := normalizeProcessID(cell(r, cols["process"]))
		if pid == "" {
			continue
		}
		value, err := parseAmount(cell(r, cols["value"]))
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", t.sourceRow(i), err))
			continue
		}
		date, err := parseDate(cell(r, cols["date"]))
		if err != nil {
			errs = append(errs, fmt.Errorf("fila %d: %w", t.sourceRow(i), err))
			continue
		}
		out = append(out, entity.CommercialItem{
			ProcessID:           pid,
			InvoiceNumber:       cell(r, cols["invoice"]),
			InvoiceDate:         date,
			Status:              cell(r, cols["status"]),
			ItemValue:           value,
			Line:                cell(r, line),
			Group:               cell(r, group),
			Subgroup:            cell(r, subgroup),
			MerchandiseType:     cell(r, mtype),
			InternalConsultant:  cell(r, consultant),
			SalesRepresentative: cell(r, rep),
		})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("base comercial %s: %w", s.CommercialPath, errors.Join(errs...))
	}
	return out, nil
}

// normalizeProcessID quita el sufijo ".0" que aparece cuando el proceso se guardó como número.
func normalizeProcessID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".0") {
		s = strings.TrimSuffix(s, ".0")
	}
	return s
}
