package commission

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

// CommercialDataset índice en memoria de la base comercial (solo lectura durante la ejecución).
type CommercialDataset struct {
	items     []entity.CommercialItem
	byProcess map[string][]int
	byInvoice map[string]string // número de factura normalizado -> proceso (primera fila gana)
	order     []string          // procesos en orden de aparición
}

// NewCommercialDataset construye los índices respetando el orden de las filas.
func NewCommercialDataset(items []entity.CommercialItem) *CommercialDataset {
	d := &CommercialDataset{
		items:     items,
		byProcess: make(map[string][]int),
		byInvoice: make(map[string]string),
	}
	for i, it := range items {
		if it.ProcessID == "" {
			continue
		}
		if _, seen := d.byProcess[it.ProcessID]; !seen {
			d.order = append(d.order, it.ProcessID)
		}
		d.byProcess[it.ProcessID] = append(d.byProcess[it.ProcessID], i)
		key := NormalizeInvoiceNumber(it.InvoiceNumber)
		if key == "" {
			continue
		}
		if _, exists := d.byInvoice[key]; !exists {
			d.byInvoice[key] = it.ProcessID
		}
	}
	return d
}

// Len cantidad de ítems.
func (d *CommercialDataset) Len() int { return len(d.items) }

// Processes procesos en orden de aparición.
func (d *CommercialDataset) Processes() []string {
	return append([]string(nil), d.order...)
}

// Items ítems del proceso en orden de origen.
func (d *CommercialDataset) Items(processID string) []entity.CommercialItem {
	idx := d.byProcess[processID]
	out := make([]entity.CommercialItem, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.items[i])
	}
	return out
}

// TotalValue suma de valores de ítems del proceso; false si el proceso no existe.
func (d *CommercialDataset) TotalValue(processID string) (decimal.Decimal, bool) {
	idx, ok := d.byProcess[processID]
	if !ok {
		return decimal.Zero, false
	}
	total := decimal.Zero
	for _, i := range idx {
		total = total.Add(d.items[i].ItemValue)
	}
	return total, true
}

// ProcessByInvoice busca por clave ya normalizada.
func (d *CommercialDataset) ProcessByInvoice(key string) (string, bool) {
	p, ok := d.byInvoice[key]
	return p, ok
}

// InvoicedIn indica si alguna fila del proceso está facturada (estado, número y fecha) en el período.
// Una fila facturada sin fecha de emisión se toma como facturada en p.
func (d *CommercialDataset) InvoicedIn(processID string, p entity.Period, invoicedStatus string) bool {
	for _, i := range d.byProcess[processID] {
		it := d.items[i]
		if !strings.EqualFold(strings.TrimSpace(it.Status), invoicedStatus) {
			continue
		}
		if NormalizeInvoiceNumber(it.InvoiceNumber) == "" {
			continue
		}
		if it.InvoiceDate.IsZero() || p.Contains(it.InvoiceDate) {
			return true
		}
	}
	return false
}

// NormalizeInvoiceNumber conserva solo dígitos y quita ceros a la izquierda ("000" -> "0").
// Devuelve "" si no hay dígitos.
func NormalizeInvoiceNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return stripLeadingZeros(b.String())
}

func stripLeadingZeros(digits string) string {
	if digits == "" {
		return ""
	}
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
