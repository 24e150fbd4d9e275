// Package xlsx lee las planillas de entrada y escribe las salidas y el snapshot del ledger con excelize.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader minúsculas, sin acentos, guiones y espacios colapsados.
// "Valor Líquido" y "valor_liquido" producen la misma clave.
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	out = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(out)
	return strings.Join(strings.Fields(out), " ")
}

// table hoja leída con encabezado en la primera fila no vacía.
type table struct {
	sheet     string
	headerRow int // 1-based
	columns   map[string]int
	rows      [][]string
}

// readTable abre la hoja y localiza el encabezado. Si sheet es "" usa la primera hoja.
// Los valores se leen crudos (fechas como número de serie).
func readTable(f *excelize.File, sheet string) (*table, error) {
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("libro sin hojas")
		}
		sheet = list[0]
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("hoja %s no encontrada", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}
	t := &table{sheet: sheet, columns: make(map[string]int)}
	for i, r := range rows {
		if isBlank(r) {
			continue
		}
		for j, h := range r {
			key := NormalizeHeader(h)
			if key == "" {
				continue
			}
			if _, dup := t.columns[key]; !dup {
				t.columns[key] = j
			}
		}
		t.headerRow = i + 1
		t.rows = rows[i+1:]
		break
	}
	return t, nil
}

// column devuelve el índice del primer alias presente.
func (t *table) column(aliases ...string) (int, bool) {
	for _, a := range aliases {
		if j, ok := t.columns[NormalizeHeader(a)]; ok {
			return j, true
		}
	}
	return 0, false
}

// requireColumns resuelve cada columna obligatoria; el error lista todas las faltantes.
func (t *table) requireColumns(aliasesByName map[string][]string) (map[string]int, error) {
	out := make(map[string]int, len(aliasesByName))
	var missing []string
	for name, aliases := range aliasesByName {
		j, ok := t.column(aliases...)
		if !ok {
			missing = append(missing, aliases[0])
			continue
		}
		out[name] = j
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("hoja %s: columnas faltantes %s", t.sheet, strings.Join(missing, ", "))
	}
	return out, nil
}

// sourceRow número de fila en la planilla (1-based) para el índice i de t.rows.
func (t *table) sourceRow(i int) int { return t.headerRow + 1 + i }

func cell(r []string, j int) string {
	if j < 0 || j >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[j])
}

func isBlank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseAmount acepta "1234.5", "1.234,56" y "R$ 1.234,56". Vacío es cero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("valor inválido %q", s)
	}
	return d, nil
}

var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate acepta número de serie de Excel o texto dd/mm/aaaa, aaaa-mm-dd. Vacío es fecha cero.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("fecha inválida %q: %w", s, err)
		}
		return t.UTC(), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q", s)
}

// cellName "A1" para columna/fila 1-based.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
