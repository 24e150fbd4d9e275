package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period mes/año de una ejecución batch o de facturación de un proceso.
// El valor cero representa "sin período".
type Period struct {
	Month int
	Year  int
}

// NewPeriod valida mes (1-12) y año.
func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("mes fuera de rango: %d", month)
	}
	if year < 1900 || year > 9999 {
		return Period{}, fmt.Errorf("año fuera de rango: %d", year)
	}
	return Period{Month: month, Year: year}, nil
}

// PeriodOf devuelve el período al que pertenece t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// ParsePeriod interpreta "MM/YYYY". Cadena vacía devuelve el período cero.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, nil
	}
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("período %q: formato esperado MM/YYYY", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("período %q: mes: %w", s, err)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("período %q: año: %w", s, err)
	}
	return NewPeriod(month, year)
}

// IsZero indica si el período no está definido.
func (p Period) IsZero() bool { return p.Month == 0 && p.Year == 0 }

// String formatea como "MM/YYYY" (vacío si es cero).
func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

// Contains indica si t cae dentro del mes del período.
func (p Period) Contains(t time.Time) bool {
	return !t.IsZero() && int(t.Month()) == p.Month && t.Year() == p.Year
}

// Previous devuelve el mes anterior.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// FileSuffix formatea como "MM_YYYY" para nombres de archivo.
func (p Period) FileSuffix() string {
	return fmt.Sprintf("%02d_%04d", p.Month, p.Year)
}
