package commission

import (
	"strings"
	"unicode"

	"github.com/jhoicas/receivables-commissions/internal/domain/entity"
)

const (
	minInvoiceDigits = 5
	invoiceKeyDigits = 6
)

// InvoiceIndex resuelve un número de factura normalizado a su proceso.
type InvoiceIndex interface {
	ProcessByInvoice(key string) (string, bool)
}

// Mapping resultado de clasificar un documento de pago.
type Mapping struct {
	Document     string
	ProcessID    string
	Kind         entity.EntryType
	CandidateKey string
	Reason       entity.UnmappedReason
	Rule         string // regla que resolvió el documento
}

// Mapped indica si el documento quedó asociado a un proceso.
func (m Mapping) Mapped() bool { return m.Reason == "" && m.ProcessID != "" }

// MappingRule regla pura. Si matched es false la siguiente regla evalúa el documento.
type MappingRule struct {
	Name  string
	Apply func(doc string) (result Mapping, matched bool)
}

// EmptyDocumentRule descarta documentos vacíos.
func EmptyDocumentRule() MappingRule {
	return MappingRule{
		Name: "empty-document",
		Apply: func(doc string) (Mapping, bool) {
			if doc != "" {
				return Mapping{}, false
			}
			return Mapping{Reason: entity.ReasonEmptyDocument}, true
		},
	}
}

// AdvancePrefixRule: prefijo de adelanto + sufijo numérico = proceso.
// Prefijo vacío deshabilita la regla.
func AdvancePrefixRule(prefix string) MappingRule {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	return MappingRule{
		Name: "advance-prefix",
		Apply: func(doc string) (Mapping, bool) {
			if prefix == "" || !strings.HasPrefix(doc, prefix) {
				return Mapping{}, false
			}
			suffix := strings.TrimSpace(strings.TrimPrefix(doc, prefix))
			if suffix == "" || !isDigits(suffix) {
				return Mapping{CandidateKey: suffix, Reason: entity.ReasonInvalidAdvanceSuffix}, true
			}
			return Mapping{ProcessID: suffix, Kind: entity.EntryAdvance, CandidateKey: suffix}, true
		},
	}
}

// InvoiceNumberRule: primeros dígitos del documento contra los números de factura.
// Es terminal: siempre resuelve.
func InvoiceNumberRule(index InvoiceIndex) MappingRule {
	return MappingRule{
		Name: "invoice-number",
		Apply: func(doc string) (Mapping, bool) {
			digits := leadingDigits(doc)
			if len(digits) < minInvoiceDigits {
				return Mapping{CandidateKey: digits, Reason: entity.ReasonTooShort}, true
			}
			if len(digits) > invoiceKeyDigits {
				digits = digits[:invoiceKeyDigits]
			}
			key := stripLeadingZeros(digits)
			processID, ok := index.ProcessByInvoice(key)
			if !ok {
				return Mapping{CandidateKey: key, Reason: entity.ReasonInvoiceNotFound}, true
			}
			return Mapping{ProcessID: processID, Kind: entity.EntryRegular, CandidateKey: key}, true
		},
	}
}

// DocumentMapper aplica las reglas en orden y cachea por documento crudo.
// No es seguro para uso concurrente (una instancia por ejecución).
type DocumentMapper struct {
	rules []MappingRule
	cache map[string]Mapping
}

// NewDocumentMapper arma la lista estándar: vacío, prefijo de adelanto, número de factura.
func NewDocumentMapper(advancePrefix string, index InvoiceIndex) *DocumentMapper {
	return NewDocumentMapperWithRules(
		EmptyDocumentRule(),
		AdvancePrefixRule(advancePrefix),
		InvoiceNumberRule(index),
	)
}

// NewDocumentMapperWithRules permite una lista de reglas explícita.
func NewDocumentMapperWithRules(rules ...MappingRule) *DocumentMapper {
	return &DocumentMapper{rules: rules, cache: make(map[string]Mapping)}
}

// RuleNames nombres de las reglas en orden de prioridad.
func (m *DocumentMapper) RuleNames() []string {
	names := make([]string, len(m.rules))
	for i, r := range m.rules {
		names[i] = r.Name
	}
	return names
}

// Map clasifica el documento. Resultado determinista y cacheado.
func (m *DocumentMapper) Map(raw string) Mapping {
	if cached, ok := m.cache[raw]; ok {
		return cached
	}
	doc := strings.ToUpper(strings.TrimSpace(raw))
	result := Mapping{Reason: entity.ReasonInvoiceNotFound, Rule: "fallback"}
	for _, rule := range m.rules {
		if r, matched := rule.Apply(doc); matched {
			result = r
			result.Rule = rule.Name
			break
		}
	}
	result.Document = raw
	m.cache[raw] = result
	return result
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return s != ""
}
