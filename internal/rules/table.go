package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

// Document type tags used by the default table.
const (
	DocumentPassport       = "passport"
	DocumentIDCard         = "id_card"
	DocumentDriversLicense = "drivers_license"
)

// Table is an immutable country -> rules index. It is built once and may be
// shared by concurrent callers without synchronization.
type Table struct {
	countries map[string]domain.CountryRule
	order     []string
}

// NewTable indexes rules by upper-cased country code. Later duplicates of a
// country replace earlier ones.
func NewTable(rules []domain.CountryRule) *Table {
	t := &Table{countries: make(map[string]domain.CountryRule, len(rules))}

	for _, r := range rules {
		code := strings.ToUpper(strings.TrimSpace(r.Country))
		if code == "" {
			continue
		}
		if _, exists := t.countries[code]; !exists {
			t.order = append(t.order, code)
		}
		r.Country = code
		t.countries[code] = r
	}

	return t
}

// Lookup returns the rule for documentType in country.
func (t *Table) Lookup(country, documentType string) (domain.DocumentRule, bool) {
	cr, ok := t.countries[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return domain.DocumentRule{}, false
	}

	docType := strings.TrimSpace(documentType)
	for _, d := range cr.Documents {
		if strings.EqualFold(d.DocumentType, docType) {
			return d, true
		}
	}

	return domain.DocumentRule{}, false
}

// Countries returns the rules in load order.
func (t *Table) Countries() []domain.CountryRule {
	out := make([]domain.CountryRule, 0, len(t.order))
	for _, code := range t.order {
		out = append(out, t.countries[code])
	}
	return out
}

type tableFile struct {
	Countries []domain.CountryRule `yaml:"countries"`
}

// ParseYAML builds a table from a YAML document with a top-level
// "countries" list.
func ParseYAML(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse country rules: %w", err)
	}
	if len(f.Countries) == 0 {
		return nil, fmt.Errorf("parse country rules: no countries defined")
	}
	return NewTable(f.Countries), nil
}

// LoadFile reads a YAML rule table from path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read country rules: %w", err)
	}
	return ParseYAML(data)
}

var travelDocumentFields = []string{
	domain.FieldDocumentNumber,
	domain.FieldLastName,
	domain.FieldFirstName,
	domain.FieldDateOfBirth,
	domain.FieldExpiryDate,
	domain.FieldNationality,
}

var cardFields = []string{
	domain.FieldDocumentNumber,
	domain.FieldLastName,
	domain.FieldFirstName,
	domain.FieldDateOfBirth,
}

func passportRule() domain.DocumentRule {
	return domain.DocumentRule{
		DocumentType:       DocumentPassport,
		RequiredFields:     travelDocumentFields,
		MRZRequired:        true,
		ExpiryMustBeFuture: true,
	}
}

func idCardRule(mrz bool) domain.DocumentRule {
	return domain.DocumentRule{
		DocumentType:       DocumentIDCard,
		RequiredFields:     cardFields,
		MRZRequired:        mrz,
		ExpiryMustBeFuture: true,
	}
}

func driversLicenseRule() domain.DocumentRule {
	return domain.DocumentRule{
		DocumentType:       DocumentDriversLicense,
		RequiredFields:     cardFields,
		ExpiryMustBeFuture: true,
	}
}

// defaultTable is built at package init and never written afterwards.
var defaultTable = NewTable([]domain.CountryRule{
	{Country: "USA", Documents: []domain.DocumentRule{passportRule(), driversLicenseRule()}},
	{Country: "GBR", Documents: []domain.DocumentRule{passportRule(), driversLicenseRule()}},
	{Country: "CAN", Documents: []domain.DocumentRule{passportRule(), driversLicenseRule()}},
	{Country: "DEU", Documents: []domain.DocumentRule{passportRule(), idCardRule(true)}},
	{Country: "FRA", Documents: []domain.DocumentRule{passportRule(), idCardRule(true)}},
	{Country: "BRA", Documents: []domain.DocumentRule{passportRule(), idCardRule(false), driversLicenseRule()}},
	{Country: "IND", Documents: []domain.DocumentRule{passportRule(), idCardRule(false)}},
})

// DefaultTable returns the built-in rule table.
func DefaultTable() *Table {
	return defaultTable
}
