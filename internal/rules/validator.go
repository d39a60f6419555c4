// Package rules checks extracted document fields against per-country policies.
package rules

import (
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

const expiryLayout = "2006-01-02"

// Validator evaluates fields against a Table.
type Validator struct {
	table *Table
	now   func() time.Time
}

// NewValidator creates a Validator. A nil table selects DefaultTable.
func NewValidator(table *Table) *Validator {
	if table == nil {
		table = DefaultTable()
	}
	return &Validator{table: table, now: time.Now}
}

// WithClock replaces the time source used for the expiry check.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Table returns the rule table in use.
func (v *Validator) Table() *Table {
	return v.table
}

// Validate returns nil when no rule governs country/documentType; callers
// must read nil as "nothing to enforce", not as a failure.
//
// An expiry date that does not parse as YYYY-MM-DD is treated as not expired.
func (v *Validator) Validate(country, documentType string, fields map[string]string, mrzPresent bool) *domain.RuleValidation {
	rule, ok := v.table.Lookup(country, documentType)
	if !ok {
		return nil
	}

	result := &domain.RuleValidation{
		Country:       strings.ToUpper(strings.TrimSpace(country)),
		DocumentType:  rule.DocumentType,
		MissingFields: []string{},
		Messages:      []string{},
	}

	for _, name := range rule.RequiredFields {
		if strings.TrimSpace(fields[name]) == "" {
			result.MissingFields = append(result.MissingFields, name)
		}
	}

	if rule.MRZRequired && !mrzPresent {
		result.Messages = append(result.Messages, domain.MessageMRZRequired)
	}

	if rule.ExpiryMustBeFuture {
		if raw := strings.TrimSpace(fields[domain.FieldExpiryDate]); raw != "" {
			expiry, err := time.Parse(expiryLayout, raw)
			if err == nil && expiry.Before(v.now()) {
				result.Messages = append(result.Messages, domain.MessageDocumentExpired)
			}
		}
	}

	result.Passed = len(result.MissingFields) == 0 && len(result.Messages) == 0
	return result
}
