package domain

// DocumentRule is the policy for one document type within a country.
type DocumentRule struct {
	DocumentType       string   `json:"document_type" yaml:"document_type"`
	RequiredFields     []string `json:"required_fields" yaml:"required_fields"`
	MRZRequired        bool     `json:"mrz_required" yaml:"mrz_required"`
	ExpiryMustBeFuture bool     `json:"expiry_must_be_future" yaml:"expiry_must_be_future"`
}

// CountryRule groups the document policies of a country.
type CountryRule struct {
	Country   string         `json:"country" yaml:"country"`
	Documents []DocumentRule `json:"documents" yaml:"documents"`
}

// RuleValidation is the outcome of checking extracted fields against a rule.
type RuleValidation struct {
	Country       string   `json:"country"`
	DocumentType  string   `json:"document_type"`
	Passed        bool     `json:"passed"`
	MissingFields []string `json:"missing_fields"`
	Messages      []string `json:"messages"`
}

const (
	MessageMRZRequired     = "MRZ required but not found"
	MessageDocumentExpired = "Document expired"
)
