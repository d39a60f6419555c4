package domain

// MRZFormat identifica o layout ICAO 9303 reconhecido
type MRZFormat string

const (
	MRZFormatTD3     MRZFormat = "TD3"
	MRZFormatTD1     MRZFormat = "TD1"
	MRZFormatUnknown MRZFormat = "unknown"
)

// MRZRecord holds the identity fields decoded from a machine-readable zone.
// Dates are YYYY-MM-DD; an empty date means the source field was malformed.
type MRZRecord struct {
	Format         MRZFormat `json:"format"`
	DocumentType   string    `json:"document_type,omitempty"`
	IssuingCountry string    `json:"issuing_country,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	FirstName      string    `json:"first_name,omitempty"`
	DocumentNumber string    `json:"document_number,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"`
	Sex            string    `json:"sex,omitempty"`
	ExpiryDate     string    `json:"expiry_date,omitempty"`
	PersonalNumber string    `json:"personal_number,omitempty"`
}

// Field names shared by the MRZ record and the country rule table.
const (
	FieldDocumentNumber = "documentNumber"
	FieldLastName       = "lastName"
	FieldFirstName      = "firstName"
	FieldDateOfBirth    = "dateOfBirth"
	FieldExpiryDate     = "expiryDate"
	FieldNationality    = "nationality"
	FieldSex            = "sex"
	FieldIssuingCountry = "issuingCountry"
	FieldPersonalNumber = "personalNumber"
)

// Decoded reports whether the record came from a recognised TD3/TD1 run.
func (r *MRZRecord) Decoded() bool {
	return r != nil && r.Format != MRZFormatUnknown
}

// Fields flattens the record into the map consumed by the rule validator.
// Empty values are omitted so they count as missing.
func (r *MRZRecord) Fields() map[string]string {
	fields := make(map[string]string)
	if r == nil {
		return fields
	}

	set := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}

	set(FieldDocumentNumber, r.DocumentNumber)
	set(FieldLastName, r.LastName)
	set(FieldFirstName, r.FirstName)
	set(FieldDateOfBirth, r.DateOfBirth)
	set(FieldExpiryDate, r.ExpiryDate)
	set(FieldNationality, r.Nationality)
	set(FieldSex, r.Sex)
	set(FieldIssuingCountry, r.IssuingCountry)
	set(FieldPersonalNumber, r.PersonalNumber)

	return fields
}
