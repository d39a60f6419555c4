package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMRZRecord_Fields(t *testing.T) {
	r := &MRZRecord{
		Format:         MRZFormatTD3,
		DocumentNumber: "X12345678",
		LastName:       "DOE",
		FirstName:      "JOHN MICHAEL",
		DateOfBirth:    "1990-01-15",
		Nationality:    "USA",
	}

	fields := r.Fields()

	assert.Equal(t, "X12345678", fields[FieldDocumentNumber])
	assert.Equal(t, "JOHN MICHAEL", fields[FieldFirstName])
	assert.NotContains(t, fields, FieldExpiryDate, "empty values must be omitted")
	assert.NotContains(t, fields, FieldPersonalNumber)
}

func TestMRZRecord_FieldsNil(t *testing.T) {
	var r *MRZRecord
	assert.Empty(t, r.Fields())
	assert.False(t, r.Decoded())
}

func TestMRZRecord_Decoded(t *testing.T) {
	assert.True(t, (&MRZRecord{Format: MRZFormatTD1}).Decoded())
	assert.False(t, (&MRZRecord{Format: MRZFormatUnknown}).Decoded())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.5, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.25, Clamp(0.25, 0, 1))
}
