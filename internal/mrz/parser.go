// Package mrz extracts identity fields from OCR text containing an ICAO 9303
// machine-readable zone. Check digits are not validated.
package mrz

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

const (
	filler = '<'

	td3LineLength = 44
	td1LineLength = 30

	minCandidateLength  = td1LineLength
	maxCandidateLength  = td3LineLength
	minCandidateFillers = 5

	// Two-digit years up to this value belong to the 2000s.
	centuryPivot = 30
)

// offset is an end-exclusive byte range within an MRZ line.
type offset struct{ start, end int }

func (o offset) of(line string) string {
	return line[o.start:o.end]
}

// TD3 (passport, 2x44) layout.
var (
	td3DocumentType   = offset{0, 1}
	td3IssuingCountry = offset{2, 5}
	td3Names          = offset{5, 44}

	td3DocumentNumber = offset{0, 9}
	td3Nationality    = offset{10, 13}
	td3DateOfBirth    = offset{13, 19}
	td3Sex            = offset{20, 21}
	td3ExpiryDate     = offset{21, 27}
	td3PersonalNumber = offset{28, 42}
)

// TD1 (identity card, 3x30) layout.
var (
	td1DocumentType   = offset{0, 2}
	td1IssuingCountry = offset{2, 5}
	td1DocumentNumber = offset{5, 14}

	td1DateOfBirth = offset{0, 6}
	td1Sex         = offset{7, 8}
	td1ExpiryDate  = offset{8, 14}
	td1Nationality = offset{15, 18}

	td1Names = offset{0, 30}
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// Parse scans text for the first TD3 or TD1 run of candidate lines.
// It returns nil when no line looks like an MRZ line. When candidate lines
// exist but none form a complete run, a record with format unknown is returned.
func Parse(text string) *domain.MRZRecord {
	candidates := candidateLines(text)
	if len(candidates) == 0 {
		return nil
	}

	for i, line := range candidates {
		switch {
		case len(line) == td3LineLength && i+1 < len(candidates) &&
			len(candidates[i+1]) == td3LineLength:
			return decodeTD3(line, candidates[i+1])

		case len(line) == td1LineLength && i+2 < len(candidates) &&
			len(candidates[i+1]) == td1LineLength &&
			len(candidates[i+2]) == td1LineLength:
			return decodeTD1(line, candidates[i+1], candidates[i+2])
		}
	}

	return &domain.MRZRecord{Format: domain.MRZFormatUnknown}
}

// candidateLines keeps lines whose whitespace-stripped form has an MRZ-like
// length and enough filler characters. This is a structural filter only.
func candidateLines(text string) []string {
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		line := stripSpace(raw)
		if len(line) < minCandidateLength || len(line) > maxCandidateLength {
			continue
		}
		if strings.Count(line, string(filler)) < minCandidateFillers {
			continue
		}
		out = append(out, line)
	}
	return out
}

func decodeTD3(line1, line2 string) *domain.MRZRecord {
	last, first := splitNames(td3Names.of(line1))

	return &domain.MRZRecord{
		Format:         domain.MRZFormatTD3,
		DocumentType:   trimFiller(td3DocumentType.of(line1)),
		IssuingCountry: trimFiller(td3IssuingCountry.of(line1)),
		LastName:       last,
		FirstName:      first,
		DocumentNumber: trimFiller(td3DocumentNumber.of(line2)),
		Nationality:    trimFiller(td3Nationality.of(line2)),
		DateOfBirth:    NormalizeDate(td3DateOfBirth.of(line2)),
		Sex:            trimFiller(td3Sex.of(line2)),
		ExpiryDate:     NormalizeDate(td3ExpiryDate.of(line2)),
		PersonalNumber: trimFiller(td3PersonalNumber.of(line2)),
	}
}

func decodeTD1(lineA, lineB, lineC string) *domain.MRZRecord {
	last, first := splitNames(td1Names.of(lineC))

	return &domain.MRZRecord{
		Format:         domain.MRZFormatTD1,
		DocumentType:   trimFiller(td1DocumentType.of(lineA)),
		IssuingCountry: trimFiller(td1IssuingCountry.of(lineA)),
		DocumentNumber: trimFiller(td1DocumentNumber.of(lineA)),
		DateOfBirth:    NormalizeDate(td1DateOfBirth.of(lineB)),
		Sex:            trimFiller(td1Sex.of(lineB)),
		ExpiryDate:     NormalizeDate(td1ExpiryDate.of(lineB)),
		Nationality:    trimFiller(td1Nationality.of(lineB)),
		LastName:       last,
		FirstName:      first,
	}
}

// NormalizeDate converts YYMMDD to YYYY-MM-DD. Anything that is not exactly
// six digits yields "".
func NormalizeDate(yymmdd string) string {
	if !sixDigits.MatchString(yymmdd) {
		return ""
	}

	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	century := "19"
	if yy <= centuryPivot {
		century = "20"
	}

	return century + yymmdd[0:2] + "-" + yymmdd[2:4] + "-" + yymmdd[4:6]
}

// splitNames separates the primary and secondary identifiers on the first
// double filler.
func splitNames(field string) (last, first string) {
	primary, secondary, _ := strings.Cut(field, "<<")
	return fillerToSpace(primary), fillerToSpace(secondary)
}

func fillerToSpace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, string(filler), " ")), " ")
}

func trimFiller(s string) string {
	return strings.ReplaceAll(s, string(filler), "")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
