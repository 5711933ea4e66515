// Package occurrence defines the occurrence-record schema shared by all
// pipeline stages: the Darwin Core column names kept from the raw
// archive, numeric coercion rules, and header validation.
package occurrence

import (
	"math"
	"strconv"
	"strings"
)

// Darwin Core columns carried through the pipeline.
const (
	ColTaxonKey       = "taxonKey"
	ColScientificName = "scientificName"
	ColLatitude       = "decimalLatitude"
	ColLongitude      = "decimalLongitude"
	ColCountryCode    = "countryCode"
	ColBasisOfRecord  = "basisOfRecord"
	ColUncertainty    = "coordinateUncertaintyInMeters"
	ColYear           = "year"
	ColMonth          = "month"
	ColEventDate      = "eventDate"
)

// Columns returns the canonical column order of the filtered table.
func Columns() []string {
	return []string{
		ColTaxonKey,
		ColScientificName,
		ColLatitude,
		ColLongitude,
		ColCountryCode,
		ColBasisOfRecord,
		ColUncertainty,
		ColYear,
		ColMonth,
		ColEventDate,
	}
}

// RequiredColumns returns the columns that must be non-null for a row
// to be usable at all.
func RequiredColumns() []string {
	return []string{
		ColScientificName,
		ColTaxonKey,
		ColLatitude,
		ColLongitude,
	}
}

// SchemaCheck is the result of validating a table header against an
// expected column set. A missing column is data, not a panic: stages
// decide whether it is fatal or downgrades an output.
type SchemaCheck struct {
	// Missing lists expected columns absent from the header.
	Missing []string
}

// OK reports whether all expected columns are present.
func (c SchemaCheck) OK() bool {
	return len(c.Missing) == 0
}

// CheckHeader validates that the header contains all want columns.
func CheckHeader(header, want []string) SchemaCheck {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var res SchemaCheck
	for _, w := range want {
		if _, ok := present[w]; !ok {
			res.Missing = append(res.Missing, w)
		}
	}
	return res
}

// NullFloat is a float value that may be absent. Unparsable input
// becomes a null rather than an error, but stays distinguishable from
// a missing field: some predicates only require the field to exist.
type NullFloat struct {
	Value float64
	Valid bool
	// Present reports that the raw field was non-empty. An unparsable
	// value is Present but not Valid.
	Present bool
}

// Missing reports that the raw field was empty.
func (f NullFloat) Missing() bool {
	return !f.Valid && !f.Present
}

// NullInt is an integer value that may be absent.
type NullInt struct {
	Value int
	Valid bool
}

// ParseFloat coerces a raw field to a float. Empty and unparsable
// values become nulls.
func ParseFloat(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullFloat{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return NullFloat{Present: true}
	}
	return NullFloat{Value: f, Valid: true, Present: true}
}

// ParseYear coerces a raw field to an integer year. Values written as
// floats ("1998.0") are accepted; empty and unparsable values become
// nulls.
func ParseYear(s string) NullInt {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullInt{}
	}
	if i, err := strconv.Atoi(s); err == nil {
		return NullInt{Value: i, Valid: true}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return NullInt{}
	}
	return NullInt{Value: int(math.Trunc(f)), Valid: true}
}

// FormatFloat renders a nullable float for CSV output; nulls render as
// empty fields.
func FormatFloat(v NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

// FormatInt renders a nullable integer for CSV output as a plain
// integer, never as a float with a trailing zero.
func FormatInt(v NullInt) string {
	if !v.Valid {
		return ""
	}
	return strconv.Itoa(v.Value)
}

// Record is one occurrence row with its numeric fields coerced.
type Record struct {
	TaxonKey       string
	ScientificName string
	CountryCode    string
	BasisOfRecord  string
	Month          string
	EventDate      string
	Latitude       NullFloat
	Longitude      NullFloat
	Uncertainty    NullFloat
	Year           NullInt
}

// Table maps a concrete file header to the canonical columns; it
// tolerates files that carry extra columns or miss optional ones.
type Table struct {
	idx map[string]int
}

// NewTable builds a Table from a header row.
func NewTable(header []string) *Table {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return &Table{idx: idx}
}

// Has reports whether the column exists in the header.
func (t *Table) Has(col string) bool {
	_, ok := t.idx[col]
	return ok
}

// Field returns the raw value of col in row, or the empty string when
// the column is absent.
func (t *Table) Field(row []string, col string) string {
	i, ok := t.idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Record coerces one raw row into a Record.
func (t *Table) Record(row []string) Record {
	return Record{
		TaxonKey:       strings.TrimSpace(t.Field(row, ColTaxonKey)),
		ScientificName: strings.TrimSpace(t.Field(row, ColScientificName)),
		CountryCode:    strings.TrimSpace(t.Field(row, ColCountryCode)),
		BasisOfRecord:  strings.TrimSpace(t.Field(row, ColBasisOfRecord)),
		Month:          strings.TrimSpace(t.Field(row, ColMonth)),
		EventDate:      strings.TrimSpace(t.Field(row, ColEventDate)),
		Latitude:       ParseFloat(t.Field(row, ColLatitude)),
		Longitude:      ParseFloat(t.Field(row, ColLongitude)),
		Uncertainty:    ParseFloat(t.Field(row, ColUncertainty)),
		Year:           ParseYear(t.Field(row, ColYear)),
	}
}

// CSVRow renders a Record in the canonical column order.
func (r Record) CSVRow() []string {
	return []string{
		r.TaxonKey,
		r.ScientificName,
		FormatFloat(r.Latitude),
		FormatFloat(r.Longitude),
		r.CountryCode,
		r.BasisOfRecord,
		FormatFloat(r.Uncertainty),
		FormatInt(r.Year),
		r.Month,
		r.EventDate,
	}
}
