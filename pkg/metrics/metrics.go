// Package metrics computes aggregate metrics from the spatially
// enriched occurrence table: per protected site, per member state, per
// species, per site type, and temporal gaps per site. It is pure;
// internal/iometrics handles reading the enriched layer and writing
// CSV tables.
package metrics

import (
	"sort"
	"strconv"

	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Row is one enriched occurrence restricted to the fields the metrics
// need. An empty SiteCode means the occurrence fell outside every
// protected site.
type Row struct {
	SiteCode       string
	SiteName       string
	MemberState    string
	SiteType       string
	TaxonKey       string
	ScientificName string
	Year           occurrence.NullInt
}

// InSites restricts rows to occurrences that matched a protected site.
// All metrics in this package are computed from this subset only.
func InSites(rows []Row) []Row {
	res := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.SiteCode != "" {
			res = append(res, r)
		}
	}
	return res
}

// temporal accumulates the year statistics of one group.
type temporal struct {
	yearMin, yearMax occurrence.NullInt
	years            map[int]struct{}
}

func newTemporal() *temporal {
	return &temporal{years: make(map[int]struct{})}
}

func (t *temporal) add(year occurrence.NullInt) {
	if !year.Valid {
		return
	}
	y := year.Value
	t.years[y] = struct{}{}
	if !t.yearMin.Valid || y < t.yearMin.Value {
		t.yearMin = occurrence.NullInt{Value: y, Valid: true}
	}
	if !t.yearMax.Valid || y > t.yearMax.Value {
		t.yearMax = occurrence.NullInt{Value: y, Valid: true}
	}
}

func (t *temporal) nYears() int {
	return len(t.years)
}

// SiteRow is the site-level aggregate (grouped by site code). The
// name, member state and site type come from the first observed row of
// the group; they are assumed constant per site code.
type SiteRow struct {
	SiteCode     string
	SiteName     string
	MemberState  string
	SiteType     string
	NOccurrences int
	NSpecies     int
	YearMin      occurrence.NullInt
	YearMax      occurrence.NullInt
	NYears       int
}

// Sites aggregates occurrences per protected site.
func Sites(rows []Row) []SiteRow {
	type acc struct {
		row     SiteRow
		species map[string]struct{}
		t       *temporal
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.SiteCode]
		if !ok {
			g = &acc{
				row: SiteRow{
					SiteCode:    r.SiteCode,
					SiteName:    r.SiteName,
					MemberState: r.MemberState,
					SiteType:    r.SiteType,
				},
				species: make(map[string]struct{}),
				t:       newTemporal(),
			}
			groups[r.SiteCode] = g
		}
		g.row.NOccurrences++
		g.species[r.ScientificName] = struct{}{}
		g.t.add(r.Year)
	}

	res := make([]SiteRow, 0, len(groups))
	for _, g := range groups {
		g.row.NSpecies = len(g.species)
		g.row.YearMin = g.t.yearMin
		g.row.YearMax = g.t.yearMax
		g.row.NYears = g.t.nYears()
		res = append(res, g.row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].SiteCode < res[j].SiteCode
	})
	return res
}

// MemberStateRow is the member-state aggregate (grouped by MS code).
type MemberStateRow struct {
	MemberState  string
	NOccurrences int
	NSites       int
	NSpecies     int
	YearMin      occurrence.NullInt
	YearMax      occurrence.NullInt
	NYears       int
}

// MemberStates aggregates occurrences per member state.
func MemberStates(rows []Row) []MemberStateRow {
	type acc struct {
		row     MemberStateRow
		sites   map[string]struct{}
		species map[string]struct{}
		t       *temporal
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.MemberState]
		if !ok {
			g = &acc{
				row:     MemberStateRow{MemberState: r.MemberState},
				sites:   make(map[string]struct{}),
				species: make(map[string]struct{}),
				t:       newTemporal(),
			}
			groups[r.MemberState] = g
		}
		g.row.NOccurrences++
		g.sites[r.SiteCode] = struct{}{}
		g.species[r.ScientificName] = struct{}{}
		g.t.add(r.Year)
	}

	res := make([]MemberStateRow, 0, len(groups))
	for _, g := range groups {
		g.row.NSites = len(g.sites)
		g.row.NSpecies = len(g.species)
		g.row.YearMin = g.t.yearMin
		g.row.YearMax = g.t.yearMax
		g.row.NYears = g.t.nYears()
		res = append(res, g.row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].MemberState < res[j].MemberState
	})
	return res
}

// SpeciesRow is the species-level aggregate (grouped by taxon key).
type SpeciesRow struct {
	TaxonKey       string
	ScientificName string
	NOccurrences   int
	NSites         int
	NMemberStates  int
	YearMin        occurrence.NullInt
	YearMax        occurrence.NullInt
	NYears         int

	// TemporalSpan is year_max − year_min; null without year data.
	TemporalSpan occurrence.NullInt

	// TemporalCompleteness is n_years / (span + 1). A single observed
	// year (span 0) is exactly 1.0 by definition, not by division.
	TemporalCompleteness occurrence.NullFloat
}

// Species aggregates occurrences per taxon.
func Species(rows []Row) []SpeciesRow {
	type acc struct {
		row   SpeciesRow
		sites map[string]struct{}
		ms    map[string]struct{}
		t     *temporal
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.TaxonKey]
		if !ok {
			g = &acc{
				row: SpeciesRow{
					TaxonKey:       r.TaxonKey,
					ScientificName: r.ScientificName,
				},
				sites: make(map[string]struct{}),
				ms:    make(map[string]struct{}),
				t:     newTemporal(),
			}
			groups[r.TaxonKey] = g
		}
		g.row.NOccurrences++
		g.sites[r.SiteCode] = struct{}{}
		g.ms[r.MemberState] = struct{}{}
		g.t.add(r.Year)
	}

	res := make([]SpeciesRow, 0, len(groups))
	for _, g := range groups {
		g.row.NSites = len(g.sites)
		g.row.NMemberStates = len(g.ms)
		g.row.YearMin = g.t.yearMin
		g.row.YearMax = g.t.yearMax
		g.row.NYears = g.t.nYears()

		if g.t.yearMin.Valid {
			span := g.t.yearMax.Value - g.t.yearMin.Value
			g.row.TemporalSpan = occurrence.NullInt{Value: span, Valid: true}
			completeness := 1.0
			if span > 0 {
				completeness = float64(g.row.NYears) / float64(span+1)
			}
			g.row.TemporalCompleteness =
				occurrence.NullFloat{Value: completeness, Valid: true}
		}
		res = append(res, g.row)
	}
	sort.Slice(res, func(i, j int) bool {
		return lessTaxonKey(res[i].TaxonKey, res[j].TaxonKey)
	})
	return res
}

// SiteTypeRow is the site-type aggregate (grouped by site type).
type SiteTypeRow struct {
	SiteType     string
	NSites       int
	NOccurrences int
	NSpecies     int
	YearMin      occurrence.NullInt
	YearMax      occurrence.NullInt
	NYears       int
}

// SiteTypes aggregates occurrences per site-type category.
func SiteTypes(rows []Row) []SiteTypeRow {
	type acc struct {
		row     SiteTypeRow
		sites   map[string]struct{}
		species map[string]struct{}
		t       *temporal
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.SiteType]
		if !ok {
			g = &acc{
				row:     SiteTypeRow{SiteType: r.SiteType},
				sites:   make(map[string]struct{}),
				species: make(map[string]struct{}),
				t:       newTemporal(),
			}
			groups[r.SiteType] = g
		}
		g.row.NOccurrences++
		g.sites[r.SiteCode] = struct{}{}
		g.species[r.ScientificName] = struct{}{}
		g.t.add(r.Year)
	}

	res := make([]SiteTypeRow, 0, len(groups))
	for _, g := range groups {
		g.row.NSites = len(g.sites)
		g.row.NSpecies = len(g.species)
		g.row.YearMin = g.t.yearMin
		g.row.YearMax = g.t.yearMax
		g.row.NYears = g.t.nYears()
		res = append(res, g.row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].SiteType < res[j].SiteType
	})
	return res
}

// GapRow describes the temporal coverage gap of one protected site.
type GapRow struct {
	SiteCode     string
	SiteName     string
	MemberState  string
	SiteType     string
	YearMin      int
	YearMax      int
	NYears       int
	NOccurrences int

	// ExpectedYears is the continuous interval year_max − year_min + 1.
	ExpectedYears int
	// MissingYears is ExpectedYears − NYears.
	MissingYears int
	// GapFraction is MissingYears / ExpectedYears, clamped to [0, 1].
	GapFraction float64
}

// TemporalGaps computes per-site temporal gaps. Sites without a single
// parsable year carry no temporal information and are left out.
func TemporalGaps(rows []Row) []GapRow {
	type acc struct {
		row GapRow
		t   *temporal
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		g, ok := groups[r.SiteCode]
		if !ok {
			g = &acc{
				row: GapRow{
					SiteCode:    r.SiteCode,
					SiteName:    r.SiteName,
					MemberState: r.MemberState,
					SiteType:    r.SiteType,
				},
				t: newTemporal(),
			}
			groups[r.SiteCode] = g
		}
		g.row.NOccurrences++
		g.t.add(r.Year)
	}

	res := make([]GapRow, 0, len(groups))
	for _, g := range groups {
		if !g.t.yearMin.Valid {
			continue
		}
		g.row.YearMin = g.t.yearMin.Value
		g.row.YearMax = g.t.yearMax.Value
		g.row.NYears = g.t.nYears()
		g.row.ExpectedYears = g.row.YearMax - g.row.YearMin + 1
		g.row.MissingYears = g.row.ExpectedYears - g.row.NYears

		frac := float64(g.row.MissingYears) / float64(g.row.ExpectedYears)
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		g.row.GapFraction = frac
		res = append(res, g.row)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].SiteCode < res[j].SiteCode
	})
	return res
}

// lessTaxonKey orders taxon keys numerically when both parse as
// integers, falling back to string order.
func lessTaxonKey(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

// FormatFraction renders a derived ratio the shortest way that
// round-trips, so a complete coverage prints as "1" without a tail.
func FormatFraction(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
