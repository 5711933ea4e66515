package filter_test

import (
	"strings"
	"testing"

	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/filter"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/stretchr/testify/assert"
)

func ptrF(f float64) *float64 { return &f }
func ptrI(i int) *int         { return &i }

func baseConfig() config.FilterConfig {
	return config.New().Filter
}

// goodRecord returns a record that passes the default rules.
func goodRecord() occurrence.Record {
	return occurrence.Record{
		TaxonKey:       "2498252",
		ScientificName: "Alopochen aegyptiaca (Linnaeus, 1766)",
		CountryCode:    "NL",
		BasisOfRecord:  "HUMAN_OBSERVATION",
		Latitude:       occurrence.NullFloat{Value: 52.1, Valid: true},
		Longitude:      occurrence.NullFloat{Value: 5.3, Valid: true},
		Uncertainty:    occurrence.NullFloat{Value: 30, Valid: true},
		Year:           occurrence.NullInt{Value: 2019, Valid: true},
	}
}

func TestKeepDefaults(t *testing.T) {
	rules := filter.NewRules(baseConfig())

	assert.True(t, rules.Keep(goodRecord()))
	assert.False(t, rules.SpatialActive())
	assert.False(t, rules.TemporalActive())
}

func TestKeepRequiredFields(t *testing.T) {
	rules := filter.NewRules(baseConfig())

	tests := []struct {
		msg    string
		mutate func(*occurrence.Record)
	}{
		{"no name", func(r *occurrence.Record) { r.ScientificName = "" }},
		{"no taxonKey", func(r *occurrence.Record) { r.TaxonKey = "" }},
		{"no latitude", func(r *occurrence.Record) {
			r.Latitude = occurrence.NullFloat{}
		}},
		{"no longitude", func(r *occurrence.Record) {
			r.Longitude = occurrence.NullFloat{}
		}},
	}
	for _, v := range tests {
		rec := goodRecord()
		v.mutate(&rec)
		assert.False(t, rules.Keep(rec), v.msg)
	}
}

func TestKeepBasisOfRecord(t *testing.T) {
	rules := filter.NewRules(baseConfig())

	rec := goodRecord()
	rec.BasisOfRecord = "FOSSIL_SPECIMEN"
	assert.False(t, rules.Keep(rec))

	rec.BasisOfRecord = "PRESERVED_SPECIMEN"
	assert.True(t, rules.Keep(rec))

	// empty basis is not in the allow-list either
	rec.BasisOfRecord = ""
	assert.False(t, rules.Keep(rec))
}

func TestKeepUncertainty(t *testing.T) {
	rules := filter.NewRules(baseConfig())

	rec := goodRecord()
	rec.Uncertainty = occurrence.NullFloat{Value: 999.9, Valid: true}
	assert.True(t, rules.Keep(rec), "below threshold")

	// the threshold itself is excluded
	rec.Uncertainty = occurrence.NullFloat{Value: 1000, Valid: true}
	assert.False(t, rules.Keep(rec), "at threshold")

	// null uncertainty counts as zero
	rec.Uncertainty = occurrence.NullFloat{}
	assert.True(t, rules.Keep(rec), "null uncertainty")
}

func TestKeepBoundingBox(t *testing.T) {
	cfg := baseConfig()
	cfg.LatMin = ptrF(35)
	cfg.LatMax = ptrF(72)
	cfg.LonMin = ptrF(-25)
	cfg.LonMax = ptrF(45)
	rules := filter.NewRules(cfg)
	assert.True(t, rules.SpatialActive())

	rec := goodRecord()
	assert.True(t, rules.Keep(rec))

	rec.Latitude = occurrence.NullFloat{Value: 34.9, Valid: true}
	assert.False(t, rules.Keep(rec), "south of box")

	rec = goodRecord()
	rec.Longitude = occurrence.NullFloat{Value: 45.1, Valid: true}
	assert.False(t, rules.Keep(rec), "east of box")

	// boundary values stay inside
	rec = goodRecord()
	rec.Latitude = occurrence.NullFloat{Value: 72, Valid: true}
	assert.True(t, rules.Keep(rec), "on the boundary")
}

func TestKeepPartialBox(t *testing.T) {
	cfg := baseConfig()
	cfg.LatMin = ptrF(0)
	rules := filter.NewRules(cfg)
	assert.True(t, rules.SpatialActive())

	rec := goodRecord()
	rec.Latitude = occurrence.NullFloat{Value: -10, Valid: true}
	assert.False(t, rules.Keep(rec))

	// the unset sides impose nothing
	rec.Latitude = occurrence.NullFloat{Value: 89, Valid: true}
	rec.Longitude = occurrence.NullFloat{Value: 179, Valid: true}
	assert.True(t, rules.Keep(rec))
}

func TestKeepYearRange(t *testing.T) {
	cfg := baseConfig()
	cfg.YearMin = ptrI(2000)
	cfg.YearMax = ptrI(2020)
	rules := filter.NewRules(cfg)
	assert.True(t, rules.TemporalActive())

	rec := goodRecord()
	assert.True(t, rules.Keep(rec))

	rec.Year = occurrence.NullInt{Value: 1999, Valid: true}
	assert.False(t, rules.Keep(rec), "before range")

	rec.Year = occurrence.NullInt{Value: 2021, Valid: true}
	assert.False(t, rules.Keep(rec), "after range")

	// active temporal filter drops rows without a year
	rec.Year = occurrence.NullInt{}
	assert.False(t, rules.Keep(rec), "null year")
}

func TestKeepUnparsableCoordinates(t *testing.T) {
	// A coordinate field that exists but does not parse is cleaned to
	// a null and the row survives; only a truly absent field is an
	// unconditional drop.
	rules := filter.NewRules(baseConfig())

	rec := goodRecord()
	rec.Latitude = occurrence.ParseFloat("abc")
	assert.True(t, rules.Keep(rec))

	rec.Latitude = occurrence.ParseFloat("")
	assert.False(t, rules.Keep(rec))

	// With a bounding box active the null coordinate fails the bound.
	cfg := baseConfig()
	cfg.LatMin = ptrF(40)
	bounded := filter.NewRules(cfg)

	rec = goodRecord()
	rec.Latitude = occurrence.ParseFloat("abc")
	assert.False(t, bounded.Keep(rec))
}

func TestKeepNullYearWithoutTemporalFilter(t *testing.T) {
	rules := filter.NewRules(baseConfig())

	rec := goodRecord()
	rec.Year = occurrence.NullInt{}
	assert.True(t, rules.Keep(rec))
}

func TestStats(t *testing.T) {
	s := filter.NewStats()
	s.AddRaw(4)

	rec := goodRecord()
	s.AddKept(rec)

	rec2 := goodRecord()
	rec2.ScientificName = "Threskiornis aethiopicus (Latham, 1790)"
	rec2.Latitude = occurrence.NullFloat{Value: 43.7, Valid: true}
	rec2.Longitude = occurrence.NullFloat{Value: -1.2, Valid: true}
	rec2.Year = occurrence.NullInt{Value: 2005, Valid: true}
	s.AddKept(rec2)

	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 2, s.FilteredRecords)
	assert.InDelta(t, 50.0, s.Retention(), 1e-9)

	assert.Equal(t, 43.7, s.LatMin.Value)
	assert.Equal(t, 52.1, s.LatMax.Value)
	assert.Equal(t, -1.2, s.LonMin.Value)
	assert.Equal(t, 5.3, s.LonMax.Value)
	assert.Equal(t, 2005, s.YearMin.Value)
	assert.Equal(t, 2019, s.YearMax.Value)

	assert.Len(t, s.Counters.Species, 2)
	assert.Equal(t, 2, s.Counters.Countries["NL"])
}

func TestRetentionEmpty(t *testing.T) {
	s := filter.NewStats()
	assert.Zero(t, s.Retention())
}

// mixedRecords returns a batch with survivors and rows failing each
// kind of predicate.
func mixedRecords() []occurrence.Record {
	recs := make([]occurrence.Record, 0, 8)

	recs = append(recs, goodRecord())

	rec := goodRecord()
	rec.BasisOfRecord = "PRESERVED_SPECIMEN"
	rec.Year = occurrence.NullInt{Value: 1998, Valid: true}
	recs = append(recs, rec)

	rec = goodRecord()
	rec.Latitude = occurrence.NullFloat{Value: -33.9, Valid: true}
	rec.Longitude = occurrence.NullFloat{Value: 18.4, Valid: true}
	recs = append(recs, rec)

	rec = goodRecord()
	rec.Year = occurrence.NullInt{}
	recs = append(recs, rec)

	rec = goodRecord()
	rec.ScientificName = ""
	recs = append(recs, rec)

	rec = goodRecord()
	rec.BasisOfRecord = "FOSSIL_SPECIMEN"
	recs = append(recs, rec)

	rec = goodRecord()
	rec.Uncertainty = occurrence.NullFloat{Value: 5000, Valid: true}
	recs = append(recs, rec)

	rec = goodRecord()
	rec.Latitude = occurrence.NullFloat{}
	recs = append(recs, rec)

	return recs
}

func TestCountersMatchFilteredTotal(t *testing.T) {
	rules := filter.NewRules(baseConfig())
	stats := filter.NewStats()

	recs := mixedRecords()
	stats.AddRaw(len(recs))
	for _, rec := range recs {
		if rules.Keep(rec) {
			stats.AddKept(rec)
		}
	}

	// Every kept row carries a basis, a name and a taxon key, so each
	// of those counters sums back to the filtered total.
	for msg, counter := range map[string]map[string]int{
		"basis":   stats.Counters.Basis,
		"species": stats.Counters.Species,
		"taxa":    stats.Counters.Taxa,
	} {
		var sum int
		for _, n := range counter {
			sum += n
		}
		assert.Equal(t, stats.FilteredRecords, sum, msg)
	}
}

func TestKeepTightensMonotonically(t *testing.T) {
	loose := filter.NewRules(baseConfig())

	tightCfg := baseConfig()
	tightCfg.MaxUncertaintyMeters = 100
	tightCfg.AllowedBasis = []string{"HUMAN_OBSERVATION"}
	tightCfg.LatMin, tightCfg.LatMax = ptrF(40), ptrF(60)
	tightCfg.LonMin, tightCfg.LonMax = ptrF(-10), ptrF(30)
	tightCfg.YearMin, tightCfg.YearMax = ptrI(2000), ptrI(2023)
	tight := filter.NewRules(tightCfg)

	// Any record surviving the tightened rules also survives the
	// looser ones; tightening never resurrects a rejected row.
	for i, rec := range mixedRecords() {
		if tight.Keep(rec) {
			assert.True(t, loose.Keep(rec), "record %d", i)
		}
	}

	rec := goodRecord()
	assert.True(t, tight.Keep(rec))
	assert.True(t, loose.Keep(rec))

	rec.Year = occurrence.NullInt{Value: 1998, Valid: true}
	assert.False(t, tight.Keep(rec))
	assert.True(t, loose.Keep(rec))
}

func TestRankedCounts(t *testing.T) {
	m := map[string]int{"b": 3, "a": 3, "c": 10}
	ranked := filter.RankedCounts(m)

	assert.Equal(t, "c", ranked[0].Key)
	// ties resolve by key for reproducible reports
	assert.Equal(t, "a", ranked[1].Key)
	assert.Equal(t, "b", ranked[2].Key)
}

func TestYearDistribution(t *testing.T) {
	m := map[int]int{2010: 5, 1998: 1, 2003: 2}
	years := filter.YearDistribution(m)

	assert.Equal(t, 1998, years[0].Year)
	assert.Equal(t, 2003, years[1].Year)
	assert.Equal(t, 2010, years[2].Year)
}

func TestReport(t *testing.T) {
	cfg := baseConfig()
	s := filter.NewStats()
	s.AddRaw(3)
	s.AddKept(goodRecord())

	res := filter.Report(cfg, "GBIF_IAS_20250910.zip", s)

	assert.True(t, strings.HasPrefix(res, "GBIF DATA SUMMARY REPORT"))
	assert.Contains(t, res, "Dataset: GBIF_IAS_20250910.zip")
	assert.Contains(t, res, "Total records (raw): 3")
	assert.Contains(t, res, "Records after filtering: 1")
	assert.Contains(t, res, "Retention ratio after filtering: 33.33%")
	assert.Contains(t, res, "HUMAN_OBSERVATION: 1 (100.00%)")
	assert.Contains(t, res, "Year range: 2019 to 2019")
	assert.Contains(t, res,
		"Spatial filter (bounding box): none (all lat/lon kept)")

	// identical inputs give identical documents
	assert.Equal(t, res, filter.Report(cfg, "GBIF_IAS_20250910.zip", s))
}

func TestReportBounds(t *testing.T) {
	cfg := baseConfig()
	cfg.LatMin = ptrF(35)
	cfg.YearMin = ptrI(2000)
	s := filter.NewStats()

	res := filter.Report(cfg, "src", s)

	assert.Contains(t, res, "LAT_MIN = 35")
	assert.Contains(t, res, "LAT_MAX = none")
	assert.Contains(t, res, "YEAR_MIN = 2000")
	assert.Contains(t, res, "YEAR_MAX = none")
	assert.Contains(t, res, "Year range: no valid years")
}
