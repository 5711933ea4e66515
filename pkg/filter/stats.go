package filter

import (
	"sort"

	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Counters are the five descriptive occurrence counters of the
// filtering stage. They are updated from surviving rows only, never
// from rows that failed a predicate.
type Counters struct {
	Species   map[string]int
	Taxa      map[string]int
	Countries map[string]int
	Basis     map[string]int
	Years     map[int]int
}

// NewCounters returns empty counters.
func NewCounters() *Counters {
	return &Counters{
		Species:   make(map[string]int),
		Taxa:      make(map[string]int),
		Countries: make(map[string]int),
		Basis:     make(map[string]int),
		Years:     make(map[int]int),
	}
}

// Add records one surviving row. Country, basis and year contribute
// only when present.
func (c *Counters) Add(rec occurrence.Record) {
	c.Species[rec.ScientificName]++
	c.Taxa[rec.TaxonKey]++
	if rec.CountryCode != "" {
		c.Countries[rec.CountryCode]++
	}
	if rec.BasisOfRecord != "" {
		c.Basis[rec.BasisOfRecord]++
	}
	if rec.Year.Valid {
		c.Years[rec.Year.Value]++
	}
}

// Stats accumulate over a whole filtering run. Spatial and temporal
// extents are tracked incrementally so that the report never needs the
// full filtered table in memory.
type Stats struct {
	TotalRecords    int
	FilteredRecords int

	LatMin, LatMax occurrence.NullFloat
	LonMin, LonMax occurrence.NullFloat
	YearMin        occurrence.NullInt
	YearMax        occurrence.NullInt

	Counters *Counters
}

// NewStats returns zeroed run statistics.
func NewStats() *Stats {
	return &Stats{Counters: NewCounters()}
}

// AddRaw counts rows read from the raw table, before any predicate.
func (s *Stats) AddRaw(n int) {
	s.TotalRecords += n
}

// AddKept records one surviving row: counters plus running extents.
func (s *Stats) AddKept(rec occurrence.Record) {
	s.FilteredRecords++
	s.Counters.Add(rec)

	if rec.Latitude.Valid {
		if !s.LatMin.Valid || rec.Latitude.Value < s.LatMin.Value {
			s.LatMin = rec.Latitude
		}
		if !s.LatMax.Valid || rec.Latitude.Value > s.LatMax.Value {
			s.LatMax = rec.Latitude
		}
	}
	if rec.Longitude.Valid {
		if !s.LonMin.Valid || rec.Longitude.Value < s.LonMin.Value {
			s.LonMin = rec.Longitude
		}
		if !s.LonMax.Valid || rec.Longitude.Value > s.LonMax.Value {
			s.LonMax = rec.Longitude
		}
	}
	if rec.Year.Valid {
		if !s.YearMin.Valid || rec.Year.Value < s.YearMin.Value {
			s.YearMin = rec.Year
		}
		if !s.YearMax.Valid || rec.Year.Value > s.YearMax.Value {
			s.YearMax = rec.Year
		}
	}
}

// Retention returns the percentage of raw rows that survived.
func (s *Stats) Retention() float64 {
	if s.TotalRecords == 0 {
		return 0
	}
	return float64(s.FilteredRecords) / float64(s.TotalRecords) * 100
}

// CountRank is one entry of a ranked counter listing.
type CountRank struct {
	Key   string
	Count int
}

// RankedCounts sorts a counter by descending count. Equal counts are
// ordered by key so that re-runs produce identical reports.
func RankedCounts(m map[string]int) []CountRank {
	res := make([]CountRank, 0, len(m))
	for k, v := range m {
		res = append(res, CountRank{Key: k, Count: v})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Key < res[j].Key
	})
	return res
}

// YearCount is one entry of the year distribution.
type YearCount struct {
	Year  int
	Count int
}

// YearDistribution sorts the year counter ascending by year.
func YearDistribution(m map[int]int) []YearCount {
	res := make([]YearCount, 0, len(m))
	for y, n := range m {
		res = append(res, YearCount{Year: y, Count: n})
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Year < res[j].Year
	})
	return res
}
