package filter

import (
	"fmt"
	"strings"

	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Report renders the human-readable summary of one filtering run. The
// document is deterministic: it records the exact filter configuration
// and statistics derived strictly from post-filter counters, and no
// timestamps, so re-running the stage on the same input reproduces it
// byte for byte.
func Report(cfg config.FilterConfig, source string, s *Stats) string {
	var b strings.Builder

	b.WriteString("GBIF DATA SUMMARY REPORT\n\n")
	fmt.Fprintf(&b, "Dataset: %s\n", source)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	writeConfiguration(&b, cfg)
	writeSummary(&b, s)
	writeDistributions(&b, s)

	return b.String()
}

func writeConfiguration(b *strings.Builder, cfg config.FilterConfig) {
	b.WriteString("Filter configuration\n")
	b.WriteString("--------------------\n")
	fmt.Fprintf(b, "Required non-null fields: %s\n",
		strings.Join(occurrence.RequiredColumns(), ", "))
	fmt.Fprintf(b, "basisOfRecord filter: %s\n",
		strings.Join(cfg.AllowedBasis, ", "))
	fmt.Fprintf(b,
		"coordinateUncertaintyInMeters filter: < %.0f m (null treated as 0)\n",
		cfg.MaxUncertaintyMeters)

	spatial := cfg.LatMin != nil || cfg.LatMax != nil ||
		cfg.LonMin != nil || cfg.LonMax != nil
	if spatial {
		b.WriteString("Spatial filter (bounding box):\n")
		fmt.Fprintf(b, "  LAT_MIN = %s\n", fmtBound(cfg.LatMin))
		fmt.Fprintf(b, "  LAT_MAX = %s\n", fmtBound(cfg.LatMax))
		fmt.Fprintf(b, "  LON_MIN = %s\n", fmtBound(cfg.LonMin))
		fmt.Fprintf(b, "  LON_MAX = %s\n", fmtBound(cfg.LonMax))
	} else {
		b.WriteString("Spatial filter (bounding box): none (all lat/lon kept)\n")
	}

	if cfg.YearMin != nil || cfg.YearMax != nil {
		b.WriteString("Temporal filter (year):\n")
		fmt.Fprintf(b, "  YEAR_MIN = %s\n", fmtYearBound(cfg.YearMin))
		fmt.Fprintf(b, "  YEAR_MAX = %s\n", fmtYearBound(cfg.YearMax))
	} else {
		b.WriteString("Temporal filter (year): none (all years kept)\n")
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, s *Stats) {
	fmt.Fprintf(b, "Total records (raw): %d\n", s.TotalRecords)
	fmt.Fprintf(b, "Records after filtering: %d\n", s.FilteredRecords)
	fmt.Fprintf(b, "Unique species: %d\n", len(s.Counters.Species))
	fmt.Fprintf(b, "Unique taxonKeys: %d\n\n", len(s.Counters.Taxa))

	fmt.Fprintf(b, "Retention ratio after filtering: %.2f%%\n\n", s.Retention())

	if s.YearMin.Valid {
		fmt.Fprintf(b, "Year range: %d to %d\n",
			s.YearMin.Value, s.YearMax.Value)
	} else {
		b.WriteString("Year range: no valid years\n")
	}

	fmt.Fprintf(b, "Geographic coverage: %d unique countries\n",
		len(s.Counters.Countries))

	if s.LatMin.Valid {
		fmt.Fprintf(b, "Latitude range: %.4f to %.4f\n",
			s.LatMin.Value, s.LatMax.Value)
		fmt.Fprintf(b, "Longitude range: %.4f to %.4f\n",
			s.LonMin.Value, s.LonMax.Value)
	}
	b.WriteString("\n")
}

func writeDistributions(b *strings.Builder, s *Stats) {
	var totalBasis int
	for _, n := range s.Counters.Basis {
		totalBasis += n
	}
	b.WriteString("Basis of Record distribution:\n")
	for _, r := range RankedCounts(s.Counters.Basis) {
		var percent float64
		if totalBasis > 0 {
			percent = float64(r.Count) / float64(totalBasis) * 100
		}
		fmt.Fprintf(b, "  %s: %d (%.2f%%)\n", r.Key, r.Count, percent)
	}
	b.WriteString("\n")

	b.WriteString("Top 10 species by number of occurrences:\n")
	species := RankedCounts(s.Counters.Species)
	for i, r := range species {
		if i == 10 {
			break
		}
		fmt.Fprintf(b, "  %s: %d\n", r.Key, r.Count)
	}
	b.WriteString("\n")

	b.WriteString("Occurrences per country (sorted by number of occurrences):\n")
	for _, r := range RankedCounts(s.Counters.Countries) {
		fmt.Fprintf(b, "  %s: %d\n", r.Key, r.Count)
	}
	b.WriteString("\n")

	b.WriteString("Occurrences by year (all years):\n")
	years := YearDistribution(s.Counters.Years)
	for _, y := range years {
		fmt.Fprintf(b, "  %d: %d\n", y.Year, y.Count)
	}
	b.WriteString("\n")

	if len(years) > 0 {
		fmt.Fprintf(b, "Data coverage (year range): %d–%d\n\n",
			years[0].Year, years[len(years)-1].Year)
	}

	b.WriteString("All species sorted by number of occurrences:\n")
	for _, r := range species {
		fmt.Fprintf(b, "  %s: %d\n", r.Key, r.Count)
	}
}

func fmtBound(f *float64) string {
	if f == nil {
		return "none"
	}
	return fmt.Sprintf("%v", *f)
}

func fmtYearBound(i *int) string {
	if i == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *i)
}
