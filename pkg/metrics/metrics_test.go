package metrics_test

import (
	"testing"

	"github.com/gnames/gnoccur/pkg/metrics"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func year(y int) occurrence.NullInt {
	return occurrence.NullInt{Value: y, Valid: true}
}

func row(site, ms, taxon, name string, y occurrence.NullInt) metrics.Row {
	return metrics.Row{
		SiteCode:       site,
		SiteName:       site + " name",
		MemberState:    ms,
		SiteType:       "A",
		TaxonKey:       taxon,
		ScientificName: name,
		Year:           y,
	}
}

func TestInSites(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2000)),
		row("", "IT", "10", "Aus bus", year(2001)),
		row("S2", "FR", "20", "Cus dus", year(2002)),
	}
	res := metrics.InSites(rows)
	require.Len(t, res, 2)
	assert.Equal(t, "S1", res[0].SiteCode)
	assert.Equal(t, "S2", res[1].SiteCode)
}

func TestSites(t *testing.T) {
	rows := []metrics.Row{
		row("S2", "FR", "20", "Cus dus", year(2005)),
		row("S1", "IT", "10", "Aus bus", year(2000)),
		row("S1", "IT", "20", "Cus dus", year(2003)),
		row("S1", "IT", "10", "Aus bus", year(2000)),
		row("S1", "IT", "10", "Aus bus", occurrence.NullInt{}),
	}
	res := metrics.Sites(rows)
	require.Len(t, res, 2)

	s1 := res[0]
	assert.Equal(t, "S1", s1.SiteCode)
	assert.Equal(t, "S1 name", s1.SiteName)
	assert.Equal(t, "IT", s1.MemberState)
	assert.Equal(t, 4, s1.NOccurrences)
	assert.Equal(t, 2, s1.NSpecies)
	assert.Equal(t, year(2000), s1.YearMin)
	assert.Equal(t, year(2003), s1.YearMax)
	assert.Equal(t, 2, s1.NYears)

	assert.Equal(t, "S2", res[1].SiteCode)
	assert.Equal(t, 1, res[1].NOccurrences)
}

func TestSitesNoYears(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", occurrence.NullInt{}),
	}
	res := metrics.Sites(rows)
	require.Len(t, res, 1)
	assert.False(t, res[0].YearMin.Valid)
	assert.False(t, res[0].YearMax.Valid)
	assert.Equal(t, 0, res[0].NYears)
}

func TestMemberStates(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(1998)),
		row("S2", "IT", "20", "Cus dus", year(2001)),
		row("S3", "FR", "10", "Aus bus", year(2010)),
	}
	res := metrics.MemberStates(rows)
	require.Len(t, res, 2)

	fr, it := res[0], res[1]
	assert.Equal(t, "FR", fr.MemberState)
	assert.Equal(t, 1, fr.NSites)

	assert.Equal(t, "IT", it.MemberState)
	assert.Equal(t, 2, it.NOccurrences)
	assert.Equal(t, 2, it.NSites)
	assert.Equal(t, 2, it.NSpecies)
	assert.Equal(t, year(1998), it.YearMin)
	assert.Equal(t, year(2001), it.YearMax)
}

func TestSpeciesSingleYearCompleteness(t *testing.T) {
	// A single observed year means span 0 and completeness exactly 1.0.
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2005)),
		row("S2", "FR", "10", "Aus bus", year(2005)),
	}
	res := metrics.Species(rows)
	require.Len(t, res, 1)

	sp := res[0]
	assert.Equal(t, "10", sp.TaxonKey)
	assert.Equal(t, 2, sp.NSites)
	assert.Equal(t, 2, sp.NMemberStates)
	require.True(t, sp.TemporalSpan.Valid)
	assert.Equal(t, 0, sp.TemporalSpan.Value)
	require.True(t, sp.TemporalCompleteness.Valid)
	assert.Equal(t, 1.0, sp.TemporalCompleteness.Value)
}

func TestSpeciesCompleteness(t *testing.T) {
	// Years {2001, 2003}: span 2, 2 distinct years out of 3 expected.
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2001)),
		row("S1", "IT", "10", "Aus bus", year(2003)),
	}
	res := metrics.Species(rows)
	require.Len(t, res, 1)
	require.True(t, res[0].TemporalCompleteness.Valid)
	assert.InDelta(t, 2.0/3.0, res[0].TemporalCompleteness.Value, 1e-12)
}

func TestSpeciesNumericKeyOrder(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "100", "Cus dus", year(2000)),
		row("S1", "IT", "20", "Aus bus", year(2000)),
	}
	res := metrics.Species(rows)
	require.Len(t, res, 2)
	assert.Equal(t, "20", res[0].TaxonKey)
	assert.Equal(t, "100", res[1].TaxonKey)
}

func TestSiteTypes(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2000)),
		row("S2", "FR", "20", "Cus dus", year(2002)),
	}
	rows[1].SiteType = "B"
	res := metrics.SiteTypes(rows)
	require.Len(t, res, 2)
	assert.Equal(t, "A", res[0].SiteType)
	assert.Equal(t, 1, res[0].NSites)
	assert.Equal(t, "B", res[1].SiteType)
}

func TestTemporalGaps(t *testing.T) {
	// Years {2001, 2003}: 3 expected years, 1 missing, gap 1/3.
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2001)),
		row("S1", "IT", "10", "Aus bus", year(2003)),
		row("S2", "FR", "20", "Cus dus", occurrence.NullInt{}),
	}
	res := metrics.TemporalGaps(rows)
	require.Len(t, res, 1)

	g := res[0]
	assert.Equal(t, "S1", g.SiteCode)
	assert.Equal(t, 2001, g.YearMin)
	assert.Equal(t, 2003, g.YearMax)
	assert.Equal(t, 3, g.ExpectedYears)
	assert.Equal(t, 1, g.MissingYears)
	assert.InDelta(t, 1.0/3.0, g.GapFraction, 1e-12)
}

func TestTemporalGapsComplete(t *testing.T) {
	rows := []metrics.Row{
		row("S1", "IT", "10", "Aus bus", year(2000)),
		row("S1", "IT", "10", "Aus bus", year(2001)),
	}
	res := metrics.TemporalGaps(rows)
	require.Len(t, res, 1)
	assert.Equal(t, 0, res[0].MissingYears)
	assert.Equal(t, 0.0, res[0].GapFraction)
}

func TestFormatFraction(t *testing.T) {
	assert.Equal(t, "1", metrics.FormatFraction(1.0))
	assert.Equal(t, "0.6666666666666666", metrics.FormatFraction(2.0/3.0))
}
