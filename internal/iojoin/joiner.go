// Package iojoin spatially enriches the filtered occurrences: each
// occurrence point is tested against the prepared protected-site
// polygons and the matching site attributes are attached. Left-join
// semantics: occurrences outside every site are kept with empty site
// attributes, and an occurrence inside several overlapping sites
// produces one row per site.
package iojoin

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/internal/iogpkg"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/occurrence"
	"github.com/gnames/gnoccur/pkg/spatial"
	"github.com/gnames/gnuuid"
	"github.com/paulmach/orb"
)

// Stats describes the outcome of one join run.
type Stats struct {
	// Occurrences is the number of input occurrence records.
	Occurrences int
	// Matched is the number of occurrences inside at least one site.
	Matched int
	// Rows is the number of enriched rows written; overlapping sites
	// make it exceed Matched.
	Rows int
}

// MatchedFraction returns the share of occurrences that fell inside a
// protected site.
func (s Stats) MatchedFraction() float64 {
	if s.Occurrences == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Occurrences)
}

// Joiner runs the spatial-enrichment stage.
type Joiner struct {
	cfg *config.Config
}

// New creates a Joiner for the given configuration.
func New(cfg *config.Config) *Joiner {
	return &Joiner{cfg: cfg}
}

// Run joins the filtered table with the prepared site layer and writes
// the enriched GeoPackage layer.
func (j *Joiner) Run() (Stats, error) {
	var stats Stats

	index, err := j.loadSites()
	if err != nil {
		return stats, err
	}

	file, err := os.Open(j.cfg.FilteredFile())
	if err != nil {
		return stats, JoinInputError(j.cfg.FilteredFile(), err)
	}
	defer file.Close()

	layer, stats, err := j.join(file, index)
	if err != nil {
		return stats, err
	}

	identity := gnuuid.New(j.cfg.Dataset).String()
	out := j.cfg.EnrichedFile()
	if err = iogpkg.WriteLayer(out, layer, identity); err != nil {
		return stats, JoinWriteError(out, err)
	}

	slog.Info("Wrote enriched occurrence layer",
		"file", out, "layer", layer.Name, "identity", identity,
		"occurrences", stats.Occurrences, "matched", stats.Matched,
		"rows", stats.Rows)
	gn.Info(fmt.Sprintf(
		"%d of %d occurrences (%.1f%%) fall inside protected sites",
		stats.Matched, stats.Occurrences, stats.MatchedFraction()*100,
	))
	return stats, nil
}

// loadSites builds the point-in-polygon index from the prepared layer.
func (j *Joiner) loadSites() (*spatial.Index, error) {
	path := j.cfg.PreparedSitesFile()
	layer, err := iogpkg.ReadLayer(path, config.PreparedSitesLayer)
	if err != nil {
		return nil, JoinInputError(path, err)
	}

	col := func(name string) int {
		for i, c := range layer.Columns {
			if c == name {
				return i
			}
		}
		return -1
	}
	code := col(j.cfg.Sites.SiteCodeColumn)
	name := col(j.cfg.Sites.SiteNameColumn)
	ms := col(j.cfg.Sites.MemberStateColumn)
	siteType := col(j.cfg.Sites.SiteTypeColumn)

	value := func(values []string, i int) string {
		if i < 0 || i >= len(values) {
			return ""
		}
		return values[i]
	}

	sites := make([]spatial.Site, 0, len(layer.Features))
	for _, ft := range layer.Features {
		if ft.Geometry == nil {
			continue
		}
		sites = append(sites, spatial.Site{
			SiteCode:    value(ft.Values, code),
			SiteName:    value(ft.Values, name),
			MemberState: value(ft.Values, ms),
			SiteType:    value(ft.Values, siteType),
			Geometry:    ft.Geometry,
		})
	}
	return spatial.NewIndex(sites), nil
}

func (j *Joiner) join(
	r io.Reader,
	index *spatial.Index,
) (*iogpkg.Layer, Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, stats, JoinInputError(j.cfg.FilteredFile(), err)
	}
	table := occurrence.NewTable(header)

	layer := &iogpkg.Layer{
		Name:           j.cfg.EnrichedLayer(),
		GeometryColumn: "geom",
		SRSID:          4326,
		Columns: append(occurrence.Columns(),
			j.cfg.Sites.SiteCodeColumn,
			j.cfg.Sites.SiteNameColumn,
			j.cfg.Sites.MemberStateColumn,
			j.cfg.Sites.SiteTypeColumn,
		),
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, JoinInputError(j.cfg.FilteredFile(), err)
		}
		stats.Occurrences++

		rec := table.Record(row)
		if !rec.Latitude.Valid || !rec.Longitude.Valid {
			layer.Features = append(layer.Features,
				enriched(rec, nil, nil))
			stats.Rows++
			continue
		}

		pt := orb.Point{rec.Longitude.Value, rec.Latitude.Value}
		covering := index.Covering(pt)
		if len(covering) == 0 {
			layer.Features = append(layer.Features,
				enriched(rec, pt, nil))
			stats.Rows++
			continue
		}
		stats.Matched++
		for _, site := range covering {
			layer.Features = append(layer.Features,
				enriched(rec, pt, site))
			stats.Rows++
		}
	}
	return layer, stats, nil
}

func enriched(
	rec occurrence.Record,
	pt orb.Geometry,
	site *spatial.Site,
) iogpkg.Feature {
	values := rec.CSVRow()
	if site == nil {
		values = append(values, "", "", "", "")
	} else {
		values = append(values,
			site.SiteCode, site.SiteName, site.MemberState, site.SiteType)
	}
	return iogpkg.Feature{Geometry: pt, Values: values}
}
