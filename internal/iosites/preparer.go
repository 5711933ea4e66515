// Package iosites prepares the protected-site layer for the spatial
// join: it verifies the source coordinate reference system, reprojects
// to WGS84 when needed, reduces the attributes to the four key columns
// and persists the cleaned layer as its own GeoPackage.
package iosites

import (
	"log/slog"

	"github.com/gnames/gnoccur/internal/iogpkg"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/paulmach/orb/project"
)

const (
	srsWGS84       = 4326
	srsWebMercator = 3857
	srsETRSLAEA    = 3035
)

// Preparer runs the site-preparation stage.
type Preparer struct {
	cfg *config.Config
}

// New creates a Preparer for the given configuration.
func New(cfg *config.Config) *Preparer {
	return &Preparer{cfg: cfg}
}

// Run loads the source layer, normalizes it and writes the prepared
// GeoPackage. It returns the number of persisted site features.
func (p *Preparer) Run() (int, error) {
	src := p.cfg.Sites
	layer, err := iogpkg.ReadLayer(src.SourceFile, src.SourceLayer)
	if err != nil {
		return 0, SitesSourceError(src.SourceFile, err)
	}

	if err = p.reproject(layer); err != nil {
		return 0, err
	}
	p.reduceColumns(layer)

	layer.Name = config.PreparedSitesLayer
	layer.SRSID = srsWGS84
	out := p.cfg.PreparedSitesFile()
	if err = iogpkg.WriteLayer(out, layer, layer.Name); err != nil {
		return 0, err
	}
	slog.Info("Prepared protected-site layer",
		"file", out, "sites", len(layer.Features))
	return len(layer.Features), nil
}

// reproject brings the layer to WGS84. A source without a defined
// coordinate reference system is a configuration error, not a guess.
func (p *Preparer) reproject(layer *iogpkg.Layer) error {
	switch layer.SRSID {
	case srsWGS84:
		return nil
	case 0, -1:
		return SitesNoCRSError(p.cfg.Sites.SourceFile)
	case srsWebMercator:
		for i, ft := range layer.Features {
			if ft.Geometry == nil {
				continue
			}
			layer.Features[i].Geometry = project.Geometry(
				ft.Geometry, project.Mercator.ToWGS84,
			)
		}
		slog.Info("Reprojected site layer to WGS84",
			"from_srs", srsWebMercator)
		return nil
	case srsETRSLAEA:
		// Natura 2000 distributions ship in ETRS89-LAEA Europe.
		for i, ft := range layer.Features {
			if ft.Geometry == nil {
				continue
			}
			layer.Features[i].Geometry = project.Geometry(
				ft.Geometry, laeaToWGS84,
			)
		}
		slog.Info("Reprojected site layer to WGS84",
			"from_srs", srsETRSLAEA)
		return nil
	default:
		return SitesProjectionError(p.cfg.Sites.SourceFile, layer.SRSID)
	}
}

// reduceColumns keeps only the four key attributes. When any of them
// is absent the layer is left as is; losing attributes is worse than
// carrying extras.
func (p *Preparer) reduceColumns(layer *iogpkg.Layer) {
	want := []string{
		p.cfg.Sites.SiteCodeColumn,
		p.cfg.Sites.SiteNameColumn,
		p.cfg.Sites.MemberStateColumn,
		p.cfg.Sites.SiteTypeColumn,
	}
	idx := make([]int, len(want))
	for i, col := range want {
		idx[i] = -1
		for j, have := range layer.Columns {
			if have == col {
				idx[i] = j
				break
			}
		}
		if idx[i] < 0 {
			slog.Warn("Site layer misses a key column; keeping all columns",
				"column", col)
			return
		}
	}

	for fi, ft := range layer.Features {
		values := make([]string, len(idx))
		for i, j := range idx {
			if j < len(ft.Values) {
				values[i] = ft.Values[j]
			}
		}
		layer.Features[fi].Values = values
	}
	layer.Columns = want
}
