// Package spatial assigns occurrence points to protected-site
// polygons. Both sides are expected in EPSG:4326; internal/iosites
// reprojects the site layer before it reaches this package.
package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Site is one protected-site feature with its attributes reduced to
// the columns the pipeline carries forward.
type Site struct {
	SiteCode    string
	SiteName    string
	MemberState string
	SiteType    string
	Geometry    orb.Geometry

	bound orb.Bound
}

// Index answers point-in-site queries against a fixed set of site
// features. Lookups check each site's bounding box before the exact
// containment test.
type Index struct {
	sites []Site
}

// NewIndex builds an index over the given sites. The slice is not
// copied; callers must not mutate it afterwards.
func NewIndex(sites []Site) *Index {
	for i := range sites {
		sites[i].bound = sites[i].Geometry.Bound()
	}
	return &Index{sites: sites}
}

// Len returns the number of indexed sites.
func (ix *Index) Len() int {
	return len(ix.sites)
}

// Covering returns every site whose geometry contains the point, in
// index order. Points on the boundary count as contained. The result
// is nil when no site matches.
func (ix *Index) Covering(pt orb.Point) []*Site {
	var res []*Site
	for i := range ix.sites {
		s := &ix.sites[i]
		if !s.bound.Contains(pt) {
			continue
		}
		if contains(s.Geometry, pt) {
			res = append(res, s)
		}
	}
	return res
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	case orb.Collection:
		for _, sub := range geom {
			if contains(sub, pt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
