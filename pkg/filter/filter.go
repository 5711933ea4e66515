// Package filter implements the quality-filter predicate chain and the
// descriptive counters of the filtering stage. It is pure: reading the
// archive and writing outputs happen in internal/iofilter.
package filter

import (
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/occurrence"
)

// Rules is the active predicate set of one filtering run, derived from
// the filter configuration.
type Rules struct {
	allowedBasis   map[string]struct{}
	maxUncertainty float64

	latMin, latMax, lonMin, lonMax *float64
	yearMin, yearMax               *int
}

// NewRules derives the predicate set from the configuration.
func NewRules(cfg config.FilterConfig) Rules {
	basis := make(map[string]struct{}, len(cfg.AllowedBasis))
	for _, b := range cfg.AllowedBasis {
		basis[b] = struct{}{}
	}
	return Rules{
		allowedBasis:   basis,
		maxUncertainty: cfg.MaxUncertaintyMeters,
		latMin:         cfg.LatMin,
		latMax:         cfg.LatMax,
		lonMin:         cfg.LonMin,
		lonMax:         cfg.LonMax,
		yearMin:        cfg.YearMin,
		yearMax:        cfg.YearMax,
	}
}

// SpatialActive reports whether any bounding-box side is configured.
func (r Rules) SpatialActive() bool {
	return r.latMin != nil || r.latMax != nil ||
		r.lonMin != nil || r.lonMax != nil
}

// TemporalActive reports whether either year bound is configured.
// An active temporal filter also excludes rows without a parsable year.
func (r Rules) TemporalActive() bool {
	return r.yearMin != nil || r.yearMax != nil
}

// Keep evaluates the predicate chain for one record, in the fixed
// order of the stage contract:
//
//  1. required non-null fields: name, key and the raw coordinate
//     fields must exist; an unparsable coordinate is cleaned to a
//     null, not dropped,
//  2. with an active temporal filter, the year must be parsable,
//  3. basis-of-record membership,
//  4. coordinate uncertainty (null counts as 0) strictly below the
//     threshold,
//  5. each configured bounding-box side independently; a null
//     coordinate fails every configured side,
//  6. each configured year bound.
func (r Rules) Keep(rec occurrence.Record) bool {
	if rec.ScientificName == "" || rec.TaxonKey == "" ||
		rec.Latitude.Missing() || rec.Longitude.Missing() {
		return false
	}

	if r.TemporalActive() && !rec.Year.Valid {
		return false
	}

	if _, ok := r.allowedBasis[rec.BasisOfRecord]; !ok {
		return false
	}

	var uncertainty float64
	if rec.Uncertainty.Valid {
		uncertainty = rec.Uncertainty.Value
	}
	if uncertainty >= r.maxUncertainty {
		return false
	}

	if r.SpatialActive() {
		if r.latMin != nil &&
			(!rec.Latitude.Valid || rec.Latitude.Value < *r.latMin) {
			return false
		}
		if r.latMax != nil &&
			(!rec.Latitude.Valid || rec.Latitude.Value > *r.latMax) {
			return false
		}
		if r.lonMin != nil &&
			(!rec.Longitude.Valid || rec.Longitude.Value < *r.lonMin) {
			return false
		}
		if r.lonMax != nil &&
			(!rec.Longitude.Valid || rec.Longitude.Value > *r.lonMax) {
			return false
		}
	}

	if r.yearMin != nil && rec.Year.Value < *r.yearMin {
		return false
	}
	if r.yearMax != nil && rec.Year.Value > *r.yearMax {
		return false
	}

	return true
}
