package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Dataset
	if s != "" {
		res = append(res, OptDataset(s))
	}
	s = c.Workspace
	if s != "" {
		res = append(res, OptWorkspace(s))
	}

	s = c.GBIF.APIURL
	if s != "" {
		res = append(res, OptGBIFAPIURL(s))
	}
	s = c.GBIF.User
	if s != "" {
		res = append(res, OptGBIFUser(s))
	}
	s = c.GBIF.Password
	if s != "" {
		res = append(res, OptGBIFPassword(s))
	}
	s = c.GBIF.Email
	if s != "" {
		res = append(res, OptGBIFEmail(s))
	}
	if len(c.GBIF.Countries) > 0 {
		res = append(res, OptGBIFCountries(c.GBIF.Countries))
	}
	if c.GBIF.PollInterval > 0 {
		res = append(res, OptGBIFPollInterval(c.GBIF.PollInterval))
	}
	if c.GBIF.PollTimeout > 0 {
		res = append(res, OptGBIFPollTimeout(c.GBIF.PollTimeout))
	}

	i = c.Filter.BatchSize
	if i > 0 {
		res = append(res, OptFilterBatchSize(i))
	}
	if c.Filter.MaxUncertaintyMeters > 0 {
		res = append(res, OptFilterMaxUncertainty(c.Filter.MaxUncertaintyMeters))
	}
	if len(c.Filter.AllowedBasis) > 0 {
		res = append(res, OptFilterAllowedBasis(c.Filter.AllowedBasis))
	}
	if c.Filter.LatMin != nil {
		res = append(res, OptFilterLatMin(*c.Filter.LatMin))
	}
	if c.Filter.LatMax != nil {
		res = append(res, OptFilterLatMax(*c.Filter.LatMax))
	}
	if c.Filter.LonMin != nil {
		res = append(res, OptFilterLonMin(*c.Filter.LonMin))
	}
	if c.Filter.LonMax != nil {
		res = append(res, OptFilterLonMax(*c.Filter.LonMax))
	}
	if c.Filter.YearMin != nil {
		res = append(res, OptFilterYearMin(*c.Filter.YearMin))
	}
	if c.Filter.YearMax != nil {
		res = append(res, OptFilterYearMax(*c.Filter.YearMax))
	}

	s = c.Sites.SourceFile
	if s != "" {
		res = append(res, OptSitesSourceFile(s))
	}
	s = c.Sites.SourceLayer
	if s != "" {
		res = append(res, OptSitesSourceLayer(s))
	}
	if c.Sites.SiteCodeColumn != "" && c.Sites.SiteNameColumn != "" &&
		c.Sites.MemberStateColumn != "" && c.Sites.SiteTypeColumn != "" {
		res = append(res, OptSitesColumns(
			c.Sites.SiteCodeColumn,
			c.Sites.SiteNameColumn,
			c.Sites.MemberStateColumn,
			c.Sites.SiteTypeColumn,
		))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidFloat(name string, f float64) bool {
	res := f > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive, ignoring %v", name, f)
	}
	return res
}

func isValidDuration(name string, d time.Duration) bool {
	res := d > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive, ignoring %s", name, d)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	} else {
		gn.Warn(
			"<em>%s</em> does not support '%s' as a value. "+
				"Valid values are: \n%s\nIgnoring...",
			name, val, strings.Join(lines, "\n"),
		)
		return false
	}
}
