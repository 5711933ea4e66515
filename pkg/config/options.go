package config

import (
	"strings"
	"time"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDataset sets the dataset variant to process.
func OptDataset(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToUpper(s)
	return func(c *Config) {
		if isValidString("Dataset", s) {
			c.Dataset = s
		}
	}
}

// OptWorkspace sets the root directory for data, results and logs.
func OptWorkspace(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Workspace", s) {
			c.Workspace = s
		}
	}
}

// OptGBIFAPIURL sets the root URL of the occurrence download API.
func OptGBIFAPIURL(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "/")
	return func(c *Config) {
		if isValidString("GBIF API URL", s) {
			c.GBIF.APIURL = s
		}
	}
}

// OptGBIFUser sets the GBIF account name.
func OptGBIFUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.GBIF.User = s
	}
}

// OptGBIFPassword sets the GBIF account password.
func OptGBIFPassword(s string) Option {
	return func(c *Config) {
		c.GBIF.Password = s
	}
}

// OptGBIFEmail sets the notification address for download jobs.
func OptGBIFEmail(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.GBIF.Email = s
	}
}

// OptGBIFCountries sets the ISO-2 country allow-list for the download
// predicate.
func OptGBIFCountries(ss []string) Option {
	return func(c *Config) {
		if len(ss) == 0 {
			return
		}
		res := make([]string, 0, len(ss))
		for _, s := range ss {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				res = append(res, s)
			}
		}
		c.GBIF.Countries = res
	}
}

// OptGBIFPollInterval sets the pause between download status checks.
func OptGBIFPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if isValidDuration("GBIF Poll Interval", d) {
			c.GBIF.PollInterval = d
		}
	}
}

// OptGBIFPollTimeout bounds the polling phase. Zero disables the bound.
func OptGBIFPollTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.GBIF.PollTimeout = d
		}
	}
}

// OptFilterBatchSize sets the number of occurrence rows read per batch.
func OptFilterBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Filter Batch Size", i) {
			c.Filter.BatchSize = i
		}
	}
}

// OptFilterMaxUncertainty sets the coordinate-uncertainty threshold in
// meters.
func OptFilterMaxUncertainty(f float64) Option {
	return func(c *Config) {
		if isValidFloat("Max Uncertainty", f) {
			c.Filter.MaxUncertaintyMeters = f
		}
	}
}

// OptFilterAllowedBasis sets the allowed basisOfRecord values.
func OptFilterAllowedBasis(ss []string) Option {
	return func(c *Config) {
		if len(ss) == 0 {
			return
		}
		res := make([]string, 0, len(ss))
		for _, s := range ss {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s != "" {
				res = append(res, s)
			}
		}
		c.Filter.AllowedBasis = res
	}
}

// OptFilterLatMin sets the southern bound of the optional bounding box.
func OptFilterLatMin(f float64) Option {
	return func(c *Config) {
		c.Filter.LatMin = &f
	}
}

// OptFilterLatMax sets the northern bound of the optional bounding box.
func OptFilterLatMax(f float64) Option {
	return func(c *Config) {
		c.Filter.LatMax = &f
	}
}

// OptFilterLonMin sets the western bound of the optional bounding box.
func OptFilterLonMin(f float64) Option {
	return func(c *Config) {
		c.Filter.LonMin = &f
	}
}

// OptFilterLonMax sets the eastern bound of the optional bounding box.
func OptFilterLonMax(f float64) Option {
	return func(c *Config) {
		c.Filter.LonMax = &f
	}
}

// OptFilterYearMin sets the lower bound of the optional year range.
func OptFilterYearMin(i int) Option {
	return func(c *Config) {
		c.Filter.YearMin = &i
	}
}

// OptFilterYearMax sets the upper bound of the optional year range.
func OptFilterYearMax(i int) Option {
	return func(c *Config) {
		c.Filter.YearMax = &i
	}
}

// OptSitesSourceFile sets the path of the source site-polygon
// GeoPackage.
func OptSitesSourceFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Sites.SourceFile = s
	}
}

// OptSitesSourceLayer sets the layer name inside the source GeoPackage.
func OptSitesSourceLayer(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Sites.SourceLayer = s
	}
}

// OptSitesColumns sets the column-name mapping of the site attribute
// table: site code, site name, member state, site type.
func OptSitesColumns(code, name, ms, siteType string) Option {
	return func(c *Config) {
		if isValidString("Site Code Column", code) {
			c.Sites.SiteCodeColumn = code
		}
		if isValidString("Site Name Column", name) {
			c.Sites.SiteNameColumn = name
		}
		if isValidString("Member State Column", ms) {
			c.Sites.MemberStateColumn = ms
		}
		if isValidString("Site Type Column", siteType) {
			c.Sites.SiteTypeColumn = siteType
		}
	}
}

// OptLogFormat sets the log output format.
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogLevel sets the logging level.
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogDestination sets where logs are written.
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptHomeDir sets the user home directory. Runtime-only field.
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
