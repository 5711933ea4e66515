// Package config provides configuration management for gnoccur.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via
// gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml >
// defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Environment Variables
//
// Use GNOCCUR_ prefix with underscores for nesting:
//
//	GNOCCUR_DATASET=BIRDS
//	GNOCCUR_GBIF_USER=jdoe
//	GNOCCUR_FILTER_BATCH_SIZE=100000
package config

import (
	"time"
)

// Config represents the complete gnoccur configuration. A single Config
// drives every pipeline stage; stages read only the sections they need.
type Config struct {
	// Dataset selects the dataset variant to process. It must match an
	// entry in datasets.yaml (e.g. "BIRDS", "HABITATS", "IAS").
	Dataset string `mapstructure:"dataset" yaml:"dataset"`

	// Workspace is the root directory under which data/, results/ and
	// logs/ are created. All stage inputs and outputs live below it.
	Workspace string `mapstructure:"workspace" yaml:"workspace"`

	// GBIF contains settings for the occurrence download service.
	GBIF GBIFConfig `mapstructure:"gbif" yaml:"gbif"`

	// Filter contains quality-filter thresholds and optional bounds.
	Filter FilterConfig `mapstructure:"filter" yaml:"filter"`

	// Sites contains protected-site layer settings and column mappings.
	Sites SitesConfig `mapstructure:"sites" yaml:"sites"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// HomeDir determines where config and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// GBIFConfig contains settings for the GBIF occurrence download API.
type GBIFConfig struct {
	// APIURL is the root of the occurrence download API.
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// User is the GBIF account name. Required for the download stage.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the GBIF account password. Required for the download
	// stage.
	Password string `mapstructure:"password" yaml:"password"`

	// Email receives the download notification. Required for the
	// download stage.
	Email string `mapstructure:"email" yaml:"email"`

	// Countries is the ISO-2 country allow-list applied in the download
	// predicate.
	Countries []string `mapstructure:"countries" yaml:"countries"`

	// PollInterval is the pause between download status checks.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// PollTimeout bounds the whole status-polling phase. Zero means
	// wait indefinitely, matching the behavior of the GBIF web UI.
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

// FilterConfig contains quality-filter settings. Pointer fields are
// optional bounds: nil imposes no restriction.
type FilterConfig struct {
	// BatchSize is the number of occurrence rows read per batch.
	// Batching bounds memory use, it is not a throughput optimization.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// MaxUncertaintyMeters excludes records with coordinate uncertainty
	// at or above this value. Records without uncertainty pass.
	MaxUncertaintyMeters float64 `mapstructure:"max_uncertainty_meters" yaml:"max_uncertainty_meters"`

	// AllowedBasis restricts records to these basisOfRecord values.
	AllowedBasis []string `mapstructure:"allowed_basis" yaml:"allowed_basis"`

	// Optional bounding box. Only the bounds that are set participate.
	LatMin *float64 `mapstructure:"lat_min" yaml:"lat_min"`
	LatMax *float64 `mapstructure:"lat_max" yaml:"lat_max"`
	LonMin *float64 `mapstructure:"lon_min" yaml:"lon_min"`
	LonMax *float64 `mapstructure:"lon_max" yaml:"lon_max"`

	// Optional year range. Setting either bound also drops rows whose
	// year cannot be parsed.
	YearMin *int `mapstructure:"year_min" yaml:"year_min"`
	YearMax *int `mapstructure:"year_max" yaml:"year_max"`
}

// SitesConfig contains the protected-site source layer and the
// column-name mapping for its attribute table.
type SitesConfig struct {
	// SourceFile is the path to the GeoPackage with site polygons, as
	// downloaded from the data provider.
	SourceFile string `mapstructure:"source_file" yaml:"source_file"`

	// SourceLayer is the layer to read from SourceFile. Empty means the
	// first feature layer found.
	SourceLayer string `mapstructure:"source_layer" yaml:"source_layer"`

	// Column names of the four site attributes carried through the
	// pipeline.
	SiteCodeColumn    string `mapstructure:"site_code_column" yaml:"site_code_column"`
	SiteNameColumn    string `mapstructure:"site_name_column" yaml:"site_name_column"`
	MemberStateColumn string `mapstructure:"member_state_column" yaml:"member_state_column"`
	SiteTypeColumn    string `mapstructure:"site_type_column" yaml:"site_type_column"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Dataset:   "IAS",
		Workspace: ".",
		GBIF: GBIFConfig{
			APIURL:       "https://api.gbif.org/v1",
			Countries:    EuropeanCountries(),
			PollInterval: 20 * time.Second,
			PollTimeout:  0,
		},
		Filter: FilterConfig{
			BatchSize:            100_000,
			MaxUncertaintyMeters: 1000,
			AllowedBasis: []string{
				"HUMAN_OBSERVATION",
				"MACHINE_OBSERVATION",
				"PRESERVED_SPECIMEN",
			},
		},
		Sites: SitesConfig{
			SiteCodeColumn:    "SITECODE",
			SiteNameColumn:    "SITENAME",
			MemberStateColumn: "MS",
			SiteTypeColumn:    "SITETYPE",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
	}

	return res
}

// EuropeanCountries returns the default ISO-2 country allow-list:
// the EU member states plus associated states covered by the nature
// directives.
func EuropeanCountries() []string {
	return []string{
		"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR",
		"DE", "GR", "HU", "IE", "IT", "LV", "LT", "LU", "MT", "NL",
		"PL", "PT", "RO", "SK", "SI", "ES", "SE",
		"IS", "NO", "CH", "LI", "GB",
	}
}
