package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnoccur"

	// OccurrenceMember is the fixed name of the occurrence table inside
	// a Darwin Core Archive.
	OccurrenceMember = "occurrence.txt"

	// PreparedSitesLayer is the layer name of the cleaned protected-site
	// polygons in WGS84.
	PreparedSitesLayer = "sites_epsg4326"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnoccur by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnoccur/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnoccur/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// DatasetsFilePath returns the full path to the datasets.yaml registry.
// Returns ~/.config/gnoccur/datasets.yaml by default.
func DatasetsFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "datasets.yaml")
}

// Workspace layout. Mirrors the data flow of the pipeline:
// raw archive → filtered table → (reports / summaries) → enriched layer
// → metrics tables.

// RawDir returns the directory for raw downloaded archives.
func (c *Config) RawDir() string {
	return filepath.Join(c.Workspace, "data", "raw")
}

// FilteredDir returns the directory for the filtered dataset of the
// configured dataset variant.
func (c *Config) FilteredDir() string {
	return filepath.Join(c.Workspace, "data", "filtered", c.Dataset)
}

// ExternalDir returns the directory for external inputs such as the
// protected-site polygons.
func (c *Config) ExternalDir() string {
	return filepath.Join(c.Workspace, "data", "external", "sites")
}

// ProcessedDir returns the directory for spatially enriched layers of
// the configured dataset variant.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.Workspace, "data", "processed", c.Dataset)
}

// ResultsDir returns the directory for derived result tables and
// reports.
func (c *Config) ResultsDir(stage string) string {
	return filepath.Join(c.Workspace, "results", stage, c.Dataset)
}

// AuditLogDir returns the directory for append-only audit logs.
func (c *Config) AuditLogDir() string {
	return filepath.Join(c.Workspace, "logs", c.Dataset)
}

// RawArchiveFile returns the timestamped path of a raw download
// archive. The stamp keeps distinct download jobs distinguishable.
func (c *Config) RawArchiveFile(stamp string) string {
	name := fmt.Sprintf("GBIF_%s_%s.zip", c.Dataset, stamp)
	return filepath.Join(c.RawDir(), name)
}

// FilteredFile returns the path of the filtered occurrence table.
func (c *Config) FilteredFile() string {
	name := fmt.Sprintf("GBIF_%s_filtered_occurrences.csv", c.Dataset)
	return filepath.Join(c.FilteredDir(), name)
}

// ReportFile returns the path of the filtering summary report.
func (c *Config) ReportFile() string {
	name := fmt.Sprintf("GBIF_%s_summary_report.txt", c.Dataset)
	return filepath.Join(c.ResultsDir("filtering"), name)
}

// SummaryFile returns the path of one of the group-by-count summary
// tables (by "species", "country", "year" or "basis").
func (c *Config) SummaryFile(kind string) string {
	name := fmt.Sprintf("GBIF_%s_%s_summary.csv", c.Dataset, kind)
	return filepath.Join(c.ResultsDir("summary"), name)
}

// AuditLogFile returns the path of the append-only spatial validation
// log.
func (c *Config) AuditLogFile() string {
	name := fmt.Sprintf("%s_spatial_validation.log", c.Dataset)
	return filepath.Join(c.AuditLogDir(), name)
}

// PreparedSitesFile returns the path of the cleaned protected-site
// GeoPackage.
func (c *Config) PreparedSitesFile() string {
	return filepath.Join(c.ExternalDir(), "sites_prepared.gpkg")
}

// EnrichedFile returns the path of the spatially enriched occurrence
// GeoPackage.
func (c *Config) EnrichedFile() string {
	name := fmt.Sprintf("GBIF_%s_with_sites.gpkg", c.Dataset)
	return filepath.Join(c.ProcessedDir(), name)
}

// EnrichedLayer returns the layer name of the enriched occurrences
// inside the GeoPackage.
func (c *Config) EnrichedLayer() string {
	return fmt.Sprintf("gbif_%s_with_sites", strings.ToLower(c.Dataset))
}

// MetricsFile returns the path of one of the metrics tables
// ("sites", "ms", "species", "sitetype", "sites_temporal_gaps").
func (c *Config) MetricsFile(kind string) string {
	name := fmt.Sprintf("%s_metrics_%s.csv", kind, c.Dataset)
	if kind == "sites_temporal_gaps" {
		name = fmt.Sprintf("sites_temporal_gaps_%s.csv", c.Dataset)
	}
	return filepath.Join(c.ResultsDir("metrics"), name)
}
