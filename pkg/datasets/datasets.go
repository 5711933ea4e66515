// Package datasets defines the schema for datasets.yaml, the registry
// of dataset variants the pipeline can run against (for example BIRDS,
// HABITATS, IAS). Each variant names its species-list file and a short
// description; all other behavior comes from the main configuration.
package datasets

import (
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
	"gopkg.in/yaml.v3"
)

// Registry represents the complete datasets.yaml file.
type Registry struct {
	// Datasets is the list of known dataset variants.
	Datasets []Dataset `yaml:"datasets"`
}

// Dataset describes one dataset variant.
type Dataset struct {
	// Name identifies the dataset; it is matched case-insensitively
	// and used in file names and directory layout.
	Name string `yaml:"name"`

	// SpeciesFile is the path of the CSV with the species checklist
	// whose taxon keys drive the GBIF download.
	SpeciesFile string `yaml:"species_file"`

	// Description is a short human-readable summary.
	Description string `yaml:"description,omitempty"`
}

// Load reads and parses a datasets.yaml file.
func Load(path string) (*Registry, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, &gn.Error{
			Code: errcode.DatasetsConfigError,
			Msg:  "Cannot read datasets file " + path,
			Err:  err,
		}
	}
	var reg Registry
	if err = yaml.Unmarshal(bs, &reg); err != nil {
		return nil, &gn.Error{
			Code: errcode.DatasetsConfigError,
			Msg:  "Cannot parse datasets file " + path,
			Err:  err,
		}
	}
	return &reg, nil
}

// Get finds a dataset variant by name, case-insensitively. An unknown
// name is a configuration error.
func (r *Registry) Get(name string) (Dataset, error) {
	for _, ds := range r.Datasets {
		if strings.EqualFold(ds.Name, name) {
			return ds, nil
		}
	}
	return Dataset{}, &gn.Error{
		Code: errcode.UnknownDatasetError,
		Msg:  "Unknown dataset '" + name + "'; known datasets: " + r.names(),
	}
}

// Names returns the registered dataset names in file order.
func (r *Registry) Names() []string {
	res := make([]string, len(r.Datasets))
	for i, ds := range r.Datasets {
		res[i] = ds.Name
	}
	return res
}

func (r *Registry) names() string {
	return strings.Join(r.Names(), ", ")
}
