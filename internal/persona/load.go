package persona

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// File is the on-disk persona catalog format.
type File struct {
	Influences map[string]Influence `yaml:"influences"`
	Personas   []models.Persona     `yaml:"personas"`
}

// LoadCatalog reads a YAML persona file and merges it over the built-in catalog.
// Personas with a known key replace the built-in entry; new keys are appended.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog is LoadCatalog on in-memory YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse persona file: %w", err)
	}

	influences := DefaultInfluences()
	for k, v := range f.Influences {
		influences[k] = v
	}

	personas := defaultPersonas()
	for _, p := range f.Personas {
		role, ok := models.ParseRole(string(p.Role))
		if !ok {
			return nil, fmt.Errorf("persona %s: unknown role %q", p.Key, p.Role)
		}
		p.Role = role
		if p.Name == "" {
			p.Name = p.Key
		}
		personas = append(personas, p)
	}
	return NewCatalog(personas, influences)
}
