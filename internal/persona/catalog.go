// Package persona holds the persona catalog and the tier-aware prompt adapter.
package persona

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ErrNotFound is returned when a persona lookup fails.
var ErrNotFound = errors.New("persona not found")

// Catalog is a read-only set of personas and the influences they draw on.
type Catalog struct {
	personas   []models.Persona
	index      map[string]int
	influences map[string]Influence
}

// NewCatalog builds a catalog. Later personas with a duplicate key replace earlier ones.
func NewCatalog(personas []models.Persona, influences map[string]Influence) (*Catalog, error) {
	c := &Catalog{
		index:      make(map[string]int),
		influences: make(map[string]Influence, len(influences)),
	}
	for k, v := range influences {
		c.influences[k] = v
	}
	for _, p := range personas {
		if p.Key == "" {
			return nil, errors.New("persona with empty key")
		}
		p.Key = normalize(p.Key)
		p.Profile.Influences = append([]string(nil), p.Profile.Influences...)
		if i, ok := c.index[p.Key]; ok {
			c.personas[i] = p
			continue
		}
		c.index[p.Key] = len(c.personas)
		c.personas = append(c.personas, p)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultPersonas(), DefaultInfluences())
	if err != nil {
		panic(fmt.Sprintf("built-in persona catalog is invalid: %v", err))
	}
	return c
}

// Validate checks that every persona has exactly one valid role and every role is staffed.
func (c *Catalog) Validate() error {
	staffed := make(map[models.Role]bool)
	for _, p := range c.personas {
		if !p.Role.Valid() {
			return fmt.Errorf("persona %s has invalid role %q", p.Key, p.Role)
		}
		staffed[p.Role] = true
	}
	for _, r := range models.AllRoles() {
		if !staffed[r] {
			return fmt.Errorf("no persona serves role %s", r)
		}
	}
	return nil
}

// List returns every persona in catalog order.
func (c *Catalog) List() []models.Persona {
	out := make([]models.Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// Lookup finds a persona by key, display name, or title, case-insensitively.
func (c *Catalog) Lookup(name string) (models.Persona, error) {
	norm := normalize(name)
	if i, ok := c.index[norm]; ok {
		return c.personas[i], nil
	}
	for _, p := range c.personas {
		if normalize(p.Name) == norm || normalize(p.Title) == norm {
			return p, nil
		}
	}
	return models.Persona{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// RoleOf returns the single role a persona maps to.
func (c *Catalog) RoleOf(name string) (models.Role, error) {
	p, err := c.Lookup(name)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// ForRole returns the personas serving a role, lead first.
func (c *Catalog) ForRole(role models.Role) []models.Persona {
	var out []models.Persona
	for _, p := range c.personas {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

// Lead returns the default persona for a role: the first one in catalog order.
func (c *Catalog) Lead(role models.Role) (models.Persona, error) {
	for _, p := range c.personas {
		if p.Role == role {
			return p, nil
		}
	}
	return models.Persona{}, fmt.Errorf("%w: no persona for role %s", ErrNotFound, role)
}

// Influence returns an influence by key.
func (c *Catalog) Influence(key string) (Influence, bool) {
	inf, ok := c.influences[key]
	return inf, ok
}

// Influences returns a copy of the influence table.
func (c *Catalog) Influences() map[string]Influence {
	out := make(map[string]Influence, len(c.influences))
	for k, v := range c.influences {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "dr. ")
	return strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(s)
}
