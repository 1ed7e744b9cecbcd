package manifest

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/guard"
)

// MinCatalogVersion is the oldest catalog format this build accepts.
// Catalogs below it predate the guard vocabulary and are refused.
const MinCatalogVersion = "1.0.0"

// OperatorCatalog is a versioned set of operator descriptors, usually
// shipped alongside the contracts they verify.
type OperatorCatalog struct {
	CatalogVersion string          `json:"catalog_version" yaml:"catalog_version"`
	Operators      []OperatorEntry `json:"operators" yaml:"operators"`
}

// OperatorEntry is the on-disk form of one operator descriptor. The
// latency budget is a Go duration string ("500us", "1ms").
type OperatorEntry struct {
	ID         string           `json:"id" yaml:"id"`
	Pattern    int              `json:"pattern" yaml:"pattern"`
	Name       string           `json:"name" yaml:"name"`
	Category   string           `json:"category" yaml:"category"`
	Properties guard.Properties `json:"properties" yaml:"properties"`
	MaxLatency string           `json:"max_latency" yaml:"max_latency"`
	Guards     []string         `json:"guards" yaml:"guards"`
}

// Descriptor converts the entry into its registry form.
func (e OperatorEntry) Descriptor() (guard.OperatorDescriptor, error) {
	latency, err := time.ParseDuration(e.MaxLatency)
	if err != nil {
		return guard.OperatorDescriptor{}, fmt.Errorf("operator %s: max_latency: %w", e.ID, err)
	}
	guards := make([]guard.GuardType, len(e.Guards))
	for i, g := range e.Guards {
		guards[i] = guard.GuardType(g)
	}
	return guard.OperatorDescriptor{
		ID:         e.ID,
		Pattern:    e.Pattern,
		Name:       e.Name,
		Category:   guard.Category(e.Category),
		Properties: e.Properties,
		MaxLatency: latency,
		Guards:     guards,
	}, nil
}

// Apply registers every catalog entry into reg, stopping at the first
// invalid one.
func (c *OperatorCatalog) Apply(reg *guard.Registry) error {
	for _, entry := range c.Operators {
		desc, err := entry.Descriptor()
		if err != nil {
			return err
		}
		if err := reg.Register(desc); err != nil {
			return fmt.Errorf("operator %s: %w", entry.ID, err)
		}
	}
	return nil
}

// LoadCatalog reads and parses an operator catalog from disk.
func (l *Loader) LoadCatalog(path string) (*OperatorCatalog, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.ParseCatalog(data)
}

// ParseCatalog validates raw YAML against the catalog schema, decodes it,
// and enforces the minimum supported catalog version.
func (l *Loader) ParseCatalog(raw []byte) (*OperatorCatalog, error) {
	if err := validate(l.catalogSchema, raw, "operator catalog"); err != nil {
		return nil, err
	}
	var c OperatorCatalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("operator catalog: decode: %w", err)
	}
	if err := checkCatalogVersion(c.CatalogVersion); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkCatalogVersion(got string) error {
	v, err := semver.NewVersion(got)
	if err != nil {
		return fmt.Errorf("operator catalog: invalid catalog_version %q: %w", got, err)
	}
	min := semver.MustParse(MinCatalogVersion)
	if v.LessThan(min) {
		return fmt.Errorf("operator catalog: version %s below minimum supported %s", got, MinCatalogVersion)
	}
	return nil
}
