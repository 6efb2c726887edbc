package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoOrgs is returned when the registry has no organizations.
var ErrNoOrgs = errors.New("no organizations configured")

// OrgsConfig holds dynamic organization definitions (read/write).
type OrgsConfig struct {
	Orgs map[string]OrgEntry `yaml:"orgs,omitempty"`
}

// OrgEntry holds configuration for a specific organization.
type OrgEntry struct {
	Collection  string `yaml:"collection"`
	Description string `yaml:"description,omitempty"`
}

// LoadOrgs loads the organization registry from the .resil directory.
func LoadOrgs(basePath string) (*OrgsConfig, error) {
	data, err := os.ReadFile(OrgsFilePath(basePath))
	if os.IsNotExist(err) {
		return &OrgsConfig{
			Orgs: make(map[string]OrgEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading orgs file: %w", err)
	}

	var cfg OrgsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing orgs file: %w", err)
	}

	if cfg.Orgs == nil {
		cfg.Orgs = make(map[string]OrgEntry)
	}

	return &cfg, nil
}

// Save writes the registry to the orgs file.
func (o *OrgsConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshaling orgs config: %w", err)
	}

	if err := os.WriteFile(OrgsFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing orgs file: %w", err)
	}

	return nil
}

// Add adds an organization to the registry.
func (o *OrgsConfig) Add(name string, entry OrgEntry) {
	if o.Orgs == nil {
		o.Orgs = make(map[string]OrgEntry)
	}
	o.Orgs[name] = entry
}

// Remove removes an organization from the registry.
func (o *OrgsConfig) Remove(name string) {
	if o.Orgs != nil {
		delete(o.Orgs, name)
	}
}

// Names returns the registered organization names in sorted order.
func (o *OrgsConfig) Names() []string {
	names := make([]string, 0, len(o.Orgs))
	for name := range o.Orgs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the configuration for a specific organization.
func (o *OrgsConfig) Get(name string) (*OrgEntry, error) {
	if len(o.Orgs) == 0 {
		return nil, ErrNoOrgs
	}

	entry, ok := o.Orgs[name]
	if !ok {
		names := o.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("org %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// GetCollection returns the Qdrant collection name for an organization.
func (o *OrgsConfig) GetCollection(name string) (string, error) {
	entry, err := o.Get(name)
	if err != nil {
		return "", err
	}
	return entry.Collection, nil
}

// Exists checks if an organization is registered.
func (o *OrgsConfig) Exists(name string) bool {
	if o.Orgs == nil {
		return false
	}
	_, ok := o.Orgs[name]
	return ok
}

// OrgsExists checks if an orgs file exists in the given path.
func OrgsExists(basePath string) bool {
	_, err := os.Stat(filepath.Clean(OrgsFilePath(basePath)))
	return err == nil
}
