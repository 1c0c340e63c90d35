package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_aliases.yaml
var defaultAliasesYAML []byte

// OutletEntry is one registered outlet and the spellings it is known under.
type OutletEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// CriticEntry lists distinct recorded spellings of one person.
type CriticEntry struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Aliases is the decoded alias reference data.
type Aliases struct {
	Version int           `yaml:"version"`
	Outlets []OutletEntry `yaml:"outlets"`
	Critics []CriticEntry `yaml:"critics"`
}

// DefaultAliases returns the alias tables bundled with the binary.
func DefaultAliases() (Aliases, error) {
	return ParseAliases(defaultAliasesYAML)
}

// LoadAliases reads outlet and critic alias files. An empty path keeps the
// corresponding embedded table.
func LoadAliases(outletPath, criticPath string) (Aliases, error) {
	base, err := DefaultAliases()
	if err != nil {
		return Aliases{}, fmt.Errorf("parse embedded aliases: %w", err)
	}
	if path := strings.TrimSpace(outletPath); path != "" {
		custom, err := loadAliasFile(path)
		if err != nil {
			return Aliases{}, fmt.Errorf("outlet aliases: %w", err)
		}
		base.Outlets = custom.Outlets
		if custom.Version > base.Version {
			base.Version = custom.Version
		}
	}
	if path := strings.TrimSpace(criticPath); path != "" {
		custom, err := loadAliasFile(path)
		if err != nil {
			return Aliases{}, fmt.Errorf("critic aliases: %w", err)
		}
		base.Critics = custom.Critics
		if custom.Version > base.Version {
			base.Version = custom.Version
		}
	}
	return base, nil
}

func loadAliasFile(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, fmt.Errorf("read %s: %w", path, err)
	}
	parsed, err := ParseAliases(data)
	if err != nil {
		return Aliases{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

// ParseAliases decodes and validates an alias document.
func ParseAliases(data []byte) (Aliases, error) {
	var doc Aliases
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Aliases{}, err
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return Aliases{}, err
	}
	return doc, nil
}

func (a *Aliases) normalize() {
	for i := range a.Outlets {
		a.Outlets[i].ID = strings.TrimSpace(a.Outlets[i].ID)
		a.Outlets[i].Name = strings.TrimSpace(a.Outlets[i].Name)
		a.Outlets[i].Aliases = trimList(a.Outlets[i].Aliases)
	}
	for i := range a.Critics {
		a.Critics[i].Name = strings.TrimSpace(a.Critics[i].Name)
		a.Critics[i].Aliases = trimList(a.Critics[i].Aliases)
	}
}

// Validate rejects entries that would make alias resolution ambiguous.
func (a Aliases) Validate() error {
	ids := make(map[string]struct{}, len(a.Outlets))
	for i, entry := range a.Outlets {
		if entry.ID == "" {
			return fmt.Errorf("outlets[%d].id is required", i)
		}
		if _, dup := ids[entry.ID]; dup {
			return fmt.Errorf("outlets[%d].id %q is duplicated", i, entry.ID)
		}
		ids[entry.ID] = struct{}{}
	}
	for i, entry := range a.Critics {
		if entry.Name == "" {
			return fmt.Errorf("critics[%d].name is required", i)
		}
		if len(entry.Aliases) == 0 {
			return fmt.Errorf("critics[%d] must list at least one alias", i)
		}
	}
	return nil
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
