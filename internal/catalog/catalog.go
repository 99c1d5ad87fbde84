package catalog

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultData embed.FS

const (
	vehiclesFile = "vehicles.yaml"
	profilesFile = "profiles.yaml"
	limitsFile   = "limits.yaml"
)

// Catalog bundles the three injected tables. Treat a loaded Catalog as
// immutable; a limit-year update is a new Load, never a field mutation.
type Catalog struct {
	TaxYear  int
	Vehicles []Vehicle
	Profiles []Profile
	Limits   LimitTable

	byName map[string]int
	byID   map[int]int
}

type vehiclesDoc struct {
	TaxYear  int       `yaml:"tax_year"`
	Vehicles []Vehicle `yaml:"vehicles"`
}

type profilesDoc struct {
	Profiles []Profile `yaml:"profiles"`
}

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return load(func(name string) ([]byte, error) {
		return defaultData.ReadFile("data/" + name)
	})
}

// Load reads the three catalog files from dir. Missing files fall back to the
// embedded defaults so a deployment can override just the limit table.
func Load(dir string) (*Catalog, error) {
	return load(func(name string) ([]byte, error) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return defaultData.ReadFile("data/" + name)
		}
		return data, err
	})
}

func load(read func(name string) ([]byte, error)) (*Catalog, error) {
	var vd vehiclesDoc
	if err := readYAML(read, vehiclesFile, &vd); err != nil {
		return nil, err
	}
	var pd profilesDoc
	if err := readYAML(read, profilesFile, &pd); err != nil {
		return nil, err
	}
	var lt LimitTable
	if err := readYAML(read, limitsFile, &lt); err != nil {
		return nil, err
	}

	c := &Catalog{
		TaxYear:  vd.TaxYear,
		Vehicles: vd.Vehicles,
		Profiles: pd.Profiles,
		Limits:   lt,
		byName:   make(map[string]int, len(vd.Vehicles)),
		byID:     make(map[int]int, len(pd.Profiles)),
	}
	for i, v := range c.Vehicles {
		c.byName[v.Name] = i
	}
	for i, p := range c.Profiles {
		c.byID[p.ID] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readYAML(read func(string) ([]byte, error), name string, out any) error {
	data, err := read(name)
	if err != nil {
		return fmt.Errorf("read catalog file %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse catalog file %s: %w", name, err)
	}
	return nil
}

// Vehicle looks up a catalog entry by name.
func (c *Catalog) Vehicle(name string) (Vehicle, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Vehicle{}, false
	}
	return c.Vehicles[i], true
}

// Profile looks up a profile by its 1-9 id.
func (c *Catalog) Profile(id int) (Profile, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Profile{}, false
	}
	return c.Profiles[i], true
}

// Overflow returns the always-present unlimited overflow vehicle.
func (c *Catalog) Overflow() (Vehicle, bool) {
	for _, v := range c.Vehicles {
		if v.Domain == DomainOverflow {
			return v, true
		}
	}
	return Vehicle{}, false
}

// Validate checks the cross-references inside the catalog data. Any failure
// is a *ConfigError: the data shipped with the deployment is wrong and no
// allocation should run against it.
func (c *Catalog) Validate() error {
	if len(c.Profiles) != 9 {
		return &ConfigError{Table: profilesFile, Detail: fmt.Sprintf("expected 9 profiles, found %d", len(c.Profiles))}
	}
	for id := 1; id <= 9; id++ {
		if _, ok := c.byID[id]; !ok {
			return &ConfigError{Table: profilesFile, Detail: fmt.Sprintf("profile id %d missing", id)}
		}
	}
	if _, ok := c.Overflow(); !ok {
		return &ConfigError{Table: vehiclesFile, Detail: "no overflow vehicle defined"}
	}
	for _, v := range c.Vehicles {
		if v.SharesLimitWith == "" {
			continue
		}
		if _, ok := c.byName[v.SharesLimitWith]; !ok {
			return &ConfigError{Table: vehiclesFile, Ref: v.SharesLimitWith,
				Detail: fmt.Sprintf("shared-limit partner of %q not in catalog", v.Name)}
		}
	}
	for _, p := range c.Profiles {
		for _, name := range p.BasePriority {
			if _, ok := c.byName[name]; !ok {
				return &ConfigError{Table: profilesFile, Ref: name,
					Detail: fmt.Sprintf("priority entry for profile %d not in vehicle catalog", p.ID)}
			}
		}
	}
	return nil
}
