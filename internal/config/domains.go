package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CPCCode is one CPC classification entry under a domain.
type CPCCode struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description,omitempty"`
}

// Domain groups the CPC codes describing one technology area.
type Domain struct {
	Description string    `yaml:"description,omitempty"`
	CPCCodes    []CPCCode `yaml:"cpc_codes"`
}

// DomainConfig maps technology domain names to their CPC codes. Stored in
// .patentstack/domains.yml and used to scope fetches by classification.
type DomainConfig struct {
	Domains map[string]Domain `yaml:"domains"`
}

// LoadDomains reads a domains.yml file. A missing file yields an empty
// config, meaning fetches run without a CPC filter.
func LoadDomains(path string) (*DomainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &DomainConfig{}, nil
		}
		return nil, fmt.Errorf("reading domains config: %w", err)
	}

	var dc DomainConfig
	if err := yaml.Unmarshal(data, &dc); err != nil {
		return nil, fmt.Errorf("parsing domains config: %w", err)
	}

	return &dc, nil
}

// Save writes the domain config to the given path.
func (dc *DomainConfig) Save(path string) error {
	data, err := yaml.Marshal(dc)
	if err != nil {
		return fmt.Errorf("encoding domains config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing domains config: %w", err)
	}
	return nil
}

// Names returns the defined domain names, sorted.
func (dc *DomainConfig) Names() []string {
	names := make([]string, 0, len(dc.Domains))
	for name := range dc.Domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CodesFor returns the exact CPC codes for the given domains. Passing no
// domains returns codes across all domains. Unknown domains are an error.
func (dc *DomainConfig) CodesFor(domains []string) ([]string, error) {
	if len(domains) == 0 {
		domains = dc.Names()
	}

	var codes []string
	for _, name := range domains {
		dom, ok := dc.Domains[name]
		if !ok {
			return nil, fmt.Errorf("unknown domain: %s (available: %v)", name, dc.Names())
		}
		for _, c := range dom.CPCCodes {
			if c.Code != "" {
				codes = append(codes, c.Code)
			}
		}
	}
	return codes, nil
}
