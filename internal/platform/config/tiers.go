package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"carelink/internal/quota"
)

// tierFile is the TIER_CONFIG_PATH document:
//
//	tiers:
//	  free:     {max_active_listings: 2,  max_featured_listings: 0}
//	  standard: {max_active_listings: 10, max_featured_listings: 2}
//	  premium:  {max_active_listings: 50, max_featured_listings: 10}
type tierFile struct {
	Tiers quota.TierTable `yaml:"tiers"`
}

// LoadTierTable reads tier limits from path. An empty path returns the
// default table. Tiers missing from the file keep their default limits.
func LoadTierTable(path string) (quota.TierTable, error) {
	table := quota.DefaultTierTable()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier config: %w", err)
	}
	var doc tierFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tier config: %w", err)
	}
	for tier, limits := range doc.Tiers {
		table[tier] = limits
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("tier config %s: %w", path, err)
	}
	return table, nil
}
