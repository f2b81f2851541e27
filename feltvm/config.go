// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package feltvm

import (
	"encoding/json"
	"fmt"
)

const (
	defaultSelectorCacheSize = 256
	defaultMetricsNamespace  = Name
)

// Config tunes a VM. Zero-valued fields fall back to DefaultConfig.
type Config struct {
	SelectorCacheSize int    `json:"selectorCacheSize"`
	MetricsNamespace  string `json:"metricsNamespace"`
}

func DefaultConfig() Config {
	return Config{
		SelectorCacheSize: defaultSelectorCacheSize,
		MetricsNamespace:  defaultMetricsNamespace,
	}
}

// ParseConfig reads a JSON config over the defaults.
func ParseConfig(configData []byte) (Config, error) {
	config := DefaultConfig()
	if len(configData) == 0 {
		return config, nil
	}
	if err := json.Unmarshal(configData, &config); err != nil {
		return Config{}, fmt.Errorf("couldn't parse config: %w", err)
	}
	return config.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SelectorCacheSize <= 0 {
		c.SelectorCacheSize = d.SelectorCacheSize
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = d.MetricsNamespace
	}
	return c
}
