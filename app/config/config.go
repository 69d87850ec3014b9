package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds are the per-stage similarity cutoffs, in [0,100]. Only the
// city and street stages are fuzzy; postal and house/orientation lookups
// are always exact.
type Thresholds struct {
	City   int `yaml:"city" json:"city"`
	Street int `yaml:"street" json:"street"`
}

// DatasetCfg points at the reference CSV and controls refresh behaviour.
type DatasetCfg struct {
	Source          string `yaml:"source" json:"source"`
	RefreshInterval string `yaml:"refresh_interval" json:"refresh_interval"`
}

// CacheCfg tunes result caching.
type CacheCfg struct {
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`
	L1Size     int `yaml:"l1_size" json:"l1_size"`
}

// ValidatorCfg is the tuning file loaded at startup.
type ValidatorCfg struct {
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Dataset    DatasetCfg `yaml:"dataset" json:"dataset"`
	Cache      CacheCfg   `yaml:"cache" json:"cache"`
}

var C ValidatorCfg

// Load reads the tuning file and applies environment overrides on top.
func Load(path string) error {
	C = defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}

	// ENV overrides
	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		C.Dataset.Source = v
	}
	if v, err := strconv.Atoi(os.Getenv("CITY_THRESHOLD")); err == nil {
		C.Thresholds.City = v
	}
	if v, err := strconv.Atoi(os.Getenv("STREET_THRESHOLD")); err == nil {
		C.Thresholds.Street = v
	}
	return nil
}

func defaults() ValidatorCfg {
	return ValidatorCfg{
		Thresholds: Thresholds{City: 80, Street: 85},
		Dataset: DatasetCfg{
			Source:          "https://raw.githubusercontent.com/radekstursa/validator_of_addresses/main/addresses_praha.csv",
			RefreshInterval: "24h",
		},
		Cache: CacheCfg{TTLSeconds: 3600, L1Size: 10000},
	}
}

// RefreshInterval parses the configured dataset refresh interval, falling
// back to daily when unset or malformed.
func RefreshInterval() time.Duration {
	d, err := time.ParseDuration(C.Dataset.RefreshInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// CacheTTL returns the result-cache TTL.
func CacheTTL() time.Duration {
	if C.Cache.TTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(C.Cache.TTLSeconds) * time.Second
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
