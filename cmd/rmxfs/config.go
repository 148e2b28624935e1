package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envVarPrefix = "RMXFS"

// Config holds the defaults for command-line flags. Each field can be set from
// the environment, e.g. RMXFS_SKIP_UNKNOWN_TYPES=true.
type Config struct {
	SkipUnknownTypes bool `envconfig:"SKIP_UNKNOWN_TYPES" default:"false"`
	CacheBlockSize   uint `envconfig:"CACHE_BLOCK_SIZE"   default:"0"`
	Trim             bool `envconfig:"TRIM"               default:"false"`
	Verbose          bool `envconfig:"VERBOSE"            default:"false"`
	Slugify          bool `envconfig:"SLUGIFY"            default:"false"`
}

// LoadConfig reads the flag defaults from RMXFS_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return Config{}, fmt.Errorf("parsing environment variables: %w", err)
	}
	return c, nil
}
