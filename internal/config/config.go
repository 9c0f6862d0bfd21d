// Package config loads process configuration from a YAML file via viper,
// the way the pack's own internal config loader does.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the process-level configuration document (novadb.yaml).
type Config struct {
	Storage struct {
		BasePath string `mapstructure:"base_path"`
		PageSize int    `mapstructure:"page_size"` // informational; the codec fixes PAGE_SIZE=4096
	} `mapstructure:"storage"`
	BufferPool struct {
		PoolSize int `mapstructure:"pool_size"`
	} `mapstructure:"bufferpool"`
	Server struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"server"`
	Catalog struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"catalog"`
}

// Load reads and unmarshals the YAML config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}
	return &cfg, nil
}
