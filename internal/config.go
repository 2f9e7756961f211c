package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

type PageDbConfig struct {
	AppName string `mapstructure:"app_name"`
	Debug   bool   `mapstructure:"debug"`

	Storage struct {
		Workdir  string `mapstructure:"workdir"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"storage"`

	Index struct {
		NumBuckets int `mapstructure:"num_buckets"`
	} `mapstructure:"index"`
}

func LoadConfig(path string) (*PageDbConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "pagedb")
	v.SetDefault("storage.workdir", "./data")
	v.SetDefault("storage.pool_size", 128)
	v.SetDefault("index.num_buckets", 16)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg PageDbConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
