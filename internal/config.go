package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type S3Config struct {
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// Config is the analysis run configuration. Zero-valued fields in a
// loaded file keep the defaults.
type Config struct {
	Manifests []string    `yaml:"manifests,omitempty"`
	Format    string      `yaml:"format,omitempty"`
	Output    string      `yaml:"output,omitempty"`
	S3        S3Config    `yaml:"s3,omitempty"`
	Redis     RedisConfig `yaml:"redis,omitempty"`
	LogFile   string      `yaml:"log_file,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Format: "text",
		S3: S3Config{
			Region:    "us-east-1",
			PathStyle: true,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "chunkshare",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	if path == "" {
		return conf, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Format {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}
	return nil
}
