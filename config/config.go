// Package config loads the scraper configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// THIRTEENF_* environment variables. The result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "THIRTEENF"
	// DefaultFile is read from the working directory when present.
	DefaultFile = "thirteenf.yaml"
)

// Environment names are derived from field names (split_words), never from
// envconfig tags, so no unprefixed variable such as TIMEOUT is consulted.
type Config struct {
	EDGAR         EDGARConfig   `yaml:"edgar"`
	Output        OutputConfig  `yaml:"output"`
	Log           LoggingConfig `yaml:"log"`
	CompaniesFile string        `yaml:"companies_file" split_words:"true" validate:"required"`
}

type EDGARConfig struct {
	BaseURL           string        `yaml:"base_url" split_words:"true" validate:"required,url"`
	UserAgent         string        `yaml:"user_agent" split_words:"true"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond int           `yaml:"requests_per_second" split_words:"true" validate:"gte=0"`
}

type OutputConfig struct {
	Sink        string `yaml:"sink" validate:"oneof=csv sql xlsx"`
	DatabaseURL string `yaml:"database_url" split_words:"true" validate:"required_if=Sink sql"`
	Dir         string `yaml:"dir" validate:"required_if=Sink xlsx"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error"`
}

func Default() Config {
	return Config{
		EDGAR: EDGARConfig{
			BaseURL: "https://www.sec.gov",
			Timeout: 30 * time.Second,
		},
		Output:        OutputConfig{Sink: "csv"},
		Log:           LoggingConfig{Level: "info"},
		CompaniesFile: "companies.txt",
	}
}

// Load builds the configuration. path names the YAML file; when empty,
// THIRTEENF_CONFIG or DefaultFile is used, and a missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultFile
	}

	if err := loadFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.Output.Sink = strings.ToLower(cfg.Output.Sink)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
