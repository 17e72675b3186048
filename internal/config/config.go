package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLibrary     = "base"
	DefaultGasConstant = 8.314
	DefaultTemperature = 300.0
	DefaultLogLevel    = "info"
)

var ErrInvalidConfig = errors.New("config: invalid")

var validate = validator.New()

type Config struct {
	Library     string              `yaml:"library" validate:"required"`
	Normalised  bool                `yaml:"normalised"`
	GasConstant float64             `yaml:"gas_constant" validate:"gt=0"`
	Temperature float64             `yaml:"temperature" validate:"gt=0"`
	LogLevel    string              `yaml:"log_level" validate:"oneof=debug info warn error"`
	Networks    map[string][]string `yaml:"networks,omitempty" validate:"dive,min=1,dive,required"`
}

func DefaultConfig() *Config {
	return &Config{
		Library:     DefaultLibrary,
		Normalised:  true,
		GasConstant: DefaultGasConstant,
		Temperature: DefaultTemperature,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field constraints and reports the first violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e := verrs[0]
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, e.Namespace())
		case "gt":
			return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidConfig, e.Namespace(), e.Param())
		case "oneof":
			return fmt.Errorf("%w: %s must be one of [%s]", ErrInvalidConfig, e.Namespace(), e.Param())
		case "min":
			return fmt.Errorf("%w: %s must have at least %s reaction", ErrInvalidConfig, e.Namespace(), e.Param())
		default:
			return fmt.Errorf("%w: %s failed %s", ErrInvalidConfig, e.Namespace(), e.Tag())
		}
	}
	for name := range c.Networks {
		if name == "" {
			return fmt.Errorf("%w: network with empty name", ErrInvalidConfig)
		}
	}
	return nil
}

// Network returns the reactions of a configured network, falling back to
// the presets.
func (c *Config) Network(name string) ([]string, bool) {
	if rs, ok := c.Networks[name]; ok {
		return rs, true
	}
	return GetPreset(name)
}

// NetworkNames lists configured networks and presets without duplicates.
func (c *Config) NetworkNames() []string {
	seen := make(map[string]bool)
	var out []string
	for name := range c.Networks {
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range ListPresets() {
		if !seen[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
