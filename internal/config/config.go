// Package config loads the application configuration from YAML with
// defaults, environment indirection and validation.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatchingConfig selects the sequence-matching mode.
type MatchingConfig struct {
	// PerLine runs token matching over one sequence per visual line
	// instead of the whole page.
	PerLine bool `yaml:"per_line"`
}

// LoggingConfig configures logger construction.
type LoggingConfig struct {
	Style string `yaml:"style"` // terminal, json or noop
	Level string `yaml:"level"`
}

// Config is the root application configuration.
type Config struct {
	// Categories maps category name to its extraction description,
	// in declaration order.
	Categories []Category `yaml:"-"`

	// Colors maps category name to an RGB stroke color in [0, 1].
	Colors map[string][]float64 `yaml:"colors"`

	Matching MatchingConfig `yaml:"matching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Category is one extraction category with its description.
type Category struct {
	Name        string
	Description string
}

// raw mirrors the YAML document; categories decode via yaml.Node so
// declaration order survives.
type raw struct {
	Categories yaml.Node            `yaml:"categories"`
	Colors     map[string][]float64 `yaml:"colors"`
	Matching   MatchingConfig       `yaml:"matching"`
	Logging    LoggingConfig        `yaml:"logging"`
}

// Default returns the built-in configuration: the four stock categories
// with their colors, whole-page matching, terminal logging.
func Default() *Config {
	return &Config{
		Categories: []Category{
			{"contributions", "Significant advancements, novel methods, or key findings presented in the paper."},
			{"limitations", "Identified shortcomings, constraints, or areas where the research or methodology falls short."},
			{"claims", "Specific assertions or hypotheses made by the authors that are central to the paper's arguments."},
			{"evidence", "Data, experimental results, or logical arguments provided to support the claims made."},
		},
		Colors: map[string][]float64{
			"contributions": {1.0, 1.0, 0.0},
			"limitations":   {1.0, 0.6, 0.0},
			"claims":        {0.2, 0.4, 1.0},
			"evidence":      {0.0, 0.8, 0.3},
		},
		Logging: LoggingConfig{Style: "terminal", Level: "info"},
	}
}

// Load reads a YAML config file, expands ENV: references, applies
// defaults for absent sections and validates the result. A missing
// file is an error; use Default for the no-config case.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var r raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg := Default()
	if r.Colors != nil {
		cfg.Colors = r.Colors
	}
	cfg.Matching = r.Matching
	if r.Logging.Style != "" {
		cfg.Logging.Style = r.Logging.Style
	}
	if r.Logging.Level != "" {
		cfg.Logging.Level = r.Logging.Level
	}

	if r.Categories.Kind != 0 {
		categories, err := decodeCategories(&r.Categories)
		if err != nil {
			return nil, err
		}
		if len(categories) > 0 {
			cfg.Categories = categories
		}
	}

	if err := expandEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeCategories walks the mapping node pairwise to preserve the
// order categories were declared in.
func decodeCategories(node *yaml.Node) ([]Category, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories must be a mapping")
	}
	var categories []Category
	for i := 0; i+1 < len(node.Content); i += 2 {
		categories = append(categories, Category{
			Name:        node.Content[i].Value,
			Description: node.Content[i+1].Value,
		})
	}
	return categories, nil
}

// expandEnv resolves "ENV:NAME" string values from the environment.
// A referenced variable that is not set is a load error rather than an
// empty value, so misconfiguration surfaces immediately.
func expandEnv(cfg *Config) error {
	for i, c := range cfg.Categories {
		expanded, err := expandValue(c.Description)
		if err != nil {
			return err
		}
		cfg.Categories[i].Description = expanded
	}
	return nil
}

func expandValue(value string) (string, error) {
	if !strings.HasPrefix(value, "ENV:") {
		return value, nil
	}
	name := strings.TrimPrefix(value, "ENV:")
	resolved, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("environment variable %q referenced in the configuration is not set", name)
	}
	return resolved, nil
}

// Validate checks that every category has a well-formed highlight
// color. Quotes in a category without a color cannot be painted, so a
// gap here is a configuration error, not a runtime surprise.
func (c *Config) Validate() error {
	var missing []string
	for _, category := range c.Categories {
		rgb, ok := c.Colors[category.Name]
		if !ok {
			missing = append(missing, category.Name)
			continue
		}
		if len(rgb) != 3 {
			return fmt.Errorf("color for category %q must have 3 components, got %d", category.Name, len(rgb))
		}
		for _, component := range rgb {
			if component < 0 || component > 1 {
				return fmt.Errorf("color component %v for category %q outside [0, 1]", component, category.Name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("highlight colors missing for categories: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Color returns the configured stroke color for a category.
func (c *Config) Color(category string) ([3]float64, bool) {
	rgb, ok := c.Colors[category]
	if !ok || len(rgb) != 3 {
		return [3]float64{}, false
	}
	return [3]float64{rgb[0], rgb[1], rgb[2]}, true
}
