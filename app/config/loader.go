package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of the pipeline configuration
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Load() (*Config, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	if err := l.validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	return &config, nil
}

func (l *Loader) setDefaults(config *Config) {
	if config.Analysis.ResponseFormat == "" {
		config.Analysis.ResponseFormat = ResponseFormatText
	}
	if config.Analysis.PromptPreset == "" {
		config.Analysis.PromptPreset = "general"
	}
	if config.Analysis.MaxItems == 0 {
		config.Analysis.MaxItems = 5
	}
}

func (l *Loader) validate(config *Config) error {
	if config.Feed.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if _, err := url.Parse(config.Feed.URL); err != nil {
		return fmt.Errorf("feed URL is not a valid URL: %w", err)
	}

	if len(config.Assets) == 0 {
		return fmt.Errorf("at least one tracked asset is required")
	}
	seen := make(map[string]bool)
	for _, asset := range config.Assets {
		if asset.Code == "" {
			return fmt.Errorf("asset code is required")
		}
		if seen[asset.Code] {
			return fmt.Errorf("duplicate asset code '%s'", asset.Code)
		}
		seen[asset.Code] = true
		if len(asset.Keywords) == 0 {
			return fmt.Errorf("asset '%s' has no keywords", asset.Code)
		}
	}

	switch config.Analysis.ResponseFormat {
	case ResponseFormatText, ResponseFormatJSON:
	default:
		return fmt.Errorf("unsupported response format '%s'", config.Analysis.ResponseFormat)
	}

	return nil
}

// Endpoints returns the ordered list of fetch endpoints: each configured
// proxy with the URL-encoded feed URL appended, or the feed URL itself when
// no proxies are configured.
func (c *Config) Endpoints() []string {
	if len(c.Feed.Proxies) == 0 {
		return []string{c.Feed.URL}
	}

	endpoints := make([]string, 0, len(c.Feed.Proxies))
	for _, proxy := range c.Feed.Proxies {
		endpoints = append(endpoints, proxy+url.QueryEscape(c.Feed.URL))
	}
	return endpoints
}

// GetAsset returns the tracked asset with the given code, or nil.
// Codes match case-insensitively.
func (c *Config) GetAsset(code string) *Asset {
	for i := range c.Assets {
		if strings.EqualFold(c.Assets[i].Code, code) {
			return &c.Assets[i]
		}
	}
	return nil
}

// AssetCodes returns the codes of all tracked assets in configuration order
func (c *Config) AssetCodes() []string {
	codes := make([]string, 0, len(c.Assets))
	for _, asset := range c.Assets {
		codes = append(codes, asset.Code)
	}
	return codes
}
