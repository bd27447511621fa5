package config

// Config represents the complete pipeline configuration
type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Assets   []Asset        `yaml:"assets"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// FeedConfig describes the upstream news feed and its mirrors
type FeedConfig struct {
	URL string `yaml:"url"`
	// Proxies are endpoint prefixes the feed URL is appended to,
	// URL-encoded. Order defines failover priority.
	Proxies []string `yaml:"proxies"`
}

// Asset is a tracked market instrument with its relevance keyword set
type Asset struct {
	Code     string   `yaml:"code"`
	Keywords []string `yaml:"keywords"`
}

// AnalysisConfig contains analysis provider settings
type AnalysisConfig struct {
	ResponseFormat string `yaml:"response_format"` // text or json
	PromptPreset   string `yaml:"prompt_preset"`   // general, technical, fundamental
	ExtractContent bool   `yaml:"extract_content"` // fetch article pages for deeper analysis
	MaxItems       int    `yaml:"max_items"`       // analyzed items per refresh
}

const (
	ResponseFormatText = "text"
	ResponseFormatJSON = "json"
)
