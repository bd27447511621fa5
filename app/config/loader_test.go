package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoader_Load_Valid(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://www.forexlive.com/feed/news
  proxies:
    - "https://api.allorigins.win/raw?url="
    - "https://corsproxy.io/?"
assets:
  - code: USD
    keywords: [fed, dollar, inflation]
  - code: GOLD
    keywords: [gold, xau, bullion]
analysis:
  response_format: text
  prompt_preset: general
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Expected config to load, got error: %v", err)
	}

	if config.Feed.URL != "https://www.forexlive.com/feed/news" {
		t.Errorf("Unexpected feed URL: %s", config.Feed.URL)
	}
	if len(config.Assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(config.Assets))
	}
	if config.Assets[0].Code != "USD" {
		t.Errorf("Expected first asset USD, got %s", config.Assets[0].Code)
	}
	if config.Analysis.MaxItems != 5 {
		t.Errorf("Expected default max items 5, got %d", config.Analysis.MaxItems)
	}
}

func TestLoader_Load_Defaults(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed
assets:
  - code: USD
    keywords: [dollar]
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Expected config to load, got error: %v", err)
	}

	if config.Analysis.ResponseFormat != ResponseFormatText {
		t.Errorf("Expected default response format 'text', got '%s'", config.Analysis.ResponseFormat)
	}
	if config.Analysis.PromptPreset != "general" {
		t.Errorf("Expected default prompt preset 'general', got '%s'", config.Analysis.PromptPreset)
	}
}

func TestLoader_Load_MissingURL(t *testing.T) {
	path := writeConfig(t, `
assets:
  - code: USD
    keywords: [dollar]
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for missing feed URL")
	}
}

func TestLoader_Load_NoAssets(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for missing assets")
	}
}

func TestLoader_Load_DuplicateAsset(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed
assets:
  - code: USD
    keywords: [dollar]
  - code: USD
    keywords: [fed]
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for duplicate asset code")
	}
}

func TestLoader_Load_BadResponseFormat(t *testing.T) {
	path := writeConfig(t, `
feed:
  url: https://example.com/feed
assets:
  - code: USD
    keywords: [dollar]
analysis:
  response_format: xml
`)

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for unsupported response format")
	}
}

func TestConfig_Endpoints_WithProxies(t *testing.T) {
	config := &Config{
		Feed: FeedConfig{
			URL:     "https://example.com/feed",
			Proxies: []string{"https://proxy.one/raw?url=", "https://proxy.two/?"},
		},
	}

	endpoints := config.Endpoints()
	if len(endpoints) != 2 {
		t.Fatalf("Expected 2 endpoints, got %d", len(endpoints))
	}
	if !strings.HasPrefix(endpoints[0], "https://proxy.one/raw?url=") {
		t.Errorf("Unexpected first endpoint: %s", endpoints[0])
	}
	if strings.Contains(endpoints[0], "https://example.com") {
		t.Errorf("Feed URL should be encoded in endpoint: %s", endpoints[0])
	}
}

func TestConfig_Endpoints_NoProxies(t *testing.T) {
	config := &Config{Feed: FeedConfig{URL: "https://example.com/feed"}}

	endpoints := config.Endpoints()
	if len(endpoints) != 1 || endpoints[0] != "https://example.com/feed" {
		t.Errorf("Expected the feed URL itself, got %v", endpoints)
	}
}

func TestConfig_GetAsset(t *testing.T) {
	config := &Config{Assets: []Asset{{Code: "USD"}, {Code: "GOLD"}}}

	if asset := config.GetAsset("GOLD"); asset == nil || asset.Code != "GOLD" {
		t.Errorf("Expected to find GOLD asset, got %v", asset)
	}
	if asset := config.GetAsset("EUR"); asset != nil {
		t.Errorf("Expected nil for unknown asset, got %v", asset)
	}
}
