package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Analysis provider configuration
	APIKey string `long:"api-key" env:"OPENAI_API_KEY" description:"Analysis provider API key (required for analysis)"`
	Model  string `long:"model" env:"OPENAI_MODEL" default:"gpt-4-turbo-preview" description:"Analysis provider model identifier"`
	Prompt string `long:"prompt" env:"ANALYSIS_PROMPT" description:"Custom analysis prompt overriding the configured preset"`

	// Application configuration
	ConfigFile      string `long:"config" env:"CONFIG_FILE" default:"./config.yml" description:"Path to the pipeline configuration file"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for pipeline tasks"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"300" description:"Pipeline refresh interval in seconds"`
	APIAccessKey    string `long:"access-key" env:"API_ACCESS_KEY" description:"API access key for management endpoints (optional)"`
	RedisAddr       string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the shared feed cache (optional, in-process cache used when empty)"`

	// Fetch configuration
	FetchTimeout  int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-attempt feed fetch timeout in seconds"`
	MaxRetries    int `long:"max-retries" env:"MAX_RETRIES" default:"1" description:"Additional fetch attempts per source"`
	RetryDelay    int `long:"retry-delay" env:"RETRY_DELAY" default:"1" description:"Delay between fetch attempts in seconds"`
	CacheDuration int `long:"cache-duration" env:"CACHE_DURATION" default:"60" description:"Feed cache TTL in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; MarketPulse/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		APIKey:          raw.APIKey,
		Model:           raw.Model,
		Prompt:          raw.Prompt,
		ConfigFile:      raw.ConfigFile,
		Port:            raw.Port,
		WorkerCount:     raw.WorkerCount,
		RefreshInterval: raw.RefreshInterval,
		APIAccessKey:    raw.APIAccessKey,
		RedisAddr:       raw.RedisAddr,
		FetchTimeout:    raw.FetchTimeout,
		MaxRetries:      raw.MaxRetries,
		RetryDelay:      raw.RetryDelay,
		CacheDuration:   raw.CacheDuration,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
