// Package config provides configuration loading and management for copyforge.
package config

// Config is the root configuration.
type Config struct {
	Service   ServiceConfig   `json:"service"             mapstructure:"service"`
	Defaults  Defaults        `json:"defaults,omitempty"  mapstructure:"defaults"`
	Store     StoreConfig     `json:"store,omitempty"     mapstructure:"store"`
	Immersion ImmersionConfig `json:"immersion,omitempty" mapstructure:"immersion"`
}

// ServiceConfig describes how to reach the generation service.
type ServiceConfig struct {
	Model       string   `json:"model"                 mapstructure:"model"`
	APIKey      string   `json:"api_key,omitempty"     mapstructure:"api_key"`
	BaseURL     string   `json:"base_url,omitempty"    mapstructure:"base_url"`
	MaxTokens   int      `json:"max_tokens,omitempty"  mapstructure:"max_tokens"`
	Temperature *float64 `json:"temperature,omitempty" mapstructure:"temperature"`
}

// Defaults holds per-run defaults the CLI applies when flags are omitted.
type Defaults struct {
	Channel     string `json:"channel,omitempty"      mapstructure:"channel"`
	MaxAttempts int    `json:"max_attempts,omitempty" mapstructure:"max_attempts"`
	TargetWords int    `json:"target_words,omitempty" mapstructure:"target_words"`
}

// StoreConfig locates the audit database.
type StoreConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// ImmersionConfig tunes the domain immersion collaborators.
type ImmersionConfig struct {
	MaxSources     int    `json:"max_sources,omitempty"     mapstructure:"max_sources"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	KeywordAPIURL  string `json:"keyword_api_url,omitempty" mapstructure:"keyword_api_url"`
}
