package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the hotgraph command.
type Config struct {
	Store     string `koanf:"store"`     // path to the graph store document
	Serve     bool   `koanf:"serve"`     // run the web server instead of a one-shot command
	Port      int    `koanf:"port"`      // web server port
	Watch     bool   `koanf:"watch"`     // reload when the store document changes on disk
	MaxHops   int    `koanf:"max-hops"`  // default hop bound for path queries
	Verbosity string `koanf:"verbosity"` // debug, info, warn, error
	JSONLogs  bool   `koanf:"json-logs"` // JSON log output instead of compact console
}

// Load loads configuration from defaults, config file, environment
// variables, and flags. Priority: Flags > Env > Config File > Defaults.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"store":     "hotgraph.json",
		"serve":     false,
		"port":      8080,
		"watch":     false,
		"max-hops":  8,
		"verbosity": "info",
		"json-logs": false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file (optional) - hotgraph.toml
	// Errors are ignored as the file might not exist
	_ = k.Load(file.Provider("hotgraph.toml"), toml.Parser())

	// 3. Environment variables
	// Prefix: HOTGRAPH_ (e.g., HOTGRAPH_PORT=9090)
	if err := k.Load(env.Provider("HOTGRAPH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "HOTGRAPH_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
