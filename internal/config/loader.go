package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/marcozac/go-jsonc"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, strips comments, expands ${{ .Env.VAR }}
// templates, unmarshals it into Config, and applies defaults. A missing file
// is not an error: it yields a pure-defaults Config.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		// Expand env templates before stripping, since templates live in strings.
		expanded := expandEnvTemplates(string(data))
		if err := jsonc.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}

	applyDefaults(&cfg)
	cfg.Resolve()
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = DataPath()
	}
	if cfg.Triage.MaxEmailsPerRun == 0 {
		cfg.Triage.MaxEmailsPerRun = 50
	}
	if cfg.Models.Default == "" {
		cfg.Models.Default = "openai"
	}
	if cfg.Models.Providers == nil {
		cfg.Models.Providers = map[string]ProviderConfig{}
	}
	if _, ok := cfg.Models.Providers["openai"]; !ok {
		cfg.Models.Providers["openai"] = ProviderConfig{
			Driver: "openai",
			Model:  "gpt-4.1-mini",
			APIKey: os.Getenv("OPENAI_API_KEY"),
		}
	}
}
