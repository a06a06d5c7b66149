// Package config loads and resolves the mailtriage configuration.
package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration for mailtriage. Every file path used by a
// collaborator is an explicit field here; nothing resolves paths ambiently.
type Config struct {
	// DataDir is the directory holding the JSON record files and reports.
	DataDir string `json:"data_dir"`

	KnownSendersPath string `json:"known_senders_path,omitempty"`
	TasksPath        string `json:"tasks_path,omitempty"`
	StatePath        string `json:"state_path,omitempty"`
	InstructionsPath string `json:"instructions_path,omitempty"`
	ReportPath       string `json:"report_path,omitempty"`

	Gmail  GmailConfig  `json:"gmail"`
	Models ModelsConfig `json:"models"`
	Triage TriageConfig `json:"triage"`
}

// GmailConfig holds the OAuth file locations for the Gmail mailbox client.
type GmailConfig struct {
	CredentialsPath string `json:"credentials_path,omitempty"`
	TokenPath       string `json:"token_path,omitempty"`
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string   `json:"driver"` // "openai", "claude", "gemini", "ollama"
	Model     string   `json:"model"`
	APIKey    string   `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	BaseURL   string   `json:"base_url,omitempty"`
	MaxTokens int      `json:"max_tokens,omitempty"`
	Timeout   Duration `json:"timeout,omitempty"`
}

// TriageConfig holds knobs for the analysis run itself.
type TriageConfig struct {
	MaxEmailsPerRun int `json:"max_emails_per_run"`

	// RepairJSON enables one model-assisted repair round when the model's
	// reply cannot be parsed as JSON. Costs an extra call, so opt-in.
	RepairJSON bool `json:"repair_json"`
}

// Resolve fills the per-file paths that were left empty relative to DataDir.
func (c *Config) Resolve() {
	if c.KnownSendersPath == "" {
		c.KnownSendersPath = filepath.Join(c.DataDir, "known_senders.json")
	}
	if c.TasksPath == "" {
		c.TasksPath = filepath.Join(c.DataDir, "tasks.json")
	}
	if c.StatePath == "" {
		c.StatePath = filepath.Join(c.DataDir, "state.json")
	}
	if c.InstructionsPath == "" {
		c.InstructionsPath = filepath.Join(c.DataDir, "instructions.txt")
	}
	if c.ReportPath == "" {
		c.ReportPath = filepath.Join(c.DataDir, "daily_summary.md")
	}
	if c.Gmail.CredentialsPath == "" {
		c.Gmail.CredentialsPath = filepath.Join(c.DataDir, "credentials.json")
	}
	if c.Gmail.TokenPath == "" {
		c.Gmail.TokenPath = filepath.Join(c.DataDir, "token.json")
	}
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
