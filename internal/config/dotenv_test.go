package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := `# comment line
OPENAI_TEST_VAR=plain
export EXPORTED_TEST_VAR="quoted value"
SINGLE_QUOTED_TEST_VAR='single'

not a valid line
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	for _, k := range []string{"OPENAI_TEST_VAR", "EXPORTED_TEST_VAR", "SINGLE_QUOTED_TEST_VAR"} {
		os.Unsetenv(k)
		t.Cleanup(func() { os.Unsetenv(k) })
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("OPENAI_TEST_VAR"); got != "plain" {
		t.Errorf("OPENAI_TEST_VAR = %q", got)
	}
	if got := os.Getenv("EXPORTED_TEST_VAR"); got != "quoted value" {
		t.Errorf("EXPORTED_TEST_VAR = %q", got)
	}
	if got := os.Getenv("SINGLE_QUOTED_TEST_VAR"); got != "single" {
		t.Errorf("SINGLE_QUOTED_TEST_VAR = %q", got)
	}
}

func TestLoadDotenv_NeverOverridesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("KEEP_TEST_VAR=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("KEEP_TEST_VAR", "from-env")
	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv("KEEP_TEST_VAR"); got != "from-env" {
		t.Errorf("KEEP_TEST_VAR = %q, want from-env", got)
	}
}

func TestLoadDotenv_MissingFileIsFine(t *testing.T) {
	if err := LoadDotenv(filepath.Join(t.TempDir(), "absent")); err != nil {
		t.Errorf("LoadDotenv on missing file: %v", err)
	}
}
