package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/triage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	cfg.Resolve()
	return cfg
}

func TestStore_MissingFilesYieldEmptyDefaults(t *testing.T) {
	store := NewStore(testConfig(t))

	tasks, err := store.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(tasks.Tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks.Tasks))
	}

	senders, err := store.LoadSenders()
	if err != nil {
		t.Fatalf("LoadSenders: %v", err)
	}
	if len(senders.Senders) != 0 {
		t.Errorf("expected no senders, got %d", len(senders.Senders))
	}

	state, err := store.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.LastRunAt != nil {
		t.Errorf("LastRunAt = %v, want nil", state.LastRunAt)
	}

	text, err := store.LoadInstructions()
	if err != nil {
		t.Fatalf("LoadInstructions: %v", err)
	}
	if text != "" {
		t.Errorf("instructions = %q, want empty", text)
	}
}

func TestStore_TasksRoundTrip(t *testing.T) {
	store := NewStore(testConfig(t))
	due, _ := triage.ParseDate("2026-09-05")
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	in := &triage.TasksFile{Tasks: []triage.Task{{
		ID:          "task-0001",
		Source:      triage.SourceEmail,
		Description: "Reply to the dean",
		Status:      triage.TaskOpen,
		Priority:    8,
		DueDate:     &due,
		Tags:        []string{"admin"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}}}
	if err := store.SaveTasks(in); err != nil {
		t.Fatalf("SaveTasks: %v", err)
	}

	out, err := store.LoadTasks()
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(out.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(out.Tasks))
	}
	got := out.Tasks[0]
	if got.ID != "task-0001" || got.Priority != 8 || got.DueDate == nil || *got.DueDate != due {
		t.Errorf("round trip mangled task: %+v", got)
	}
}

func TestStore_StateRoundTrip(t *testing.T) {
	store := NewStore(testConfig(t))
	ts := time.Date(2026, 9, 1, 6, 30, 0, 0, time.UTC)

	if err := store.SaveState(&triage.RunState{LastRunAt: &ts}); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	state, err := store.LoadState()
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if state.LastRunAt == nil || !state.LastRunAt.Equal(ts) {
		t.Errorf("LastRunAt = %v, want %v", state.LastRunAt, ts)
	}
}

func TestStore_InstructionsRoundTrip(t *testing.T) {
	store := NewStore(testConfig(t))
	if err := store.SaveInstructions("be brief\n"); err != nil {
		t.Fatalf("SaveInstructions: %v", err)
	}
	text, err := store.LoadInstructions()
	if err != nil {
		t.Fatalf("LoadInstructions: %v", err)
	}
	if text != "be brief\n" {
		t.Errorf("instructions = %q", text)
	}
}

func TestEnsureDataFiles(t *testing.T) {
	cfg := testConfig(t)
	if err := EnsureDataFiles(cfg); err != nil {
		t.Fatalf("EnsureDataFiles: %v", err)
	}

	for _, path := range []string{cfg.KnownSendersPath, cfg.TasksPath, cfg.StatePath, cfg.InstructionsPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing bootstrap file %s: %v", filepath.Base(path), err)
		}
	}

	// tasks.json must hold an empty array, not null.
	data, err := os.ReadFile(cfg.TasksPath)
	if err != nil {
		t.Fatalf("read tasks.json: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal tasks.json: %v", err)
	}
	if _, ok := raw["tasks"].([]any); !ok {
		t.Errorf("tasks.json tasks = %v, want array", raw["tasks"])
	}
}

func TestEnsureDataFiles_DoesNotClobberExisting(t *testing.T) {
	cfg := testConfig(t)
	if err := EnsureDataFiles(cfg); err != nil {
		t.Fatalf("EnsureDataFiles: %v", err)
	}

	store := NewStore(cfg)
	if err := store.SaveInstructions("custom rules\n"); err != nil {
		t.Fatalf("SaveInstructions: %v", err)
	}

	if err := EnsureDataFiles(cfg); err != nil {
		t.Fatalf("EnsureDataFiles again: %v", err)
	}
	text, _ := store.LoadInstructions()
	if text != "custom rules\n" {
		t.Errorf("instructions clobbered: %q", text)
	}
}

func TestWriteFileAtomic_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteFileAtomic(path, []byte("{}\n")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}
