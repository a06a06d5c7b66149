// Package storage persists the triage records as whole JSON files.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/triage"
)

// Store reads and writes the JSON record files. Loads of missing files
// return empty defaults; saves are whole-file overwrites via tmp + rename.
// There is no cross-process lock: concurrent runs against the same data
// directory are an operational error, not something handled here.
type Store struct {
	mu sync.Mutex

	sendersPath      string
	tasksPath        string
	statePath        string
	instructionsPath string
}

// NewStore creates a Store over the configured file paths.
func NewStore(cfg *config.Config) *Store {
	return &Store{
		sendersPath:      cfg.KnownSendersPath,
		tasksPath:        cfg.TasksPath,
		statePath:        cfg.StatePath,
		instructionsPath: cfg.InstructionsPath,
	}
}

// LoadTasks reads tasks.json, returning an empty collection if absent.
func (s *Store) LoadTasks() (*triage.TasksFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f triage.TasksFile
	if err := readJSON(s.tasksPath, &f); err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return &f, nil
}

// SaveTasks overwrites tasks.json.
func (s *Store) SaveTasks(f *triage.TasksFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.tasksPath, f); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// LoadSenders reads known_senders.json, returning an empty set if absent.
func (s *Store) LoadSenders() (*triage.SendersFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var f triage.SendersFile
	if err := readJSON(s.sendersPath, &f); err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}
	return &f, nil
}

// SaveSenders overwrites known_senders.json.
func (s *Store) SaveSenders(f *triage.SendersFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.sendersPath, f); err != nil {
		return fmt.Errorf("save senders: %w", err)
	}
	return nil
}

// LoadState reads state.json, returning an empty state if absent.
func (s *Store) LoadState() (*triage.RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st triage.RunState
	if err := readJSON(s.statePath, &st); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &st, nil
}

// SaveState overwrites state.json.
func (s *Store) SaveState(st *triage.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(s.statePath, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadInstructions reads instructions.txt, returning "" if absent.
func (s *Store) LoadInstructions() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.instructionsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("load instructions: %w", err)
	}
	return string(data), nil
}

// SaveInstructions overwrites instructions.txt.
func (s *Store) SaveInstructions(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := WriteFileAtomic(s.instructionsPath, []byte(text)); err != nil {
		return fmt.Errorf("save instructions: %w", err)
	}
	return nil
}

// EnsureDataFiles is the single bootstrap step: it creates the data
// directory and any missing record files with their empty defaults, plus a
// starter instructions.txt.
func EnsureDataFiles(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	defaults := []struct {
		path string
		v    any
	}{
		{cfg.KnownSendersPath, &triage.SendersFile{Senders: []triage.SenderProfile{}}},
		{cfg.TasksPath, &triage.TasksFile{Tasks: []triage.Task{}}},
		{cfg.StatePath, &triage.RunState{}},
	}
	for _, d := range defaults {
		if _, err := os.Stat(d.path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", d.path, err)
		}
		if err := writeJSON(d.path, d.v); err != nil {
			return fmt.Errorf("bootstrap %s: %w", filepath.Base(d.path), err)
		}
	}

	if _, err := os.Stat(cfg.InstructionsPath); os.IsNotExist(err) {
		if err := WriteFileAtomic(cfg.InstructionsPath, []byte(defaultInstructions)); err != nil {
			return fmt.Errorf("bootstrap instructions: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("stat instructions: %w", err)
	}

	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// WriteFileAtomic writes via a temp file + rename so a crash mid-write
// never leaves a truncated record file behind.
func WriteFileAtomic(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

const defaultInstructions = `Email triage instructions
=========================

- Prioritize emails from pinned or high-importance senders.
- Students, collaborators, and family are generally high priority.
- Bulk notifications, newsletters, and automated alerts are lower priority
  unless they mention deadlines or urgent actions.
- For each important email, create or update tasks that clearly state
  what I need to do and by when.
- Summaries should be concise but must include:
    * who is writing,
    * what they want,
    * any deadlines, and
    * whether I owe a reply.
- Avoid suggesting replies to emails that are obviously spam or purely
  informational.
`
