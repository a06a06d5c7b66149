package triage

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Apply applies a batch of operations to the task collection, in input
// order. Each operation is isolated: a bad one is logged and skipped, and
// the rest of the batch proceeds. The returned collection is the same file
// value, mutated in place.
func Apply(file *TasksFile, ops []TaskOperation) *TasksFile {
	// Indices, not pointers: appends may reallocate the backing array.
	byID := make(map[string]int, len(file.Tasks))
	for i := range file.Tasks {
		if file.Tasks[i].ID != "" {
			byID[file.Tasks[i].ID] = i
		}
	}

	for _, op := range ops {
		switch op.Op {
		case OpAdd:
			if op.Task == nil {
				slog.Warn("add operation without task payload, skipping")
				continue
			}
			t := *op.Task
			if t.ID == "" {
				t.ID = NextTaskID(file)
			} else if _, exists := byID[t.ID]; exists {
				slog.Warn("add operation collides with existing task id, skipping", "task_id", t.ID)
				continue
			}
			if t.Status == "" {
				t.Status = TaskOpen
			}
			if t.Source == "" {
				t.Source = SourceEmail
			}
			if t.Priority == 0 {
				t.Priority = DefaultPriority
			}
			now := time.Now().UTC()
			t.CreatedAt = now
			t.UpdatedAt = now

			file.Tasks = append(file.Tasks, t)
			byID[t.ID] = len(file.Tasks) - 1

		case OpUpdate:
			if op.TaskID == "" {
				slog.Warn("update operation without task_id, skipping")
				continue
			}
			i, ok := byID[op.TaskID]
			if !ok {
				slog.Warn("update operation for unknown task_id, skipping", "task_id", op.TaskID)
				continue
			}
			if op.Fields.IsEmpty() {
				slog.Warn("update operation has no fields, skipping", "task_id", op.TaskID)
				continue
			}
			t := &file.Tasks[i]
			applyPatch(t, op.Fields)
			t.UpdatedAt = time.Now().UTC()

		case OpClose:
			if op.TaskID == "" {
				slog.Warn("close operation without task_id, skipping")
				continue
			}
			i, ok := byID[op.TaskID]
			if !ok {
				slog.Warn("close operation for unknown task_id, skipping", "task_id", op.TaskID)
				continue
			}
			file.Tasks[i].Status = TaskDone
			file.Tasks[i].UpdatedAt = time.Now().UTC()

		default:
			slog.Warn("unknown task operation, skipping", "op", string(op.Op))
		}
	}

	return file
}

// applyPatch copies only the fields present on the patch. Absent fields
// never overwrite existing values.
func applyPatch(t *Task, p *TaskPatch) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
}

// NextTaskID returns the next unused id of the form "task-NNNN", one past
// the highest numeric suffix among existing "task-" ids. Collections that
// also contain foreign ids matching the next candidate are handled by
// probing forward until a free id is found.
func NextTaskID(file *TasksFile) string {
	existing := make(map[string]bool, len(file.Tasks))
	maxN := 0
	for _, t := range file.Tasks {
		if t.ID == "" {
			continue
		}
		existing[t.ID] = true
		suffix, ok := strings.CutPrefix(t.ID, "task-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > maxN {
			maxN = n
		}
	}
	for n := maxN + 1; ; n++ {
		candidate := fmt.Sprintf("task-%04d", n)
		if !existing[candidate] {
			return candidate
		}
	}
}

// SortForDisplay orders tasks for rendering: non-done before done, then by
// descending priority, then by ascending creation time. The order is stable
// for a fixed input.
func SortForDisplay(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if (a.Status == TaskDone) != (b.Status == TaskDone) {
			return a.Status != TaskDone
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
