package triage

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// This file is the validation stage sitting above the lenient byte-level
// JSON extraction: decoded mappings from the model are validated into typed
// records one element at a time. Models are inconsistent about shape, so
// each element is normalized first and an invalid element is logged and
// dropped without aborting the batch.

// DecodeTaskOperations validates a raw array of operation mappings.
// Tolerated model quirks, normalized before validation:
//   - "operation" as a synonym for "op", mixed-case op values
//   - null created_at/updated_at inside an embedded task payload
//   - update ops that omit task_id/fields but embed a task carrying an id
func DecodeTaskOperations(raw []any) []TaskOperation {
	ops := make([]TaskOperation, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			slog.Warn("task operation is not an object, dropping", "index", i)
			continue
		}
		op, err := decodeTaskOperation(m)
		if err != nil {
			slog.Warn("dropping invalid task operation", "index", i, "error", err)
			continue
		}
		ops = append(ops, op)
	}
	return ops
}

func decodeTaskOperation(m map[string]any) (TaskOperation, error) {
	opVal, ok := m["op"]
	if !ok {
		opVal, ok = m["operation"]
	}
	opStr, isStr := opVal.(string)
	if !ok || !isStr {
		return TaskOperation{}, fmt.Errorf("missing op")
	}

	op := TaskOperation{
		Op:     OpType(strings.ToLower(strings.TrimSpace(opStr))),
		TaskID: asString(m["task_id"]),
	}

	var taskMap map[string]any
	if tm, ok := m["task"].(map[string]any); ok {
		taskMap = tm
		t, err := decodeTask(tm)
		if err != nil {
			return TaskOperation{}, fmt.Errorf("task payload: %w", err)
		}
		op.Task = &t
	}

	if fm, ok := m["fields"].(map[string]any); ok {
		op.Fields = decodePatch(fm)
	}

	// Update ops that only carry an embedded task: derive the id and patch
	// from the task payload.
	if op.Op == OpUpdate && taskMap != nil {
		if op.TaskID == "" {
			op.TaskID = asString(taskMap["id"])
		}
		if op.Fields == nil {
			if p := decodePatch(taskMap); !p.IsEmpty() {
				op.Fields = p
			}
		}
	}

	switch op.Op {
	case OpAdd, OpUpdate, OpClose:
	default:
		return TaskOperation{}, fmt.Errorf("unknown op %q", opStr)
	}

	return op, nil
}

func decodeTask(m map[string]any) (Task, error) {
	t := Task{
		ID:            asString(m["id"]),
		Description:   asString(m["description"]),
		Status:        TaskStatus(strings.ToLower(asString(m["status"]))),
		Source:        TaskSource(strings.ToLower(asString(m["source"]))),
		EmailThreadID: asString(m["email_thread_id"]),
		OriginEmailID: asString(m["origin_email_id"]),
		Tags:          asStringSlice(m["tags"]),
	}

	if p, ok := asInt(m["priority"]); ok {
		if p < 1 || p > 10 {
			return Task{}, fmt.Errorf("priority %d out of range", p)
		}
		t.Priority = p
	}

	switch t.Status {
	case "", TaskOpen, TaskInProgress, TaskDone:
	default:
		return Task{}, fmt.Errorf("unknown status %q", t.Status)
	}
	switch t.Source {
	case "", SourceEmail, SourceManual, SourceOther:
	default:
		t.Source = SourceOther
	}

	if d, err := asDate(m["due_date"]); err != nil {
		return Task{}, err
	} else if d != nil {
		t.DueDate = d
	}

	// Timestamps the model echoes back (including nulls) are ignored: the
	// reconciler owns created_at/updated_at.
	return t, nil
}

// decodePatch builds a sparse patch from whichever recognized keys are
// present. Unrecognized keys are ignored, not errors.
func decodePatch(m map[string]any) *TaskPatch {
	p := &TaskPatch{}
	if v, ok := m["description"]; ok {
		if s := asString(v); s != "" {
			p.Description = &s
		}
	}
	if v, ok := m["status"]; ok {
		s := TaskStatus(strings.ToLower(asString(v)))
		switch s {
		case TaskOpen, TaskInProgress, TaskDone:
			p.Status = &s
		}
	}
	if v, ok := m["priority"]; ok {
		if n, isInt := asInt(v); isInt && n >= 1 && n <= 10 {
			p.Priority = &n
		}
	}
	if v, ok := m["due_date"]; ok {
		if d, err := asDate(v); err == nil && d != nil {
			p.DueDate = d
		}
	}
	return p
}

// DecodeSenderProfiles validates a raw array of sender mappings. Profiles
// with unrecognized importance or role values fall back to the defaults;
// structurally invalid elements are dropped.
func DecodeSenderProfiles(raw []any) []SenderProfile {
	senders := make([]SenderProfile, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			slog.Warn("sender profile is not an object, dropping", "index", i)
			continue
		}
		s := SenderProfile{
			Email:      asString(m["email"]),
			Name:       asString(m["name"]),
			Notes:      asString(m["notes"]),
			Importance: SenderImportance(strings.ToLower(asString(m["importance"]))),
			Role:       SenderRole(strings.ToLower(asString(m["role"]))),
		}
		switch s.Importance {
		case ImportanceHigh, ImportanceNormal, ImportanceLow:
		default:
			s.Importance = ImportanceNormal
		}
		switch s.Role {
		case RoleStudent, RoleCollaborator, RoleAdmin, RoleFamily, RoleNotification, RoleOther:
		default:
			s.Role = RoleOther
		}
		if b, ok := m["pinned"].(bool); ok {
			s.Pinned = b
		}
		if ts := asTime(m["last_seen_at"]); ts != nil {
			s.LastSeenAt = ts
		}
		senders = append(senders, s)
	}
	return senders
}

// DecodeDailySummary validates the daily_summary object from pass 2. Unlike
// the per-element decoders, a failure here fails the whole window: a run
// without a readable summary has nothing to report.
func DecodeDailySummary(m map[string]any) (*DailySummary, error) {
	if m == nil {
		return nil, fmt.Errorf("daily summary missing")
	}

	s := &DailySummary{OtherNotes: asString(m["other_notes"])}

	if d, err := asDate(m["summary_date"]); err != nil {
		return nil, fmt.Errorf("summary_date: %w", err)
	} else if d != nil {
		s.SummaryDate = *d
	} else {
		s.SummaryDate = Today()
	}

	if raw, ok := m["critical_emails"].([]any); ok {
		for i, item := range raw {
			em, ok := item.(map[string]any)
			if !ok {
				slog.Warn("critical email entry is not an object, dropping", "index", i)
				continue
			}
			s.CriticalEmails = append(s.CriticalEmails, CriticalEmailEntry{
				EmailID:           asString(em["email_id"]),
				ThreadID:          asString(em["thread_id"]),
				Summary:           asString(em["summary"]),
				ReasonCritical:    asString(em["reason_critical"]),
				RecommendedAction: asString(em["recommended_action"]),
				LinkedTaskIDs:     asStringSlice(em["linked_task_ids"]),
			})
		}
	}

	if raw, ok := m["suggested_responses"].([]any); ok {
		for i, item := range raw {
			rm, ok := item.(map[string]any)
			if !ok {
				slog.Warn("suggested response is not an object, dropping", "index", i)
				continue
			}
			s.SuggestedResponses = append(s.SuggestedResponses, SuggestedResponse{
				EmailID:      asString(rm["email_id"]),
				DraftOutline: asStringSlice(rm["draft_outline"]),
				FullDraft:    asString(rm["full_draft"]),
			})
		}
	}

	return s, nil
}

// ---- coercion helpers (JSON numbers arrive as float64, models sometimes
// send numbers as strings) ----

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func asDate(v any) (*Date, error) {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil, nil
	}
	// Accept full timestamps where a date was asked for.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d := DateOf(t.UTC())
		return &d, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
