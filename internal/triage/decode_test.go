package triage

import (
	"encoding/json"
	"testing"
)

func rawArray(t *testing.T, s string) []any {
	t.Helper()
	var out []any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return out
}

func rawObject(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return out
}

func TestDecodeTaskOperations_OperationSynonymAndCase(t *testing.T) {
	ops := DecodeTaskOperations(rawArray(t, `[
		{"operation": "ADD", "task": {"description": "Grade homework", "priority": 7}},
		{"op": "Close", "task_id": "task-0002"}
	]`))

	if len(ops) != 2 {
		t.Fatalf("expected 2 ops, got %d", len(ops))
	}
	if ops[0].Op != OpAdd {
		t.Errorf("op 0 = %q, want add", ops[0].Op)
	}
	if ops[0].Task == nil || ops[0].Task.Priority != 7 {
		t.Errorf("op 0 task = %+v", ops[0].Task)
	}
	if ops[1].Op != OpClose || ops[1].TaskID != "task-0002" {
		t.Errorf("op 1 = %+v", ops[1])
	}
}

func TestDecodeTaskOperations_UpdateDerivedFromEmbeddedTask(t *testing.T) {
	ops := DecodeTaskOperations(rawArray(t, `[
		{"op": "update", "task": {"id": "task-0003", "status": "in_progress", "priority": 9}}
	]`))

	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	op := ops[0]
	if op.TaskID != "task-0003" {
		t.Errorf("TaskID = %q, want task-0003", op.TaskID)
	}
	if op.Fields == nil || op.Fields.Status == nil || *op.Fields.Status != TaskInProgress {
		t.Errorf("Fields = %+v", op.Fields)
	}
	if op.Fields.Priority == nil || *op.Fields.Priority != 9 {
		t.Errorf("Fields.Priority = %v", op.Fields.Priority)
	}
}

func TestDecodeTaskOperations_NullTimestampsTolerated(t *testing.T) {
	ops := DecodeTaskOperations(rawArray(t, `[
		{"op": "add", "task": {"description": "x", "created_at": null, "updated_at": null, "due_date": null}}
	]`))

	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	if !ops[0].Task.CreatedAt.IsZero() {
		t.Errorf("CreatedAt = %v, want zero", ops[0].Task.CreatedAt)
	}
}

func TestDecodeTaskOperations_InvalidElementsDropped(t *testing.T) {
	ops := DecodeTaskOperations(rawArray(t, `[
		{"op": "destroy", "task_id": "task-0001"},
		{"op": "add", "task": {"description": "bad prio", "priority": 42}},
		"not even an object",
		{"op": "add", "task": {"description": "good one"}}
	]`))

	if len(ops) != 1 {
		t.Fatalf("expected 1 surviving op, got %d", len(ops))
	}
	if ops[0].Task.Description != "good one" {
		t.Errorf("survivor = %+v", ops[0].Task)
	}
}

func TestDecodeTaskOperations_DueDateAcceptsTimestamp(t *testing.T) {
	ops := DecodeTaskOperations(rawArray(t, `[
		{"op": "add", "task": {"description": "x", "due_date": "2026-09-03T10:00:00Z"}}
	]`))

	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	if ops[0].Task.DueDate == nil || ops[0].Task.DueDate.String() != "2026-09-03" {
		t.Errorf("DueDate = %v", ops[0].Task.DueDate)
	}
}

func TestDecodeSenderProfiles_FallbackOnBadEnums(t *testing.T) {
	senders := DecodeSenderProfiles(rawArray(t, `[
		{"email": "a@example.com", "importance": "CRITICAL", "role": "boss"},
		{"email": "b@example.com", "importance": "high", "role": "student", "pinned": true}
	]`))

	if len(senders) != 2 {
		t.Fatalf("expected 2 senders, got %d", len(senders))
	}
	if senders[0].Importance != ImportanceNormal || senders[0].Role != RoleOther {
		t.Errorf("fallbacks not applied: %+v", senders[0])
	}
	if senders[1].Importance != ImportanceHigh || !senders[1].Pinned {
		t.Errorf("valid profile mangled: %+v", senders[1])
	}
}

func TestDecodeDailySummary(t *testing.T) {
	s, err := DecodeDailySummary(rawObject(t, `{
		"summary_date": "2026-09-01",
		"critical_emails": [
			{"email_id": "m1", "thread_id": "t1", "summary": "Dean needs the report",
			 "reason_critical": "deadline tomorrow", "recommended_action": "send it",
			 "linked_task_ids": ["task-0001"]},
			"garbage entry"
		],
		"suggested_responses": [
			{"email_id": "m1", "draft_outline": ["ack", "promise by friday"]}
		],
		"other_notes": "quiet otherwise"
	}`))
	if err != nil {
		t.Fatalf("DecodeDailySummary: %v", err)
	}

	if s.SummaryDate.String() != "2026-09-01" {
		t.Errorf("SummaryDate = %v", s.SummaryDate)
	}
	if len(s.CriticalEmails) != 1 {
		t.Fatalf("expected 1 critical email, got %d", len(s.CriticalEmails))
	}
	if s.CriticalEmails[0].EmailID != "m1" {
		t.Errorf("critical email = %+v", s.CriticalEmails[0])
	}
	if len(s.SuggestedResponses) != 1 || len(s.SuggestedResponses[0].DraftOutline) != 2 {
		t.Errorf("responses = %+v", s.SuggestedResponses)
	}
	if s.OtherNotes != "quiet otherwise" {
		t.Errorf("OtherNotes = %q", s.OtherNotes)
	}
}

func TestDecodeDailySummary_MissingDateDefaultsToToday(t *testing.T) {
	s, err := DecodeDailySummary(rawObject(t, `{"other_notes": "n"}`))
	if err != nil {
		t.Fatalf("DecodeDailySummary: %v", err)
	}
	if s.SummaryDate != Today() {
		t.Errorf("SummaryDate = %v, want today", s.SummaryDate)
	}
}

func TestDecodeDailySummary_NilFails(t *testing.T) {
	if _, err := DecodeDailySummary(nil); err == nil {
		t.Error("expected error for missing summary")
	}
}
