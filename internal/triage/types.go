// Package triage holds the persistent record types and the reconciliation
// logic that turns model-proposed operations into durable task and sender
// state.
package triage

import "time"

// SenderImportance ranks how much attention a sender's mail deserves.
type SenderImportance string

const (
	ImportanceHigh   SenderImportance = "high"
	ImportanceNormal SenderImportance = "normal"
	ImportanceLow    SenderImportance = "low"
)

// SenderRole classifies the relationship with a sender.
type SenderRole string

const (
	RoleStudent      SenderRole = "student"
	RoleCollaborator SenderRole = "collaborator"
	RoleAdmin        SenderRole = "admin"
	RoleFamily       SenderRole = "family"
	RoleNotification SenderRole = "notification"
	RoleOther        SenderRole = "other"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// TaskSource records where a task came from.
type TaskSource string

const (
	SourceEmail  TaskSource = "email"
	SourceManual TaskSource = "manual"
	SourceOther  TaskSource = "other"
)

// OpType is the kind of mutation a TaskOperation performs.
type OpType string

const (
	OpAdd    OpType = "add"
	OpUpdate OpType = "update"
	OpClose  OpType = "close"
)

// DefaultPriority is used when a task payload carries no priority.
const DefaultPriority = 5

// Task is a persistent unit of follow-up work, possibly linked to an email
// thread. IDs are assigned by the system, never by the model, and never
// change once assigned.
type Task struct {
	ID            string     `json:"id"`
	Source        TaskSource `json:"source"`
	EmailThreadID string     `json:"email_thread_id,omitempty"`
	Description   string     `json:"description"`
	Status        TaskStatus `json:"status"`
	Priority      int        `json:"priority"` // 1-10, higher is more urgent
	DueDate       *Date      `json:"due_date,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	OriginEmailID string     `json:"origin_email_id,omitempty"`
}

// TaskPatch is the sparse set of patchable task fields for UPDATE
// operations. Only non-nil fields are applied; anything else the model sent
// is dropped at decode time.
type TaskPatch struct {
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Priority    *int        `json:"priority,omitempty"`
	DueDate     *Date       `json:"due_date,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p *TaskPatch) IsEmpty() bool {
	return p == nil || (p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil)
}

// TaskOperation is an instruction to mutate the task collection.
//
//   - add:    provide Task
//   - update: provide TaskID and Fields
//   - close:  provide TaskID
type TaskOperation struct {
	Op     OpType     `json:"op"`
	TaskID string     `json:"task_id,omitempty"`
	Task   *Task      `json:"task,omitempty"`
	Fields *TaskPatch `json:"fields,omitempty"`
}

// SenderProfile is persistent metadata about an email address, keyed and
// deduplicated by Email.
type SenderProfile struct {
	Email      string           `json:"email"`
	Name       string           `json:"name,omitempty"`
	Importance SenderImportance `json:"importance"`
	Role       SenderRole       `json:"role"`
	Notes      string           `json:"notes"`
	LastSeenAt *time.Time       `json:"last_seen_at,omitempty"`

	// Pinned marks VIPs that must never be silently downgraded by the model.
	Pinned bool `json:"pinned"`
}

// EmailSummary is the minimal per-message metadata sent to the first pass.
type EmailSummary struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	SenderName  string    `json:"sender_name,omitempty"`
	SenderEmail string    `json:"sender_email"`
	ReceivedAt  time.Time `json:"received_at"`
	Subject     string    `json:"subject"`
	Snippet     string    `json:"snippet,omitempty"`
}

// EmailBody is the full body of a message the model asked to expand.
type EmailBody struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html,omitempty"`
}

// CriticalEmailEntry is one email the model flagged as needing attention.
type CriticalEmailEntry struct {
	EmailID           string   `json:"email_id"`
	ThreadID          string   `json:"thread_id"`
	Summary           string   `json:"summary"`
	ReasonCritical    string   `json:"reason_critical"`
	RecommendedAction string   `json:"recommended_action"`
	LinkedTaskIDs     []string `json:"linked_task_ids,omitempty"`
}

// SuggestedResponse is a drafted reply outline for one email.
type SuggestedResponse struct {
	EmailID      string   `json:"email_id"`
	DraftOutline []string `json:"draft_outline,omitempty"`
	FullDraft    string   `json:"full_draft,omitempty"`
}

// DailySummary is the report produced for one day's window. It is rendered
// to markdown and discarded, never persisted as structured data.
type DailySummary struct {
	SummaryDate        Date                 `json:"summary_date"`
	CriticalEmails     []CriticalEmailEntry `json:"critical_emails"`
	SuggestedResponses []SuggestedResponse  `json:"suggested_responses"`
	OtherNotes         string               `json:"other_notes,omitempty"`
}

// TasksFile is the container shape of tasks.json.
type TasksFile struct {
	Tasks []Task `json:"tasks"`
}

// SendersFile is the container shape of known_senders.json.
type SendersFile struct {
	Senders []SenderProfile `json:"senders"`
}

// RunState is the container shape of state.json. LastRunAt is the watermark
// bounding the next daily query; it is advanced only at the end of a
// successful daily run, never by a rescan.
type RunState struct {
	LastRunAt *time.Time `json:"last_run_at"`
}
