package engine

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/clombard/mailtriage/internal/triage"
)

const pass1System = `You are an email triage assistant for a single user.
You receive the user's triage instructions, their known senders, their open
tasks, and a batch of email summaries (metadata and snippets only).

Decide which emails need their full bodies before a final judgement can be
made, and propose task operations that are already safe to make from the
summaries alone.

Reply with ONLY a single JSON object, no prose, of the shape:
{
  "emails_to_expand": ["<email id>", ...],
  "task_ops": [
    {"op": "add", "task": {"description": "...", "priority": 1-10,
      "due_date": "YYYY-MM-DD" or null, "email_thread_id": "...",
      "origin_email_id": "...", "tags": ["..."]}},
    {"op": "update", "task_id": "task-0001", "fields": {"description": "...",
      "status": "open"|"in_progress"|"done", "priority": 1-10,
      "due_date": "YYYY-MM-DD"}},
    {"op": "close", "task_id": "task-0001"}
  ]
}

Rules:
- Never invent task ids. For new tasks, omit the id; the system assigns it.
- Only request bodies for emails where the summary is genuinely not enough.
- When in doubt about importance, prefer expanding the email over guessing.`

const pass2System = `You are an email triage assistant for a single user.
This is the second pass: you now have the full bodies of the emails you
asked to expand, along with everything from the first pass.

Produce the final task operations for this run, updated sender profiles for
senders whose importance or role you can now judge, and the daily summary
report.

Reply with ONLY a single JSON object, no prose, of the shape:
{
  "final_task_ops": [ ... same operation shape as the first pass ... ],
  "updated_senders": [
    {"email": "...", "name": "...", "importance": "high"|"normal"|"low",
     "role": "student"|"collaborator"|"admin"|"family"|"notification"|"other",
     "notes": "..."}
  ],
  "daily_summary": {
    "summary_date": "YYYY-MM-DD",
    "critical_emails": [
      {"email_id": "...", "thread_id": "...", "summary": "...",
       "reason_critical": "...", "recommended_action": "...",
       "linked_task_ids": ["task-0001"]}
    ],
    "suggested_responses": [
      {"email_id": "...", "draft_outline": ["...", "..."], "full_draft": "..."}
    ],
    "other_notes": "..."
  }
}

Rules:
- final_task_ops REPLACE the first-pass operations entirely: include every
  operation that should be applied, revised or not. Anything you omit is
  discarded.
- Never invent task ids. For new tasks, omit the id; the system assigns it.
- Never include a sender in updated_senders just to echo it back unchanged.
- Keep summaries concise: who is writing, what they want, any deadline,
  whether the user owes a reply.`

const instructionsSystem = `You maintain a plain-text instructions file for an
email triage assistant. Merge the user's feedback into the current
instructions: integrate new guidance, revise anything it contradicts, and
keep everything else intact.

Reply with ONLY a single JSON object of the shape:
{"instructions": "<the complete revised instructions text>"}`

// pass1Payload is the user-message body for the first pass.
type pass1Payload struct {
	Instructions   string                  `json:"instructions"`
	KnownSenders   []triage.SenderProfile  `json:"known_senders"`
	OpenTasks      []triage.Task           `json:"open_tasks"`
	EmailSummaries []triage.EmailSummary   `json:"email_summaries"`
}

// pass2Payload is the user-message body for the second pass. The first
// pass's output is echoed back so the model sees what it already proposed.
type pass2Payload struct {
	Instructions   string                 `json:"instructions"`
	KnownSenders   []triage.SenderProfile `json:"known_senders"`
	OpenTasks      []triage.Task          `json:"open_tasks"`
	EmailSummaries []triage.EmailSummary  `json:"email_summaries"`
	EmailBodies    []triage.EmailBody     `json:"email_bodies"`
	FirstPassOps   []triage.TaskOperation `json:"first_pass_task_ops"`
}

func buildPass1Messages(instructions string, senders []triage.SenderProfile, openTasks []triage.Task, emails []triage.EmailSummary) ([]*schema.Message, error) {
	payload, err := marshalPayload(pass1Payload{
		Instructions:   instructions,
		KnownSenders:   senders,
		OpenTasks:      openTasks,
		EmailSummaries: emails,
	})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{
		schema.SystemMessage(pass1System),
		schema.UserMessage(payload),
	}, nil
}

func buildPass2Messages(instructions string, senders []triage.SenderProfile, openTasks []triage.Task, emails []triage.EmailSummary, bodies []triage.EmailBody, pass1Ops []triage.TaskOperation) ([]*schema.Message, error) {
	payload, err := marshalPayload(pass2Payload{
		Instructions:   instructions,
		KnownSenders:   senders,
		OpenTasks:      openTasks,
		EmailSummaries: emails,
		EmailBodies:    bodies,
		FirstPassOps:   pass1Ops,
	})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{
		schema.SystemMessage(pass2System),
		schema.UserMessage(payload),
	}, nil
}

func buildInstructionsMessages(current, feedback string) ([]*schema.Message, error) {
	payload, err := marshalPayload(map[string]string{
		"current_instructions": current,
		"feedback":             feedback,
	})
	if err != nil {
		return nil, err
	}
	return []*schema.Message{
		schema.SystemMessage(instructionsSystem),
		schema.UserMessage(payload),
	}, nil
}

func marshalPayload(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal prompt payload: %w", err)
	}
	return string(data), nil
}
