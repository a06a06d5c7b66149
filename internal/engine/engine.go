// Package engine orchestrates the two-pass triage analysis over the
// mailbox, the model, and the record store.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/llm"
	"github.com/clombard/mailtriage/internal/mailbox"
	"github.com/clombard/mailtriage/internal/storage"
	"github.com/clombard/mailtriage/internal/triage"
)

const (
	passMaxTokens         = 4096
	passTemperature       = 0.2
	instructionsMaxTokens = 2048

	// defaultLookback bounds the first run ever, when there is no
	// watermark to resume from.
	defaultLookback = 24 * time.Hour
)

// Engine runs the triage passes. It owns the ordering guarantee that
// nothing is persisted unless both passes and the reconcile succeeded.
type Engine struct {
	cfg     *config.Config
	store   *storage.Store
	mailbox mailbox.Client
	llm     llm.Completer

	// now is swappable for tests.
	now func() time.Time
}

// New creates an Engine over the given collaborators.
func New(cfg *config.Config, store *storage.Store, mb mailbox.Client, completer llm.Completer) *Engine {
	return &Engine{
		cfg:     cfg,
		store:   store,
		mailbox: mb,
		llm:     completer,
		now:     time.Now,
	}
}

// RunOptions controls a single daily run.
type RunOptions struct {
	// SinceOverride replaces the stored watermark as the window's lower
	// bound.
	SinceOverride *time.Time

	// UpdateState advances the watermark after a successful run.
	UpdateState bool
}

// RunDaily executes one daily triage window: list unread mail since the
// watermark, run both analysis passes, reconcile the results into the task
// and sender records, and advance the watermark.
//
// On analysis failure it returns a fallback summary describing the failure
// alongside the error; no record file is touched in that case.
func (e *Engine) RunDaily(ctx context.Context, opts RunOptions) (*triage.DailySummary, error) {
	runID := uuid.NewString()
	now := e.now().UTC()
	log := slog.With("run_id", runID)

	state, err := e.store.LoadState()
	if err != nil {
		return nil, err
	}

	since := now.Add(-defaultLookback)
	switch {
	case opts.SinceOverride != nil:
		since = opts.SinceOverride.UTC()
	case state.LastRunAt != nil:
		since = state.LastRunAt.UTC()
	}
	log.Info("starting daily triage", "since", since, "update_state", opts.UpdateState)

	emails, err := e.mailbox.ListSummariesSince(ctx, &since, e.cfg.Triage.MaxEmailsPerRun)
	if err != nil {
		return nil, fmt.Errorf("list mailbox: %w", err)
	}

	if len(emails) == 0 {
		log.Info("no new emails in window")
		summary := &triage.DailySummary{
			SummaryDate: triage.DateOf(now),
			OtherNotes:  "No new emails since the last run.",
		}
		if opts.UpdateState {
			state.LastRunAt = &now
			if err := e.store.SaveState(state); err != nil {
				return summary, err
			}
		}
		return summary, nil
	}

	tasks, err := e.store.LoadTasks()
	if err != nil {
		return nil, err
	}
	senders, err := e.store.LoadSenders()
	if err != nil {
		return nil, err
	}
	instructions, err := e.store.LoadInstructions()
	if err != nil {
		return nil, err
	}

	result, err := e.analyze(ctx, instructions, senders, tasks, emails)
	if err != nil {
		log.Error("analysis failed, no changes applied", "error", err)
		return e.fallbackSummary(now, err), err
	}

	triage.Apply(tasks, result.ops)
	triage.MergeSenderUpdates(senders, result.senders)
	touchLastSeen(senders, emails)

	if err := e.store.SaveTasks(tasks); err != nil {
		return result.summary, err
	}
	if err := e.store.SaveSenders(senders); err != nil {
		return result.summary, err
	}
	if opts.UpdateState {
		state.LastRunAt = &now
		if err := e.store.SaveState(state); err != nil {
			return result.summary, err
		}
	}

	log.Info("daily triage finished",
		"emails", len(emails),
		"task_ops", len(result.ops),
		"sender_updates", len(result.senders),
		"critical", len(result.summary.CriticalEmails))
	return result.summary, nil
}

// RescanDays replays the last n calendar days as separate windows, oldest
// first, folding each window's operations into in-memory state and
// persisting the records once at the end. The watermark is never touched:
// a rescan is a repair tool, not a scheduled run.
func (e *Engine) RescanDays(ctx context.Context, days int) ([]triage.DailySummary, error) {
	if days < 1 {
		return nil, fmt.Errorf("rescan requires at least 1 day, got %d", days)
	}
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	now := e.now().UTC()

	tasks, err := e.store.LoadTasks()
	if err != nil {
		return nil, err
	}
	senders, err := e.store.LoadSenders()
	if err != nil {
		return nil, err
	}
	instructions, err := e.store.LoadInstructions()
	if err != nil {
		return nil, err
	}

	summaries := make([]triage.DailySummary, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := triage.DateOf(now).AddDays(-i)
		start := day.Time()
		end := start.Add(24 * time.Hour)
		log.Info("rescanning window", "day", day.String())

		emails, err := e.mailbox.ListSummariesBetween(ctx, start, end, e.cfg.Triage.MaxEmailsPerRun)
		if err != nil {
			return summaries, fmt.Errorf("list mailbox for %s: %w", day, err)
		}
		if len(emails) == 0 {
			log.Info("no mail in window, skipping", "day", day.String())
			continue
		}

		result, err := e.analyze(ctx, instructions, senders, tasks, emails)
		if err != nil {
			log.Error("rescan window failed, skipping", "day", day.String(), "error", err)
			fb := e.fallbackSummary(now, err)
			fb.SummaryDate = day
			summaries = append(summaries, *fb)
			continue
		}

		triage.Apply(tasks, result.ops)
		triage.MergeSenderUpdates(senders, result.senders)
		touchLastSeen(senders, emails)

		summary := *result.summary
		summary.SummaryDate = day
		summaries = append(summaries, summary)
	}

	if err := e.store.SaveTasks(tasks); err != nil {
		return summaries, err
	}
	if err := e.store.SaveSenders(senders); err != nil {
		return summaries, err
	}

	log.Info("rescan finished", "days", days, "summaries", len(summaries))
	return summaries, nil
}

// UpdateInstructions asks the model to merge the user's feedback into the
// stored instructions text and persists the result.
func (e *Engine) UpdateInstructions(ctx context.Context, feedback string) (string, error) {
	current, err := e.store.LoadInstructions()
	if err != nil {
		return "", err
	}

	msgs, err := buildInstructionsMessages(current, feedback)
	if err != nil {
		return "", err
	}
	out, err := e.llm.CompleteJSON(ctx, msgs, instructionsMaxTokens, 0)
	if err != nil {
		return "", fmt.Errorf("instructions update: %w", err)
	}

	revised, _ := out["instructions"].(string)
	if revised == "" {
		return "", fmt.Errorf("instructions update: model returned no instructions text")
	}

	if err := e.store.SaveInstructions(revised); err != nil {
		return "", err
	}
	return revised, nil
}

// analysis is the combined output of one two-pass window.
type analysis struct {
	ops     []triage.TaskOperation
	senders []triage.SenderProfile
	summary *triage.DailySummary
}

// analyze runs both passes for one window. It is pure with respect to the
// record files: all inputs arrive as values, nothing is persisted.
func (e *Engine) analyze(ctx context.Context, instructions string, senders *triage.SendersFile, tasks *triage.TasksFile, emails []triage.EmailSummary) (*analysis, error) {
	open := openTasks(tasks)

	msgs1, err := buildPass1Messages(instructions, senders.Senders, open, emails)
	if err != nil {
		return nil, err
	}
	out1, err := e.llm.CompleteJSON(ctx, msgs1, passMaxTokens, passTemperature)
	if err != nil {
		return nil, fmt.Errorf("first pass: %w", err)
	}

	expandIDs := stringSlice(out1["emails_to_expand"])
	pass1Ops := triage.DecodeTaskOperations(anySlice(out1["task_ops"]))
	slog.Debug("first pass complete", "expand", len(expandIDs), "ops", len(pass1Ops))

	var bodies []triage.EmailBody
	if len(expandIDs) > 0 {
		bodies, err = e.mailbox.FetchBodies(ctx, expandIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch bodies: %w", err)
		}
	}

	msgs2, err := buildPass2Messages(instructions, senders.Senders, open, emails, bodies, pass1Ops)
	if err != nil {
		return nil, err
	}
	out2, err := e.llm.CompleteJSON(ctx, msgs2, passMaxTokens, passTemperature)
	if err != nil {
		return nil, fmt.Errorf("second pass: %w", err)
	}

	// Final operations supersede the preliminary ones: only the second
	// pass's list is applied. Pass 1 ops exist to be revised, not layered.
	finalOps := triage.DecodeTaskOperations(anySlice(out2["final_task_ops"]))
	senderUpdates := triage.DecodeSenderProfiles(anySlice(out2["updated_senders"]))

	summaryRaw, _ := out2["daily_summary"].(map[string]any)
	summary, err := triage.DecodeDailySummary(summaryRaw)
	if err != nil {
		return nil, fmt.Errorf("second pass: %w", err)
	}

	return &analysis{
		ops:     finalOps,
		senders: senderUpdates,
		summary: summary,
	}, nil
}

// fallbackSummary is the report produced when a window's analysis fails.
// The reader should learn from the report itself that nothing was changed.
func (e *Engine) fallbackSummary(now time.Time, cause error) *triage.DailySummary {
	return &triage.DailySummary{
		SummaryDate: triage.DateOf(now),
		CriticalEmails: []triage.CriticalEmailEntry{{
			EmailID:           "(none)",
			ThreadID:          "(none)",
			Summary:           "The triage run failed before a summary could be produced.",
			ReasonCritical:    cause.Error(),
			RecommendedAction: "Check logs, API key, and model configuration.",
		}},
		OtherNotes: "The run failed; no changes were applied.",
	}
}

// touchLastSeen bumps last_seen_at for every known sender that appears in
// the window, keeping the newest timestamp.
func touchLastSeen(senders *triage.SendersFile, emails []triage.EmailSummary) {
	index := make(map[string]int, len(senders.Senders))
	for i, s := range senders.Senders {
		index[s.Email] = i
	}
	for _, em := range emails {
		i, ok := index[em.SenderEmail]
		if !ok {
			continue
		}
		ts := em.ReceivedAt.UTC()
		if senders.Senders[i].LastSeenAt == nil || senders.Senders[i].LastSeenAt.Before(ts) {
			senders.Senders[i].LastSeenAt = &ts
		}
	}
}

func openTasks(file *triage.TasksFile) []triage.Task {
	open := make([]triage.Task, 0, len(file.Tasks))
	for _, t := range file.Tasks {
		if t.Status != triage.TaskDone {
			open = append(open, t)
		}
	}
	return open
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func anySlice(v any) []any {
	raw, _ := v.([]any)
	return raw
}
