// Package mailbox lists and fetches email from the user's mail provider.
package mailbox

import (
	"context"
	"time"

	"github.com/clombard/mailtriage/internal/triage"
)

// Client is the mailbox contract the orchestrator consumes. Implementations
// must degrade gracefully: provider-side errors on individual messages are
// logged and skipped, and list-level failures return empty lists rather
// than failing the caller.
type Client interface {
	// ListSummariesSince returns summaries for unread inbox messages
	// received at or after since. A nil since lists unread without a lower
	// bound, relying on max to limit volume.
	ListSummariesSince(ctx context.Context, since *time.Time, max int) ([]triage.EmailSummary, error)

	// ListSummariesBetween returns summaries for inbox messages, read and
	// unread, in [start, end).
	ListSummariesBetween(ctx context.Context, start, end time.Time, max int) ([]triage.EmailSummary, error)

	// FetchBodies returns full bodies for the given message ids. Messages
	// that cannot be fetched are skipped.
	FetchBodies(ctx context.Context, ids []string) ([]triage.EmailBody, error)
}
