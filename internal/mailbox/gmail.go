package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/clombard/mailtriage/internal/config"
	"github.com/clombard/mailtriage/internal/triage"
)

// GmailClient implements Client over the Gmail API with a stored OAuth
// token. Read-only scope is all the triage run needs.
type GmailClient struct {
	svc *gmail.Service
}

// NewGmailClient builds an authorized Gmail client from the stored token.
// The interactive consent flow lives in Authorize; a missing or stale token
// here is an error telling the user to run it.
func NewGmailClient(ctx context.Context, cfg config.GmailConfig) (*GmailClient, error) {
	oauthCfg, err := oauthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("load gmail token (run 'mailtriage auth' first): %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailClient{svc: svc}, nil
}

// Authorize runs the installed-app consent flow on the console and stores
// the resulting token.
func Authorize(ctx context.Context, cfg config.GmailConfig) error {
	oauthCfg, err := oauthConfig(cfg)
	if err != nil {
		return err
	}

	url := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%s\n\nCode: ", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(cfg.TokenPath, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	slog.Info("gmail token stored", "path", cfg.TokenPath)
	return nil
}

func oauthConfig(cfg config.GmailConfig) (*oauth2.Config, error) {
	creds, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read gmail credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(creds, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse gmail credentials: %w", err)
	}
	return oauthCfg, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// ListSummariesSince lists unread inbox summaries received since the given
// instant.
func (c *GmailClient) ListSummariesSince(ctx context.Context, since *time.Time, max int) ([]triage.EmailSummary, error) {
	parts := []string{"label:INBOX", "is:unread"}
	if since != nil {
		parts = append(parts, fmt.Sprintf("after:%d", since.UTC().Unix()))
	}
	return c.listSummaries(ctx, strings.Join(parts, " "), max)
}

// ListSummariesBetween lists inbox summaries, read and unread, in
// [start, end).
func (c *GmailClient) ListSummariesBetween(ctx context.Context, start, end time.Time, max int) ([]triage.EmailSummary, error) {
	query := fmt.Sprintf("label:INBOX after:%d before:%d", start.UTC().Unix(), end.UTC().Unix())
	return c.listSummaries(ctx, query, max)
}

func (c *GmailClient) listSummaries(ctx context.Context, query string, max int) ([]triage.EmailSummary, error) {
	slog.Info("listing mailbox summaries", "query", query, "max", max)

	summaries := []triage.EmailSummary{}

	resp, err := c.svc.Users.Messages.List("me").Q(query).MaxResults(int64(max)).Context(ctx).Do()
	if err != nil {
		slog.Error("list messages failed", "error", err)
		return summaries, nil
	}

	for _, ref := range resp.Messages {
		if ref.Id == "" {
			continue
		}
		msg, err := c.svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Context(ctx).Do()
		if err != nil {
			slog.Warn("fetch message metadata failed, skipping", "id", ref.Id, "error", err)
			continue
		}

		threadID := msg.ThreadId
		if threadID == "" {
			threadID = ref.Id
		}

		var headers []*gmail.MessagePartHeader
		if msg.Payload != nil {
			headers = msg.Payload.Headers
		}

		from := headerValue(headers, "From")
		subject := headerValue(headers, "Subject")
		if subject == "" {
			subject = "(no subject)"
		}

		name, email := parseFromHeader(from)
		summaries = append(summaries, triage.EmailSummary{
			ID:          ref.Id,
			ThreadID:    threadID,
			SenderName:  name,
			SenderEmail: email,
			ReceivedAt:  parseDateHeader(headerValue(headers, "Date")),
			Subject:     subject,
			Snippet:     msg.Snippet,
		})
	}

	return summaries, nil
}

// FetchBodies fetches full bodies for the given ids, skipping failures.
func (c *GmailClient) FetchBodies(ctx context.Context, ids []string) ([]triage.EmailBody, error) {
	bodies := []triage.EmailBody{}

	for _, id := range ids {
		msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
		if err != nil {
			slog.Warn("fetch full message failed, skipping", "id", id, "error", err)
			continue
		}

		threadID := msg.ThreadId
		if threadID == "" {
			threadID = id
		}

		text, html := extractBodies(msg.Payload)
		bodies = append(bodies, triage.EmailBody{
			ID:       id,
			ThreadID: threadID,
			BodyText: text,
			BodyHTML: html,
		})
	}

	return bodies, nil
}
