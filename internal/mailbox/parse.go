package mailbox

import (
	"encoding/base64"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseFromHeader splits a From header into (name, email). Falls back to a
// naive angle-bracket split when the header is not RFC 5322 clean.
func parseFromHeader(from string) (name, email string) {
	if from == "" {
		return "", ""
	}
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Name, addr.Address
	}
	if i := strings.Index(from, "<"); i >= 0 {
		rest := from[i+1:]
		if j := strings.Index(rest, ">"); j >= 0 {
			name = strings.Trim(strings.TrimSpace(from[:i]), `"`)
			return name, strings.TrimSpace(rest[:j])
		}
	}
	return "", strings.TrimSpace(from)
}

// parseDateHeader parses an RFC 5322 Date header into UTC, falling back to
// now when the header is missing or mangled.
func parseDateHeader(value string) time.Time {
	if value == "" {
		return time.Now().UTC()
	}
	t, err := mail.ParseDate(value)
	if err != nil {
		slog.Warn("unparseable Date header, using now", "value", value)
		return time.Now().UTC()
	}
	return t.UTC()
}

// extractBodies walks a message payload and collects the plain-text and
// HTML bodies, recursing through multipart parts.
func extractBodies(part *gmail.MessagePart) (text, html string) {
	if part == nil {
		return "", ""
	}

	switch {
	case part.MimeType == "text/plain":
		return decodeBody(part.Body), ""
	case part.MimeType == "text/html":
		return "", decodeBody(part.Body)
	case strings.HasPrefix(part.MimeType, "multipart/"):
		var textChunks, htmlChunks []string
		for _, p := range part.Parts {
			t, h := extractBodies(p)
			if t != "" {
				textChunks = append(textChunks, t)
			}
			if h != "" {
				htmlChunks = append(htmlChunks, h)
			}
		}
		return strings.TrimSpace(strings.Join(textChunks, "\n")), strings.TrimSpace(strings.Join(htmlChunks, "\n"))
	default:
		return decodeBody(part.Body), ""
	}
}

func decodeBody(body *gmail.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(body.Data, "="))
	if err != nil {
		slog.Warn("undecodable message body", "error", err)
		return ""
	}
	return string(decoded)
}
