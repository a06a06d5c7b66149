package mailbox

import (
	"encoding/base64"
	"testing"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

func TestParseFromHeader(t *testing.T) {
	tests := []struct {
		in        string
		wantName  string
		wantEmail string
	}{
		{`Ada Lovelace <ada@example.edu>`, "Ada Lovelace", "ada@example.edu"},
		{`"Lovelace, Ada" <ada@example.edu>`, "Lovelace, Ada", "ada@example.edu"},
		{`ada@example.edu`, "", "ada@example.edu"},
		{`Broken Name Only <ada@example.edu`, "", "Broken Name Only <ada@example.edu"},
		{``, "", ""},
	}
	for _, tt := range tests {
		name, email := parseFromHeader(tt.in)
		if name != tt.wantName || email != tt.wantEmail {
			t.Errorf("parseFromHeader(%q) = (%q, %q), want (%q, %q)",
				tt.in, name, email, tt.wantName, tt.wantEmail)
		}
	}
}

func TestParseDateHeader(t *testing.T) {
	got := parseDateHeader("Mon, 31 Aug 2026 14:02:03 +0200")
	want := time.Date(2026, 8, 31, 12, 2, 3, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseDateHeader = %v, want %v", got, want)
	}
}

func TestParseDateHeader_GarbageFallsBackToNow(t *testing.T) {
	before := time.Now().UTC()
	got := parseDateHeader("yesterday-ish")
	if got.Before(before.Add(-time.Minute)) {
		t.Errorf("fallback time too old: %v", got)
	}
}

func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestExtractBodies_Multipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: encode("plain body")},
			},
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: encode("<p>html body</p>")},
			},
		},
	}

	text, html := extractBodies(payload)
	if text != "plain body" {
		t.Errorf("text = %q", text)
	}
	if html != "<p>html body</p>" {
		t.Errorf("html = %q", html)
	}
}

func TestExtractBodies_NestedMultipart(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmail.MessagePartBody{Data: encode("inner text")},
					},
				},
			},
			{
				MimeType: "application/pdf",
				Body:     &gmail.MessagePartBody{},
			},
		},
	}

	text, _ := extractBodies(payload)
	if text != "inner text" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractBodies_SinglePartPlain(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: encode("just text")},
	}
	text, html := extractBodies(payload)
	if text != "just text" || html != "" {
		t.Errorf("got (%q, %q)", text, html)
	}
}

func TestExtractBodies_Nil(t *testing.T) {
	text, html := extractBodies(nil)
	if text != "" || html != "" {
		t.Errorf("got (%q, %q), want empty", text, html)
	}
}

func TestHeaderValue_CaseInsensitive(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "subject", Value: "Hello"},
		{Name: "From", Value: "a@example.com"},
	}
	if got := headerValue(headers, "Subject"); got != "Hello" {
		t.Errorf("headerValue(Subject) = %q", got)
	}
	if got := headerValue(headers, "Reply-To"); got != "" {
		t.Errorf("headerValue(Reply-To) = %q, want empty", got)
	}
}
