package extract

import (
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/filesearch/engine/internal/chunk"
)

// Email extracts an .eml message's headers and body via net/mail. A
// .msg file (Outlook's proprietary binary container) is not parseable
// with anything in the standard library or the reference corpus and is
// reported as a Parse-category error, which the indexer treats as an
// accepted degraded path rather than a hard failure.
func Email(path string, content []byte) Result {
	if strings.HasSuffix(strings.ToLower(path), ".msg") {
		return Result{Err: fmt.Errorf("legacy Outlook .msg format is not supported for content extraction")}
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(content)))
	if err != nil {
		return Result{Err: fmt.Errorf("parse eml message: %w", err)}
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return Result{Err: fmt.Errorf("read eml body: %w", err)}
	}

	subject := msg.Header.Get("Subject")
	from := msg.Header.Get("From")
	to := msg.Header.Get("To")

	var parts []string
	if subject != "" {
		parts = append(parts, subject)
	}
	bodyText := strings.TrimSpace(string(body))
	if bodyText != "" {
		parts = append(parts, bodyText)
	}

	var sections []chunk.Section
	if subject != "" {
		sections = append(sections, chunk.Section{Type: chunk.SectionHeading, Level: 1, Title: subject})
	}
	if bodyText != "" {
		sections = append(sections, chunk.Section{Type: chunk.SectionParagraph, Text: bodyText})
	}

	return Result{
		Text:     strings.Join(parts, "\n\n"),
		Sections: sections,
		Metadata: map[string]string{"from": from, "to": to, "subject": subject},
	}
}
