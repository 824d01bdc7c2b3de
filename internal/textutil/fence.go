package textutil

import "strings"

// StripCodeFence removes a surrounding Markdown code fence (```json ... ```)
// from model output. Text without a fence is returned trimmed.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		// drop the info string, e.g. "json"
		body = body[nl+1:]
	} else {
		body = ""
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
