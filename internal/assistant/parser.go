package assistant

import (
	"encoding/json"
	"strings"

	"mom-assistant/internal/textutil"
)

// SectionSeparator splits the sections of a reply blob.
const SectionSeparator = "\n\n"

var replyKeys = []string{
	"englishInterpretation",
	"mandarinInterpretation",
	"englishReply",
	"mandarinReply",
	"mandarinExplanation",
}

// ReplyOutcome is the parsed five-part reply, in the order the model is asked
// to produce it.
type ReplyOutcome struct {
	EnglishInterpretation  string `json:"englishInterpretation"`
	MandarinInterpretation string `json:"mandarinInterpretation"`
	EnglishReply           string `json:"englishReply"`
	MandarinReply          string `json:"mandarinReply"`
	MandarinExplanation    string `json:"mandarinExplanation"`
}

// fields returns the outcome's fields in section order.
func (r *ReplyOutcome) fields() []*string {
	return []*string{
		&r.EnglishInterpretation,
		&r.MandarinInterpretation,
		&r.EnglishReply,
		&r.MandarinReply,
		&r.MandarinExplanation,
	}
}

// Complete reports whether every field is populated.
func (r ReplyOutcome) Complete() bool {
	for _, f := range r.fields() {
		if *f == "" {
			return false
		}
	}
	return true
}

// ParseReply maps a reply blob onto ReplyOutcome. A JSON object carrying the
// named keys is read by name; anything else is split on blank lines and
// assigned positionally. Missing trailing sections stay empty and extra
// sections are dropped. It never fails.
func ParseReply(blob string) ReplyOutcome {
	blob = textutil.NormalizeNewlines(blob)

	if out, ok := parseJSONReply(blob); ok {
		return out
	}

	var out ReplyOutcome
	sections := strings.Split(blob, SectionSeparator)
	for i, field := range out.fields() {
		if i >= len(sections) {
			break
		}
		*field = strings.TrimSpace(sections[i])
	}
	return out
}

func parseJSONReply(blob string) (ReplyOutcome, bool) {
	candidate := textutil.StripCodeFence(blob)
	if !strings.HasPrefix(candidate, "{") {
		return ReplyOutcome{}, false
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &keyed); err != nil {
		return ReplyOutcome{}, false
	}

	known := false
	for _, key := range replyKeys {
		if _, ok := keyed[key]; ok {
			known = true
			break
		}
	}
	if !known {
		return ReplyOutcome{}, false
	}

	var out ReplyOutcome
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return ReplyOutcome{}, false
	}
	for _, field := range out.fields() {
		*field = strings.TrimSpace(*field)
	}
	return out, true
}
