package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReplyFiveSections(t *testing.T) {
	sections := []string{"one", "二", "three", "四", "五 explanation"}
	got := ParseReply(strings.Join(sections, SectionSeparator))

	assert.Equal(t, ReplyOutcome{
		EnglishInterpretation:  "one",
		MandarinInterpretation: "二",
		EnglishReply:           "three",
		MandarinReply:          "四",
		MandarinExplanation:    "五 explanation",
	}, got)
	assert.True(t, got.Complete())
}

func TestParseReplyKeepsSingleNewlinesInsideSections(t *testing.T) {
	blob := "line a\nline b\n\nsecond\n\nthird\n\nfourth\n\nfifth"
	got := ParseReply(blob)
	assert.Equal(t, "line a\nline b", got.EnglishInterpretation)
	assert.Equal(t, "fifth", got.MandarinExplanation)
}

func TestParseReplyFewerSections(t *testing.T) {
	got := ParseReply("interpretation\n\n解释")

	assert.Equal(t, "interpretation", got.EnglishInterpretation)
	assert.Equal(t, "解释", got.MandarinInterpretation)
	assert.Empty(t, got.EnglishReply)
	assert.Empty(t, got.MandarinReply)
	assert.Empty(t, got.MandarinExplanation)
	assert.False(t, got.Complete())
}

func TestParseReplyEmptyAndExtra(t *testing.T) {
	assert.Equal(t, ReplyOutcome{}, ParseReply(""))

	got := ParseReply("1\n\n2\n\n3\n\n4\n\n5\n\n6")
	assert.Equal(t, "5", got.MandarinExplanation)
}

func TestParseReplyCRLF(t *testing.T) {
	got := ParseReply("a\r\n\r\nb\r\n\r\nc\r\n\r\nd\r\n\r\ne\r\n")
	assert.Equal(t, ReplyOutcome{
		EnglishInterpretation:  "a",
		MandarinInterpretation: "b",
		EnglishReply:           "c",
		MandarinReply:          "d",
		MandarinExplanation:    "e",
	}, got)
}

func TestParseReplyJSON(t *testing.T) {
	blob := "```json\n{\"englishReply\":\" Sure, Friday works. \",\"mandarinReply\":\"好的\"}\n```"
	got := ParseReply(blob)

	assert.Equal(t, "Sure, Friday works.", got.EnglishReply)
	assert.Equal(t, "好的", got.MandarinReply)
	assert.Empty(t, got.EnglishInterpretation)
}

func TestParseReplyUnrelatedJSONFallsBackToSections(t *testing.T) {
	blob := "{\"note\":\"x\"}\n\nsecond"
	got := ParseReply(blob)
	assert.Equal(t, "{\"note\":\"x\"}", got.EnglishInterpretation)
	assert.Equal(t, "second", got.MandarinInterpretation)
}
