package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTranslatePassesTextThrough(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	system, user, err := set.Render(Translate, Data{EnglishText: "Hello {{ not a template }}"})
	require.NoError(t, err)
	assert.Equal(t, "You are a translator. Translate the following English text to Mandarin Chinese.", system)
	assert.Equal(t, "Hello {{ not a template }}", user)
}

func TestDefaultReplyEmbedsBothInputs(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	system, user, err := set.Render(Reply, Data{EnglishText: "Can you finish the dress by Friday?", MomInput: "可以"})
	require.NoError(t, err)
	assert.Contains(t, system, "five sections")
	assert.Contains(t, system, "blank line")
	assert.Contains(t, user, "Context (English text from client): Can you finish the dress by Friday?")
	assert.Contains(t, user, "(in Mandarin): 可以")
	assert.Contains(t, user, "5. Explain the reply in Mandarin")
}

func TestDefaultReplyJSONNamesKeys(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	system, _, err := set.Render(ReplyJSON, Data{EnglishText: "x", MomInput: "y"})
	require.NoError(t, err)
	for _, key := range []string{"englishInterpretation", "mandarinInterpretation", "englishReply", "mandarinReply", "mandarinExplanation"} {
		assert.Contains(t, system, key)
	}
}

func TestDefaultRecipe(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	_, user, err := set.Render(Recipe, Data{Topic: "vegetable stir fry"})
	require.NoError(t, err)
	assert.Contains(t, user, "Generate a recipe for vegetable stir fry.")
	assert.Contains(t, user, "ingredients (array)")
}

func TestLoadOverridesSingleField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("translate:\n  system: Translate to Mandarin, keep it short.\n"), 0o600))

	set, err := Load(path)
	require.NoError(t, err)

	system, user, err := set.Render(Translate, Data{EnglishText: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Translate to Mandarin, keep it short.", system)
	assert.Equal(t, "hi", user)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("translate:\n  user: \"{{.EnglishText\"\n"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestParseRequiresAllPrompts(t *testing.T) {
	_, err := Parse([]byte("translate:\n  system: s\n  user: u\n"))
	assert.ErrorContains(t, err, "is not defined")
}

func TestRenderUnknownKey(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)
	_, _, err = set.Render("summary", Data{})
	assert.Error(t, err)
}
