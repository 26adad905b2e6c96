// File path: internal/generate/generate_test.go
package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("  Daily_Summary ")
	require.NoError(t, err)
	assert.Equal(t, KindDailySummary, kind)

	_, err = ParseKind("poetry")
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = ParseKind("")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestDailySummaryPromptWithEvents(t *testing.T) {
	prompt, err := BuildPrompt(KindDailySummary, Params{
		Date:   "2025-03-10",
		Events: []string{"Standup at 09:00", "Lunch with Sam"},
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "2025-03-10")
	assert.Contains(t, prompt, "• Standup at 09:00")
	assert.Contains(t, prompt, "• Lunch with Sam")
	assert.Contains(t, prompt, "under 150 words")
}

func TestDailySummaryPromptFreeDay(t *testing.T) {
	prompt, err := BuildPrompt(KindDailySummary, Params{Date: "2025-03-10"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "no events scheduled")
	assert.NotContains(t, prompt, "•")
}

func TestBuildPromptUnknownKind(t *testing.T) {
	_, err := BuildPrompt(Kind("nope"), Params{})
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestEveryKindBuildsNonEmptyPrompt(t *testing.T) {
	params := Params{
		Text:    "body",
		Title:   "title",
		Date:    "2025-03-10",
		Events:  []string{"one"},
		Context: "ctx",
	}
	for kind := range registry {
		prompt, err := BuildPrompt(kind, params)
		require.NoError(t, err, "kind %s", kind)
		assert.NotEmpty(t, prompt, "kind %s", kind)

		opts := OptionsFor(kind)
		assert.Greater(t, opts.MaxOutputTokens, 0, "kind %s", kind)
	}
}

func TestGenericPromptAppendsContext(t *testing.T) {
	prompt, err := BuildPrompt(KindGeneric, Params{Text: "question", Context: "background"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "question")
	assert.Contains(t, prompt, "background")

	bare, err := BuildPrompt(KindGeneric, Params{Text: "question"})
	require.NoError(t, err)
	assert.Equal(t, "question", bare)
}
