package bot

import (
	"testing"

	"curator-bot/internal/questionnaire"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChoiceCallback(t *testing.T) {
	ev, ok := parseChoiceCallback(&tgbotapi.CallbackQuery{
		ID:   "cb-1",
		Data: "choice:10:$25M",
	})
	require.True(t, ok)
	assert.Equal(t, 10, ev.StepIndex)
	assert.Equal(t, "$25M", ev.Value)
	assert.Equal(t, "cb-1", ev.CallbackID)
}

func TestParseChoiceCallbackRejectsMalformedData(t *testing.T) {
	for _, data := range []string{"", "choice:x:$25M", "texture:1:oak", "choice:1"} {
		_, ok := parseChoiceCallback(&tgbotapi.CallbackQuery{ID: "cb", Data: data})
		assert.False(t, ok, "data %q should be rejected", data)
	}
}

func TestChoiceKeyboardLayout(t *testing.T) {
	options := []questionnaire.Choice{
		{Label: "$5M", Value: "$5M"},
		{Label: "$10M", Value: "$10M"},
		{Label: "$15M", Value: "$15M"},
	}

	markup := choiceKeyboard(9, options)
	require.Len(t, markup.InlineKeyboard, 2, "two buttons per row")
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 1)

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "$5M", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "choice:9:$5M", *first.CallbackData)
}
