package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/service"
)

func TestParseCards(t *testing.T) {
	t.Run("plain json object", func(t *testing.T) {
		cards, err := parseCards(`{"cards": [{"front": "q1", "back": "a1"}, {"front": "q2", "back": "a2"}]}`)
		require.NoError(t, err)
		assert.Equal(t, []service.GeneratedCard{
			{Front: "q1", Back: "a1"},
			{Front: "q2", Back: "a2"},
		}, cards)
	})

	t.Run("fenced json", func(t *testing.T) {
		cards, err := parseCards("```json\n{\"cards\": [{\"front\": \"q\", \"back\": \"a\"}]}\n```")
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, "q", cards[0].Front)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseCards("Sure! Here are your flashcards:")
		assert.Error(t, err)
	})

	t.Run("no cards", func(t *testing.T) {
		_, err := parseCards(`{"cards": []}`)
		assert.Error(t, err)
	})

	t.Run("empty side", func(t *testing.T) {
		_, err := parseCards(`{"cards": [{"front": "q", "back": "  "}]}`)
		assert.Error(t, err)
	})

	t.Run("side over the length cap", func(t *testing.T) {
		long := strings.Repeat("x", maxSideLen+1)
		_, err := parseCards(`{"cards": [{"front": "` + long + `", "back": "a"}]}`)
		assert.Error(t, err)
	})
}

func TestBuildPrompt(t *testing.T) {
	existing := []service.GeneratedCard{{Front: "perro", Back: "dog"}}
	prompt := buildPrompt("Spanish", "Core vocabulary", existing, 5)

	assert.Contains(t, prompt, "5 new flashcards")
	assert.Contains(t, prompt, `"Spanish"`)
	assert.Contains(t, prompt, "Core vocabulary")
	assert.Contains(t, prompt, "perro")
	assert.NotContains(t, prompt, "dog", "existing answers stay out of the prompt")
}
