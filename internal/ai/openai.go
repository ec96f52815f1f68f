package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/StudyOwl-Labs/flashdeck-back/internal/config"
	"github.com/StudyOwl-Labs/flashdeck-back/internal/service"
)

const (
	maxSideLen = 1000

	systemPrompt = "You are a flashcard author. You write concise, factual " +
		"front/back study cards. Respond with JSON only."
)

type Generator struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewGenerator(cfg *config.Config, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		client: openai.NewClient(cfg.OpenAIKey),
		model:  cfg.OpenAIModel,
		logger: logger,
	}
}

func (g *Generator) Generate(ctx context.Context, title, description string, existing []service.GeneratedCard, count int) ([]service.GeneratedCard, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(title, description, existing, count)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Errorw("openai call failed", "model", g.model, "error", err)
		return nil, errors.Wrap(err, "create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	cards, err := parseCards(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	g.logger.Infow("openai generation done", "model", g.model, "cards", len(cards))
	return cards, nil
}

func buildPrompt(title, description string, existing []service.GeneratedCard, count int) string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "Write %d new flashcards for the deck %q.\n", count, title)
	fmt.Fprintf(&b, "Deck description: %s\n", description)
	if len(existing) > 0 {
		b.WriteString("The deck already contains these cards, do not repeat them:\n")
		for i := range existing {
			fmt.Fprintf(&b, "- %s\n", existing[i].Front)
		}
	}
	fmt.Fprintf(&b, "Each side must be at most %d characters.\n", maxSideLen)
	b.WriteString(`Answer with a JSON object of the shape {"cards": [{"front": "...", "back": "..."}]}.`)
	return b.String()
}

// parseCards validates the model output against the card shape. Anything
// malformed fails the whole call; nothing is salvaged from a bad reply.
func parseCards(content string) ([]service.GeneratedCard, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	payload := struct {
		Cards []struct {
			Front string `json:"front"`
			Back  string `json:"back"`
		} `json:"cards"`
	}{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal generated cards")
	}
	if len(payload.Cards) == 0 {
		return nil, errors.New("generated content contains no cards")
	}

	cards := make([]service.GeneratedCard, len(payload.Cards))
	for i, c := range payload.Cards {
		front := strings.TrimSpace(c.Front)
		back := strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			return nil, errors.New(fmt.Sprintf("generated card %d has an empty side", i))
		}
		if utf8.RuneCountInString(front) > maxSideLen || utf8.RuneCountInString(back) > maxSideLen {
			return nil, errors.New(fmt.Sprintf("generated card %d exceeds %d characters", i, maxSideLen))
		}
		cards[i] = service.GeneratedCard{Front: front, Back: back}
	}

	return cards, nil
}
