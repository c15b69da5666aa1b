// Package news produces the short promotional message appended to each user.
package news

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/kalambet/newsetl/internal/format"
	"github.com/kalambet/newsetl/internal/record"
)

const generationTimeout = 30 * time.Second

// TextGenerator is the generative text service.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Generator writes one message per user. It never fails: service errors and
// empty answers are replaced by Fallback.
type Generator struct {
	client TextGenerator
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Generator that asks model through client.
func NewGenerator(client TextGenerator, model string) *Generator {
	return &Generator{client: client, model: model, logger: slog.Default()}
}

// Generate returns a cleaned message of at most MaxLength characters for u.
func (g *Generator) Generate(ctx context.Context, u *record.Record) string {
	ctx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	text, err := g.client.GenerateText(ctx, g.model, BuildPrompt(u.Name))
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) && genErr.Code != 0 {
			g.logger.Error("gemini API error, using fallback message",
				"user_id", u.ID, "code", genErr.Code, "message", genErr.Message)
		} else {
			g.logger.Error("gemini unexpected error, using fallback message",
				"user_id", u.ID, "error", err)
		}
		text = ""
	}

	text = format.Clean(text)
	if text == "" {
		text = format.Clean(Fallback(u.Name))
	}
	text = format.Truncate(text, MaxLength)

	g.logger.Info("news generated",
		"user_id", u.ID, "name", u.Name, "text", text, "length", utf8.RuneCountInString(text))
	return text
}
