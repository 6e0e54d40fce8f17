package reply

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ecocampmy/campsite-chat-service/internal/genai"
	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
)

// historyWindow is how many trailing conversation turns the prompt carries.
const historyWindow = 10

// persona is the fixed style guideline block embedded in every generated
// prompt.
const persona = `You are the assistant for an eco-friendly camping site covering Malaysia.
Be warm, concise, and practical. Answer in at most three short paragraphs.
Only recommend campsites from the candidate list below, and link them using
the exact Markdown links given. When pointing users at a section of the site,
use the page links from the table. Never invent campsites, fees, or links.`

// Composer produces the generated reply path: it builds the prompt and calls
// the generation upstream, falling back to canned text when that fails.
type Composer struct {
	gen    genai.Generator
	logger *zap.Logger
}

func NewComposer(gen genai.Generator, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{gen: gen, logger: logger}
}

// Generated builds the prompt from the conversation and candidate set and
// invokes the generation call. Never returns an error: persistent upstream
// failure or empty output degrades to the keyword canned fallback.
func (c *Composer) Generated(ctx context.Context, history []models.ChatMessage, candidates []models.CampSite, message string) string {
	prompt := BuildPrompt(history, candidates, message)
	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		observability.GenerationFallbacksTotal.Inc()
		c.logger.Warn("generation failed, serving canned fallback", zap.Error(err))
		return Fallback(message)
	}
	return text
}

// BuildPrompt assembles the single prompt string: persona block, the last
// historyWindow turns, the candidate campsite list with links, the static
// page table, and the raw user message.
func BuildPrompt(history []models.ChatMessage, candidates []models.CampSite, message string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			role := "User"
			if m.Sender == "bot" {
				role = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n", role, m.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("Candidate campsites:\n")
	for _, site := range candidates {
		fmt.Fprintf(&b, "- %s (%s) %s\n", site.Name, site.State, link(site.Name, "/camp"))
	}
	b.WriteString("\nSite pages:\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "- %s — %s\n", link(p.Label, p.Path), p.Purpose)
	}

	fmt.Fprintf(&b, "\nUser message: %s\n", message)
	return b.String()
}
