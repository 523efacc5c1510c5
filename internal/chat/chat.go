// Package chat answers the site's FAQ widget.
//
// Replies come from a local keyword rule table, so the common questions cost
// nothing and work offline. When no rule matches and an API key is
// configured, the question falls through to Claude with the academy FAQ as
// grounding; any failure there degrades to the canned default reply.
package chat

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

//go:embed system_prompt.txt
var systemPrompt string

const (
	defaultReply = "Great question! The best way to get an answer is to book a free trial class or email us at hello@rookery.academy — we reply within a day."

	profanityReply = "Let's keep it friendly! If you have a question about our chess or coding classes, I'm happy to help."
)

type rule struct {
	keywords []string
	reply    string
}

// The FAQ table. Keywords are matched as lowercase substrings; the rule
// with the most hits wins.
var rules = []rule{
	{
		keywords: []string{"class", "program", "course", "lesson"},
		reply:    "We run after-school and weekend classes in chess and beginner coding, grouped by age and level. Every class is capped at eight students so everyone gets board time and screen time.",
	},
	{
		keywords: []string{"age", "old", "young", "year"},
		reply:    "Our programs are for kids aged 5 to 14. Little Pawns (5-7) learn through games and stories, Knights (8-11) play rated chess and build their first projects, and Rooks (12-14) prepare for tournaments and real coding.",
	},
	{
		keywords: []string{"price", "cost", "fee", "pay", "tuition"},
		reply:    "Term tuition starts at $120 per month for one weekly class, with sibling discounts. The first trial class is always free.",
	},
	{
		keywords: []string{"trial", "free", "try"},
		reply:    "Yes! Your first class is free. Pick any session on the schedule page and book it as a trial — no commitment.",
	},
	{
		keywords: []string{"schedule", "time", "when", "day", "weekend"},
		reply:    "Classes run weekday afternoons from 4pm and Saturday mornings. The live schedule for your city is on the locations page.",
	},
	{
		keywords: []string{"where", "location", "address", "city", "near"},
		reply:    "We teach in several cities plus online. Check the locations page for the academy nearest you — and every class is also available over video.",
	},
	{
		keywords: []string{"chess", "rating", "tournament", "puzzle"},
		reply:    "Chess students train with puzzles, play rated club games, and can join our monthly tournaments. Coaches are titled players who love teaching kids.",
	},
	{
		keywords: []string{"coding", "code", "program", "scratch", "python"},
		reply:    "Coding classes start with Scratch for the youngest group and move to Python. Kids build games and small projects they can show off at home.",
	},
	{
		keywords: []string{"contact", "email", "phone", "call"},
		reply:    "You can reach us at hello@rookery.academy or through the contact form — a real human replies within one school day.",
	},
}

// Bot is the rule-matcher plus the optional Claude fallback. It holds no
// per-conversation state: every reply is computed from the one request.
type Bot struct {
	claude *anthropic.Client
}

func New(apiKey string) *Bot {
	b := &Bot{}
	if apiKey != "" {
		client := anthropic.NewClient(option.WithAPIKey(apiKey))
		b.claude = &client
	}
	return b
}

// Reply produces the answer for one chat message.
func (b *Bot) Reply(ctx context.Context, message, recentContext string) string {
	if goaway.IsProfane(message) {
		return profanityReply
	}

	if reply, ok := matchRule(message); ok {
		return reply
	}

	if b.claude != nil {
		if reply, err := b.askClaude(ctx, message, recentContext); err == nil {
			return reply
		} else {
			slog.Warn("claude fallback failed", "error", err)
		}
	}

	return defaultReply
}

// matchRule scores every rule by keyword hits and returns the best one.
func matchRule(message string) (string, bool) {
	lower := strings.ToLower(message)

	var (
		best     string
		bestHits int
	)
	for _, r := range rules {
		hits := 0
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = r.reply
		}
	}

	return best, bestHits > 0
}

func (b *Bot) askClaude(ctx context.Context, message, recentContext string) (string, error) {
	userMessage := message
	if recentContext != "" {
		userMessage = fmt.Sprintf("Earlier in the conversation: %s\n\nQuestion: %s", recentContext, message)
	}

	resp, err := b.claude.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaudeHaiku4_5,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{{
			Text: systemPrompt,
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return "", err
	}

	var reply strings.Builder
	for _, content := range resp.Content {
		reply.WriteString(content.Text)
	}
	if reply.Len() == 0 {
		return "", fmt.Errorf("empty reply from claude")
	}

	return reply.String(), nil
}
