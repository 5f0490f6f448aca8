// internal/games/spectrum/insights.go

package spectrum

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

const insightsSystemPrompt = `You are a warm, non-judgmental relationship coach. Two partners just played a
slider game about intimacy: for each statement both placed a slider between two extremes (0..100).
You receive per-category compatibility and the rounds where they were furthest apart or closest.
Reply with a JSON object: {"summary": string (2-3 sentences), "highlights": [up to 3 strings],
"talk_about": [up to 3 gentle conversation prompts], "connection_level": one of
"deeply_aligned"|"well_matched"|"complementary"|"exploring"}. Never quote raw numbers for
individual answers and never shame either partner.`

// LLMInsights generates the narrative with the language model
type LLMInsights struct {
	client llm.Client
}

func NewLLMInsights(client llm.Client) *LLMInsights {
	return &LLMInsights{client: client}
}

func (g *LLMInsights) Generate(ctx context.Context, questions []Question, results *Results, rounds []Round) (*Insights, error) {
	var b strings.Builder
	if results.CompatibilityScore != nil {
		fmt.Fprintf(&b, "Overall: %d\n", *results.CompatibilityScore)
	}
	fmt.Fprintf(&b, "Both answered: %d, timed out: %d/%d/%d\n",
		results.BothAnswered, results.Player1TimedOut, results.Player2TimedOut, results.BothTimedOut)

	names := make([]string, 0, len(results.CategoryBreakdown))
	for name := range results.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if c := results.CategoryBreakdown[name].Compatibility; c != nil {
			fmt.Fprintf(&b, "- %s: %d\n", categoryLabel(name), *c)
		}
	}

	answered := make([]Round, 0, len(rounds))
	for _, r := range rounds {
		if r.Gap != nil && r.Index < len(questions) {
			answered = append(answered, r)
		}
	}
	sort.SliceStable(answered, func(i, j int) bool { return *answered[i].Gap > *answered[j].Gap })
	b.WriteString("Furthest apart:\n")
	for i := 0; i < len(answered) && i < 3; i++ {
		q := questions[answered[i].Index]
		fmt.Fprintf(&b, "- %s (%s / %s): %s\n", q.Prompt, q.Left, q.Right, answered[i].Alignment)
	}
	b.WriteString("Closest:\n")
	for i := len(answered) - 1; i >= 0 && i >= len(answered)-3; i-- {
		q := questions[answered[i].Index]
		fmt.Fprintf(&b, "- %s: %s\n", q.Prompt, answered[i].Alignment)
	}

	var out Insights
	err := g.client.GenerateJSON(ctx, llm.JSONRequest{
		Operation: "spectrum_insights",
		System:    insightsSystemPrompt,
		User:      b.String(),
		MaxTokens: 600,
	}, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Summary) == "" {
		return nil, llm.ErrMalformedResponse
	}
	out.Highlights = capStrings(out.Highlights, 3)
	out.TalkAbout = capStrings(out.TalkAbout, 3)
	return &out, nil
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
