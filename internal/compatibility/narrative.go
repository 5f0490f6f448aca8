// internal/compatibility/narrative.go

package compatibility

import (
	"context"
	"fmt"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

// MinGamesForNarrative is the number of included games before a narrative is requested
const MinGamesForNarrative = 3

// Narrator writes the AI reading of an aggregate
type Narrator interface {
	Narrate(ctx context.Context, agg *Aggregate) (*Narrative, error)
}

type llmNarrator struct {
	client llm.Client
}

// NewLLMNarrator creates a narrator backed by the language model
func NewLLMNarrator(client llm.Client) Narrator {
	return &llmNarrator{client: client}
}

const narratorSystemPrompt = `You are a warm, honest relationship coach reviewing a couple's results
from a set of compatibility games. Return a JSON object with:
"executive_summary": 2-3 sentences;
"compatibility_narrative": one paragraph;
"relationship_dynamic": one paragraph;
"communication_analysis": one paragraph;
"long_term_potential": {"score": 0-100, "assessment": string, "factors": [strings]};
"recommendations": {"date_ideas": [..], "conversation_topics": [..], "areas_to_explore": [..], "watch_out_for": [..]};
"verdict": {"headline": short string, "summary": string, "confidence": one of low, medium, high}.
Never invent games the couple has not played.`

func (n *llmNarrator) Narrate(ctx context.Context, agg *Aggregate) (*Narrative, error) {
	var b strings.Builder
	if agg.Overall.Score != nil {
		fmt.Fprintf(&b, "Overall compatibility: %d (%s, %s confidence)\n", *agg.Overall.Score, agg.Overall.Level, agg.Overall.Confidence)
	}
	b.WriteString("Dimensions:\n")
	for _, d := range agg.Available() {
		ds := agg.Dimensions[d]
		fmt.Fprintf(&b, "- %s: %.0f (from %s)\n", d, *ds.Score, ds.SourceGame)
	}
	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
	}
	texts := func(kind string) []string {
		var out []string
		switch kind {
		case "strengths":
			for _, s := range agg.Strengths {
				out = append(out, s.Text)
			}
		case "discussion":
			for _, s := range agg.DiscussionAreas {
				out = append(out, s.Text)
			}
		case "flags":
			for _, f := range agg.RedFlags {
				out = append(out, fmt.Sprintf("%s (%s)", f.Description, f.Severity))
			}
		}
		return out
	}
	writeList("Strengths", texts("strengths"))
	writeList("Discussion areas", texts("discussion"))
	writeList("Concerns", texts("flags"))

	var out Narrative
	err := n.client.GenerateJSON(ctx, llm.JSONRequest{
		Operation: "couple_narrative",
		System:    narratorSystemPrompt,
		User:      b.String(),
	}, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ExecutiveSummary) == "" || strings.TrimSpace(out.Verdict.Headline) == "" {
		return nil, llm.ErrMalformedResponse
	}
	if out.LongTermPotential.Score < 0 || out.LongTermPotential.Score > 100 {
		out.LongTermPotential.Score = 0
	}
	return &out, nil
}
