// internal/psychometric/analyzer.go

package psychometric

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

// Analyzer turns answers into an analysis
type Analyzer interface {
	Analyze(ctx context.Context, userID int64, answers []Answer) (*Analysis, error)
}

type llmAnalyzer struct {
	client llm.Client
	now    func() time.Time
}

// NewLLMAnalyzer creates an analyzer backed by the language model
func NewLLMAnalyzer(client llm.Client) Analyzer {
	return &llmAnalyzer{client: client, now: time.Now}
}

const analyzerSystemPrompt = `You are a relationship psychologist scoring a dating questionnaire.
Return a JSON object with:
"dimension_scores": object keyed by emotional_intimacy, life_vision, conflict_communication,
love_languages, physical_sexual, lifestyle with a 0-100 number, or null if the answers say nothing;
"authenticity_score": 0-100, how consistent and genuine the answers are;
"personality_profile": {attachment_style (secure|anxious|avoidant|disorganized),
conflict_style (collaborative|compromising|avoiding|competing|accommodating),
dominant_love_language and secondary_love_language (words_of_affirmation|acts_of_service|receiving_gifts|quality_time|physical_touch),
introversion_score, emotional_intelligence, openness, conscientiousness (0-100),
communication_style (direct|diplomatic|expressive|reserved)};
"red_flags": [{category, severity 1-5, description, source_question_refs: [question ids]}];
"dealbreakers": [{type (kids|religion|location|smoking|drinking|pets|politics|marriage|finances|career),
value, importance (mandatory|strict|preferred|flexible), incompatible_with: [values], source_question_ref}].
For kids use one of definitely_want, probably_want, unsure, probably_not, definitely_not;
"ai_summary": {short_bio, strengths: [..], compatibility_notes}.`

type analyzerOutput struct {
	DimensionScores   map[string]*float64 `json:"dimension_scores"`
	AuthenticityScore float64             `json:"authenticity_score"`
	Profile           Profile             `json:"personality_profile"`
	RedFlags          []RedFlag           `json:"red_flags"`
	Dealbreakers      []Dealbreaker       `json:"dealbreakers"`
	Summary           Summary             `json:"ai_summary"`
}

func (a *llmAnalyzer) Analyze(ctx context.Context, userID int64, answers []Answer) (*Analysis, error) {
	var b strings.Builder
	for _, ans := range answers {
		fmt.Fprintf(&b, "[%d] (%s) Q: %s\nA: %s\n", ans.QuestionID, ans.Dimension, ans.Prompt, ans.Answer)
	}

	var out analyzerOutput
	err := a.client.GenerateJSON(ctx, llm.JSONRequest{
		Operation: "psychometric_analysis",
		System:    analyzerSystemPrompt,
		User:      b.String(),
	}, &out)
	if err != nil {
		return nil, ErrAnalysisFailed.WithCause(err)
	}

	now := a.now().UTC()
	analysis := &Analysis{
		UserID:            userID,
		DimensionScores:   DimensionScores{},
		AuthenticityScore: clamp(out.AuthenticityScore, 0, 100),
		Profile:           out.Profile,
		Dealbreakers:      out.Dealbreakers,
		Summary:           out.Summary,
	}
	for _, dim := range Dimensions {
		if s := out.DimensionScores[string(dim)]; s != nil {
			v := clamp(*s, 0, 100)
			analysis.DimensionScores[dim] = &v
		} else {
			analysis.DimensionScores[dim] = nil
		}
	}
	for _, f := range out.RedFlags {
		if f.Description == "" {
			continue
		}
		f.Severity = int(clamp(float64(f.Severity), 1, 5))
		f.DetectedAt = now
		analysis.RedFlags = append(analysis.RedFlags, f)
	}
	analysis.Summary.GeneratedAt = now
	p := &analysis.Profile
	p.IntroversionScore = clamp(p.IntroversionScore, 0, 100)
	p.EmotionalIntelligence = clamp(p.EmotionalIntelligence, 0, 100)
	p.Openness = clamp(p.Openness, 0, 100)
	p.Conscientiousness = clamp(p.Conscientiousness, 0, 100)

	return analysis, nil
}

// marshalDocument and unmarshalDocument keep the JSONB shape in one place
func marshalDocument(a *Analysis) ([]byte, error) {
	return json.Marshal(a)
}

func unmarshalDocument(data []byte) (*Analysis, error) {
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}
