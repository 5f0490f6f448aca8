// internal/games/result.go
// Uniform read view every completed session exposes to the compatibility aggregate

package games

import (
	"time"
)

// Couple-level red flag severities
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityCritical = "critical"
)

// InsightItem is one strength, discussion area or hidden alignment
type InsightItem struct {
	Text       string   `json:"text"`
	Category   string   `json:"category,omitempty"`
	SourceGame GameType `json:"source_game,omitempty"`
}

// ConversationStarter is a prompt the couple can use on a date
type ConversationStarter struct {
	Prompt     string   `json:"prompt"`
	Topic      string   `json:"topic"`
	SourceGame GameType `json:"source_game,omitempty"`
}

// RedFlag is a couple-level concern surfaced by a game
type RedFlag struct {
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	SourceGame  GameType `json:"source_game,omitempty"`
}

// IsSevere reports severe or critical
func (f RedFlag) IsSevere() bool {
	return f.Severity == SeveritySevere || f.Severity == SeverityCritical
}

// ResultView is what a completed session contributes to the couple aggregate
type ResultView struct {
	GameType             GameType              `json:"game_type"`
	CompletedAt          time.Time             `json:"completed_at"`
	Score                float64               `json:"score"`
	// Unscored marks a finished session with nothing to score; Score is meaningless then
	Unscored             bool                  `json:"unscored,omitempty"`
	Dimension            string                `json:"dimension"`
	QuickSummary         string                `json:"quick_summary"`
	Strengths            []InsightItem         `json:"strengths"`
	DiscussionAreas      []InsightItem         `json:"discussion_areas"`
	ConversationStarters []ConversationStarter `json:"conversation_starters"`
	RedFlags             []RedFlag             `json:"red_flags"`
	HiddenAlignments     []InsightItem         `json:"hidden_alignments"`
	// CategoryScores holds per-category alignment (0..100) for date planning
	CategoryScores  map[string]float64 `json:"category_scores,omitempty"`
	SharedInterests []string           `json:"shared_interests,omitempty"`
}

// NewResultView starts a view with the header fields filled and source tags applied by Tag
func NewResultView(gameType GameType, completedAt time.Time, score float64) *ResultView {
	return &ResultView{
		GameType:    gameType,
		CompletedAt: completedAt,
		Score:       clampScore(score),
		Dimension:   gameType.Dimension(),
	}
}

// Tag stamps every item with the view's game type
func (v *ResultView) Tag() *ResultView {
	for i := range v.Strengths {
		v.Strengths[i].SourceGame = v.GameType
	}
	for i := range v.DiscussionAreas {
		v.DiscussionAreas[i].SourceGame = v.GameType
	}
	for i := range v.ConversationStarters {
		v.ConversationStarters[i].SourceGame = v.GameType
	}
	for i := range v.RedFlags {
		v.RedFlags[i].SourceGame = v.GameType
	}
	for i := range v.HiddenAlignments {
		v.HiddenAlignments[i].SourceGame = v.GameType
	}
	return v
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
