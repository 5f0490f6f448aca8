// internal/compatibility/models.go
// Per-couple compatibility aggregate built from the latest completed game of each type

package compatibility

import (
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

var ErrAggregateNotFound = apperr.New(apperr.KindNotFound, "compatibility_not_found", "No compatibility data for this couple yet")

// Compatibility levels
const (
	LevelExploring   = "exploring"
	LevelPromising   = "promising"
	LevelStrong      = "strong"
	LevelExceptional = "exceptional"
)

// Confidence in the aggregate, driven only by how many games were included
const (
	ConfidenceMinimal       = "minimal"
	ConfidencePartial       = "partial"
	ConfidenceGood          = "good"
	ConfidenceComprehensive = "comprehensive"
)

// Display caps for the aggregated insight lists
const (
	MaxStrengths            = 10
	MaxDiscussionAreas      = 8
	MaxConversationStarters = 10
	MaxRedFlags             = 10
	MaxHiddenAlignments     = 8
)

// DimensionWeights for the overall score
var DimensionWeights = map[string]float64{
	games.DimensionIntuition:  10,
	games.DimensionLifestyle:  15,
	games.DimensionPhysical:   20,
	games.DimensionExperience: 10,
	games.DimensionCharacter:  25,
	games.DimensionFuture:     20,
}

// Dimensions in display order
var Dimensions = []string{
	games.DimensionIntuition,
	games.DimensionLifestyle,
	games.DimensionPhysical,
	games.DimensionExperience,
	games.DimensionCharacter,
	games.DimensionFuture,
}

// GameSnapshot records which session, if any, fed a game type
type GameSnapshot struct {
	Included     bool       `json:"included"`
	SessionID    string     `json:"session_id,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Score        *float64   `json:"score,omitempty"`
	QuickSummary string     `json:"quick_summary,omitempty"`
}

// DimensionScore is one of the six named couple dimensions
type DimensionScore struct {
	Score      *float64       `json:"score"`
	Available  bool           `json:"available"`
	SourceGame games.GameType `json:"source_game"`
}

// Overall is the weighted couple score
type Overall struct {
	Score      *int   `json:"score"`
	Level      string `json:"level"`
	Confidence string `json:"confidence"`
}

// LongTermPotential is part of the narrative
type LongTermPotential struct {
	Score      int      `json:"score"`
	Assessment string   `json:"assessment"`
	Factors    []string `json:"factors"`
}

// Recommendations is part of the narrative
type Recommendations struct {
	DateIdeas          []string `json:"date_ideas"`
	ConversationTopics []string `json:"conversation_topics"`
	AreasToExplore     []string `json:"areas_to_explore"`
	WatchOutFor        []string `json:"watch_out_for"`
}

// Verdict is the narrative headline
type Verdict struct {
	Headline   string `json:"headline"`
	Summary    string `json:"summary"`
	Confidence string `json:"confidence"`
}

// Narrative is the optional AI-written reading of the aggregate
type Narrative struct {
	ExecutiveSummary       string            `json:"executive_summary"`
	CompatibilityNarrative string            `json:"compatibility_narrative"`
	RelationshipDynamic    string            `json:"relationship_dynamic"`
	CommunicationAnalysis  string            `json:"communication_analysis"`
	LongTermPotential      LongTermPotential `json:"long_term_potential"`
	Recommendations        Recommendations   `json:"recommendations"`
	Verdict                Verdict           `json:"verdict"`
	GeneratedAt            time.Time         `json:"generated_at"`
}

// Aggregate is the couple compatibility document, one per canonical pair
type Aggregate struct {
	Pair                 matches.Pair                    `json:"pair"`
	GamesSnapshot        map[games.GameType]GameSnapshot `json:"games_snapshot"`
	TotalGamesIncluded   int                             `json:"total_games_included"`
	Dimensions           map[string]DimensionScore       `json:"dimensions"`
	Overall              Overall                         `json:"overall_compatibility"`
	Strengths            []games.InsightItem             `json:"strengths"`
	DiscussionAreas      []games.InsightItem             `json:"discussion_areas"`
	ConversationStarters []games.ConversationStarter     `json:"conversation_starters"`
	RedFlags             []games.RedFlag                 `json:"red_flags"`
	HiddenAlignments     []games.InsightItem             `json:"hidden_alignments"`
	AIInsights           *Narrative                      `json:"ai_insights,omitempty"`
	AIInsightsAvailable  bool                            `json:"ai_insights_available"`
	LastGeneratedAt      time.Time                       `json:"last_generated_at"`
}

// Available returns the dimensions that have a score, in display order
func (a *Aggregate) Available() []string {
	var out []string
	for _, d := range Dimensions {
		if a.Dimensions[d].Available {
			out = append(out, d)
		}
	}
	return out
}
