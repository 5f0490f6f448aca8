// internal/readiness/models.go
// Date-readiness decision for a matched couple

package readiness

import (
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/dateplan"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

var (
	ErrDecisionNotFound        = apperr.New(apperr.KindNotFound, "decision_not_found", "No readiness decision for this couple yet")
	ErrReadinessCheckRequired  = apperr.New(apperr.KindPreconditionFailed, "readiness_check_required", "Check date readiness before asking for a plan")
	ErrDatePlanNotAvailable    = apperr.New(apperr.KindPreconditionFailed, "date_plan_not_available", "A date plan is only available once you are ready or almost ready")
	ErrFeedbackWithoutDecision = apperr.New(apperr.KindPreconditionFailed, "readiness_check_required", "There is no decision to give feedback on")
)

// Decision classes
type Decision string

const (
	DecisionReady       Decision = "ready"
	DecisionAlmostReady Decision = "almost_ready"
	DecisionCaution     Decision = "caution"
	DecisionNotYet      Decision = "not_yet"
	DecisionBlocked     Decision = "blocked"
)

// PlanEligible reports whether a date plan is produced for d
func (d Decision) PlanEligible() bool {
	return d == DecisionReady || d == DecisionAlmostReady
}

// Component weights
const (
	WeightCompatibility  = 0.35
	WeightEngagement     = 0.20
	WeightRedFlags       = 0.25
	WeightMutualInterest = 0.20
)

// Decision thresholds on the readiness score
const (
	ReadyThreshold       = 75
	AlmostReadyThreshold = 60
	CautionThreshold     = 45
)

// MinAuthenticity below which a participant blocks the date
const MinAuthenticity = 30

// MaxSuggestedGames in an improvement path
const MaxSuggestedGames = 3

// Blocker types
const (
	BlockerBlockedUser  = "blocked_user"
	BlockerDealbreaker  = "dealbreaker_conflict"
	BlockerSevereFlag   = "severe_red_flag"
	BlockerAuthenticity = "authenticity_concern"
)

// Caution types
const (
	CautionLowDimension = "low_dimension_score"
	CautionModerateFlag = "moderate_red_flag"
	CautionIncomplete   = "incomplete_assessment"
	CautionCommGap      = "communication_gap"
)

// Confidence in the decision
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Component is one weighted part of the readiness score
type Component struct {
	Score         float64 `json:"score"`
	Weight        float64 `json:"weight"`
	WeightedScore float64 `json:"weighted_score"`
}

type CompatibilityComponent struct {
	Component
	Available bool   `json:"available"`
	Level     string `json:"level,omitempty"`
}

type EngagementComponent struct {
	Component
	GamesPlayed int `json:"games_played"`
}

type RedFlagComponent struct {
	Component
	PsychometricFlags int `json:"psychometric_flags"`
	CoupleFlags       int `json:"couple_flags"`
}

type MutualInterestComponent struct {
	Component
	MatchStatus    matches.Status `json:"match_status"`
	BothMessaged   bool           `json:"both_messaged"`
	OneMessaged    bool           `json:"one_messaged"`
	StartersUsed   bool           `json:"starters_used"`
	GamesInitiated bool           `json:"games_initiated"`
}

// Components is the score breakdown
type Components struct {
	Compatibility  CompatibilityComponent  `json:"compatibility"`
	Engagement     EngagementComponent     `json:"engagement"`
	RedFlags       RedFlagComponent        `json:"red_flag_assessment"`
	MutualInterest MutualInterestComponent `json:"mutual_interest"`
}

// Blocker forces a blocked decision
type Blocker struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Category    string `json:"category,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
}

// Caution is a non-blocking concern
type Caution struct {
	Type             string `json:"type"`
	Description      string `json:"description"`
	Severity         string `json:"severity"`
	RelatedDimension string `json:"related_dimension,omitempty"`
}

// SuggestedGame is a next game that would fill a gap
type SuggestedGame struct {
	GameType  games.GameType `json:"game_type"`
	Dimension string         `json:"dimension"`
	Reason    string         `json:"reason"`
	Priority  int            `json:"priority"`
}

// ImprovementPath tells a couple what to do next
type ImprovementPath struct {
	SuggestedGames        []SuggestedGame `json:"suggested_games"`
	EstimatedGamesToReady *int            `json:"estimated_games_to_ready"`
}

// DataSources records which inputs were present
type DataSources struct {
	PsychometricUser1   bool `json:"psychometric_user1"`
	PsychometricUser2   bool `json:"psychometric_user2"`
	CoupleCompatibility bool `json:"couple_compatibility"`
	Match               bool `json:"match"`
}

// Result is the readiness decision document, one per canonical pair
type Result struct {
	Pair              matches.Pair    `json:"pair"`
	Decision          Decision        `json:"decision"`
	ReadinessScore    int             `json:"readiness_score"`
	Components        Components      `json:"components"`
	Blockers          []Blocker       `json:"blockers"`
	Cautions          []Caution       `json:"cautions"`
	Confidence        string          `json:"confidence"`
	ImprovementPath   ImprovementPath `json:"improvement_path"`
	DataSources       DataSources     `json:"data_sources"`
	DatePlanAvailable bool            `json:"date_plan_available"`
	DatePlan          *dateplan.Plan  `json:"date_plan,omitempty"`
	GamesCount        int             `json:"games_count"`
	LatestCompletion  *time.Time      `json:"latest_game_completed_at,omitempty"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

// Status is the compact view behind GET /date-status
type Status struct {
	Decision          Decision  `json:"decision"`
	ReadinessScore    int       `json:"readiness_score"`
	DatePlanAvailable bool      `json:"date_plan_available"`
	Stale             bool      `json:"stale"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// FeedbackRequest is the body of POST /date-decision/feedback
type FeedbackRequest struct {
	Helpful    *bool  `json:"helpful" validate:"required"`
	WentOnDate bool   `json:"went_on_date"`
	Notes      string `json:"notes" validate:"max=1000"`
}

// Feedback is a stored feedback row
type Feedback struct {
	ID         int64     `json:"id" db:"id"`
	UserLow    int64     `json:"-" db:"user_low"`
	UserHigh   int64     `json:"-" db:"user_high"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Decision   Decision  `json:"decision" db:"decision"`
	Helpful    bool      `json:"helpful" db:"helpful"`
	WentOnDate bool      `json:"went_on_date" db:"went_on_date"`
	Notes      string    `json:"notes" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
