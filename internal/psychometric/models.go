// internal/psychometric/models.go
// Per-user psychometric analysis consumed by the readiness decider

package psychometric

import (
	"time"
)

// Dimension is one of the six questionnaire axes
type Dimension string

const (
	DimEmotionalIntimacy     Dimension = "emotional_intimacy"
	DimLifeVision            Dimension = "life_vision"
	DimConflictCommunication Dimension = "conflict_communication"
	DimLoveLanguages         Dimension = "love_languages"
	DimPhysicalSexual        Dimension = "physical_sexual"
	DimLifestyle             Dimension = "lifestyle"
)

// Dimensions in vector order
var Dimensions = []Dimension{
	DimEmotionalIntimacy,
	DimLifeVision,
	DimConflictCommunication,
	DimLoveLanguages,
	DimPhysicalSexual,
	DimLifestyle,
}

// DimensionWeights are used for the overall score and the pairwise preview
var DimensionWeights = map[Dimension]float64{
	DimEmotionalIntimacy:     0.25,
	DimLifeVision:            0.20,
	DimConflictCommunication: 0.15,
	DimLoveLanguages:         0.15,
	DimPhysicalSexual:        0.15,
	DimLifestyle:             0.10,
}

// CriticalSeverity and above is a critical red flag
const CriticalSeverity = 4

// VectorLength is the size of the compatibility vector
const VectorLength = 50

// VectorVersion identifies the current vector layout
const VectorVersion = 1

// DimensionScores maps a dimension to a 0..100 score; a nil value means unscored
type DimensionScores map[Dimension]*float64

// Profile holds personality traits returned by the analyzer
type Profile struct {
	AttachmentStyle       string  `json:"attachment_style"`
	ConflictStyle         string  `json:"conflict_style"`
	DominantLoveLanguage  string  `json:"dominant_love_language"`
	SecondaryLoveLanguage string  `json:"secondary_love_language"`
	IntroversionScore     float64 `json:"introversion_score"`
	EmotionalIntelligence float64 `json:"emotional_intelligence"`
	CommunicationStyle    string  `json:"communication_style"`
	Openness              float64 `json:"openness"`
	Conscientiousness     float64 `json:"conscientiousness"`
}

// RedFlag is a concern detected from the user's answers
type RedFlag struct {
	Category           string    `json:"category"`
	Severity           int       `json:"severity"` // 1..5
	Description        string    `json:"description"`
	SourceQuestionRefs []int64   `json:"source_question_refs"`
	DetectedAt         time.Time `json:"detected_at"`
}

// IsCritical reports severity >= 4
func (f RedFlag) IsCritical() bool {
	return f.Severity >= CriticalSeverity
}

// Dealbreaker types understood by conflict detection
const (
	DealbreakerKids     = "kids"
	DealbreakerReligion = "religion"
	DealbreakerLocation = "location"
)

// Dealbreaker is a hard requirement stated by the user
type Dealbreaker struct {
	Type              string   `json:"type"`
	Value             string   `json:"value"`
	Importance        string   `json:"importance,omitempty"` // mandatory, strict, preferred, flexible
	IncompatibleWith  []string `json:"incompatible_with"`
	SourceQuestionRef int64    `json:"source_question_ref,omitempty"`
}

// Summary is the AI-written overview shown on the profile
type Summary struct {
	ShortBio           string    `json:"short_bio"`
	Strengths          []string  `json:"strengths"`
	CompatibilityNotes string    `json:"compatibility_notes"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// Vector is the fixed-length compatibility embedding
type Vector struct {
	Values  []float64 `json:"values"`
	Version int       `json:"version"`
}

// Metadata tracks freshness of an analysis
type Metadata struct {
	QuestionsAnalyzed int       `json:"questions_analyzed"`
	LastAnalyzedAt    time.Time `json:"last_analyzed_at"`
	NeedsReanalysis   bool      `json:"needs_reanalysis"`
}

// Analysis is one user's psychometric analysis
type Analysis struct {
	UserID              int64           `json:"user_id"`
	DimensionScores     DimensionScores `json:"dimension_scores"`
	OverallScore        *float64        `json:"overall_score"`
	AuthenticityScore   float64         `json:"authenticity_score"`
	Profile             Profile         `json:"personality_profile"`
	RedFlags            []RedFlag       `json:"red_flags"`
	Dealbreakers        []Dealbreaker   `json:"dealbreakers"`
	Summary             Summary         `json:"ai_summary"`
	CompatibilityVector Vector          `json:"compatibility_vector"`
	Metadata            Metadata        `json:"metadata"`
}

// Answer is one questionnaire answer joined with its question
type Answer struct {
	QuestionID int64     `db:"question_id"`
	Dimension  Dimension `db:"dimension"`
	Prompt     string    `db:"prompt"`
	Answer     string    `db:"answer"`
}

// DealbreakerConflict is a pair of incompatible hard requirements
// Values are sorted so the conflict reads the same from either side.
type DealbreakerConflict struct {
	Category string   `json:"category"`
	Values   []string `json:"values"`
	Reason   string   `json:"reason"`
}

// Preview is the pairwise compatibility estimate
type Preview struct {
	Score                float64               `json:"score"`
	DimensionScores      map[Dimension]float64 `json:"dimension_scores"`
	DealbreakerConflicts []DealbreakerConflict `json:"dealbreaker_conflicts"`
	Compatible           bool                  `json:"compatible"`
}

// AnalyzeRequest is the body of POST /psychometric/analysis
type AnalyzeRequest struct {
	Force bool `json:"force"`
}
