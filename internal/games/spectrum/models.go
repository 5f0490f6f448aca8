// internal/games/spectrum/models.go

package spectrum

import (
	"time"
)

// Phase inside a playing session
type Phase string

const (
	PhaseCountdown Phase = "countdown"
	PhaseQuestion  Phase = "question"
	PhaseReveal    Phase = "reveal"
)

// Reveal triggers
const (
	TriggerBothAnswered = "both_answered"
	TriggerTimer        = "timer"
)

// Round is the record of one question. Positions are nil until answered; a nil after reveal is a timeout.
type Round struct {
	Index             int        `json:"question_index"`
	Category          string     `json:"category"`
	InitiatorPosition *int       `json:"p1_position"`
	InviteePosition   *int       `json:"p2_position"`
	InitiatorAt       *time.Time `json:"p1_answered_at,omitempty"`
	InviteeAt         *time.Time `json:"p2_answered_at,omitempty"`
	Gap               *int       `json:"gap,omitempty"`
	Alignment         string     `json:"alignment,omitempty"`
	RevealedAt        *time.Time `json:"revealed_at,omitempty"`
	Trigger           string     `json:"trigger,omitempty"`
}

func (r *Round) position(initiator bool) *int {
	if initiator {
		return r.InitiatorPosition
	}
	return r.InviteePosition
}

func (r *Round) record(initiator bool, position int, at time.Time) {
	if initiator {
		r.InitiatorPosition, r.InitiatorAt = &position, &at
		return
	}
	r.InviteePosition, r.InviteeAt = &position, &at
}

func (r *Round) bothAnswered() bool {
	return r.InitiatorPosition != nil && r.InviteePosition != nil
}

// Presence tracks one participant's connection
type Presence struct {
	UserID         int64      `json:"user_id"`
	Connected      bool       `json:"connected"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

// Payload is the persisted session document
type Payload struct {
	Phase             Phase      `json:"phase,omitempty"`
	CurrentIndex      int        `json:"current_question_index"`
	PhaseStartedAt    *time.Time `json:"phase_started_at,omitempty"`
	QuestionStartedAt *time.Time `json:"current_question_started_at,omitempty"`
	QuestionExpiresAt *time.Time `json:"current_question_expires_at,omitempty"`
	Rounds            []Round    `json:"rounds"`
	Initiator         Presence   `json:"initiator"`
	Invitee           Presence   `json:"invitee"`
	PausedAt          *time.Time `json:"paused_at,omitempty"`
	Results           *Results   `json:"results,omitempty"`
	AIInsights        *Insights  `json:"ai_insights,omitempty"`
	VoiceNoteCount    int        `json:"voice_note_count"`
	AbandonedBy       *int64     `json:"abandoned_by,omitempty"`
}

func (p *Payload) presence(initiator bool) *Presence {
	if initiator {
		return &p.Initiator
	}
	return &p.Invitee
}

func (p *Payload) current() *Round {
	if p.CurrentIndex < 0 || p.CurrentIndex >= len(p.Rounds) {
		return nil
	}
	return &p.Rounds[p.CurrentIndex]
}

// CategoryResult is the breakdown for one question category
type CategoryResult struct {
	Compatibility *int    `json:"compatibility"`
	Weight        float64 `json:"weight"`
	BothAnswered  int     `json:"both_answered"`
	TotalGap      int     `json:"total_gap"`
}

// Results summarise a completed session
type Results struct {
	BothAnswered       int                       `json:"both_answered"`
	Player1TimedOut    int                       `json:"player1_timed_out"`
	Player2TimedOut    int                       `json:"player2_timed_out"`
	BothTimedOut       int                       `json:"both_timed_out"`
	AverageGap         *float64                  `json:"average_gap"`
	CompatibilityScore *int                      `json:"compatibility_score"`
	CategoryBreakdown  map[string]CategoryResult `json:"category_breakdown"`
}

// Insights is the optional narrative generated after completion
type Insights struct {
	Summary         string   `json:"summary"`
	Highlights      []string `json:"highlights"`
	TalkAbout       []string `json:"talk_about"`
	ConnectionLevel string   `json:"connection_level,omitempty"`
}

// StateView is the viewer-specific snapshot sent as is:state
type StateView struct {
	SessionID         string     `json:"session_id"`
	Status            string     `json:"status"`
	Phase             Phase      `json:"phase,omitempty"`
	QuestionIndex     int        `json:"current_question_index"`
	TotalQuestions    int        `json:"total_questions"`
	Question          *Question  `json:"question,omitempty"`
	QuestionExpiresAt *time.Time `json:"current_question_expires_at,omitempty"`
	RemainingMs       int64      `json:"remaining_ms"`
	YouAnswered       bool       `json:"you_answered"`
	YourPosition      *int       `json:"your_position,omitempty"`
	PartnerAnswered   bool       `json:"partner_answered"`
	PartnerID         int64      `json:"partner_id"`
	PartnerConnected  bool       `json:"partner_connected"`
	Revealed          []Round    `json:"revealed,omitempty"`
	Results           *Results   `json:"results,omitempty"`
	AIInsights        *Insights  `json:"ai_insights,omitempty"`
	InvitationExpires *time.Time `json:"invitation_expires_at,omitempty"`
}

// RevealEvent is the is:reveal payload
type RevealEvent struct {
	SessionID     string `json:"session_id"`
	QuestionIndex int    `json:"question_index"`
	P1Position    *int   `json:"p1_position"`
	P2Position    *int   `json:"p2_position"`
	Gap           *int   `json:"gap"`
	Alignment     string `json:"alignment"`
}

// CompletedEvent is the is:completed payload
type CompletedEvent struct {
	SessionID  string    `json:"session_id"`
	Results    *Results  `json:"results"`
	AIInsights *Insights `json:"ai_insights,omitempty"`
}
