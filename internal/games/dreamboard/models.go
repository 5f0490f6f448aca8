// internal/games/dreamboard/models.go

package dreamboard

import "time"

// Reaction to a partner's card
type Reaction string

const (
	ReactionLove    Reaction = "love"
	ReactionOpen    Reaction = "open"
	ReactionConcern Reaction = "concern"
)

var reactionScores = map[Reaction]float64{
	ReactionLove:    85,
	ReactionOpen:    60,
	ReactionConcern: 20,
}

// SameCardScore applies when both pinned the same card
const SameCardScore = 100.0

// Valid reports whether r is a known reaction
func (r Reaction) Valid() bool {
	_, ok := reactionScores[r]
	return ok
}

// PlayerDoc holds one player's pinned cards and their reactions to the partner's
type PlayerDoc struct {
	Board       map[string]string   `json:"board,omitempty"` // category -> card id
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	Reactions   map[string]Reaction `json:"reactions,omitempty"` // category -> reaction to partner card
	ReactedAt   *time.Time          `json:"reacted_at,omitempty"`
}

type Payload struct {
	Initiator PlayerDoc `json:"initiator"`
	Invitee   PlayerDoc `json:"invitee"`
}

func (p *Payload) player(initiator bool) *PlayerDoc {
	if initiator {
		return &p.Initiator
	}
	return &p.Invitee
}

type BoardRequest struct {
	Board map[string]string `json:"board" validate:"required"`
}

type ReactionsRequest struct {
	Reactions map[string]Reaction `json:"reactions" validate:"required"`
}

// CategoryView is one row of the board as the viewer sees it
type CategoryView struct {
	Category        string   `json:"category"`
	Options         []Card   `json:"options,omitempty"`
	YourCard        *Card    `json:"your_card,omitempty"`
	PartnerCard     *Card    `json:"partner_card,omitempty"`
	YourReaction    Reaction `json:"your_reaction,omitempty"`
	PartnerReaction Reaction `json:"partner_reaction,omitempty"`
	Score           *float64 `json:"score,omitempty"`
}

type View struct {
	SessionID          string         `json:"session_id"`
	Status             string         `json:"status"`
	Categories         []CategoryView `json:"categories"`
	YouSubmitted       bool           `json:"you_submitted"`
	PartnerSubmitted   bool           `json:"partner_submitted"`
	YouReacted         bool           `json:"you_reacted"`
	PartnerReacted     bool           `json:"partner_reacted"`
	Score              *float64       `json:"score,omitempty"`
	RestartRequestedBy *int64         `json:"restart_requested_by,omitempty"`
}
