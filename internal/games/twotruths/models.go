// internal/games/twotruths/models.go

package twotruths

import (
	"time"
)

const (
	RoundCount         = 10
	StatementsPerRound = 3
)

// Winner values
const (
	WinnerInitiator = "initiator"
	WinnerPartner   = "partner"
	WinnerTie       = "tie"
)

// Statement is one line of a round. IsLie is never shown to the guesser before completion.
type Statement struct {
	Text  string `json:"text"`
	IsLie bool   `json:"is_lie"`
}

// Round holds three statements, exactly one of them a lie
type Round struct {
	Statements []Statement `json:"statements"`
}

// PlayerDoc is everything one player authored and guessed
type PlayerDoc struct {
	Rounds      []Round    `json:"rounds,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	// Guesses[i] is the statement index picked as the lie in the partner's round i
	Guesses   []int      `json:"guesses,omitempty"`
	GuessedAt *time.Time `json:"guessed_at,omitempty"`
	Score     *int       `json:"score,omitempty"`
}

// Payload is the session document stored in games.Session.Payload
type Payload struct {
	Initiator PlayerDoc `json:"initiator"`
	Invitee   PlayerDoc `json:"invitee"`
	Winner    string    `json:"winner,omitempty"`
}

func (p *Payload) player(initiator bool) *PlayerDoc {
	if initiator {
		return &p.Initiator
	}
	return &p.Invitee
}

// SubmitStatementsRequest is the body of POST .../statements
type SubmitStatementsRequest struct {
	Rounds []Round `json:"rounds" validate:"required"`
}

// SubmitGuessesRequest is the body of POST .../guesses
type SubmitGuessesRequest struct {
	Guesses []int `json:"guesses" validate:"required"`
}

// RoundView is a partner round as the guesser may see it
type RoundView struct {
	Statements []string `json:"statements"`
	LieIndex   *int     `json:"lie_index,omitempty"`
	YourGuess  *int     `json:"your_guess,omitempty"`
	Correct    *bool    `json:"correct,omitempty"`
}

// View is the viewer-specific game state
type View struct {
	SessionID          string      `json:"session_id"`
	Status             string      `json:"status"`
	YouSubmitted       bool        `json:"you_submitted"`
	PartnerSubmitted   bool        `json:"partner_submitted"`
	YouGuessed         bool        `json:"you_guessed"`
	PartnerGuessed     bool        `json:"partner_guessed"`
	YourRounds         []Round     `json:"your_rounds,omitempty"`
	PartnerRounds      []RoundView `json:"partner_rounds,omitempty"`
	YourScore          *int        `json:"your_score,omitempty"`
	PartnerScore       *int        `json:"partner_score,omitempty"`
	InitiatorScore     *int        `json:"initiator_score,omitempty"`
	InviteeScore       *int        `json:"invitee_score,omitempty"`
	Winner             string      `json:"winner,omitempty"`
	RestartRequestedBy *int64      `json:"restart_requested_by,omitempty"`
}
