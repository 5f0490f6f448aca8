// internal/games/models.go
// Session header shared by every game type

package games

import (
	"encoding/json"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// GameType identifies one of the six games
type GameType string

const (
	TwoTruthsLie     GameType = "two_truths_lie"
	WouldYouRather   GameType = "would_you_rather"
	IntimacySpectrum GameType = "intimacy_spectrum"
	NeverHaveIEver   GameType = "never_have_i_ever"
	WhatWouldYouDo   GameType = "what_would_you_do"
	DreamBoard       GameType = "dream_board"
)

// AllGameTypes in catalog order
var AllGameTypes = []GameType{
	TwoTruthsLie,
	WouldYouRather,
	IntimacySpectrum,
	NeverHaveIEver,
	WhatWouldYouDo,
	DreamBoard,
}

// Valid reports whether t is a known game type
func (t GameType) Valid() bool {
	for _, g := range AllGameTypes {
		if g == t {
			return true
		}
	}
	return false
}

// Compatibility dimensions, one per game
const (
	DimensionIntuition  = "intuition"
	DimensionLifestyle  = "lifestyle"
	DimensionPhysical   = "physical"
	DimensionExperience = "experience"
	DimensionCharacter  = "character"
	DimensionFuture     = "future"
)

var gameDimensions = map[GameType]string{
	TwoTruthsLie:     DimensionIntuition,
	WouldYouRather:   DimensionLifestyle,
	IntimacySpectrum: DimensionPhysical,
	NeverHaveIEver:   DimensionExperience,
	WhatWouldYouDo:   DimensionCharacter,
	DreamBoard:       DimensionFuture,
}

// Dimension returns the compatibility dimension a game feeds
func (t GameType) Dimension() string {
	return gameDimensions[t]
}

// GameForDimension is the inverse of Dimension
func GameForDimension(dimension string) (GameType, bool) {
	for g, d := range gameDimensions {
		if d == dimension {
			return g, true
		}
	}
	return "", false
}

// Session is one play of one game between one pair. Payload is the game-specific document.
type Session struct {
	ID                  string          `json:"session_id"`
	GameType            GameType        `json:"game_type"`
	Pair                matches.Pair    `json:"-"`
	InitiatorID         int64           `json:"initiator_id"`
	InviteeID           int64           `json:"invitee_id"`
	Status              Status          `json:"status"`
	InvitedAt           time.Time       `json:"invited_at"`
	InvitationExpiresAt time.Time       `json:"invitation_expires_at"`
	AcceptedAt          *time.Time      `json:"accepted_at,omitempty"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy         *int64          `json:"cancelled_by,omitempty"`
	RestartRequestedBy  *int64          `json:"restart_requested_by,omitempty"`
	RestartRequestedAt  *time.Time      `json:"restart_requested_at,omitempty"`
	PreviousGameID      *string         `json:"previous_game_id,omitempty"`
	RestartCount        int             `json:"restart_count"`
	Payload             json.RawMessage `json:"-"`
	Result              *ResultView     `json:"result,omitempty"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsParticipant reports whether userID plays in this session
func (s *Session) IsParticipant(userID int64) bool {
	return s.InitiatorID == userID || s.InviteeID == userID
}

// Partner returns the other participant
func (s *Session) Partner(userID int64) int64 {
	if userID == s.InitiatorID {
		return s.InviteeID
	}
	return s.InitiatorID
}

// IsInitiator reports whether userID started the session
func (s *Session) IsInitiator(userID int64) bool {
	return s.InitiatorID == userID
}

// DecodePayload unmarshals the game-specific document
func (s *Session) DecodePayload(dst interface{}) error {
	if len(s.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(s.Payload, dst)
}

// EncodePayload replaces the game-specific document
func (s *Session) EncodePayload(src interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	s.Payload = data
	return nil
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	c.AcceptedAt = copyTime(s.AcceptedAt)
	c.StartedAt = copyTime(s.StartedAt)
	c.CompletedAt = copyTime(s.CompletedAt)
	c.CancelledAt = copyTime(s.CancelledAt)
	c.RestartRequestedAt = copyTime(s.RestartRequestedAt)
	c.CancelledBy = copyInt(s.CancelledBy)
	c.RestartRequestedBy = copyInt(s.RestartRequestedBy)
	if s.PreviousGameID != nil {
		id := *s.PreviousGameID
		c.PreviousGameID = &id
	}
	if s.Payload != nil {
		c.Payload = append(json.RawMessage(nil), s.Payload...)
	}
	if s.Result != nil {
		r := *s.Result
		c.Result = &r
	}
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// InviteRequest is the body of POST /games/invite
type InviteRequest struct {
	GameType  GameType `json:"game_type" validate:"required"`
	PartnerID int64    `json:"partner_id" validate:"required,gt=0"`
}
