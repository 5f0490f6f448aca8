// internal/games/wouldyourather/models.go

package wouldyourather

import "time"

// PlayerDoc holds one player's own choices and predictions of the partner's
type PlayerDoc struct {
	Choices         map[string]string `json:"choices,omitempty"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	Predictions     map[string]string `json:"predictions,omitempty"`
	PredictedAt     *time.Time        `json:"predicted_at,omitempty"`
	PredictionScore *int              `json:"prediction_score,omitempty"`
}

// Payload is the session document
type Payload struct {
	QuestionIDs []string  `json:"question_ids"`
	Initiator   PlayerDoc `json:"initiator"`
	Invitee     PlayerDoc `json:"invitee"`
}

func (p *Payload) player(initiator bool) *PlayerDoc {
	if initiator {
		return &p.Initiator
	}
	return &p.Invitee
}

// AnswersRequest carries question id -> option key, used for choices and predictions
type AnswersRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

// QuestionView is a question with whatever the viewer may see about it
type QuestionView struct {
	Question
	YourChoice        string `json:"your_choice,omitempty"`
	YourPrediction    string `json:"your_prediction,omitempty"`
	PartnerChoice     string `json:"partner_choice,omitempty"`
	PartnerPrediction string `json:"partner_prediction,omitempty"`
	Match             *bool  `json:"match,omitempty"`
}

// View is the viewer-specific game state
type View struct {
	SessionID          string         `json:"session_id"`
	Status             string         `json:"status"`
	Questions          []QuestionView `json:"questions"`
	YouSubmitted       bool           `json:"you_submitted"`
	PartnerSubmitted   bool           `json:"partner_submitted"`
	YouPredicted       bool           `json:"you_predicted"`
	PartnerPredicted   bool           `json:"partner_predicted"`
	YourPredictionHits *int           `json:"your_prediction_hits,omitempty"`
	MatchPercentage    *float64       `json:"match_percentage,omitempty"`
	RestartRequestedBy *int64         `json:"restart_requested_by,omitempty"`
}
