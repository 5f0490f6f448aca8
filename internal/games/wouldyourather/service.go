// internal/games/wouldyourather/service.go

package wouldyourather

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

// Service plays Would You Rather: each player answers for themselves, then predicts the partner
type Service struct {
	games   *games.Service
	catalog *Catalog
	perm    func(n int) []int
	log     *logger.Logger
}

func NewService(lifecycle *games.Service, log *logger.Logger) (*Service, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	return &Service{
		games:   lifecycle,
		catalog: catalog,
		perm:    rand.Perm,
		log:     log.With("component", "would_you_rather"),
	}, nil
}

// Engine registers the game with the lifecycle service
func (s *Service) Engine() games.Engine {
	return games.Engine{
		GameType: games.WouldYouRather,
		NewPayload: func() (json.RawMessage, error) {
			return json.Marshal(Payload{QuestionIDs: s.catalog.Draw(s.perm)})
		},
	}
}

// SubmitChoices records the caller's own answers
func (s *Service) SubmitChoices(ctx context.Context, sessionID string, userID int64, answers map[string]string) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	now := s.games.Clock().Now()
	updated, err := s.games.Repository().Update(ctx, sessionID, func(sess *games.Session) error {
		if sess.Status != games.StatusAccepted && sess.Status != games.StatusAuthoring {
			return games.ErrNotInWritingPhase
		}
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		me := p.player(sess.IsInitiator(userID))
		if me.SubmittedAt != nil {
			return games.ErrAlreadySubmitted
		}
		if err := validateAnswers(s.catalog, p.QuestionIDs, answers); err != nil {
			return err
		}
		me.Choices = answers
		me.SubmittedAt = &now

		if sess.Status == games.StatusAccepted {
			sess.Status = games.StatusAuthoring
			sess.StartedAt = &now
		}
		if p.Initiator.SubmittedAt != nil && p.Invitee.SubmittedAt != nil {
			sess.Status = games.StatusAnswering
		}
		return sess.EncodePayload(p)
	})
	if err != nil {
		return nil, err
	}
	games.RecordTransition(updated.GameType, updated.Status)
	return s.buildView(updated, userID)
}

// SubmitPredictions records the caller's guesses of the partner's answers; the second set completes the game
func (s *Service) SubmitPredictions(ctx context.Context, sessionID string, userID int64, answers map[string]string) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	completed := false
	now := s.games.Clock().Now()
	updated, err := s.games.Repository().Update(ctx, sessionID, func(sess *games.Session) error {
		completed = false
		if sess.Status != games.StatusAnswering {
			return games.ErrNotInAnswerPhase
		}
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		initiator := sess.IsInitiator(userID)
		me, partner := p.player(initiator), p.player(!initiator)
		if me.PredictedAt != nil {
			return games.ErrAlreadySubmitted
		}
		if err := validateAnswers(s.catalog, p.QuestionIDs, answers); err != nil {
			return err
		}
		hits := countHits(answers, partner.Choices)
		me.Predictions = answers
		me.PredictedAt = &now
		me.PredictionScore = &hits

		if p.Initiator.PredictedAt != nil && p.Invitee.PredictedAt != nil {
			sess.Status = games.StatusCompleted
			sess.CompletedAt = &now
			sess.Result = BuildResult(s.catalog, &p, now)
			completed = true
		}
		return sess.EncodePayload(p)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.log.Info("would you rather completed", "session_id", sessionID, "score", updated.Result.Score)
		s.games.Completed(updated)
	}
	return s.buildView(updated, userID)
}

// View returns the caller's perspective
func (s *Service) View(ctx context.Context, sessionID string, userID int64) (*View, error) {
	sess, err := s.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.GameType != games.WouldYouRather {
		return nil, games.ErrUnknownGameType
	}
	return s.buildView(sess, userID)
}

// buildView keeps the partner's choices hidden until the game completes
func (s *Service) buildView(sess *games.Session, userID int64) (*View, error) {
	var p Payload
	if err := sess.DecodePayload(&p); err != nil {
		return nil, err
	}
	initiator := sess.IsInitiator(userID)
	me, partner := p.player(initiator), p.player(!initiator)
	finished := sess.Status.IsFinished()

	v := &View{
		SessionID:          sess.ID,
		Status:             string(sess.Status),
		Questions:          make([]QuestionView, 0, len(p.QuestionIDs)),
		YouSubmitted:       me.SubmittedAt != nil,
		PartnerSubmitted:   partner.SubmittedAt != nil,
		YouPredicted:       me.PredictedAt != nil,
		PartnerPredicted:   partner.PredictedAt != nil,
		RestartRequestedBy: sess.RestartRequestedBy,
	}
	for _, id := range p.QuestionIDs {
		q, ok := s.catalog.Question(id)
		if !ok {
			continue
		}
		qv := QuestionView{Question: q, YourChoice: me.Choices[id], YourPrediction: me.Predictions[id]}
		if finished {
			qv.PartnerChoice = partner.Choices[id]
			qv.PartnerPrediction = partner.Predictions[id]
			match := qv.YourChoice == qv.PartnerChoice
			qv.Match = &match
		}
		v.Questions = append(v.Questions, qv)
	}
	if finished {
		v.YourPredictionHits = me.PredictionScore
		if sess.Result != nil {
			score := sess.Result.Score
			v.MatchPercentage = &score
		}
	}
	return v, nil
}
