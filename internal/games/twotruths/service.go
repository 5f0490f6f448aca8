// internal/games/twotruths/service.go

package twotruths

import (
	"context"
	"encoding/json"

	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

// Service plays Two Truths and a Lie on top of the shared lifecycle
type Service struct {
	games *games.Service
	log   *logger.Logger
}

func NewService(lifecycle *games.Service, log *logger.Logger) *Service {
	return &Service{games: lifecycle, log: log.With("component", "two_truths")}
}

// Engine registers the game with the lifecycle service
func (s *Service) Engine() games.Engine {
	return games.Engine{
		GameType: games.TwoTruthsLie,
		NewPayload: func() (json.RawMessage, error) {
			return json.Marshal(Payload{})
		},
	}
}

// SubmitStatements stores the caller's ten rounds. The session moves to answering once both have written.
func (s *Service) SubmitStatements(ctx context.Context, sessionID string, userID int64, rounds []Round) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	if err := ValidateRounds(rounds); err != nil {
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
		me.Rounds = rounds
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
	s.log.Info("statements submitted", "session_id", sessionID, "user_id", userID, "status", string(updated.Status))
	return buildView(updated, userID)
}

// SubmitGuesses scores the caller's guesses against the partner's rounds.
// The second set of guesses completes the game.
func (s *Service) SubmitGuesses(ctx context.Context, sessionID string, userID int64, guesses []int) (*View, error) {
	if _, err := s.games.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	if err := ValidateGuesses(guesses); err != nil {
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
		if me.GuessedAt != nil {
			return games.ErrAlreadySubmitted
		}
		score := ScoreGuesses(partner.Rounds, guesses)
		me.Guesses = guesses
		me.GuessedAt = &now
		me.Score = &score

		if p.Initiator.GuessedAt != nil && p.Invitee.GuessedAt != nil {
			p.Winner = DecideWinner(*p.Initiator.Score, *p.Invitee.Score)
			sess.Status = games.StatusCompleted
			sess.CompletedAt = &now
			sess.Result = BuildResult(&p, now)
			completed = true
		}
		return sess.EncodePayload(p)
	})
	if err != nil {
		return nil, err
	}

	if completed {
		s.log.Info("two truths completed", "session_id", sessionID, "score", updated.Result.Score)
		s.games.Completed(updated)
	}
	return buildView(updated, userID)
}

// View returns the caller's perspective of the session
func (s *Service) View(ctx context.Context, sessionID string, userID int64) (*View, error) {
	sess, err := s.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.GameType != games.TwoTruthsLie {
		return nil, games.ErrUnknownGameType
	}
	return buildView(sess, userID)
}

// buildView hides the partner's rounds until answering and their lies until completion
func buildView(sess *games.Session, userID int64) (*View, error) {
	var p Payload
	if err := sess.DecodePayload(&p); err != nil {
		return nil, err
	}
	initiator := sess.IsInitiator(userID)
	me, partner := p.player(initiator), p.player(!initiator)

	v := &View{
		SessionID:          sess.ID,
		Status:             string(sess.Status),
		YouSubmitted:       me.SubmittedAt != nil,
		PartnerSubmitted:   partner.SubmittedAt != nil,
		YouGuessed:         me.GuessedAt != nil,
		PartnerGuessed:     partner.GuessedAt != nil,
		YourRounds:         me.Rounds,
		YourScore:          me.Score,
		RestartRequestedBy: sess.RestartRequestedBy,
	}

	finished := sess.Status.IsFinished()
	if sess.Status == games.StatusAnswering || finished {
		v.PartnerRounds = make([]RoundView, len(partner.Rounds))
		for i, r := range partner.Rounds {
			rv := RoundView{Statements: make([]string, len(r.Statements))}
			for j, st := range r.Statements {
				rv.Statements[j] = st.Text
			}
			if i < len(me.Guesses) {
				g := me.Guesses[i]
				rv.YourGuess = &g
			}
			if finished {
				lie := lieIndex(r)
				rv.LieIndex = &lie
				if rv.YourGuess != nil {
					correct := *rv.YourGuess == lie
					rv.Correct = &correct
				}
			}
			v.PartnerRounds[i] = rv
		}
	}
	if finished {
		v.PartnerScore = partner.Score
		v.InitiatorScore = p.Initiator.Score
		v.InviteeScore = p.Invitee.Score
		v.Winner = p.Winner
	}
	return v, nil
}
