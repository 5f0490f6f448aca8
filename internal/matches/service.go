// internal/matches/service.go

package matches

import (
	"context"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

// Service resolves matches into couples and exposes interaction signals
type Service interface {
	// ResolveCouple loads a match by id and checks that requester participates in it
	ResolveCouple(ctx context.Context, matchID, requesterID int64) (*Couple, error)
	// AreMutual reports whether two users hold mirror mutual_like records
	AreMutual(ctx context.Context, a, b int64) (bool, error)
	Signals(ctx context.Context, pair Pair) (Signals, error)
	RecordFirstMessage(ctx context.Context, matchID, senderID int64) error
	MarkStartersUsed(ctx context.Context, matchID, requesterID int64) error
}

type service struct {
	repo Repository
}

// NewService creates a new match service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ResolveCouple(ctx context.Context, matchID, requesterID int64) (*Couple, error) {
	rec, err := s.repo.GetRecord(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != requesterID && rec.OtherID != requesterID {
		return nil, apperr.ErrNotParticipant
	}

	pair := NewPair(rec.OwnerID, rec.OtherID)
	records, err := s.repo.GetPairRecords(ctx, pair)
	if err != nil {
		return nil, err
	}

	return &Couple{
		MatchID:     matchID,
		Pair:        pair,
		RequesterID: requesterID,
		PartnerID:   pair.Partner(requesterID),
		Records:     records,
	}, nil
}

func (s *service) AreMutual(ctx context.Context, a, b int64) (bool, error) {
	records, err := s.repo.GetPairRecords(ctx, NewPair(a, b))
	if err != nil {
		return false, err
	}
	return PairStatus(records) == StatusMutualLike, nil
}

func (s *service) Signals(ctx context.Context, pair Pair) (Signals, error) {
	records, err := s.repo.GetPairRecords(ctx, pair)
	if err != nil {
		return Signals{}, err
	}
	return SignalsFor(pair, records), nil
}

func (s *service) RecordFirstMessage(ctx context.Context, matchID, senderID int64) error {
	couple, err := s.ResolveCouple(ctx, matchID, senderID)
	if err != nil {
		return err
	}
	return s.repo.MarkMessageSent(ctx, senderID, couple.PartnerID)
}

func (s *service) MarkStartersUsed(ctx context.Context, matchID, requesterID int64) error {
	couple, err := s.ResolveCouple(ctx, matchID, requesterID)
	if err != nil {
		return err
	}
	return s.repo.MarkStartersUsed(ctx, couple.Pair)
}
