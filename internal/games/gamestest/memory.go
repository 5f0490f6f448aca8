// Package gamestest provides an in-memory session repository for tests
package gamestest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
)

// Repository keeps sessions in a map. Update holds one lock for the whole call,
// which serializes mutations the way the row lock does in Postgres.
type Repository struct {
	mu       sync.Mutex
	sessions map[string]*games.Session
	updates  int
}

func NewRepository() *Repository {
	return &Repository{sessions: make(map[string]*games.Session)}
}

func (r *Repository) Create(_ context.Context, s *games.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Status.IsActive() {
		for _, other := range r.sessions {
			if other.Pair == s.Pair && other.GameType == s.GameType && other.Status.IsActive() {
				return games.ErrActiveGameExists
			}
		}
	}
	r.sessions[s.ID] = s.Clone()
	return nil
}

func (r *Repository) Get(_ context.Context, id string) (*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (r *Repository) Update(_ context.Context, id string, fn func(s *games.Session) error) (*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[id]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now().UTC()
	r.sessions[id] = working.Clone()
	r.updates++
	return working, nil
}

func (r *Repository) LatestCompleted(_ context.Context, pair matches.Pair) (map[games.GameType]*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[games.GameType]*games.Session)
	for _, s := range r.sessions {
		if s.Pair != pair || !s.Status.IsFinished() || s.Result == nil || s.CompletedAt == nil {
			continue
		}
		if prev, ok := out[s.GameType]; !ok || s.CompletedAt.After(*prev.CompletedAt) {
			out[s.GameType] = s.Clone()
		}
	}
	return out, nil
}

func (r *Repository) CountForPair(_ context.Context, pair matches.Pair) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.Pair == pair {
			n++
		}
	}
	return n, nil
}

func (r *Repository) ExpirePending(_ context.Context, now time.Time) ([]*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*games.Session
	for _, s := range r.sessions {
		if s.Status == games.StatusPendingAcceptance && s.InvitationExpiresAt.Before(now) {
			s.Status = games.StatusExpired
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *Repository) ListByStatuses(_ context.Context, gameType games.GameType, statuses []games.Status) ([]*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[games.Status]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []*games.Session
	for _, s := range r.sessions {
		if s.GameType == gameType && want[s.Status] {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.Before(out[j].InvitedAt) })
	return out, nil
}

func (r *Repository) ListForUser(_ context.Context, userID int64, gameType games.GameType, limit int) ([]*games.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*games.Session
	for _, s := range r.sessions {
		if s.GameType == gameType && s.IsParticipant(userID) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.After(out[j].InvitedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Put stores a session as-is, bypassing the active-session check
func (r *Repository) Put(s *games.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.Clone()
}

// Updates returns how many successful Update calls were made
func (r *Repository) Updates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

// Mutual is a MatchChecker that treats every pair as mutual unless listed in NotMutual
type Mutual struct {
	NotMutual map[matches.Pair]bool
}

func (m Mutual) AreMutual(_ context.Context, a, b int64) (bool, error) {
	return !m.NotMutual[matches.NewPair(a, b)], nil
}

// NoBlocks is a BlockChecker with no blocks
type NoBlocks struct{}

func (NoBlocks) IsBlockedEitherWay(context.Context, int64, int64) (bool, error) {
	return false, nil
}

// Blocks is a BlockChecker over a fixed set of blocked pairs
type Blocks map[matches.Pair]bool

func (b Blocks) IsBlockedEitherWay(_ context.Context, x, y int64) (bool, error) {
	return b[matches.NewPair(x, y)], nil
}

// CompletedSession builds a finished session carrying view as its result
func CompletedSession(id string, pair matches.Pair, view *games.ResultView) *games.Session {
	at := view.CompletedAt
	return &games.Session{
		ID:          id,
		GameType:    view.GameType,
		Pair:        pair,
		InitiatorID: pair.Low,
		InviteeID:   pair.High,
		Status:      games.StatusCompleted,
		InvitedAt:   at.Add(-time.Hour),
		StartedAt:   &at,
		CompletedAt: &at,
		Result:      view,
		UpdatedAt:   at,
	}
}
