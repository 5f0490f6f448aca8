// internal/games/spectrum/coordinator.go
// Authoritative per-session game loop for the Intimacy Spectrum

package spectrum

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

// Config holds the game timings
type Config struct {
	RoundDuration  time.Duration
	RevealDuration time.Duration
	Countdown      time.Duration
	InviteTTL      time.Duration
	ReconnectGrace time.Duration
}

func DefaultConfig() Config {
	return Config{
		RoundDuration:  20 * time.Second,
		RevealDuration: 5 * time.Second,
		Countdown:      3 * time.Second,
		InviteTTL:      5 * time.Minute,
		ReconnectGrace: 60 * time.Second,
	}
}

// InsightGenerator produces the optional post-game narrative
type InsightGenerator interface {
	Generate(ctx context.Context, questions []Question, results *Results, rounds []Round) (*Insights, error)
}

var errStale = errors.New("session changed outside the coordinator")

// Coordinator owns every live session's state, timers and ordering
type Coordinator struct {
	games     *games.Service
	questions []Question
	emitter   Emitter
	insights  InsightGenerator
	clock     clock.Clock
	cfg       Config
	log       *logger.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

// NewCoordinator wires the coordinator. insights may be nil.
func NewCoordinator(lifecycle *games.Service, emitter Emitter, insights InsightGenerator, cfg Config, log *logger.Logger) (*Coordinator, error) {
	questions, err := LoadQuestions()
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		games:     lifecycle,
		questions: questions,
		emitter:   emitter,
		insights:  insights,
		clock:     lifecycle.Clock(),
		cfg:       cfg,
		log:       log.With("component", "spectrum"),
		rooms:     make(map[string]*room),
	}, nil
}

// Engine registers the game with the lifecycle service
func (c *Coordinator) Engine() games.Engine {
	return games.Engine{
		GameType:       games.IntimacySpectrum,
		InviteTTL:      c.cfg.InviteTTL,
		AcceptedStatus: games.StatusStarting,
		NewPayload: func() (json.RawMessage, error) {
			return json.Marshal(newPayload(c.questions))
		},
		OnAccepted:  func(_ context.Context, s *games.Session) { c.start(s) },
		OnCancelled: func(_ context.Context, s *games.Session) { c.cancelled(s) },
	}
}

func newPayload(questions []Question) Payload {
	p := Payload{Rounds: make([]Round, len(questions))}
	for i, q := range questions {
		p.Rounds[i] = Round{Index: i, Category: q.Category}
	}
	return p
}

// Questions returns the play order
func (c *Coordinator) Questions() []Question {
	return c.questions
}

// ActiveRooms is the number of sessions with live state
func (c *Coordinator) ActiveRooms() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

func (c *Coordinator) room(sessionID string) *room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rooms[sessionID]
}

func (c *Coordinator) addRoom(s *games.Session) (*room, error) {
	var p Payload
	if err := s.DecodePayload(&p); err != nil {
		return nil, err
	}
	if len(p.Rounds) == 0 {
		p = newPayload(c.questions)
	}
	p.Initiator.UserID = s.InitiatorID
	p.Invitee.UserID = s.InviteeID
	p.Initiator.Connected = c.emitter.Connected(s.ID, s.InitiatorID)
	p.Invitee.Connected = c.emitter.Connected(s.ID, s.InviteeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.rooms[s.ID]; ok {
		return existing, nil
	}
	r := &room{c: c, id: s.ID, session: s, payload: p}
	c.rooms[s.ID] = r
	activeRooms.Set(float64(len(c.rooms)))
	return r, nil
}

func (c *Coordinator) removeRoom(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, id)
	activeRooms.Set(float64(len(c.rooms)))
}

func (c *Coordinator) start(s *games.Session) {
	r, err := c.addRoom(s)
	if err != nil {
		c.log.Error("failed to open spectrum room", "session_id", s.ID, "error", err.Error())
		return
	}
	r.post(r.onStart)
}

func (c *Coordinator) cancelled(s *games.Session) {
	if r := c.room(s.ID); r != nil {
		r.post(func() { r.onCancelled(s) })
	}
}

// Accept accepts an invitation; the room starts counting down.
func (c *Coordinator) Accept(ctx context.Context, sessionID string, userID int64) (*games.Session, error) {
	return c.games.Accept(ctx, sessionID, userID)
}

// Decline declines an invitation
func (c *Coordinator) Decline(ctx context.Context, sessionID string, userID int64) (*games.Session, error) {
	return c.games.Decline(ctx, sessionID, userID)
}

// ResolveSession finds the session a join refers to. An empty id picks the user's live game.
func (c *Coordinator) ResolveSession(ctx context.Context, sessionID string, userID int64) (*games.Session, error) {
	if sessionID != "" {
		s, err := c.games.Get(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
		if s.GameType != games.IntimacySpectrum {
			return nil, games.ErrUnknownGameType
		}
		return s, nil
	}
	sessions, err := c.games.Repository().ListForUser(ctx, userID, games.IntimacySpectrum, 20)
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Status.IsActive() {
			return s, nil
		}
	}
	return nil, ErrNoActiveSession
}

// Connect marks the user present and sends them a snapshot
func (c *Coordinator) Connect(ctx context.Context, sessionID string, userID int64) error {
	s, err := c.ResolveSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	r := c.room(s.ID)
	if r == nil && isLive(s.Status) {
		if r, err = c.addRoom(s); err != nil {
			return err
		}
	}
	if r == nil {
		view, err := c.snapshotFromSession(s, userID)
		if err != nil {
			return err
		}
		c.emitter.SendTo(s.ID, userID, NewEnvelope(EventState, view))
		return nil
	}
	return r.call(func() error { return r.onConnect(userID) })
}

// Disconnect marks the user absent; a grace timer pauses the game if they do not return
func (c *Coordinator) Disconnect(sessionID string, userID int64) {
	if r := c.room(sessionID); r != nil {
		r.post(func() { r.onDisconnect(userID) })
	}
}

// Answer records a slider position for the current round
func (c *Coordinator) Answer(ctx context.Context, sessionID string, userID int64, questionIndex *int, position int) error {
	if !ValidPosition(position) {
		return ErrInvalidPosition
	}
	s, err := c.games.Get(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	r := c.room(s.ID)
	if r == nil {
		return ErrNotPlaying
	}
	return r.call(func() error { return r.onAnswer(userID, questionIndex, position) })
}

// Quit abandons a live game
func (c *Coordinator) Quit(ctx context.Context, sessionID string, userID int64) error {
	s, err := c.games.Get(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	r := c.room(s.ID)
	if r == nil {
		return ErrNotPlaying
	}
	return r.call(func() error { return r.onQuit(userID) })
}

// State returns the viewer-specific snapshot
func (c *Coordinator) State(ctx context.Context, sessionID string, userID int64) (*StateView, error) {
	s, err := c.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.GameType != games.IntimacySpectrum {
		return nil, games.ErrUnknownGameType
	}
	if r := c.room(s.ID); r != nil {
		var view *StateView
		err := r.call(func() error {
			view = r.snapshot(userID)
			return nil
		})
		return view, err
	}
	return c.snapshotFromSession(s, userID)
}

func (c *Coordinator) snapshotFromSession(s *games.Session, userID int64) (*StateView, error) {
	var p Payload
	if err := s.DecodePayload(&p); err != nil {
		return nil, err
	}
	r := &room{c: c, id: s.ID, session: s, payload: p}
	return r.snapshot(userID), nil
}

// Recover rebuilds rooms for sessions that were live when the process stopped.
// Recovered games are paused until both players rejoin.
func (c *Coordinator) Recover(ctx context.Context) (int, error) {
	sessions, err := c.games.Repository().ListByStatuses(ctx, games.IntimacySpectrum,
		[]games.Status{games.StatusStarting, games.StatusPlaying, games.StatusPaused})
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		r, err := c.addRoom(s)
		if err != nil {
			c.log.Warn("skipping unrecoverable session", "session_id", s.ID, "error", err.Error())
			continue
		}
		r.post(r.onRecover)
	}
	if len(sessions) > 0 {
		c.log.Info("spectrum sessions recovered", "count", len(sessions))
	}
	return len(sessions), nil
}

// Shutdown stops every timer. Persisted state is resumed by Recover on the next start.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	rooms := make([]*room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.Unlock()
	for _, r := range rooms {
		r.post(r.stopTimers)
	}
}

func isLive(s games.Status) bool {
	return s == games.StatusStarting || s == games.StatusPlaying || s == games.StatusPaused
}

// ResultsView is the full post-game breakdown
type ResultsView struct {
	SessionID  string            `json:"session_id"`
	Status     games.Status      `json:"status"`
	Results    *Results          `json:"results"`
	AIInsights *Insights         `json:"ai_insights,omitempty"`
	Rounds     []Round           `json:"rounds"`
	Summary    *games.ResultView `json:"summary"`
}

// Results returns the breakdown of a finished session
func (c *Coordinator) Results(ctx context.Context, sessionID string, userID int64) (*ResultsView, error) {
	s, err := c.games.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if s.GameType != games.IntimacySpectrum {
		return nil, games.ErrUnknownGameType
	}
	if !s.Status.IsFinished() {
		return nil, games.ErrNotCompleted
	}
	var p Payload
	if err := s.DecodePayload(&p); err != nil {
		return nil, err
	}
	return &ResultsView{
		SessionID:  s.ID,
		Status:     s.Status,
		Results:    p.Results,
		AIInsights: p.AIInsights,
		Rounds:     p.Rounds,
		Summary:    s.Result,
	}, nil
}
