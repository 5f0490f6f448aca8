// internal/games/spectrum/room.go

package spectrum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
)

const (
	persistTimeout  = 5 * time.Second
	insightsTimeout = 90 * time.Second
)

var errHandlerPanic = apperr.New(apperr.KindInternal, "internal_error", "Something went wrong")

// room is the live state of one session. Every field is only touched from inside the mailbox.
type room struct {
	c       *Coordinator
	id      string
	box     mailbox
	session *games.Session
	payload Payload

	timer clock.Timer
	seq   int

	// index 0 is the initiator, 1 the invitee
	grace    [2]clock.Timer
	graceSeq [2]int

	closed bool
}

func (r *room) post(fn func()) {
	r.box.post(func() {
		defer r.recoverPanic()
		fn()
	})
}

func (r *room) call(fn func() error) error {
	return r.box.call(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				r.c.log.Error("spectrum handler panicked", "session_id", r.id, "panic", fmt.Sprint(p))
				err = errHandlerPanic
			}
		}()
		return fn()
	})
}

func (r *room) recoverPanic() {
	if p := recover(); p != nil {
		r.c.log.Error("spectrum handler panicked", "session_id", r.id, "panic", fmt.Sprint(p))
	}
}

func slot(initiator bool) int {
	if initiator {
		return 0
	}
	return 1
}

// arm replaces the phase timer. A callback from a replaced timer is ignored.
func (r *room) arm(d time.Duration, fn func()) {
	r.stopPhaseTimer()
	r.seq++
	seq := r.seq
	r.timer = r.c.clock.AfterFunc(d, func() {
		r.post(func() {
			if r.closed || r.seq != seq {
				return
			}
			r.timer = nil
			fn()
		})
	})
}

func (r *room) stopPhaseTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.seq++
}

func (r *room) armGrace(initiator bool) {
	i := slot(initiator)
	r.stopGrace(initiator)
	r.graceSeq[i]++
	seq := r.graceSeq[i]
	r.grace[i] = r.c.clock.AfterFunc(r.c.cfg.ReconnectGrace, func() {
		r.post(func() {
			if r.closed || r.graceSeq[i] != seq {
				return
			}
			r.grace[i] = nil
			if !r.payload.presence(initiator).Connected {
				r.pause()
			}
		})
	})
}

func (r *room) stopGrace(initiator bool) {
	i := slot(initiator)
	if r.grace[i] != nil {
		r.grace[i].Stop()
		r.grace[i] = nil
	}
	r.graceSeq[i]++
}

func (r *room) stopTimers() {
	r.stopPhaseTimer()
	r.stopGrace(true)
	r.stopGrace(false)
}

func (r *room) close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stopTimers()
	r.c.removeRoom(r.id)
}

func (r *room) now() time.Time {
	return r.c.clock.Now()
}

func (r *room) setStatus(s games.Status) {
	r.session.Status = s
	games.RecordTransition(games.IntimacySpectrum, s)
}

// persist writes the in-memory session back. If the stored session moved somewhere the
// coordinator cannot follow, such as a cancel through REST, the room is closed.
func (r *room) persist() error {
	if err := r.session.EncodePayload(r.payload); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	mine := r.session
	updated, err := r.c.games.Repository().Update(ctx, r.id, func(s *games.Session) error {
		if s.Status != mine.Status && !games.CanTransition(s.Status, mine.Status) {
			return errStale
		}
		s.Status = mine.Status
		s.StartedAt = mine.StartedAt
		s.CompletedAt = mine.CompletedAt
		s.Payload = mine.Payload
		s.Result = mine.Result
		return nil
	})
	if errors.Is(err, errStale) {
		r.c.log.Info("spectrum session ended elsewhere", "session_id", r.id)
		r.close()
		return ErrSessionClosed
	}
	if err != nil {
		r.c.log.Warn("failed to persist spectrum session", "session_id", r.id, "error", err.Error())
		return err
	}
	r.session.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *room) broadcastState() {
	for _, uid := range []int64{r.session.InitiatorID, r.session.InviteeID} {
		r.c.emitter.SendTo(r.id, uid, NewEnvelope(EventState, r.snapshot(uid)))
	}
}

func (r *room) onStart() {
	if r.closed || r.session.Status != games.StatusStarting {
		return
	}
	now := r.now()
	r.payload.Phase = PhaseCountdown
	r.payload.PhaseStartedAt = &now
	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return
	}
	r.broadcastState()
	for _, initiator := range []bool{true, false} {
		if !r.payload.presence(initiator).Connected {
			r.armGrace(initiator)
		}
	}
	r.arm(r.c.cfg.Countdown, r.beginPlaying)
	r.c.log.Info("spectrum game starting", "session_id", r.id)
}

func (r *room) beginPlaying() {
	now := r.now()
	r.setStatus(games.StatusPlaying)
	r.session.StartedAt = &now
	r.beginRound(0)
}

func (r *room) beginRound(idx int) {
	now := r.now()
	expires := now.Add(r.c.cfg.RoundDuration)
	r.payload.CurrentIndex = idx
	r.payload.Phase = PhaseQuestion
	r.payload.PhaseStartedAt = &now
	r.payload.QuestionStartedAt = &now
	r.payload.QuestionExpiresAt = &expires
	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return
	}
	r.broadcastState()
	r.arm(r.c.cfg.RoundDuration, func() { r.revealCurrent(TriggerTimer) })
}

func (r *room) onAnswer(userID int64, questionIndex *int, position int) error {
	if r.closed {
		return ErrSessionClosed
	}
	if r.session.Status != games.StatusPlaying {
		return ErrNotPlaying
	}
	if r.payload.Phase != PhaseQuestion {
		return ErrRoundClosed
	}
	if questionIndex != nil && *questionIndex != r.payload.CurrentIndex {
		return ErrWrongQuestion
	}
	now := r.now()
	if r.payload.QuestionExpiresAt != nil && now.After(*r.payload.QuestionExpiresAt) {
		// the round timer is late; close the round the same way it would
		r.revealCurrent(TriggerTimer)
		return ErrRoundExpired
	}

	initiator := r.session.IsInitiator(userID)
	round := r.payload.current()
	if round.position(initiator) != nil {
		return ErrAlreadyAnswered
	}
	round.record(initiator, position, now)
	answersTotal.Inc()

	if round.bothAnswered() {
		r.revealCurrent(TriggerBothAnswered)
		return nil
	}
	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return err
	}
	idx := r.payload.CurrentIndex
	r.c.emitter.SendTo(r.id, userID, NewEnvelope(EventAnswerRecorded, map[string]interface{}{
		"question_index": idx,
		"position":       position,
	}))
	r.c.emitter.SendTo(r.id, r.session.Partner(userID), NewEnvelope(EventWaiting, map[string]interface{}{
		"question_index":   idx,
		"partner_answered": true,
	}))
	return nil
}

// revealCurrent closes the current round. It runs at most once per round.
func (r *room) revealCurrent(trigger string) {
	if r.payload.Phase != PhaseQuestion {
		return
	}
	r.stopPhaseTimer()
	now := r.now()
	round := r.payload.current()
	reveal(round, now, trigger)
	r.payload.Phase = PhaseReveal
	r.payload.PhaseStartedAt = &now

	revealsTotal.WithLabelValues(trigger).Inc()
	if round.InitiatorPosition == nil {
		timeoutsTotal.Inc()
	}
	if round.InviteePosition == nil {
		timeoutsTotal.Inc()
	}

	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return
	}
	r.c.emitter.Broadcast(r.id, NewEnvelope(EventReveal, RevealEvent{
		SessionID:     r.id,
		QuestionIndex: round.Index,
		P1Position:    round.InitiatorPosition,
		P2Position:    round.InviteePosition,
		Gap:           round.Gap,
		Alignment:     round.Alignment,
	}))
	r.arm(r.c.cfg.RevealDuration, r.advance)
}

func (r *room) advance() {
	next := r.payload.CurrentIndex + 1
	if next >= len(r.payload.Rounds) {
		r.complete()
		return
	}
	r.beginRound(next)
}

func (r *room) complete() {
	now := r.now()
	results := ComputeResults(r.payload.Rounds)
	r.payload.Results = results
	r.payload.Phase = ""
	r.payload.QuestionExpiresAt = nil
	r.setStatus(games.StatusCompleted)
	r.session.CompletedAt = &now
	r.session.Result = BuildResultView(r.c.questions, r.payload.Rounds, results, now)

	if err := r.persist(); err != nil {
		r.close()
		return
	}
	finishedTotal.WithLabelValues(string(games.StatusCompleted)).Inc()
	r.c.log.Info("spectrum game completed", "session_id", r.id, "both_answered", results.BothAnswered)

	r.c.emitter.Broadcast(r.id, NewEnvelope(EventCompleted, CompletedEvent{SessionID: r.id, Results: results}))
	r.c.games.Completed(r.session.Clone())
	r.close()

	if r.c.insights != nil {
		go r.c.generateInsights(r.session.Clone(), r.payload.Rounds, results)
	}
}

func (r *room) onConnect(userID int64) error {
	if r.closed {
		return ErrSessionClosed
	}
	initiator := r.session.IsInitiator(userID)
	pres := r.payload.presence(initiator)
	wasConnected := pres.Connected
	pres.Connected = true
	pres.DisconnectedAt = nil
	r.stopGrace(initiator)

	if !wasConnected {
		r.c.emitter.SendTo(r.id, r.session.Partner(userID), NewEnvelope(EventPartnerConnected, map[string]int64{"user_id": userID}))
	}
	if r.session.Status == games.StatusPaused && r.payload.Initiator.Connected && r.payload.Invitee.Connected {
		r.resume()
		return nil
	}
	r.c.emitter.SendTo(r.id, userID, NewEnvelope(EventState, r.snapshot(userID)))
	return nil
}

func (r *room) onDisconnect(userID int64) {
	if r.closed {
		return
	}
	initiator := r.session.IsInitiator(userID)
	pres := r.payload.presence(initiator)
	if !pres.Connected {
		return
	}
	now := r.now()
	pres.Connected = false
	pres.DisconnectedAt = &now
	r.c.emitter.SendTo(r.id, r.session.Partner(userID), NewEnvelope(EventPartnerDisconnected, map[string]int64{"user_id": userID}))

	switch r.session.Status {
	case games.StatusStarting, games.StatusPlaying:
		r.armGrace(initiator)
	}
}

func (r *room) pause() {
	switch r.session.Status {
	case games.StatusStarting, games.StatusPlaying:
	default:
		return
	}
	now := r.now()
	r.stopPhaseTimer()
	r.setStatus(games.StatusPaused)
	r.payload.PausedAt = &now
	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return
	}
	r.c.log.Info("spectrum game paused", "session_id", r.id, "question_index", r.payload.CurrentIndex)
	r.broadcastState()
}

// resume restarts the pending phase with the time it had left. The round clock keeps
// running while paused, so a long pause ends the current round as a timeout.
func (r *room) resume() {
	now := r.now()
	r.setStatus(games.StatusPlaying)
	r.payload.PausedAt = nil
	if r.session.StartedAt == nil {
		r.session.StartedAt = &now
	}
	r.c.log.Info("spectrum game resumed", "session_id", r.id, "question_index", r.payload.CurrentIndex)

	switch r.payload.Phase {
	case PhaseQuestion:
		remaining := time.Duration(0)
		if r.payload.QuestionExpiresAt != nil {
			remaining = r.payload.QuestionExpiresAt.Sub(now)
		}
		if remaining <= 0 {
			r.revealCurrent(TriggerTimer)
			r.broadcastState()
			return
		}
		if err := r.persist(); errors.Is(err, ErrSessionClosed) {
			return
		}
		r.broadcastState()
		r.arm(remaining, func() { r.revealCurrent(TriggerTimer) })
	case PhaseReveal:
		remaining := time.Duration(0)
		if r.payload.PhaseStartedAt != nil {
			remaining = r.payload.PhaseStartedAt.Add(r.c.cfg.RevealDuration).Sub(now)
		}
		if err := r.persist(); errors.Is(err, ErrSessionClosed) {
			return
		}
		r.broadcastState()
		if remaining <= 0 {
			r.advance()
			return
		}
		r.arm(remaining, r.advance)
	default:
		// paused before the first round
		r.beginRound(r.payload.CurrentIndex)
	}
}

func (r *room) onQuit(userID int64) error {
	if r.closed {
		return ErrSessionClosed
	}
	switch r.session.Status {
	case games.StatusStarting, games.StatusPlaying, games.StatusPaused:
	default:
		return ErrNotPlaying
	}
	r.stopTimers()
	r.setStatus(games.StatusAbandoned)
	r.payload.AbandonedBy = &userID
	r.payload.QuestionExpiresAt = nil
	if err := r.persist(); errors.Is(err, ErrSessionClosed) {
		return err
	}
	finishedTotal.WithLabelValues(string(games.StatusAbandoned)).Inc()
	r.c.log.Info("spectrum game abandoned", "session_id", r.id, "by", userID)
	r.broadcastState()
	r.close()
	return nil
}

func (r *room) onCancelled(s *games.Session) {
	if r.closed {
		return
	}
	r.session = s.Clone()
	finishedTotal.WithLabelValues(string(games.StatusCancelled)).Inc()
	r.broadcastState()
	r.close()
}

// onRecover pauses a game found live at startup until both players are back.
func (r *room) onRecover() {
	if r.closed {
		return
	}
	both := r.payload.Initiator.Connected && r.payload.Invitee.Connected
	switch {
	case r.session.Status == games.StatusPaused && both:
		r.resume()
	case r.session.Status != games.StatusPaused:
		r.pause()
	}
}

func (r *room) snapshot(userID int64) *StateView {
	p := &r.payload
	initiator := r.session.IsInitiator(userID)
	view := &StateView{
		SessionID:        r.id,
		Status:           string(r.session.Status),
		Phase:            p.Phase,
		QuestionIndex:    p.CurrentIndex,
		TotalQuestions:   len(r.c.questions),
		PartnerID:        r.session.Partner(userID),
		PartnerConnected: p.presence(!initiator).Connected,
		Results:          p.Results,
		AIInsights:       p.AIInsights,
	}
	if r.session.Status == games.StatusPendingAcceptance {
		expires := r.session.InvitationExpiresAt
		view.InvitationExpires = &expires
	}
	if p.Phase == PhaseQuestion || p.Phase == PhaseReveal {
		if p.CurrentIndex < len(r.c.questions) {
			q := r.c.questions[p.CurrentIndex]
			view.Question = &q
		}
		if round := p.current(); round != nil {
			mine := round.position(initiator)
			view.YouAnswered = mine != nil
			view.YourPosition = mine
			view.PartnerAnswered = round.position(!initiator) != nil
		}
	}
	if p.Phase == PhaseQuestion && p.QuestionExpiresAt != nil {
		view.QuestionExpiresAt = p.QuestionExpiresAt
		if remaining := p.QuestionExpiresAt.Sub(r.now()); remaining > 0 {
			view.RemainingMs = remaining.Milliseconds()
		}
	}
	for _, round := range p.Rounds {
		if round.RevealedAt != nil {
			view.Revealed = append(view.Revealed, round)
		}
	}
	return view
}

// generateInsights runs after completion, outside the room. Failure leaves the results as they are.
func (c *Coordinator) generateInsights(s *games.Session, rounds []Round, results *Results) {
	ctx, cancel := context.WithTimeout(context.Background(), insightsTimeout)
	defer cancel()

	insights, err := c.insights.Generate(ctx, c.questions, results, rounds)
	if err != nil {
		insightsTotal.WithLabelValues("failed").Inc()
		c.log.Warn("spectrum insights unavailable", "session_id", s.ID, "error", err.Error())
		return
	}
	_, err = c.games.Repository().Update(ctx, s.ID, func(sess *games.Session) error {
		var p Payload
		if err := sess.DecodePayload(&p); err != nil {
			return err
		}
		p.AIInsights = insights
		return sess.EncodePayload(p)
	})
	if err != nil {
		insightsTotal.WithLabelValues("failed").Inc()
		c.log.Warn("failed to store spectrum insights", "session_id", s.ID, "error", err.Error())
		return
	}
	insightsTotal.WithLabelValues("ok").Inc()
	c.emitter.Broadcast(s.ID, NewEnvelope(EventCompleted, CompletedEvent{SessionID: s.ID, Results: results, AIInsights: insights}))
}
