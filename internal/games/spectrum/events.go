// internal/games/spectrum/events.go

package spectrum

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
)

// Wire event names
const (
	// client -> server
	EventJoin    = "is:join"
	EventAccept  = "is:accept"
	EventDecline = "is:decline"
	EventAnswer  = "is:answer"
	EventQuit    = "is:quit"

	// server -> client
	EventState               = "is:state"
	EventReveal              = "is:reveal"
	EventWaiting             = "is:waiting"
	EventAnswerRecorded      = "is:answer_recorded"
	EventPartnerConnected    = "is:partner_connected"
	EventPartnerDisconnected = "is:partner_disconnected"
	EventCompleted           = "is:completed"
	EventError               = "is:error"
)

// Envelope is one websocket frame in either direction
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope marshals data into a frame
func NewEnvelope(eventType string, data interface{}) Envelope {
	env := Envelope{Type: eventType, Timestamp: time.Now().UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err == nil {
			env.Data = raw
		}
	}
	return env
}

// ErrorEnvelope converts err into an is:error frame
func ErrorEnvelope(err error) Envelope {
	msg := "Something went wrong"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return NewEnvelope(EventError, map[string]string{"code": apperr.CodeOf(err), "message": msg})
}

// Emitter delivers frames to the clients joined to a session room
type Emitter interface {
	// Broadcast sends to every client in the room
	Broadcast(sessionID string, env Envelope)
	// SendTo sends to one participant's clients in the room
	SendTo(sessionID string, userID int64, env Envelope)
	// Connected reports whether the user has a socket joined to the room
	Connected(sessionID string, userID int64) bool
}

// client -> server payloads

type JoinMessage struct {
	SessionID string `json:"session_id"`
}

type SessionMessage struct {
	SessionID string `json:"session_id"`
}

type AnswerMessage struct {
	SessionID     string `json:"session_id"`
	QuestionIndex *int   `json:"question_index,omitempty"`
	Position      int    `json:"position"`
}
