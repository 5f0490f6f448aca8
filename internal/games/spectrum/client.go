// internal/games/spectrum/client.go

package spectrum

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/imadgeboyega/kiekky-couples/internal/auth"
	"github.com/imadgeboyega/kiekky-couples/internal/common/apperr"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Game frames are small
	maxMessageSize = 4 * 1024

	// Upper bound for one inbound event, including persistence
	handleTimeout = 10 * time.Second
)

var ErrTooManyMessages = apperr.New(apperr.KindRateLimited, "rate_limited", "Too many messages, slow down")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Sockets authenticate with a bearer token, not cookies
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TokenVerifier resolves an access token to a user id
type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// Socket is the websocket entry point for the game
type Socket struct {
	hub    *Hub
	coord  *Coordinator
	tokens TokenVerifier
	// per-socket inbound budget
	limit rate.Limit
	burst int
	log   *logger.Logger
}

// NewSocket wires the hub to the coordinator. Call before hub.Run.
func NewSocket(hub *Hub, coord *Coordinator, tokens TokenVerifier, log *logger.Logger) *Socket {
	hub.OnLeave(coord.Disconnect)
	return &Socket{
		hub:    hub,
		coord:  coord,
		tokens: tokens,
		limit:  rate.Limit(5),
		burst:  10,
		log:    log.With("component", "spectrum_socket"),
	}
}

// WithRate overrides the per-socket inbound budget. Non-positive values keep the default.
func (s *Socket) WithRate(perSecond float64, burst int) *Socket {
	if perSecond > 0 {
		s.limit = rate.Limit(perSecond)
	}
	if burst > 0 {
		s.burst = burst
	}
	return s
}

// ServeWS upgrades GET /ws/spectrum. The token comes from the Authorization header or ?token=.
// An optional ?session_id= joins that session right away.
func (s *Socket) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization")
		return
	}
	userID, err := s.tokens.VerifyToken(token)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		socket:  s,
		conn:    conn,
		send:    make(chan []byte, 64),
		userID:  userID,
		limiter: rate.NewLimiter(s.limit, s.burst),
	}
	s.hub.register <- client
	client.Start()

	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		data, _ := json.Marshal(JoinMessage{SessionID: sessionID})
		client.handle(Envelope{Type: EventJoin, Data: data})
	}
}

// Client is one game socket
type Client struct {
	socket  *Socket
	conn    *websocket.Conn
	send    chan []byte
	userID  int64
	limiter *rate.Limiter

	// guarded by the hub
	sessionID string

	closeOnce sync.Once
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

func (c *Client) readPump() {
	defer func() {
		c.socket.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.socket.log.Debug("websocket read error", "user_id", c.userID, "error", err.Error())
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.reply(ErrorEnvelope(apperr.Invalid("invalid_message", "Message is not valid JSON")))
			continue
		}
		// in order; the coordinator serializes per session anyway
		c.handle(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply sends a frame to this socket only
func (c *Client) reply(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	defer func() {
		// send was closed by the hub
		_ = recover()
	}()
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) handle(env Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := c.dispatch(ctx, env); err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			c.socket.log.Error("game event failed", "type", env.Type, "user_id", c.userID, "error", err.Error())
		}
		c.reply(ErrorEnvelope(err))
	}
}

func (c *Client) dispatch(ctx context.Context, env Envelope) error {
	s := c.socket
	switch env.Type {
	case EventJoin:
		var msg JoinMessage
		if err := decodeData(env.Data, &msg); err != nil {
			return err
		}
		session, err := s.coord.ResolveSession(ctx, msg.SessionID, c.userID)
		if err != nil {
			return err
		}
		c.join(session.ID)
		return s.coord.Connect(ctx, session.ID, c.userID)

	case EventAccept:
		var msg SessionMessage
		if err := decodeData(env.Data, &msg); err != nil {
			return err
		}
		id := c.sessionOr(msg.SessionID)
		if _, err := s.coord.games.Get(ctx, id, c.userID); err != nil {
			return err
		}
		c.join(id)
		_, err := s.coord.Accept(ctx, id, c.userID)
		return err

	case EventDecline:
		var msg SessionMessage
		if err := decodeData(env.Data, &msg); err != nil {
			return err
		}
		id := c.sessionOr(msg.SessionID)
		session, err := s.coord.Decline(ctx, id, c.userID)
		if err != nil {
			return err
		}
		if view, err := s.coord.State(ctx, id, c.userID); err == nil {
			c.reply(NewEnvelope(EventState, view))
		}
		if view, err := s.coord.State(ctx, id, session.InitiatorID); err == nil {
			s.hub.SendTo(id, session.InitiatorID, NewEnvelope(EventState, view))
		}
		return nil

	case EventAnswer:
		if !c.limiter.Allow() {
			return ErrTooManyMessages
		}
		var msg AnswerMessage
		if err := decodeData(env.Data, &msg); err != nil {
			return err
		}
		return s.coord.Answer(ctx, c.sessionOr(msg.SessionID), c.userID, msg.QuestionIndex, msg.Position)

	case EventQuit:
		var msg SessionMessage
		if err := decodeData(env.Data, &msg); err != nil {
			return err
		}
		return s.coord.Quit(ctx, c.sessionOr(msg.SessionID), c.userID)

	default:
		return apperr.Invalid("unknown_event", "Unknown event type")
	}
}

func (c *Client) join(sessionID string) {
	left, wasLast := c.socket.hub.Join(c, sessionID)
	if wasLast {
		c.socket.coord.Disconnect(left, c.userID)
	}
}

func (c *Client) sessionOr(id string) string {
	if id != "" {
		return id
	}
	return c.socket.hub.Room(c)
}

func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Invalid("invalid_message", "Malformed event payload")
	}
	return nil
}
