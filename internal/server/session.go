package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/matzehuels/wordpath/pkg/diagram"
	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/interact"
	"github.com/matzehuels/wordpath/pkg/observability"
	"github.com/matzehuels/wordpath/pkg/pipeline"
	"github.com/matzehuels/wordpath/pkg/render"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Message types exchanged over a session socket.
const (
	MsgPath    = "path"
	MsgRoute   = "route"
	MsgPointer = "pointer"
	MsgReset   = "reset"
	MsgFit     = "fit"

	MsgSession = "session"
	MsgFrame   = "frame"
	MsgError   = "error"
)

// ClientMessage is sent by the browser.
type ClientMessage struct {
	Type    string          `json:"type"`
	Path    []string        `json:"path,omitempty"`
	Route   *graph.Route    `json:"route,omitempty"`
	Event   *interact.Event `json:"event,omitempty"`
	Padding float64         `json:"padding,omitempty"`
}

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Frame json.RawMessage `json:"frame,omitempty"`
	Error *errorDetail    `json:"error,omitempty"`
}

type session struct {
	id      string
	conn    *websocket.Conn
	loop    *diagram.Loop
	limiter *rate.Limiter
	logger  *log.Logger

	// readLimit caps one client message; larger ones close the socket
	// with 1009 (message too big).
	readLimit int64

	frames  chan render.Frame
	control chan ServerMessage
	closing <-chan struct{}
	sent    int
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if !s.acquireSession() {
		s.writeError(w, r, errors.New(errors.ErrCodeUnavailable, "server shutting down"))
		return
	}
	defer s.sessions.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	cfg := s.Config()
	opts := pipeline.FromConfig(cfg)
	id := uuid.NewString()
	logger := s.logger.With("session", id)

	d, err := diagram.New(
		diagram.WithID(id),
		diagram.WithConfig(cfg.Force),
		diagram.WithEdgePolicy(opts.Policy()),
		diagram.WithLogger(logger),
	)
	if err != nil {
		_ = conn.WriteJSON(ServerMessage{Type: MsgError, Error: ptr(newErrorBody(err).Error)})
		_ = conn.Close()
		return
	}

	sess := &session{
		id:        id,
		conn:      conn,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Server.PointerRate), cfg.Server.PointerBurst),
		logger:    logger,
		readLimit: cfg.Server.MaxBodyBytes,
		frames:    make(chan render.Frame, 1),
		control:   make(chan ServerMessage, 8),
		closing:   s.closing,
	}
	sess.loop = diagram.NewLoop(d, cfg.Server.FrameInterval, sess.offer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	observability.Session().OnSessionOpen(ctx, id)
	logger.Info("session opened", "remote", r.RemoteAddr)

	sess.control <- ServerMessage{Type: MsgSession, ID: id}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		sess.writeLoop(cancel)
	}()

	sess.loop.Start(ctx)
	sess.readLoop(ctx)

	sess.loop.Stop()
	cancel()
	<-writerDone
	_ = conn.Close()

	observability.Session().OnSessionClose(ctx, id, sess.sent, time.Since(start))
	logger.Info("session closed", "frames", sess.sent, "duration", time.Since(start).Round(time.Millisecond))
}

// offer hands a frame to the writer. Only the newest frame is kept, so a
// slow client skips frames instead of stalling the simulation.
func (sess *session) offer(f render.Frame) {
	select {
	case sess.frames <- f:
		return
	default:
	}
	select {
	case <-sess.frames:
	default:
	}
	select {
	case sess.frames <- f:
	default:
	}
}

func (sess *session) writeLoop(cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// Any write failure ends the session; the read loop notices when the
	// connection is closed below.
	defer func() {
		cancel()
		_ = sess.conn.Close()
	}()

	for {
		select {
		case msg := <-sess.control:
			if err := sess.write(msg); err != nil {
				return
			}
		case f := <-sess.frames:
			data, err := sink.RenderFrameJSON(f)
			if err != nil {
				sess.logger.Error("encode frame", "err", err)
				continue
			}
			if err := sess.write(ServerMessage{Type: MsgFrame, Frame: data}); err != nil {
				return
			}
			sess.sent++
		case <-ticker.C:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sess.loop.Done():
			sess.drainControl()
			return
		case <-sess.closing:
			_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = sess.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
	}
}

func (sess *session) drainControl() {
	for {
		select {
		case msg := <-sess.control:
			if sess.write(msg) != nil {
				return
			}
		default:
			return
		}
	}
}

func (sess *session) write(msg ServerMessage) error {
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sess.conn.WriteJSON(msg)
}

func (sess *session) readLoop(ctx context.Context) {
	sess.conn.SetReadLimit(sess.readLimit)
	_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		return sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				sess.logger.Debug("session read ended", "err", err)
			}
			return
		}
		_ = sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := sess.handle(ctx, msg); err != nil {
			sess.reportError(err)
		}
	}
}

func (sess *session) handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Type {
	case MsgPath, MsgRoute:
		route := graph.Route{Path: msg.Path}
		if msg.Route != nil {
			route = *msg.Route
		}
		if err := errors.ValidatePathEntries(route.Path); err != nil {
			return err
		}
		sess.loop.Post(func(d *diagram.Diagram) { d.SetRoute(route) })
	case MsgPointer:
		if msg.Event == nil {
			return errors.New(errors.ErrCodeInvalidInput, "pointer message without event")
		}
		ev := *msg.Event
		dropped := droppable(ev.Type) && !sess.limiter.Allow()
		observability.Session().OnPointerEvent(ctx, string(ev.Type), dropped)
		if dropped {
			return nil
		}
		sess.loop.Post(func(d *diagram.Diagram) { d.Pointer(ev) })
	case MsgReset:
		sess.loop.Post(func(d *diagram.Diagram) { d.ResetView() })
	case MsgFit:
		padding := msg.Padding
		if padding <= 0 {
			padding = 2 * render.NodeRadius
		}
		sess.loop.Post(func(d *diagram.Diagram) { d.FitView(padding) })
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", msg.Type)
	}
	return nil
}

func (sess *session) reportError(err error) {
	detail := newErrorBody(err).Error
	select {
	case sess.control <- ServerMessage{Type: MsgError, Error: &detail}:
	default:
		sess.logger.Warn("dropped error message", "err", err)
	}
}

// droppable reports whether the rate limiter may discard an event. Presses
// and releases always pass so drags start and end.
func droppable(t interact.EventType) bool {
	switch t {
	case interact.PointerMove, interact.Wheel, interact.Pinch:
		return true
	}
	return false
}

func ptr[T any](v T) *T { return &v }
