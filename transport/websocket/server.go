package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/events"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/transport/rest"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Snapshot - type of the first message, the session as it is when the client connects.
const Snapshot events.Type = "snapshot"

type subscriber interface {
	Subscribe(sessionID string) (<-chan events.Event, func())
}

type sessionGetter interface {
	GetSession(ctx context.Context, id string) (*entity.Session, error)
}

// Message - one frame of the event feed.
type Message struct {
	Event    events.Type      `json:"event"`
	Position *int             `json:"position,omitempty"`
	Mark     entity.Mark      `json:"mark,omitempty"`
	Result   *entity.Result   `json:"result,omitempty"`
	Session  *rest.SessionView `json:"session,omitempty"`
}

// Server - streams the events of one session per connection. The feed is read only,
// moves go through the REST api.
type Server struct {
	logger *slog.Logger

	broker   subscriber
	sessions sessionGetter
	upgrader websocket.Upgrader
	now      func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func New(logger *slog.Logger, broker subscriber, sessions sessionGetter) *Server {
	return &Server{
		logger:   logger.With("component", "websocket"),
		broker:   broker,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		now:  time.Now,
		done: make(chan struct{}),
	}
}

// Stream - gin handler of GET /sessions/:id/events.
func (that *Server) Stream(c *gin.Context) {
	id := c.Param("id")
	log := that.logger.With("method", "Stream", "sessionID", id)

	span := trace.SpanFromContext(c.Request.Context())
	span.SetAttributes(attribute.String("session.id", id))

	// subscribe before reading the snapshot so that nothing published in between is lost
	feed, cancel := that.broker.Subscribe(id)
	defer cancel()

	session, err := that.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			rest.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}

		log.Error("failed to get session", "error", err)
		rest.ErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))

		return
	}

	conn, err := that.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")

		return
	}
	defer conn.Close()

	log.Info("client connected")

	closed := that.readPump(conn)

	view := rest.NewSessionView(session, that.now())
	if err = that.write(conn, Message{Event: Snapshot, Session: &view}); err != nil {
		log.Debug("failed to send snapshot", "error", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-feed:
			if !ok {
				return
			}

			if err = that.write(conn, that.message(event)); err != nil {
				log.Debug("failed to send event", "event", event.Type, "error", err)
				return
			}

			if event.Type == events.SessionEnded {
				return
			}
		case <-ticker.C:
			if err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			log.Info("client disconnected")
			return
		case <-that.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(writeWait))

			return
		}
	}
}

// Close - ends every open stream with a going away close frame.
func (that *Server) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

// readPump - discards client frames and closes the returned channel once the connection is gone.
func (that *Server) readPump(conn *websocket.Conn) <-chan struct{} {
	closed := make(chan struct{})

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(closed)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return closed
}

func (that *Server) write(conn *websocket.Conn, msg Message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(msg)
}

func (that *Server) message(event events.Event) Message {
	msg := Message{
		Event:  event.Type,
		Mark:   event.Mark,
		Result: event.Result,
	}

	if entity.IsValidPosition(event.Position) {
		position := event.Position
		msg.Position = &position
	}

	if event.Session != nil {
		view := rest.NewSessionView(event.Session, that.now())
		msg.Session = &view
	}

	return msg
}
