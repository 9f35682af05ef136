package events

import (
	"log/slog"
	"sync"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

type Type string

// Event types a presentation layer reacts to.
const (
	SessionCreated  Type = "session_created"
	MoveApplied     Type = "move_applied"
	GameFinished    Type = "game_finished"
	GameReset       Type = "game_reset"
	ScoresReset     Type = "scores_reset"
	SettingsUpdated Type = "settings_updated"
	HintShown       Type = "hint"
	SessionEnded    Type = "session_ended"
)

const subscriberBuffer = 16

// Event - state transition of a session. Session is a snapshot taken after the transition.
type Event struct {
	Type      Type            `json:"event"`
	SessionID string          `json:"session_id"`
	Position  int             `json:"position"`
	Mark      entity.Mark     `json:"mark,omitempty"`
	Result    *entity.Result  `json:"result,omitempty"`
	Session   *entity.Session `json:"session,omitempty"`
}

// Broker - in-process fan out of events keyed by session id.
type Broker struct {
	logger *slog.Logger

	mu          sync.RWMutex
	nextID      int
	subscribers map[string]map[int]chan Event
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger:      logger.With("component", "events"),
		subscribers: make(map[string]map[int]chan Event),
	}
}

// Subscribe - returns a channel of the session's events and a cancel func that closes it.
func (that *Broker) Subscribe(sessionID string) (<-chan Event, func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := that.nextID
	that.nextID++

	ch := make(chan Event, subscriberBuffer)
	if that.subscribers[sessionID] == nil {
		that.subscribers[sessionID] = make(map[int]chan Event)
	}
	that.subscribers[sessionID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			delete(that.subscribers[sessionID], id)
			if len(that.subscribers[sessionID]) == 0 {
				delete(that.subscribers, sessionID)
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Publish - never blocks; a subscriber with a full buffer misses the event.
func (that *Broker) Publish(event Event) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	for id, ch := range that.subscribers[event.SessionID] {
		select {
		case ch <- event:
		default:
			that.logger.Warn("dropped event for slow subscriber",
				"sessionID", event.SessionID, "subscriber", id, "event", event.Type)
		}
	}
}
