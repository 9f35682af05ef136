package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/events"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/scheduler"
)

const computerTurnTimeout = 5 * time.Second

type sessionRepo interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type opponent interface {
	ChooseMove(board entity.Board, computer, human entity.Mark, difficulty entity.Difficulty) (int, error)
	Hint(board entity.Board, computer, human entity.Mark, difficulty entity.Difficulty, hintUsed bool) (int, bool)
}

type publisher interface {
	Publish(event events.Event)
}

type recorder interface {
	MoveApplied(ctx context.Context, side entity.Side, difficulty entity.Difficulty)
	GameFinished(ctx context.Context, result entity.Result)
}

// change - what a mutation produced: events to publish and whether the computer has to reply.
type change struct {
	events   []events.Event
	schedule bool
}

func (that *change) add(eventType events.Type, session *entity.Session) *events.Event {
	that.events = append(that.events, events.Event{
		Type:      eventType,
		SessionID: session.ID,
		Position:  entity.NoPosition,
		Session:   session,
	})

	return &that.events[len(that.events)-1]
}

// sessionLock - serializes the mutations of one session. refs counts holders and waiters,
// the entry leaves GameManager.locks with the last of them.
type sessionLock struct {
	sync.Mutex
	refs int
}

// GameManager - drives the game of every session. All mutations of a session go through it
// and are serialized per session id. A computer reply is applied after delay; until then
// human input for that session is rejected with apperror.ErrComputerThinking.
//
// A stored session may be pending with no reply scheduled in this process, e.g. after a
// restart or a failed save. The next access to such a session schedules the reply again.
type GameManager struct {
	logger *slog.Logger

	repo      sessionRepo
	opponent  opponent
	scheduler scheduler.Scheduler
	publisher publisher
	metrics   recorder
	delay     time.Duration

	now   func() time.Time
	newID func() string

	locksMutex sync.Mutex
	locks      map[string]*sessionLock
	// session id -> round a computer reply is scheduled for
	armed map[string]int
}

func NewGameManager(
	logger *slog.Logger,
	repo sessionRepo,
	bot opponent,
	sched scheduler.Scheduler,
	pub publisher,
	metrics recorder,
	delay time.Duration,
) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		repo:      repo,
		opponent:  bot,
		scheduler: sched,
		publisher: pub,
		metrics:   metrics,
		delay:     delay,

		now:   time.Now,
		newID: uuid.NewString,

		locks: make(map[string]*sessionLock),
		armed: make(map[string]int),
	}
}

func (that *GameManager) CreateSession(ctx context.Context, settings entity.Settings) (*entity.Session, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := entity.NewSession(that.newID(), settings, that.now())

	unlock := that.lock(session.ID)

	var ch change
	ch.add(events.SessionCreated, session)
	that.startGame(session, &ch)

	if err := that.repo.Save(ctx, session); err != nil {
		unlock()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.arm(session, &ch)
	that.publish(ch)
	unlock()

	that.scheduleComputerTurn(ctx, session, ch)

	that.logger.Info("session created", "sessionID", session.ID, "mode", settings.Mode, "difficulty", settings.Difficulty)

	return session, nil
}

func (that *GameManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Pending && !that.isArmed(id, session.Round) {
		return that.update(ctx, id, func(*entity.Session, *change) error { return nil })
	}

	return session, nil
}

// MakeMove - applies a human move. In vs-computer mode the human always plays their own mark,
// in human-vs-human mode the mark on move is used.
func (that *GameManager) MakeMove(ctx context.Context, id string, position int) (*entity.Session, error) {
	return that.update(ctx, id, func(session *entity.Session, ch *change) error {
		if session.Pending {
			return apperror.ErrComputerThinking
		}

		mark := session.Game.Turn()
		if session.Settings.VersusComputer() {
			if session.IsComputerTurn() {
				return apperror.ErrOutOfTurn
			}
			mark = session.Game.HumanMark()
		}

		result, err := that.applyMove(ctx, session, position, mark, ch)
		if err != nil {
			return err
		}

		if !result.IsTerminal() && session.IsComputerTurn() {
			session.Pending = true
			ch.schedule = true
		}

		return nil
	})
}

// ResetGame - new game keeping the score. humanMark, when set, changes the human's symbol.
func (that *GameManager) ResetGame(ctx context.Context, id string, humanMark *entity.Mark) (*entity.Session, error) {
	if humanMark != nil && !humanMark.IsValid() {
		return nil, fmt.Errorf("%w: %q", apperror.ErrInvalidSymbol, *humanMark)
	}

	return that.update(ctx, id, func(session *entity.Session, ch *change) error {
		if humanMark != nil {
			session.Settings.HumanMark = *humanMark
		}

		that.restart(session, ch)

		return nil
	})
}

// UpdateSettings - mode or symbol changes restart the game, a difficulty change re-previews the hint.
func (that *GameManager) UpdateSettings(ctx context.Context, id string, patch entity.SettingsPatch) (*entity.Session, error) {
	return that.update(ctx, id, func(session *entity.Session, ch *change) error {
		settings, reset := patch.Apply(session.Settings)
		if err := settings.Validate(); err != nil {
			return err
		}

		difficultyChanged := settings.Difficulty != session.Settings.Difficulty
		session.Settings = settings
		ch.add(events.SettingsUpdated, session)

		switch {
		case reset:
			that.restart(session, ch)
		case difficultyChanged && !session.Pending:
			that.previewHint(session, ch)
		}

		return nil
	})
}

// ResetScores - zeroes the tally, the board is untouched.
func (that *GameManager) ResetScores(ctx context.Context, id string) (*entity.Session, error) {
	return that.update(ctx, id, func(session *entity.Session, ch *change) error {
		session.Score.Reset()
		ch.add(events.ScoresReset, session)

		return nil
	})
}

func (that *GameManager) EndSession(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer unlock()

	if err := that.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.locksMutex.Lock()
	delete(that.armed, id)
	that.locksMutex.Unlock()

	that.publisher.Publish(events.Event{Type: events.SessionEnded, SessionID: id, Position: entity.NoPosition})

	that.logger.Info("session ended", "sessionID", id)

	return nil
}

// update - loads the session under its lock, mutates it, saves it and publishes what changed.
func (that *GameManager) update(ctx context.Context, id string, mutate func(session *entity.Session, ch *change) error) (*entity.Session, error) {
	unlock := that.lock(id)

	session, err := that.repo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var ch change
	if err = mutate(session, &ch); err != nil {
		// nothing is saved, only a lost computer reply is scheduled again
		var retry change
		that.arm(session, &retry)
		unlock()

		that.scheduleComputerTurn(ctx, session, retry)

		return session, err
	}

	if err = that.repo.Save(ctx, session); err != nil {
		unlock()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.arm(session, &ch)
	that.publish(ch)
	unlock()

	that.scheduleComputerTurn(ctx, session, ch)

	return session, nil
}

func (that *GameManager) restart(session *entity.Session, ch *change) {
	session.Restart(that.now())
	ch.add(events.GameReset, session)
	that.startGame(session, ch)
}

// startGame - the computer opens when it holds the starting mark, otherwise the human gets a hint.
func (that *GameManager) startGame(session *entity.Session, ch *change) {
	if session.IsComputerTurn() {
		session.Pending = true
		ch.schedule = true

		return
	}

	that.previewHint(session, ch)
}

func (that *GameManager) previewHint(session *entity.Session, ch *change) {
	session.Hint = entity.NoHint

	if !session.Settings.VersusComputer() || session.Game.IsTerminal() || session.IsComputerTurn() {
		return
	}

	game := session.Game
	position, ok := that.opponent.Hint(game.Board(), game.ComputerMark(), game.HumanMark(), session.Settings.Difficulty, session.HintUsed)
	if !ok {
		return
	}

	session.Hint = position
	if session.Settings.Difficulty == entity.DifficultyMedium {
		session.HintUsed = true
	}

	event := ch.add(events.HintShown, session)
	event.Position = position
	event.Mark = game.ComputerMark()
}

func (that *GameManager) applyMove(ctx context.Context, session *entity.Session, position int, mark entity.Mark, ch *change) (entity.Result, error) {
	result, err := session.Game.ApplyMove(position, mark)
	if err != nil {
		return result, fmt.Errorf("failed to apply move: %w", err)
	}

	session.Hint = entity.NoHint
	that.metrics.MoveApplied(ctx, session.Game.SideOf(mark), session.Settings.Difficulty)

	event := ch.add(events.MoveApplied, session)
	event.Position = position
	event.Mark = mark
	event.Result = &result

	if result.IsTerminal() {
		session.Finish(result, that.now())
		that.metrics.GameFinished(ctx, result)

		finished := ch.add(events.GameFinished, session)
		finished.Result = &result

		that.logger.Info("game finished", "sessionID", session.ID, "status", result.Status, "winner", result.Winner)
	}

	return result, nil
}

func (that *GameManager) scheduleComputerTurn(ctx context.Context, session *entity.Session, ch change) {
	if !ch.schedule {
		return
	}

	id, round := session.ID, session.Round
	taskCtx := context.WithoutCancel(ctx)

	that.scheduler.Schedule(that.delay, func() {
		that.playComputerTurn(taskCtx, id, round)
	})
}

// playComputerTurn - applies the scheduled computer reply. A task left over from an earlier
// round of the session is dropped.
func (that *GameManager) playComputerTurn(ctx context.Context, id string, round int) {
	log := that.logger.With("method", "playComputerTurn", "sessionID", id)

	ctx, cancel := context.WithTimeout(ctx, computerTurnTimeout)
	defer cancel()

	_, err := that.update(ctx, id, func(session *entity.Session, ch *change) error {
		that.disarm(id, round)

		if session.Round != round || !session.Pending {
			return errStaleTurn
		}

		session.Pending = false
		if !session.IsComputerTurn() {
			return nil
		}

		game := session.Game
		position, err := that.opponent.ChooseMove(game.Board(), game.ComputerMark(), game.HumanMark(), session.Settings.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to choose move: %w", err)
		}

		_, err = that.applyMove(ctx, session, position, game.ComputerMark(), ch)

		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, errStaleTurn):
		log.Debug("dropped stale computer turn", "round", round)
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.disarm(id, round)
		log.Debug("session ended before computer turn")
	default:
		log.Error("computer turn failed", "error", err)
	}
}

var errStaleTurn = errors.New("stale computer turn")

// arm - records the computer reply a saved session waits for and marks it to be scheduled.
// A pending session with no reply recorded for its round gets one.
func (that *GameManager) arm(session *entity.Session, ch *change) {
	if !session.Pending {
		return
	}

	that.locksMutex.Lock()
	defer that.locksMutex.Unlock()

	if round, ok := that.armed[session.ID]; ok && round == session.Round && !ch.schedule {
		return
	}

	that.armed[session.ID] = session.Round
	ch.schedule = true
}

func (that *GameManager) disarm(id string, round int) {
	that.locksMutex.Lock()
	defer that.locksMutex.Unlock()

	if armed, ok := that.armed[id]; ok && armed == round {
		delete(that.armed, id)
	}
}

func (that *GameManager) isArmed(id string, round int) bool {
	that.locksMutex.Lock()
	defer that.locksMutex.Unlock()

	armed, ok := that.armed[id]

	return ok && armed == round
}

func (that *GameManager) lock(id string) func() {
	that.locksMutex.Lock()
	l, ok := that.locks[id]
	if !ok {
		l = &sessionLock{}
		that.locks[id] = l
	}
	l.refs++
	that.locksMutex.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		that.locksMutex.Lock()
		l.refs--
		if l.refs == 0 {
			delete(that.locks, id)
		}
		that.locksMutex.Unlock()
	}
}

func (that *GameManager) publish(ch change) {
	for _, event := range ch.events {
		that.publisher.Publish(event)
	}
}
