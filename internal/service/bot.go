package service

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

const (
	ScoreWin  = 10
	ScoreLoss = -10
	ScoreDraw = 0
)

// Opponent - computer player. Safe for concurrent use.
type Opponent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewOpponent - rng may be nil, in which case a time seeded source is used.
func NewOpponent(rng *rand.Rand) *Opponent {
	if rng == nil {
		seed := uint64(time.Now().UnixNano()) //nolint: gosec // it's ok
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &Opponent{rng: rng}
}

// ChooseMove - picks a move for computer according to difficulty.
func (that *Opponent) ChooseMove(board entity.Board, computer, human entity.Mark, difficulty entity.Difficulty) (int, error) {
	available := board.AvailablePositions()
	if len(available) == 0 {
		return entity.NoPosition, apperror.ErrNoAvailableMoves
	}

	switch difficulty {
	case entity.DifficultyEasy:
		return that.randomMove(available), nil
	case entity.DifficultyMedium:
		if that.coin() {
			return that.randomMove(available), nil
		}

		return that.bestMove(board, computer, human), nil
	case entity.DifficultyHard:
		return that.bestMove(board, computer, human), nil
	default:
		return entity.NoPosition, fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, difficulty)
	}
}

// Hint - the move the computer would preview for the human. Hard never hints,
// medium hints once per game, easy always does.
func (that *Opponent) Hint(board entity.Board, computer, human entity.Mark, difficulty entity.Difficulty, hintUsed bool) (int, bool) {
	switch {
	case difficulty == entity.DifficultyHard:
		return entity.NoPosition, false
	case difficulty == entity.DifficultyMedium && hintUsed:
		return entity.NoPosition, false
	}

	position, err := that.ChooseMove(board, computer, human, difficulty)
	if err != nil || board[position] != entity.MarkEmpty {
		return entity.NoPosition, false
	}

	return position, true
}

func (that *Opponent) bestMove(board entity.Board, computer, human entity.Mark) int {
	_, position := Minimax(board, computer, human, computer)

	return position
}

func (that *Opponent) randomMove(available []int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return available[that.rng.IntN(len(available))]
}

func (that *Opponent) coin() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.IntN(2) == 0
}

// Minimax - exhaustive game tree search from the point of view of computer.
// board is passed by value, so the caller's board is never modified.
// Ties keep the lowest position.
func Minimax(board entity.Board, computer, human, toMove entity.Mark) (score, position int) {
	if board.HasWon(human) {
		return ScoreLoss, entity.NoPosition
	}

	if board.HasWon(computer) {
		return ScoreWin, entity.NoPosition
	}

	available := board.AvailablePositions()
	if len(available) == 0 {
		return ScoreDraw, entity.NoPosition
	}

	maximizing := toMove == computer
	position = entity.NoPosition

	for _, candidate := range available {
		next := board
		next[candidate] = toMove

		childScore, _ := Minimax(next, computer, human, toMove.Opponent())

		switch {
		case position == entity.NoPosition,
			maximizing && childScore > score,
			!maximizing && childScore < score:
			score, position = childScore, candidate
		}
	}

	return score, position
}
