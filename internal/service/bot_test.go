package service

import (
	"math/rand/v2"
	"testing"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	X = entity.MarkX
	O = entity.MarkO
	E = entity.MarkEmpty
)

func newTestOpponent(seed uint64) *Opponent {
	return NewOpponent(rand.New(rand.NewPCG(seed, seed)))
}

func TestOpponent_ChooseMove(t *testing.T) {
	t.Run("Easy picks only available positions", func(t *testing.T) {
		// Given: a board with three empty cells
		opponent := newTestOpponent(1)
		board := entity.Board{X, O, X, E, O, E, O, X, E}

		seen := map[int]bool{}
		for range 200 {
			// When: easy chooses a move
			position, err := opponent.ChooseMove(board, O, X, entity.DifficultyEasy)

			// Then: it is one of the empty cells
			require.NoError(t, err)
			require.Contains(t, []int{3, 5, 8}, position)
			seen[position] = true
		}

		assert.Len(t, seen, 3)
	})

	t.Run("Hard takes the win", func(t *testing.T) {
		opponent := newTestOpponent(1)
		board := entity.Board{O, O, E, X, X, E, E, E, E}

		position, err := opponent.ChooseMove(board, O, X, entity.DifficultyHard)

		require.NoError(t, err)
		assert.Equal(t, 2, position)
	})

	t.Run("Hard blocks the human", func(t *testing.T) {
		opponent := newTestOpponent(1)
		board := entity.Board{X, X, E, E, O, E, E, E, E}

		position, err := opponent.ChooseMove(board, O, X, entity.DifficultyHard)

		require.NoError(t, err)
		assert.Equal(t, 2, position)
	})

	t.Run("Medium mixes random and optimal moves", func(t *testing.T) {
		// Given: a position where only cell 2 avoids a loss
		opponent := newTestOpponent(7)
		board := entity.Board{X, X, E, E, O, E, E, E, E}

		blocked, other := 0, 0
		for range 400 {
			position, err := opponent.ChooseMove(board, O, X, entity.DifficultyMedium)
			require.NoError(t, err)
			require.Equal(t, E, board[position])

			if position == 2 {
				blocked++
			} else {
				other++
			}
		}

		// Then: both branches of the coin show up
		assert.Greater(t, blocked, 0)
		assert.Greater(t, other, 0)
	})

	t.Run("Full board", func(t *testing.T) {
		opponent := newTestOpponent(1)
		board := entity.Board{X, O, X, O, X, O, O, X, O}

		for _, difficulty := range []entity.Difficulty{entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard} {
			position, err := opponent.ChooseMove(board, O, X, difficulty)
			require.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
			assert.Equal(t, entity.NoPosition, position)
		}
	})

	t.Run("Unknown difficulty", func(t *testing.T) {
		opponent := newTestOpponent(1)

		_, err := opponent.ChooseMove(entity.Board{}, O, X, "insane")

		require.ErrorIs(t, err, apperror.ErrInvalidDifficulty)
	})

	t.Run("Search leaves the board untouched", func(t *testing.T) {
		opponent := newTestOpponent(1)
		board := entity.Board{X, E, E, E, O, E, E, E, E}
		before := board

		_, err := opponent.ChooseMove(board, X, O, entity.DifficultyHard)

		require.NoError(t, err)
		assert.Equal(t, before, board)
	})
}

func TestMinimax(t *testing.T) {
	t.Run("Empty board has game value zero", func(t *testing.T) {
		// When: the computer searches the empty board moving first
		score, position := Minimax(entity.Board{}, X, O, X)

		// Then: perfect play is a draw and the first best move is the corner
		assert.Equal(t, ScoreDraw, score)
		assert.Equal(t, 0, position)

		// And: the chosen move keeps the value at zero
		board := entity.Board{}
		board[position] = X
		childScore, _ := Minimax(board, X, O, O)
		assert.Equal(t, ScoreDraw, childScore)
	})

	t.Run("Terminal leaves", func(t *testing.T) {
		score, position := Minimax(entity.Board{X, X, X, O, O, E, E, E, E}, X, O, O)
		assert.Equal(t, ScoreWin, score)
		assert.Equal(t, entity.NoPosition, position)

		score, _ = Minimax(entity.Board{X, X, X, O, O, E, E, E, E}, O, X, O)
		assert.Equal(t, ScoreLoss, score)

		score, position = Minimax(entity.Board{X, O, X, O, X, O, O, X, O}, X, O, X)
		assert.Equal(t, ScoreDraw, score)
		assert.Equal(t, entity.NoPosition, position)
	})

	t.Run("No depth discount", func(t *testing.T) {
		// Given: O can win now at 2 or later; both score the same
		board := entity.Board{O, O, E, X, X, E, X, E, E}

		score, position := Minimax(board, O, X, O)

		// Then: the first winning position in order is taken
		assert.Equal(t, ScoreWin, score)
		assert.Equal(t, 2, position)
	})
}

func TestOpponent_Hint(t *testing.T) {
	opponent := newTestOpponent(3)
	board := entity.Board{X, E, E, E, E, E, E, E, E}

	t.Run("Hard never hints", func(t *testing.T) {
		_, ok := opponent.Hint(board, O, X, entity.DifficultyHard, false)
		assert.False(t, ok)
	})

	t.Run("Medium hints once", func(t *testing.T) {
		position, ok := opponent.Hint(board, O, X, entity.DifficultyMedium, false)
		require.True(t, ok)
		assert.Equal(t, E, board[position])

		_, ok = opponent.Hint(board, O, X, entity.DifficultyMedium, true)
		assert.False(t, ok)
	})

	t.Run("Easy always hints", func(t *testing.T) {
		position, ok := opponent.Hint(board, O, X, entity.DifficultyEasy, true)
		require.True(t, ok)
		assert.Equal(t, E, board[position])
	})

	t.Run("No hint on a full board", func(t *testing.T) {
		_, ok := opponent.Hint(entity.Board{X, O, X, O, X, O, O, X, O}, O, X, entity.DifficultyEasy, false)
		assert.False(t, ok)
	})
}

// playOut - computer plays hard, the other side follows strategy, starting with X.
func playOut(t *testing.T, opponent *Opponent, computer entity.Mark, strategy func(game *entity.Game) int) *entity.Game {
	t.Helper()

	game := entity.NewGame(computer.Opponent())
	for !game.IsTerminal() {
		var position int
		if game.Turn() == computer {
			var err error
			position, err = opponent.ChooseMove(game.Board(), computer, computer.Opponent(), entity.DifficultyHard)
			require.NoError(t, err)
		} else {
			position = strategy(game)
		}

		_, err := game.ApplyMove(position, game.Turn())
		require.NoError(t, err)
	}

	return game
}

func TestOpponent_HardNeverLoses(t *testing.T) {
	opponent := newTestOpponent(11)

	t.Run("Hard against hard is a draw", func(t *testing.T) {
		game := entity.NewGame(X)
		for !game.IsTerminal() {
			mover := game.Turn()
			position, err := opponent.ChooseMove(game.Board(), mover, mover.Opponent(), entity.DifficultyHard)
			require.NoError(t, err)

			_, err = game.ApplyMove(position, mover)
			require.NoError(t, err)
		}

		assert.Equal(t, entity.StatusDraw, game.Status())
	})

	t.Run("Hard against every human line of play", func(t *testing.T) {
		// explore every human reply at every human turn
		var explore func(game entity.Game, computer entity.Mark) int
		explore = func(game entity.Game, computer entity.Mark) int {
			if game.IsTerminal() {
				require.NotEqual(t, computer.Opponent(), game.Winner(), "hard lost on %v", game.Board())
				return 1
			}

			if game.Turn() == computer {
				position, err := opponent.ChooseMove(game.Board(), computer, computer.Opponent(), entity.DifficultyHard)
				require.NoError(t, err)

				_, err = game.ApplyMove(position, computer)
				require.NoError(t, err)

				return explore(game, computer)
			}

			games := 0
			for _, position := range game.AvailablePositions() {
				next := game
				_, err := next.ApplyMove(position, next.Turn())
				require.NoError(t, err)
				games += explore(next, computer)
			}

			return games
		}

		for _, computer := range []entity.Mark{X, O} {
			games := explore(*entity.NewGame(computer.Opponent()), computer)
			assert.Positive(t, games)
		}
	})

	t.Run("Hard against random play", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(5, 5))
		for range 50 {
			for _, computer := range []entity.Mark{X, O} {
				game := playOut(t, opponent, computer, func(game *entity.Game) int {
					available := game.AvailablePositions()
					return available[rng.IntN(len(available))]
				})

				assert.NotEqual(t, computer.Opponent(), game.Winner())
			}
		}
	})
}
