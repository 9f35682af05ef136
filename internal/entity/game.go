package entity

import (
	"encoding/json"
	"fmt"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDraw       Status = "draw"
)

// Side - who holds a mark. In human-vs-human mode the computer side is the second human.
type Side string

const (
	SideNone     Side = ""
	SideHuman    Side = "human"
	SideComputer Side = "computer"
)

// Result - outcome of an applied move.
type Result struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner"`
	Combo  int    `json:"combo"`
	Side   Side   `json:"side"`
}

func (that Result) IsTerminal() bool {
	return that.Status != StatusInProgress
}

// Game - board and turn state of a single game. Only Reset and ApplyMove mutate it.
type Game struct {
	board        Board
	turn         Mark
	humanMark    Mark
	computerMark Mark
	over         bool
	winner       Mark
	combo        int
}

func NewGame(humanMark Mark) *Game {
	game := &Game{}
	game.Reset(humanMark)

	return game
}

// Reset - clears the board and assigns humanMark to the human; an invalid mark falls back to StartingMark.
func (that *Game) Reset(humanMark Mark) {
	if !humanMark.IsValid() {
		humanMark = StartingMark
	}

	that.board = Board{}
	that.humanMark = humanMark
	that.computerMark = humanMark.Opponent()
	that.turn = StartingMark
	that.over = false
	that.winner = MarkEmpty
	that.combo = NoCombo
}

// ApplyMove - places mark at position and evaluates termination.
func (that *Game) ApplyMove(position int, mark Mark) (Result, error) {
	if !IsValidPosition(position) {
		return that.result(), fmt.Errorf("%w: %d", apperror.ErrInvalidPosition, position)
	}

	if that.board[position] != MarkEmpty {
		return that.result(), fmt.Errorf("%w: %d", apperror.ErrCellOccupied, position)
	}

	if that.over {
		return that.result(), apperror.ErrGameAlreadyOver
	}

	if mark != that.turn {
		return that.result(), fmt.Errorf("%w: %s to move", apperror.ErrOutOfTurn, that.turn)
	}

	that.board[position] = mark

	if combo := that.board.WinningCombo(mark); combo != NoCombo {
		that.over = true
		that.winner = mark
		that.combo = combo

		return that.result(), nil
	}

	if that.board.IsFull() {
		that.over = true

		return that.result(), nil
	}

	that.turn = mark.Opponent()

	return that.result(), nil
}

func (that *Game) result() Result {
	return Result{
		Status: that.Status(),
		Winner: that.winner,
		Combo:  that.combo,
		Side:   that.SideOf(that.winner),
	}
}

func (that *Game) Status() Status {
	switch {
	case !that.over:
		return StatusInProgress
	case that.winner != MarkEmpty:
		return StatusWon
	default:
		return StatusDraw
	}
}

// Board - a copy of the current board.
func (that *Game) Board() Board {
	return that.board
}

func (that *Game) Turn() Mark {
	return that.turn
}

func (that *Game) HumanMark() Mark {
	return that.humanMark
}

func (that *Game) ComputerMark() Mark {
	return that.computerMark
}

func (that *Game) IsTerminal() bool {
	return that.over
}

// Winner - winning mark, MarkEmpty for a draw or an unfinished game.
func (that *Game) Winner() Mark {
	return that.winner
}

func (that *Game) WinCombo() int {
	return that.combo
}

func (that *Game) AvailablePositions() []int {
	if that.over {
		return []int{}
	}

	return that.board.AvailablePositions()
}

func (that *Game) SideOf(mark Mark) Side {
	switch {
	case mark == MarkEmpty:
		return SideNone
	case mark == that.humanMark:
		return SideHuman
	default:
		return SideComputer
	}
}

type gameSnapshot struct {
	Board        Board `json:"board"`
	Turn         Mark  `json:"turn"`
	HumanMark    Mark  `json:"human_mark"`
	ComputerMark Mark  `json:"computer_mark"`
	Over         bool  `json:"over"`
	Winner       Mark  `json:"winner"`
	Combo        int   `json:"combo"`
}

func (that *Game) MarshalJSON() ([]byte, error) {
	return json.Marshal(gameSnapshot{
		Board:        that.board,
		Turn:         that.turn,
		HumanMark:    that.humanMark,
		ComputerMark: that.computerMark,
		Over:         that.over,
		Winner:       that.winner,
		Combo:        that.combo,
	})
}

func (that *Game) UnmarshalJSON(data []byte) error {
	var snapshot gameSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal game: %w", err)
	}

	if err := snapshot.validate(); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrCorruptGame, err)
	}

	that.board = snapshot.Board
	that.turn = snapshot.Turn
	that.humanMark = snapshot.HumanMark
	that.computerMark = snapshot.ComputerMark
	that.over = snapshot.Over
	that.winner = snapshot.Winner
	that.combo = snapshot.Combo

	return nil
}

func (that gameSnapshot) validate() error {
	for position, cell := range that.Board {
		if cell != MarkEmpty && !cell.IsValid() {
			return fmt.Errorf("cell %d holds %q", position, cell)
		}
	}

	if !that.Turn.IsValid() || !that.HumanMark.IsValid() || that.ComputerMark != that.HumanMark.Opponent() {
		return fmt.Errorf("marks turn=%q human=%q computer=%q", that.Turn, that.HumanMark, that.ComputerMark)
	}

	if that.Combo == NoCombo {
		if that.Winner != MarkEmpty {
			return fmt.Errorf("winner %q without a combo", that.Winner)
		}

		return nil
	}

	if that.Combo < 0 || that.Combo >= len(WinCombos) {
		return fmt.Errorf("combo %d", that.Combo)
	}

	if !that.Over || !that.Winner.IsValid() || that.Board.WinningCombo(that.Winner) != that.Combo {
		return fmt.Errorf("combo %d does not match winner %q", that.Combo, that.Winner)
	}

	return nil
}
