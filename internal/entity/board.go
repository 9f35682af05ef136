package entity

import (
	"fmt"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
)

type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"

	// StartingMark always moves first, whoever holds it.
	StartingMark = MarkX
)

const (
	BoardSize = 9

	NoCombo    = -1
	NoPosition = -1
)

// WinCombos - rows, columns, diagonals. Table order decides which combo is reported.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// ParseMark - validates a symbol chosen by the player.
func ParseMark(s string) (Mark, error) {
	switch m := Mark(s); m {
	case MarkX, MarkO:
		return m, nil
	default:
		return MarkEmpty, fmt.Errorf("%w: %q", apperror.ErrInvalidSymbol, s)
	}
}

func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

func (that Mark) IsValid() bool {
	return that == MarkX || that == MarkO
}

// Board - 9 cells in row-major order.
type Board [BoardSize]Mark

func IsValidPosition(position int) bool {
	return position >= 0 && position < BoardSize
}

// WinningCombo - index of the first combo fully held by mark, or NoCombo.
func (that *Board) WinningCombo(mark Mark) int {
	if !mark.IsValid() {
		return NoCombo
	}

	for i, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return i
		}
	}

	return NoCombo
}

func (that *Board) HasWon(mark Mark) bool {
	return that.WinningCombo(mark) != NoCombo
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == MarkEmpty {
			return false
		}
	}

	return true
}

// AvailablePositions - empty cells in ascending order.
func (that *Board) AvailablePositions() []int {
	available := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == MarkEmpty {
			available = append(available, i)
		}
	}

	return available
}

func (that *Board) Strings() []string {
	cells := make([]string, BoardSize)
	for i, cell := range that {
		cells[i] = string(cell)
	}

	return cells
}
