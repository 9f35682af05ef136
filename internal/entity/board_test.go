package entity

import (
	"testing"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	A = MarkX
	B = MarkO
	E = MarkEmpty
)

func TestBoard_WinningCombo(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		mark  Mark
		want  int
	}{
		{name: "empty board", board: Board{}, mark: A, want: NoCombo},
		{name: "first row", board: Board{A, A, A, E, E, E, E, E, E}, mark: A, want: 0},
		{name: "first row for the other mark", board: Board{A, A, A, E, E, E, E, E, E}, mark: B, want: NoCombo},
		{name: "second column", board: Board{A, B, E, A, B, E, E, B, E}, mark: B, want: 4},
		{name: "main diagonal", board: Board{A, E, E, E, A, E, E, E, A}, mark: A, want: 6},
		{name: "anti diagonal", board: Board{E, E, B, E, B, E, B, E, E}, mark: B, want: 7},
		{name: "table order decides", board: Board{A, A, A, A, E, E, A, E, E}, mark: A, want: 0},
		{name: "empty mark never wins", board: Board{}, mark: E, want: NoCombo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.board.WinningCombo(tt.mark))
		})
	}
}

func TestBoard_Draw(t *testing.T) {
	// Given: a full board without a line
	board := Board{A, B, A, B, A, B, B, A, B}

	// Then: it is full and nobody won
	assert.True(t, board.IsFull())
	assert.False(t, board.HasWon(A))
	assert.False(t, board.HasWon(B))
	assert.Empty(t, board.AvailablePositions())
}

func TestBoard_AvailablePositions(t *testing.T) {
	board := Board{A, E, B, E, A, E, E, E, B}

	assert.Equal(t, []int{1, 3, 5, 6, 7}, board.AvailablePositions())
	assert.False(t, board.IsFull())
}

func TestParseMark(t *testing.T) {
	mark, err := ParseMark("O")
	require.NoError(t, err)
	assert.Equal(t, MarkO, mark)

	_, err = ParseMark("Z")
	require.ErrorIs(t, err, apperror.ErrInvalidSymbol)

	_, err = ParseMark("")
	require.ErrorIs(t, err, apperror.ErrInvalidSymbol)
}

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, MarkO, MarkX.Opponent())
	assert.Equal(t, MarkX, MarkO.Opponent())
	assert.Equal(t, MarkEmpty, MarkEmpty.Opponent())
}
