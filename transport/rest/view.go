package rest

import (
	"time"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

// SessionView - what a client needs to render a session.
type SessionView struct {
	ID             string          `json:"id"`
	Board          []string        `json:"board"`
	Turn           entity.Mark     `json:"turn"`
	Status         entity.Status   `json:"status"`
	Winner         entity.Mark     `json:"winner"`
	WinCombo       []int           `json:"win_combo"`
	WinnerSide     entity.Side     `json:"winner_side"`
	HumanMark      entity.Mark     `json:"human_mark"`
	ComputerMark   entity.Mark     `json:"computer_mark"`
	Score          entity.Score    `json:"score"`
	Settings       entity.Settings `json:"settings"`
	Hint           *int            `json:"hint"`
	Pending        bool            `json:"pending"`
	Clock          string          `json:"clock"`
	ElapsedSeconds int64           `json:"elapsed_seconds"`
}

func NewSessionView(session *entity.Session, now time.Time) SessionView {
	game := session.Game
	board := game.Board()

	view := SessionView{
		ID:             session.ID,
		Board:          board.Strings(),
		Turn:           game.Turn(),
		Status:         game.Status(),
		Winner:         game.Winner(),
		HumanMark:      game.HumanMark(),
		ComputerMark:   game.ComputerMark(),
		Score:          session.Score,
		Settings:       session.Settings,
		Pending:        session.Pending,
		Clock:          session.Clock(now),
		ElapsedSeconds: int64(session.Elapsed(now) / time.Second),
	}

	if index := game.WinCombo(); index != entity.NoCombo {
		combo := entity.WinCombos[index]
		view.WinCombo = combo[:]
		view.WinnerSide = game.SideOf(game.Winner())
	}

	if entity.IsValidPosition(session.Hint) {
		hint := session.Hint
		view.Hint = &hint
	}

	return view
}
