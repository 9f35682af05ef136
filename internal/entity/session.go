package entity

import (
	"fmt"
	"time"
)

const NoHint = -1

// Session - one player's live game, score and settings.
type Session struct {
	ID       string   `json:"id"`
	Game     *Game    `json:"game"`
	Score    Score    `json:"score"`
	Settings Settings `json:"settings"`

	// Round is bumped on every reset so that a computer move scheduled for an earlier game is dropped.
	Round   int  `json:"round"`
	Pending bool `json:"pending"`

	Hint     int  `json:"hint"`
	HintUsed bool `json:"hint_used"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

func NewSession(id string, settings Settings, now time.Time) *Session {
	return &Session{
		ID:        id,
		Game:      NewGame(settings.HumanMark),
		Settings:  settings,
		Hint:      NoHint,
		StartedAt: now,
	}
}

// Restart - new game with the current settings; score is kept.
func (that *Session) Restart(now time.Time) {
	that.Game.Reset(that.Settings.HumanMark)
	that.Round++
	that.Pending = false
	that.Hint = NoHint
	that.HintUsed = false
	that.StartedAt = now
	that.FinishedAt = time.Time{}
}

// IsComputerTurn - the computer is to move in an unfinished vs-computer game.
func (that *Session) IsComputerTurn() bool {
	return that.Settings.VersusComputer() &&
		!that.Game.IsTerminal() &&
		that.Game.Turn() == that.Game.ComputerMark()
}

// Finish - stops the clock and records a decisive result.
func (that *Session) Finish(result Result, now time.Time) {
	that.FinishedAt = now
	that.Hint = NoHint
	that.Score.Record(result.Side)
}

func (that *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if !that.FinishedAt.IsZero() {
		end = that.FinishedAt
	}

	if end.Before(that.StartedAt) {
		return 0
	}

	return end.Sub(that.StartedAt)
}

// Clock - elapsed match time as mm:ss.
func (that *Session) Clock(now time.Time) string {
	seconds := int(that.Elapsed(now) / time.Second)

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
