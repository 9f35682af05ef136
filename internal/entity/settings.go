package entity

import (
	"fmt"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
)

type Mode string

const (
	ModeHumanVsHuman    Mode = "pvp"
	ModeHumanVsComputer Mode = "ai"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeHumanVsHuman, ModeHumanVsComputer:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMode, s)
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, s)
	}
}

type Settings struct {
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	HumanMark  Mark       `json:"human_mark"`
}

func (that Settings) Validate() error {
	if _, err := ParseMode(string(that.Mode)); err != nil {
		return err
	}

	if _, err := ParseDifficulty(string(that.Difficulty)); err != nil {
		return err
	}

	if _, err := ParseMark(string(that.HumanMark)); err != nil {
		return err
	}

	return nil
}

func (that Settings) VersusComputer() bool {
	return that.Mode == ModeHumanVsComputer
}

// SettingsPatch - partial update; nil fields are left as they are.
type SettingsPatch struct {
	Mode       *Mode
	Difficulty *Difficulty
	HumanMark  *Mark
}

// Apply - returns the patched settings and whether the board has to be reset.
// Mode and symbol changes restart the game, a difficulty change does not.
func (that SettingsPatch) Apply(settings Settings) (Settings, bool) {
	reset := false

	if that.Mode != nil && *that.Mode != settings.Mode {
		settings.Mode = *that.Mode
		reset = true
	}

	if that.HumanMark != nil && *that.HumanMark != settings.HumanMark {
		settings.HumanMark = *that.HumanMark
		reset = true
	}

	if that.Difficulty != nil {
		settings.Difficulty = *that.Difficulty
	}

	return settings, reset
}
