package apperror

import "errors"

// Move rejections. The game is left untouched whenever one of these is returned.
var (
	ErrInvalidPosition  = errors.New("position is out of the board")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrOutOfTurn        = errors.New("it's not your turn")
	ErrGameAlreadyOver  = errors.New("game is already over")
	ErrComputerThinking = errors.New("computer is making its move")
)

var (
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidMode       = errors.New("invalid game mode")
	ErrNoAvailableMoves  = errors.New("no available moves")
	ErrSessionNotFound   = errors.New("session not found")
	ErrCorruptGame       = errors.New("stored game is corrupt")
)

// IsMoveRejection reports whether err is one of the rejections of an attempted move.
func IsMoveRejection(err error) bool {
	return errors.Is(err, ErrInvalidPosition) ||
		errors.Is(err, ErrCellOccupied) ||
		errors.Is(err, ErrOutOfTurn) ||
		errors.Is(err, ErrGameAlreadyOver) ||
		errors.Is(err, ErrComputerThinking)
}
