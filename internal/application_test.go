package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/apperror"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/config"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

func TestDefaultSettings(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		settings, err := DefaultSettings(config.Game{DefaultMode: "pvp", DefaultDifficulty: "medium", DefaultSymbol: "O"})

		require.NoError(t, err)
		assert.Equal(t, entity.Settings{
			Mode:       entity.ModeHumanVsHuman,
			Difficulty: entity.DifficultyMedium,
			HumanMark:  entity.MarkO,
		}, settings)
	})

	t.Run("Invalid", func(t *testing.T) {
		tests := []struct {
			name string
			conf config.Game
			err  error
		}{
			{name: "Mode", conf: config.Game{DefaultMode: "online", DefaultDifficulty: "hard", DefaultSymbol: "X"}, err: apperror.ErrInvalidMode},
			{name: "Difficulty", conf: config.Game{DefaultMode: "ai", DefaultDifficulty: "insane", DefaultSymbol: "X"}, err: apperror.ErrInvalidDifficulty},
			{name: "Symbol", conf: config.Game{DefaultMode: "ai", DefaultDifficulty: "hard", DefaultSymbol: "Z"}, err: apperror.ErrInvalidSymbol},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := DefaultSettings(tt.conf)

				require.ErrorIs(t, err, tt.err)
			})
		}
	})
}
