package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/config"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

func TestInit_WithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.Telemetry{})

	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestMetrics(t *testing.T) {
	// Given: metrics backed by a manual reader
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(provider)
	require.NoError(t, err)

	// When: two moves and a draw are recorded
	metrics.MoveApplied(ctx, entity.SideHuman, entity.DifficultyHard)
	metrics.MoveApplied(ctx, entity.SideComputer, entity.DifficultyHard)
	metrics.GameFinished(ctx, entity.Result{Status: entity.StatusDraw})

	// Then: both counters are exported
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		for _, point := range sum.DataPoints {
			totals[m.Name] += point.Value
		}
	}

	assert.Equal(t, int64(2), totals["tictactoe.moves"])
	assert.Equal(t, int64(1), totals["tictactoe.games.finished"])
}

func TestCleanup(t *testing.T) {
	t.Run("Releases in reverse order", func(t *testing.T) {
		// Given: three opened resources
		var closed []string
		var opened cleanup
		for _, name := range []string{"conn", "tracer", "meter"} {
			opened.add(name, func(context.Context) error {
				closed = append(closed, name)
				return nil
			})
		}

		// When: a later step fails
		cause := errors.New("exporter failed")
		err := opened.abort(context.Background(), cause)

		// Then: the cause is kept and everything is released last opened first
		require.ErrorIs(t, err, cause)
		assert.Equal(t, []string{"meter", "tracer", "conn"}, closed)
	})

	t.Run("Release errors are joined", func(t *testing.T) {
		connErr := errors.New("close failed")
		var opened cleanup
		opened.add("gRPC connection", func(context.Context) error { return connErr })
		opened.add("TracerProvider", func(context.Context) error { return nil })

		err := opened.close(context.Background())

		require.ErrorIs(t, err, connErr)
		assert.Contains(t, err.Error(), "failed to shutdown gRPC connection")
	})
}
