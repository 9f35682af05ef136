package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/config"
	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

const instrumentationName = "github.com/hoshinomegami/BugcatTicTacToeWeb"

const shutdownTimeout = 5 * time.Second

// Init - installs meter and tracer providers exporting over OTLP gRPC. Without an endpoint
// the global no-op providers stay in place and the returned shutdown does nothing.
func Init(ctx context.Context, conf config.Telemetry) (func(context.Context) error, error) {
	if conf.OTLPEndpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	var opened cleanup

	conn, err := grpc.NewClient(conf.OTLPEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP collector: %w", err)
	}
	opened.add("gRPC connection", func(context.Context) error { return conn.Close() })

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(conf.ServiceName),
		),
	)
	if err != nil {
		return nil, opened.abort(ctx, fmt.Errorf("failed to create resource: %w", err))
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, opened.abort(ctx, fmt.Errorf("failed to create OTLP trace exporter: %w", err))
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	opened.add("TracerProvider", tracerProvider.Shutdown)

	metricExporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, opened.abort(ctx, fmt.Errorf("failed to create OTLP metric exporter: %w", err))
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	opened.add("MeterProvider", meterProvider.Shutdown)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		return opened.close(ctx)
	}, nil
}

type closer struct {
	name  string
	close func(context.Context) error
}

// cleanup - what Init has opened so far, released in reverse order.
type cleanup []closer

func (that *cleanup) add(name string, close func(context.Context) error) {
	*that = append(*that, closer{name: name, close: close})
}

func (that cleanup) close(ctx context.Context) error {
	var errs []error
	for i := len(that) - 1; i >= 0; i-- {
		if err := that[i].close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown %s: %w", that[i].name, err))
		}
	}

	return errors.Join(errs...)
}

// abort - releases everything opened before the failed step and returns cause with the release errors.
func (that cleanup) abort(ctx context.Context, cause error) error {
	return errors.Join(cause, that.close(ctx))
}

// Metrics - game counters.
type Metrics struct {
	moves    metric.Int64Counter
	finished metric.Int64Counter
}

// NewMetrics - uses the global meter provider when provider is nil.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(instrumentationName)

	moves, err := meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves applied to a board"),
		metric.WithUnit("{move}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}

	finished, err := meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached a terminal state"),
		metric.WithUnit("{game}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create finished games counter: %w", err)
	}

	return &Metrics{moves: moves, finished: finished}, nil
}

func (that *Metrics) MoveApplied(ctx context.Context, side entity.Side, difficulty entity.Difficulty) {
	that.moves.Add(ctx, 1, metric.WithAttributes(
		attribute.String("side", string(side)),
		attribute.String("difficulty", string(difficulty)),
	))
}

func (that *Metrics) GameFinished(ctx context.Context, result entity.Result) {
	outcome := string(result.Side)
	if result.Status == entity.StatusDraw {
		outcome = "draw"
	}

	that.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
