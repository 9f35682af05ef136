package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

var tracer = otel.Tracer("rest")

type gameManager interface {
	CreateSession(ctx context.Context, settings entity.Settings) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	MakeMove(ctx context.Context, id string, position int) (*entity.Session, error)
	ResetGame(ctx context.Context, id string, humanMark *entity.Mark) (*entity.Session, error)
	UpdateSettings(ctx context.Context, id string, patch entity.SettingsPatch) (*entity.Session, error)
	ResetScores(ctx context.Context, id string) (*entity.Session, error)
	EndSession(ctx context.Context, id string) error
}

type Server struct {
	logger *slog.Logger

	manager  gameManager
	defaults entity.Settings
	now      func() time.Time

	engine *gin.Engine
	srv    *http.Server
}

// NewServer - defaults fill the fields a create request leaves out.
func NewServer(logger *slog.Logger, port string, manager gameManager, defaults entity.Settings) *Server {
	gin.SetMode(gin.ReleaseMode)

	that := &Server{
		logger:   logger.With("component", "rest"),
		manager:  manager,
		defaults: defaults,
		now:      time.Now,
		engine:   gin.New(),
	}

	that.engine.Use(gin.Recovery(), that.traceRequest)

	that.engine.GET("/ping", pingHandler)

	sessions := that.engine.Group("/sessions")
	sessions.POST("", that.createSession)
	sessions.GET("/:id", that.getSession)
	sessions.DELETE("/:id", that.endSession)
	sessions.POST("/:id/moves", that.makeMove)
	sessions.POST("/:id/reset", that.resetGame)
	sessions.PATCH("/:id/settings", that.updateSettings)
	sessions.POST("/:id/scores/reset", that.resetScores)

	that.srv = &http.Server{
		Addr:         ":" + port,
		Handler:      that.engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	return that
}

// Mount - registers an extra GET route, e.g. the session event stream.
func (that *Server) Mount(path string, handler gin.HandlerFunc) {
	that.engine.GET(path, handler)
}

func (that *Server) Handler() http.Handler {
	return that.engine
}

// Start - blocks until the server stops. A graceful Shutdown is not an error.
func (that *Server) Start() error {
	if err := that.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// traceRequest - one server span per request, joined to the caller's trace when it sends one.
func (that *Server) traceRequest(c *gin.Context) {
	start := time.Now()

	ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
	ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		),
	)
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	c.Next()

	status := c.Writer.Status()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	that.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", status,
		"duration", time.Since(start),
	)
}
