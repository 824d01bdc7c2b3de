package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mom-assistant/internal/apperrors"
	"mom-assistant/internal/assistant"
	"mom-assistant/internal/config"
	"mom-assistant/internal/logger"
	"mom-assistant/internal/recipe"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	writeTimeout        = 150 * time.Second
	idleTimeout         = 120 * time.Second
)

const (
	generateFailureMessage = "An error occurred while processing the request."
	recipeFailureMessage   = "An error occurred while generating the recipe."
	internalFailureMessage = "internal server error"
)

// Assistant runs the translate and reply pipeline.
type Assistant interface {
	Run(ctx context.Context, englishText, momInput string) (assistant.Result, error)
}

// Recipes generates recipes from a topic.
type Recipes interface {
	Generate(ctx context.Context, topic string) (recipe.Recipe, error)
}

type Server struct {
	cfg       config.Config
	assistant Assistant
	recipes   Recipes
	app       *echo.Echo
	address   string
	banner    io.Writer
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, a Assistant, r Recipes) (*Server, error) {
	if a == nil {
		return nil, errors.New("assistant must not be nil")
	}
	if r == nil {
		return nil, errors.New("recipe generator must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))

	srv := &Server{
		cfg:       cfg,
		assistant: a,
		recipes:   r,
		app:       e,
		address:   fmt.Sprintf(":%d", cfg.Server.Port),
		banner:    os.Stdout,
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler returns the root HTTP handler, traced when telemetry is enabled.
func (s *Server) Handler() http.Handler {
	if s.cfg.Telemetry.Enabled {
		return otelhttp.NewHandler(s.app, s.cfg.Telemetry.ServiceName)
	}
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.banner, s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.POST("/api/generate", s.handleGenerate)
	s.app.POST("/api/request", s.handleRequest)
	s.app.POST("/generate-recipe", s.handleGenerateRecipe)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	return s.generate(c, req)
}

// handleRequest is a pass-through to the generate handler kept for clients
// that post to /api/request.
func (s *Server) handleRequest(c echo.Context) error {
	var req generateRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}
	return s.generate(c, req)
}

func (s *Server) generate(c echo.Context, req generateRequest) error {
	ctx := c.Request().Context()

	res, err := s.assistant.Run(ctx, req.EnglishText, req.momInput())
	if err != nil {
		return toHTTPError(ctx, err, generateFailureMessage)
	}
	return c.JSON(http.StatusOK, newGenerateResponse(res))
}

func (s *Server) handleGenerateRecipe(c echo.Context) error {
	var req recipeRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	rec, err := s.recipes.Generate(ctx, req.Topic)
	if err != nil {
		return toHTTPError(ctx, err, recipeFailureMessage)
	}

	return c.JSON(http.StatusOK, recipeResponse{Recipe: rec})
}

func decodeRequestBody[T any](c echo.Context, target *T) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return requestError{
				Status:  http.StatusBadRequest,
				Message: "request body is required",
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
		}
	}
	return nil
}

type requestError struct {
	Status  int
	Message string
}

func (e requestError) Error() string {
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var reqErr requestError
	if errors.As(err, &reqErr) {
		_ = c.JSON(reqErr.Status, errorBody{Error: reqErr.Message})
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = c.JSON(he.Code, errorBody{Error: http.StatusText(he.Code)})
		return
	}

	_ = c.JSON(http.StatusInternalServerError, errorBody{Error: internalFailureMessage})
}

// toHTTPError maps domain errors onto a status and a caller-safe message,
// logging the detail of anything that is not a validation failure.
func toHTTPError(ctx context.Context, err error, fallback string) error {
	if errors.Is(err, apperrors.ErrValidation) {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: apperrors.UserMessage(err, fallback),
		}
	}

	logger.FromContext(ctx).Error("request failed",
		"err", err,
		"provider_error", errors.Is(err, apperrors.ErrProvider),
		"malformed_response", errors.Is(err, apperrors.ErrMalformedResponse),
		"malformed_json", errors.Is(err, apperrors.ErrMalformedJSON),
	)
	return requestError{
		Status:  http.StatusInternalServerError,
		Message: fallback,
	}
}

func printStartupBanner(w io.Writer, port int) {
	host := "127.0.0.1"
	fmt.Fprintln(w)
	fmt.Fprintln(w, "mom-assistant ready")
	fmt.Fprintf(w, "Listening on http://%s:%d\n", host, port)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  GET  /health")
	fmt.Fprintln(w, "  POST /api/generate")
	fmt.Fprintln(w, "  POST /api/request")
	fmt.Fprintln(w, "  POST /generate-recipe")
	fmt.Fprintf(w, "Example:\n  curl http://%s:%d/api/generate -H 'Content-Type: application/json' -d '{\"englishText\":\"Can you finish the dress by Friday?\",\"momInput\":\"可以\"}'\n\n", host, port)
}
