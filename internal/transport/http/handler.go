package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

// Handler serves mock API routes, the scripted chat stream and raw
// fixtures.
type Handler struct {
	router      *mock.Router
	source      stream.Source
	fixtures    fixture.Store
	apiPrefix   string
	fixtureRoot string
	logger      *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(router *mock.Router, source stream.Source, fixtures fixture.Store, apiPrefix, fixtureRoot string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		router:      router,
		source:      source,
		fixtures:    fixtures,
		apiPrefix:   apiPrefix,
		fixtureRoot: fixtureRoot,
		logger:      logger,
	}
}

// RegisterRoutes registers the mock routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST(h.apiPrefix+stream.ChatPath, h.Chat)
	e.Any(h.apiPrefix+"/*", h.Dispatch)
	e.GET(h.fixtureRoot+"/*", h.Fixture)
	e.GET("/health", h.Health)

	for _, rule := range h.router.Rules() {
		h.logger.Info("mock rule registered",
			zap.String("rule", rule.Name),
			zap.String("method", rule.Method),
			zap.String("pattern", rule.Pattern.String()),
		)
	}
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Dispatch answers an API request from the first matching mock rule.
// ANY /api/v1/*
func (h *Handler) Dispatch(c echo.Context) error {
	req := c.Request()
	rule, ok := h.router.MatchRequest(req)
	if !ok {
		return c.JSONBlob(http.StatusNotFound, domain.ErrorEnvelope(http.StatusNotFound, domain.ErrNoMockRule.Error()))
	}

	body, err := h.router.BuildResponse(req.Context(), rule, req)
	if err != nil {
		var loadErr *domain.FixtureLoadError
		if errors.As(err, &loadErr) {
			return c.JSONBlob(http.StatusNotFound, domain.ErrorEnvelope(http.StatusNotFound, loadErr.Error()))
		}
		return c.JSONBlob(http.StatusInternalServerError, domain.ErrorEnvelope(http.StatusInternalServerError, err.Error()))
	}
	return c.JSONBlob(http.StatusOK, body)
}

// Fixture serves a raw fixture file.
// GET /mock/*
func (h *Handler) Fixture(c echo.Context) error {
	data, err := h.fixtures.Load(c.Request().Context(), c.Param("*"))
	if err != nil {
		return c.JSONBlob(http.StatusNotFound, domain.ErrorEnvelope(http.StatusNotFound, err.Error()))
	}
	return c.JSONBlob(http.StatusOK, data)
}

// Chat streams the scripted reply as server-sent events, one JSON string
// per event.
// POST /api/v1/assistant/chat?session={id}/{MODE}
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return c.JSONBlob(http.StatusBadRequest, domain.ErrorEnvelope(http.StatusBadRequest, "invalid request body"))
	}
	if req.Message == "" {
		return c.JSONBlob(http.StatusBadRequest, domain.ErrorEnvelope(http.StatusBadRequest, domain.ErrEmptyMessage.Error()))
	}

	src, err := h.source.Open(ctx, stream.Request{Message: req.Message, SessionID: c.QueryParam("session")})
	if err != nil {
		h.logger.Error("failed to open scripted stream", zap.Error(err))
		return c.JSONBlob(http.StatusInternalServerError, domain.ErrorEnvelope(http.StatusInternalServerError, err.Error()))
	}
	defer src.Close()

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)
	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Client disconnected
			return nil
		}

		data, err := json.Marshal(chunk)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
