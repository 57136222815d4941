package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"property-match-service/internal/app/session"
	"property-match-service/internal/domain"
	"property-match-service/internal/transport/httpserver/dto"
	"property-match-service/internal/validator"
)

// QueryDecoder reads and validates a session query from the request body.
type QueryDecoder[Q any] func(c *fiber.Ctx) (Q, error)

// errInvalidBody marks a body that could not be parsed at all.
var errInvalidBody = errors.New("invalid request body")

// DecodeMatchQuery decodes a dto.MatchRequest body into a domain.SearchQuery.
func DecodeMatchQuery(v *validator.Validator) QueryDecoder[domain.SearchQuery] {
	return func(c *fiber.Ctx) (domain.SearchQuery, error) {
		var req dto.MatchRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.SearchQuery{}, errInvalidBody
		}
		if err := v.Validate(&req); err != nil {
			return domain.SearchQuery{}, err
		}
		return req.ToQuery(), nil
	}
}

// DecodeProviderQuery decodes a dto.ProviderSearchRequest body into a
// domain.ServiceQuery.
func DecodeProviderQuery(v *validator.Validator) QueryDecoder[domain.ServiceQuery] {
	return func(c *fiber.Ctx) (domain.ServiceQuery, error) {
		var req dto.ProviderSearchRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.ServiceQuery{}, errInvalidBody
		}
		if err := v.Validate(&req); err != nil {
			return domain.ServiceQuery{}, err
		}
		return req.ToQuery(), nil
	}
}

// SessionHandler exposes one session registry over HTTP. Each session keeps
// a single result slot that only its latest request may write to.
type SessionHandler[Q any, I any] struct {
	registry *session.Registry[Q, I]
	decode   QueryDecoder[Q]
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler[Q any, I any](registry *session.Registry[Q, I], decode QueryDecoder[Q], logger *zap.Logger) *SessionHandler[Q, I] {
	return &SessionHandler[Q, I]{
		registry: registry,
		decode:   decode,
		logger:   logger.With(zap.String("registry", registry.Name())),
	}
}

// Register mounts the session routes on r.
func (h *SessionHandler[Q, I]) Register(r fiber.Router) {
	r.Post("/", h.Create)
	r.Get("/:id", h.Get)
	r.Delete("/:id", h.Dispose)
	r.Put("/:id/input", h.Input)
	r.Post("/:id/search", h.Search)
	r.Post("/:id/more", h.LoadMore)
	r.Delete("/:id/results", h.Clear)
}

// Create handles POST /
func (h *SessionHandler[Q, I]) Create(c *fiber.Ctx) error {
	id, _ := h.registry.Create()
	h.logger.Debug("session created", zap.String("session_id", id))

	return c.Status(fiber.StatusCreated).JSON(dto.SessionCreatedResponse{ID: id})
}

// Get handles GET /:id and returns the current snapshot.
func (h *SessionHandler[Q, I]) Get(c *fiber.Ctx) error {
	s, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	return c.JSON(s.Snapshot())
}

// Input handles PUT /:id/input. The search runs after the debounce window;
// poll Get for the result.
func (h *SessionHandler[Q, I]) Input(c *fiber.Ctx) error {
	s, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	q, err := h.decode(c)
	if err != nil {
		return badQuery(c, err)
	}

	if err := s.Input(q); err != nil {
		return h.respond(c, s.Snapshot(), err)
	}

	return c.Status(fiber.StatusAccepted).JSON(s.Snapshot())
}

// Search handles POST /:id/search and runs the query immediately.
func (h *SessionHandler[Q, I]) Search(c *fiber.Ctx) error {
	s, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	q, err := h.decode(c)
	if err != nil {
		return badQuery(c, err)
	}

	snap, err := s.Search(c.UserContext(), q)

	return h.respond(c, snap, err)
}

// LoadMore handles POST /:id/more.
func (h *SessionHandler[Q, I]) LoadMore(c *fiber.Ctx) error {
	s, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	snap, err := s.LoadMore(c.UserContext())

	return h.respond(c, snap, err)
}

// Clear handles DELETE /:id/results.
func (h *SessionHandler[Q, I]) Clear(c *fiber.Ctx) error {
	s, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	if err := s.Clear(); err != nil {
		return h.respond(c, s.Snapshot(), err)
	}

	return c.JSON(s.Snapshot())
}

// Dispose handles DELETE /:id.
func (h *SessionHandler[Q, I]) Dispose(c *fiber.Ctx) error {
	if !h.registry.Remove(c.Params("id")) {
		return sessionNotFound(c)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// respond maps a session result to a status code. Cancelled requests still
// answer with the snapshot; upstream failures carry it alongside a 502.
func (h *SessionHandler[Q, I]) respond(c *fiber.Ctx, snap session.Snapshot[Q, I], err error) error {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return c.JSON(snap)
	case errors.Is(err, session.ErrDisposed):
		return sessionNotFound(c)
	case errors.Is(err, session.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: "request superseded by a newer one",
			Code:  "SUPERSEDED",
		})
	default:
		h.logger.Warn("session request failed",
			zap.String("session_id", c.Params("id")),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(snap)
	}
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: "session not found",
		Code:  "SESSION_NOT_FOUND",
	})
}

func badQuery(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_ERROR",
			Details: verrs,
		})
	}

	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: err.Error(),
		Code:  "INVALID_BODY",
	})
}
