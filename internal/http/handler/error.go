package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cmsapi/internal/filter"
	"cmsapi/internal/http/middleware"
	"cmsapi/internal/repository"
	"cmsapi/internal/schema"
	"cmsapi/internal/service"
)

var (
	errInvalidID   = errors.New("invalid id format")
	errInvalidBody = errors.New("malformed request body")
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// classify maps an error returned by a handler to a status, a code and a
// message that is safe to show to clients.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, errInvalidID), errors.Is(err, service.ErrIDRequired):
		return fiber.StatusBadRequest, "INVALID_ID", "invalid id format"
	case errors.Is(err, filter.ErrInvalidFilter):
		return fiber.StatusBadRequest, "INVALID_FILTER", err.Error()
	case errors.Is(err, schema.ErrUnknownField):
		return fiber.StatusBadRequest, "UNKNOWN_FIELD", err.Error()
	case errors.Is(err, schema.ErrInvalidRelation):
		return fiber.StatusBadRequest, "INVALID_RELATION", err.Error()
	case errors.Is(err, errInvalidBody), errors.Is(err, repository.ErrInvalidData), errors.Is(err, service.ErrReaderNil):
		return fiber.StatusBadRequest, "BAD_REQUEST", "bad request"
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusBadRequest:
			return fe.Code, "BAD_REQUEST", "bad request"
		case fiber.StatusNotFound:
			return fe.Code, "NOT_FOUND", "resource not found"
		case fiber.StatusMethodNotAllowed:
			return fe.Code, "METHOD_NOT_ALLOWED", "method not allowed"
		case fiber.StatusRequestEntityTooLarge:
			return fe.Code, "PAYLOAD_TOO_LARGE", "payload too large"
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, "REQUEST_ERROR", fe.Message
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Server-side failures are logged with the request id; their details never reach the client.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		status, code, message := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return writeError(c, status, code, message)
	}
}
