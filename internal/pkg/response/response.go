// Package response renders the API envelope:
//
//	{"status":"success","message":...,"data":...,"metadata":{...}}
//	{"status":"error","error":{"message":...,"statusCode":...,"details":{...}}}
package response

import (
	"errors"

	"tabiconst-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	internalMessage = "Internal Server Error"
)

type Envelope struct {
	Status   string    `json:"status"`
	Message  string    `json:"message"`
	Data     any       `json:"data"`
	Metadata fiber.Map `json:"metadata"`
}

type ErrorEnvelope struct {
	Status string  `json:"status"`
	Error  Problem `json:"error"`
}

// Problem carries the reason a request failed. Details holds "reason" for
// policy denials and "field" for validation failures.
type Problem struct {
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Details    fiber.Map `json:"details"`
}

func send(c *fiber.Ctx, code int, message string, data any, meta fiber.Map) error {
	if meta == nil {
		meta = fiber.Map{}
	}
	return c.Status(code).JSON(Envelope{Status: statusSuccess, Message: message, Data: data, Metadata: meta})
}

// Success answers 200.
func Success(c *fiber.Ctx, message string, data any, meta fiber.Map) error {
	return send(c, fiber.StatusOK, message, data, meta)
}

// Created answers 201 with the new resource.
func Created(c *fiber.Ctx, message string, data any) error {
	return send(c, fiber.StatusCreated, message, data, nil)
}

// List answers 200 with items and their count in metadata. A nil slice is
// rendered as [].
func List[T any](c *fiber.Ctx, message string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return send(c, fiber.StatusOK, message, items, fiber.Map{"count": len(items)})
}

// Error answers code with the error envelope.
func Error(c *fiber.Ctx, message string, code int, details fiber.Map) error {
	if details == nil {
		details = fiber.Map{}
	}
	return c.Status(code).JSON(ErrorEnvelope{
		Status: statusError,
		Error:  Problem{Message: message, StatusCode: code, Details: details},
	})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// FromError renders a domain error with its HTTP status. Anything unrecognised
// is logged and reported as a 500 without leaking the cause.
func FromError(c *fiber.Ctx, err error) error {
	if reason, ok := domain.IsDenied(err); ok {
		return Error(c, err.Error(), fiber.StatusForbidden, fiber.Map{"reason": reason})
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		details := fiber.Map{}
		if verr.Field != "" {
			details["field"] = verr.Field
		}
		return Error(c, verr.Error(), fiber.StatusBadRequest, details)
	}
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return Unauthorized(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, domain.ErrConflict):
		return Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return Error(c, ferr.Message, ferr.Code, nil)
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return Error(c, internalMessage, fiber.StatusInternalServerError, nil)
}
