package controller

import (
	"errors"
	"strconv"
	"strings"

	"creatorpulse/client"
	"creatorpulse/middleware"
	"creatorpulse/models"
	"creatorpulse/services"
	"creatorpulse/state"
	"creatorpulse/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError turns any failure into the standard error toast. fallback is
// the user-facing message for upstream and unexpected failures.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var validationErr *utils.ValidationError
	var fetchErr *client.FetchError
	var parseErr *client.ParseError

	switch {
	case errors.As(err, &validationErr):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, validationErr.Message, nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, services.ErrReplyNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Reply not found", nil)
	case errors.Is(err, services.ErrAlreadyContacted):
		return utils.ErrorResponse(c, fiber.StatusConflict, "This creator has already been contacted for this client", nil)
	case errors.Is(err, services.ErrAlreadyProcessed):
		return utils.ErrorResponse(c, fiber.StatusConflict, "This reply has already been processed", nil)
	case errors.Is(err, state.ErrBusy):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Still working on the previous request", nil)
	case errors.Is(err, services.ErrNoRecipients):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Select at least one creator", nil)
	case errors.Is(err, services.ErrEmptyMessage):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Message cannot be empty", nil)
	case errors.Is(err, services.ErrInvalidStage):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown onboarding stage", nil)
	case errors.Is(err, services.ErrPasswordMismatch), errors.Is(err, services.ErrInvalidEmail):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, state.ErrNotSelected):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Select a template first", nil)
	case errors.Is(err, client.ErrUnauthorized):
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "Your session has expired. Please sign in again.", nil)
	case errors.As(err, &fetchErr):
		message := fallback
		if detail := fetchErr.Detail(); detail != "" {
			message = fallback + ": " + detail
		}
		logFailure(c, err, fallback)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, message, nil)
	case errors.As(err, &parseErr):
		logFailure(c, err, fallback)
		return utils.ErrorResponse(c, fiber.StatusBadGateway, fallback, nil)
	default:
		logFailure(c, err, fallback)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, fallback, nil)
	}
}

func logFailure(c *fiber.Ctx, err error, message string) {
	utils.LogError("request_failed", err, map[string]interface{}{
		"path":    c.Path(),
		"method":  c.Method(),
		"actor":   middleware.CurrentSession(c).Email,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.ErrorResponse(c, fiber.StatusBadRequest, message, nil)
}

// sessionAndPage returns the caller's credential and page state.
func sessionAndPage(c *fiber.Ctx) (*models.Session, *state.Page) {
	return middleware.CurrentSession(c), middleware.CurrentPage(c)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &utils.ValidationError{Message: "invalid " + name}
	}
	return id, nil
}

// optionalID reads an id query parameter. Empty or "all" means unset.
func optionalID(c *fiber.Ctx, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" || raw == "all" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &utils.ValidationError{Message: "invalid " + name}
	}
	return &id, nil
}

// optionalBool reads a tri-state query flag.
func optionalBool(c *fiber.Ctx, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" || raw == "all" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &utils.ValidationError{Message: "invalid " + name}
	}
	return &b, nil
}
