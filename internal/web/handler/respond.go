package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/HealthDash/HealthDash/internal/api"
	"github.com/HealthDash/HealthDash/internal/rbac"
)

var validate = NewValidator() //nolint:gochecknoglobals

// NewValidator returns a validator that also knows the "role" tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return rbac.Role(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}

	return v
}

// Bind parses the JSON body of c into out and validates it. The returned
// error is a *fiber.Error ready to be handed back to fiber.
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid request body")
	}

	err := validate.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return &fiber.Error{Code: fiber.StatusUnprocessableEntity, Message: strings.Join(msgs, "; ")}
}

// Error writes an ErrorResponse with status.
func Error(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(api.ErrorResponse{Detail: detail})
}

// ErrorHandler renders fiber errors as ErrorResponse and hides everything
// else behind a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		body := api.ErrorResponse{Detail: fe.Message}
		if fe.Code == fiber.StatusUnprocessableEntity {
			body.ErrorCode = ErrorCodeValidation
		}

		return c.Status(fe.Code).JSON(body)
	}

	log.Error().Err(err).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Str("ip", c.IP()).
		Msg("unhandled exception")

	return c.Status(fiber.StatusInternalServerError).JSON(api.ErrorResponse{
		Detail:    "Internal server error",
		ErrorCode: ErrorCodeInternal,
	})
}
