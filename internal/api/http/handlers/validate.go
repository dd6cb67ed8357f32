package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/manocorp/account-service/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseAndValidate decodes the request body into out and checks its shape.
func parseAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(out); err != nil {
		details := map[string]any{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return errorutil.NewValidationError("invalid payload", details)
	}
	return nil
}
