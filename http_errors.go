package keygate

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// NewErrorHandler converts the error taxonomy into HTTP responses. Every
// failure yields `{message}` with the mapped status; diagnostic detail goes
// to the log, keyed by request id, and never into the body.
func NewErrorHandler(logger Logger, requestIDKey string) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			if fiberErr, ok := err.(*fiber.Error); ok {
				richErr = errors.New(fiberErr.Message, errors.CategoryInternal).
					WithCode(fiberErr.Code)
			} else {
				richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
					WithCode(errors.CodeInternal)
			}
		}

		requestID, _ := c.Locals(requestIDKey).(string)

		logger.Error("request failed",
			"message", richErr.Message,
			"category", richErr.Category,
			"status", richErr.Code,
			"route", c.Path(),
			"method", c.Method(),
			"request_id", requestID,
		)

		status := richErr.Code
		if status == 0 {
			status = fiber.StatusInternalServerError
		}

		return c.Status(status).JSON(fiber.Map{
			"message": richErr.Message,
		})
	}
}
