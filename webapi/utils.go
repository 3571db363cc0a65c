package webapi

import (
	"errors"

	"github.com/communitybank/corebank/pkg/domain"
	authsvc "github.com/communitybank/corebank/pkg/service/auth"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`     // A URI reference that identifies the problem type
	Title    string `json:"title"`              // Short, human-readable summary
	Status   int    `json:"status"`             // HTTP status code
	Detail   string `json:"detail,omitempty"`   // Human-readable explanation
	Instance string `json:"instance,omitempty"` // URI reference that identifies the specific occurrence
	Errors   any    `json:"errors,omitempty"`   // Optional: additional error details
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// DomainErrorJSON maps a service error onto an RFC 9457 response.
func DomainErrorJSON(c *fiber.Ctx, err error) error {
	return ErrorResponseJSON(c, ErrorToStatusCode(err), titleFor(err), err.Error())
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
// The unauthorized check runs first because it wraps the validation
// sentinel.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, authsvc.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrFraudSuspicion):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrLimitExceeded):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrState):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func titleFor(err error) string {
	switch {
	case errors.Is(err, authsvc.ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, domain.ErrFraudSuspicion):
		return "Transaction Flagged"
	case errors.Is(err, domain.ErrNotFound):
		return "Not Found"
	case errors.Is(err, domain.ErrLimitExceeded):
		return "Limit Exceeded"
	case errors.Is(err, domain.ErrState):
		return "Invalid State"
	case errors.Is(err, domain.ErrValidation):
		return "Validation Failed"
	default:
		return "Internal Server Error"
	}
}

// BindAndValidate parses the request body and validates it using go-playground/validator.
// Returns a pointer to the struct (populated), or writes an error response and returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return nil, ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
	}
	return &input, nil
}

// CurrentCustomerID extracts the authenticated customer from the JWT the
// middleware attached to the request.
func CurrentCustomerID(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", authsvc.ErrUnauthorized
	}
	return authsvc.CustomerIDFromToken(token)
}
