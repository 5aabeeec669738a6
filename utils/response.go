package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Toast is the single user-visible notification mechanism of the portal.
type Toast struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// ErrorResponse creates a standardized error response carrying an error toast
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
		"toast":   Toast{Type: ToastError, Message: message},
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// SuccessToast is SuccessResponse plus a success toast.
func SuccessToast(data interface{}, message string) fiber.Map {
	response := SuccessResponse(data)
	response["toast"] = Toast{Type: ToastSuccess, Message: message}
	return response
}
