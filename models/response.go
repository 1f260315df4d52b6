package models

import "github.com/gofiber/fiber/v2"

// Success writes the uniform success envelope with a data payload.
func Success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// SuccessMessage writes the uniform success envelope with only a message.
func SuccessMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// SuccessList writes a success envelope for list endpoints, including the
// number of returned rows.
func SuccessList(c *fiber.Ctx, results int, data any) error {
	return c.JSON(fiber.Map{
		"success": true,
		"results": results,
		"data":    data,
	})
}
