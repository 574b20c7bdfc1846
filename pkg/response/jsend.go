// Package response writes JSend envelopes.
package response

import "github.com/gofiber/fiber/v2"

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Message is the data of fail and error envelopes.
type Message struct {
	Message string `json:"message"`
}

// Success writes a success envelope. data may be nil.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Status: StatusSuccess, Data: data})
}

// Fail writes a fail envelope for rejected client input.
func Fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Status: StatusFail, Data: Message{Message: message}})
}

// Error writes an error envelope for server-side failures.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{Status: StatusError, Data: Message{Message: message}})
}
