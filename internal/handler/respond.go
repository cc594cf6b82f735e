package handler

import "github.com/labstack/echo/v4"

// Response messages. Successes and business-rule failures share one
// envelope shape: {"success": msg} or {"error": msg}.
const (
	msgWelcome           = "%s, welcome to Money For Rabbit!"
	msgNameChanged       = "username has been changed to %s"
	msgEmailNotConfirmed = "this account has not confirmed its email yet"
	// One message for wrong password and unknown email, so responses
	// cannot be used to probe which addresses are registered.
	msgAccountMismatch  = "check your email and password"
	msgEmailDuplicated  = "this email is already registered"
	msgTokenReuse       = "a refresh token cannot be used more than once"
	msgForbidden        = "permission denied"
	msgUserNotFound     = "user not found"
	msgMessageNotFound  = "message not found"
	msgInvalidBody      = "invalid request body"
	msgInvalidRequest   = "invalid request"
	msgSelfOnlyMessages = "only the owner can read their messages"
	msgMessagesClosed   = "messages can only be read after the opening date"
	msgInternal         = "the request could not be processed due to a server error"
)

// Success writes the uniform success envelope.
func Success(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": msg})
}

// Fail writes the uniform failure envelope.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}
