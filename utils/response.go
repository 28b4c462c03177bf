package utils

import "github.com/gin-gonic/gin"

// Fixed user-facing messages for the error taxonomy. The UI keys off these
// strings, so handlers must not invent variants.
const (
	MsgBadRequest   = "There was an issue with your action"
	MsgUnauthorized = "You need to sign in to perform this action"
	MsgForbidden    = "You do not have sufficient permissions to perform this action"
	MsgNotFound     = "The requested resource could not be found"
	MsgConflict     = "This action has already been performed"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
