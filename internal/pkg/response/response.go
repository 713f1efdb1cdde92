package response

import "github.com/gin-gonic/gin"

// Every handler replies with the same envelope: {"success":true,"data":...}
// on the happy path, {"success":false,"error":{...}} otherwise. Codes are
// short upper-snake strings such as BOOKING_CONFLICT or VALIDATION_ERROR.

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": ErrorBody{Code: code, Message: message}})
}

// ErrorWithDetails carries per-field validation failures alongside the code.
func ErrorWithDetails(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, gin.H{"success": false, "error": ErrorBody{Code: code, Message: message, Details: details}})
}
