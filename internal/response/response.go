package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Error codes shared by handlers
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeTooLarge   = "PAYLOAD_TOO_LARGE"
	ErrCodeImport     = "IMPORT_FAILED"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// AppError is a service error carrying a machine-readable code
type AppError struct {
	Code    string
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
} // @name ErrorResponse

// SendError writes an error body and aborts the request
func SendError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}
