package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error translates a domain error to its HTTP status and writes the
// structured error body. No raw internals cross the boundary.
func Error(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
}
