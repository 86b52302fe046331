package utils

import (
	"github.com/gin-gonic/gin"

	"unistay-server/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response.
func WriteAndLogResponse(c *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(c, "info", "Returning response")
	c.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFields(c, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Error: *customErr,
	}
	c.JSON(statusCode, errorDto)
}
