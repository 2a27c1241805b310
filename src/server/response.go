package server

import (
	"net/http"

	"galleryserv/src/errs"
	"galleryserv/src/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const unexpectedMessage = "An unexpected error occurred"

// abortWithError writes the {error, message} body for err. Unclassified and
// storage failures become a 500 naming the operation; their cause is logged
// and never sent to the client.
func abortWithError(c *gin.Context, operation string, err error) {
	status, category, message := describe(err)
	if status == http.StatusInternalServerError {
		category = "Failed to " + operation
		message = unexpectedMessage
		logger.FromContext(c.Request.Context()).ErrorWith("request failed", err,
			map[string]interface{}{"operation": operation})
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: category, Message: message})
}

func describe(err error) (int, string, string) {
	message := errs.MessageOf(err)
	switch errs.KindOf(err) {
	case errs.KindUnauthorized:
		return http.StatusUnauthorized, "Unauthorized", message
	case errs.KindTokenExpired:
		return http.StatusForbidden, "Token expired", message
	case errs.KindInvalidToken:
		return http.StatusForbidden, "Invalid token", message
	case errs.KindAuthenticationFailed:
		return http.StatusForbidden, "Authentication failed", message
	case errs.KindBadRequest, errs.KindInvalidName:
		return http.StatusBadRequest, "Bad request", message
	case errs.KindConflict:
		return http.StatusConflict, "Conflict", message
	case errs.KindForbidden:
		return http.StatusForbidden, "Forbidden", message
	case errs.KindNotFound:
		return http.StatusNotFound, "Not found", message
	default:
		return http.StatusInternalServerError, "Internal server error", unexpectedMessage
	}
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "Not found",
		Message: "The requested resource was not found",
	})
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{
		Error:   "Method not allowed",
		Message: "The HTTP method is not allowed for this endpoint",
	})
}

func recovered(c *gin.Context, err any) {
	logger.FromContext(c.Request.Context()).Errorf("internal server error: %v", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal server error",
		Message: unexpectedMessage,
	})
}
