package api

import (
	"errors"
	"net/http"

	"tombola/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// errorKindInternal is reported for anything that is not a domain error
const errorKindInternal = "INTERNAL"

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// statusForKind maps a domain error kind to its HTTP status
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindUnauthorized:
		return http.StatusUnauthorized
	case models.ErrorKindForbidden:
		return http.StatusForbidden
	case models.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// writeError renders err as the JSON error body and aborts the request
func writeError(c *gin.Context, err error) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		c.AbortWithStatusJSON(statusForKind(domainErr.Kind), errorResponse{
			Error: errorBody{Kind: string(domainErr.Kind), Message: domainErr.Error()},
		})
		return
	}

	log.WithFields(log.Fields{
		"requestId": requestIDFrom(c),
		"method":    c.Request.Method,
		"path":      c.FullPath(),
		"error":     err,
	}).Error("Request failed")

	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Error: errorBody{Kind: errorKindInternal, Message: "internal server error"},
	})
}

func badRequest(c *gin.Context, format string, args ...any) {
	writeError(c, models.NewError(models.ErrorKindValidation, format, args...))
}

var errRouteNotFound = models.NewError(models.ErrorKindNotFound, "route not found")
