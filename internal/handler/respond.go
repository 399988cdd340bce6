package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Facumerino03/Finquik-back/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// errorDetails is the body of every non-validation error response.
type errorDetails struct {
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Details    string    `json:"details"`
	StatusCode int       `json:"statusCode"`
}

// validationDetails adds the per-field messages of a validation failure.
type validationDetails struct {
	errorDetails
	FieldErrors map[string]string `json:"fieldErrors"`
}

func newErrorDetails(c *gin.Context, status int, message string) errorDetails {
	return errorDetails{
		Timestamp:  time.Now().UTC(),
		Message:    message,
		Details:    c.Request.Method + " " + c.Request.URL.Path,
		StatusCode: status,
	}
}

// respondError translates a service failure to the transport response:
// NotFound -> 404, Duplicate -> 409, Validation -> 400 with field errors,
// anything else -> 500 without internal detail.
func respondError(c *gin.Context, err error) {
	var nf *apperr.NotFoundError
	var dup *apperr.DuplicateError
	var val *apperr.ValidationError

	switch {
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, newErrorDetails(c, http.StatusNotFound, nf.Error()))
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, newErrorDetails(c, http.StatusConflict, dup.Error()))
	case errors.As(err, &val):
		respondFieldErrors(c, val.Fields)
	default:
		slog.Error("unexpected error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err)
		c.JSON(http.StatusInternalServerError,
			newErrorDetails(c, http.StatusInternalServerError, "internal server error"))
	}
}

func respondFieldErrors(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, validationDetails{
		errorDetails: newErrorDetails(c, http.StatusBadRequest, "Validation Failed"),
		FieldErrors:  fields,
	})
}

// respondBindError turns a gin binding failure into the same validation
// shape the service layer produces.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[lowerFirst(fe.Field())] = bindingMessage(fe)
		}
		respondFieldErrors(c, fields)
		return
	}
	c.JSON(http.StatusBadRequest,
		newErrorDetails(c, http.StatusBadRequest, "malformed request body"))
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "can be up to " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
