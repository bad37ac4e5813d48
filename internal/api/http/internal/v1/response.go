package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/badal-community/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, err error) {
	status, message := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, ErrorStruct{Message: message})
}

type ValidationErrorStruct struct {
	Message string            `json:"message"`
	Errors  []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorStruct{
			Message: "validation error",
			Errors:  out,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "malformed request body"})
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "url":
		return "Invalid URL format"
	case "min":
		return fmt.Sprintf("Minimum number of characters is %v", value)
	case "max":
		return fmt.Sprintf("Maximum number of characters is %v", value)
	case "phonenumber":
		return "Invalid phone number"
	case "oneof":
		return fmt.Sprintf("Value must be one of: %v", value)
	}
	return tag
}
