package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/temcen/estaterec/internal/validation"
)

// ValidationMiddleware rejects request bodies that do not match their JSON schema
// before they reach a handler.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

func (vm *ValidationMiddleware) ValidatePriceByLocation() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidatePriceByLocation)
}

func (vm *ValidationMiddleware) ValidateEstateSpec() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidateEstateSpec)
}

func (vm *ValidationMiddleware) validateRequestBody(validate func(interface{}) *validation.ValidationResult) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body")
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			sendValidationError(c, "EMPTY_BODY", "Request body is required")
			return
		}

		if !json.Valid(bodyBytes) {
			sendValidationError(c, "INVALID_JSON", "Request body must be valid JSON")
			return
		}

		result := validate(bodyBytes)
		if !result.Valid {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				errorObj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
				errorObj["requestId"] = uuid.New().String()
				errorObj["path"] = c.Request.URL.Path
			}

			c.AbortWithStatusJSON(http.StatusBadRequest, apiError)
			return
		}

		c.Next()
	}
}

func sendValidationError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
