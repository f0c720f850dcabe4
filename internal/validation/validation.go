// Package validation provides input validation helpers for the Kollabary API.
package validation

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20

// MaxStringLength is the maximum length for free-text fields
const MaxStringLength = 10000

// idRegex matches our prefixed random IDs (e.g. col_a1b2..., inf_...) and
// plain UUID-format IDs.
var idRegex = regexp.MustCompile(`^([a-z]{3}_[a-f0-9]{24}|[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidID checks if a string is a well-formed entity ID
func IsValidID(id string) bool {
	return idRegex.MatchString(id)
}

// IsValidRating checks a review rating (whole stars, 1-5)
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// SanitizeString trims whitespace, strips null bytes and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.ReplaceAll(s, "\x00", "")
	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Field + ": " + e[0].Message
}

// Validate runs the given validators and collects their errors
func Validate(validators ...func() *ValidationError) ValidationErrors {
	var errors ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errors = append(errors, *err)
		}
	}
	return errors
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// MinLength checks if a field is shorter than min length (empty allowed; pair
// with Required for mandatory fields)
func MinLength(field, value string, min int) func() *ValidationError {
	return func() *ValidationError {
		if value != "" && len(value) < min {
			return &ValidationError{Field: field, Message: "is too short"}
		}
		return nil
	}
}
