package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greencycle/ewaste-BE/internal/auction"
	"github.com/greencycle/ewaste-BE/internal/db"
)

var ErrForumPostNotOwned = errors.New("requires the post author or an admin")

type FailedValidationResponse struct {
	Message         string            `json:"message"`
	FieldViolations []*FieldViolation `json:"field_violations"`
}

type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func fieldViolation(field string, err error) *FieldViolation {
	return &FieldViolation{
		Field:       field,
		Description: err.Error(),
	}
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func failedValidationError(violations []*FieldViolation) *FailedValidationResponse {
	return &FailedValidationResponse{
		Message:         "Invalid request parameters",
		FieldViolations: violations,
	}
}

// handleEngineError writes the HTTP response for an auction engine failure.
func handleEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auction.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err))
	case errors.Is(err, auction.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse(err))
	case errors.Is(err, auction.ErrInvalidState), errors.Is(err, auction.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse(err))
	}
}

// handleDBError writes the HTTP response for a plain store failure.
func handleDBError(c *gin.Context, err error) {
	if errors.Is(err, db.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, errorResponse(err))
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse(err))
}
