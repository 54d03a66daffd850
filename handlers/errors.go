package handlers

import (
	"errors"
	"log"
	"net/http"

	"mall-backend/models"
	"mall-backend/store"
	"mall-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps store and model errors onto HTTP statuses. Anything
// unrecognised is logged and reported as fallback with a 500.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(verr)})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrIdentityRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrEmptyCart),
		errors.Is(err, store.ErrUnknownPaymentStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInsufficientStock),
		errors.Is(err, store.ErrDuplicateTransaction),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrOrderAlreadyComplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
}
