package httpserver

import (
	"errors"
	"net/http"

	"fluxo-storefront/internal/domain"
	authsvc "fluxo-storefront/internal/service/auth"
	checkoutsvc "fluxo-storefront/internal/service/checkout"
	"fluxo-storefront/internal/validate"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var fieldErr *validate.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, checkoutsvc.ErrInvalidMethod),
		errors.Is(err, authsvc.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, checkoutsvc.ErrNotIdle),
		errors.Is(err, checkoutsvc.ErrNotTerminal),
		errors.Is(err, checkoutsvc.ErrEmptyCart):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var fieldErr *validate.FieldError
	if errors.As(err, &fieldErr) {
		body = gin.H{"error": fieldErr.Message, "field": fieldErr.Field, "message": fieldErr.Message}
	}
	if status == http.StatusInternalServerError {
		h.logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		body = gin.H{"error": "internal error"}
	}
	c.JSON(status, body)
}
