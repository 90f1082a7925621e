package handlers

import (
	"errors"
	"net/http"

	"tajriba/services/booking"
	"tajriba/utils"

	"github.com/gin-gonic/gin"
)

// statusForCode maps domain error codes to HTTP statuses. Both slot
// conflicts and lost optimistic-concurrency races surface as 409 so
// clients treat them uniformly as "state moved, re-read and retry".
func statusForCode(code booking.Code) int {
	switch code {
	case booking.CodeValidation:
		return http.StatusBadRequest
	case booking.CodeUnauthorized:
		return http.StatusForbidden
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeSlotUnavailable, booking.CodeConcurrentModification, booking.CodeInvalidTransition:
		return http.StatusConflict
	case booking.CodePaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	var domainErr *booking.Error
	if errors.As(err, &domainErr) {
		c.JSON(statusForCode(domainErr.Code), utils.ErrorResponse{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
		})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}
