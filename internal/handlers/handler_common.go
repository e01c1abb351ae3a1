package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillbooks/invoicing_app/internal/apperrors"
	"github.com/quillbooks/invoicing_app/internal/middleware"
)

// resolveAccountID checks that the account in the path is the one the token
// was issued for. A mismatch is forbidden, not a lookup failure.
func resolveAccountID(c *gin.Context) (string, bool) {
	authedAccountID, ok := middleware.GetAccountIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	pathAccountID := c.Param("accountID")
	if pathAccountID != authedAccountID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return "", false
	}
	return authedAccountID, true
}

// handleServiceError translates the service error taxonomy into HTTP codes.
// Internal details never leak; the caller supplies the generic 500 message.
func handleServiceError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var overpayment *apperrors.OverpaymentError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &overpayment):
		logger.Warn("Overpayment rejected", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "payment exceeds balance due",
			"invoiceID":  overpayment.InvoiceID,
			"requested":  overpayment.Requested,
			"balanceDue": overpayment.BalanceDue,
		})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflicting request", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.As(err, &appErr):
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	default:
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}
