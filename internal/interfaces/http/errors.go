package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ultronjnr/oversightglobal-sub000/internal/domain/apperror"
)

// statusFor maps a failure kind to its HTTP status
func statusFor(err error) int {
	kind, ok := apperror.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case apperror.KindValidation, apperror.KindNoItemsSelected:
		return http.StatusBadRequest
	case apperror.KindForbidden, apperror.KindOrganizationMismatch, apperror.KindOrganizationMissing:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidTransition,
		apperror.KindAlreadyResolved,
		apperror.KindDuplicateQuote,
		apperror.KindDuplicateInvoice,
		apperror.KindConcurrentModification,
		apperror.KindRequestNotAccepted:
		return http.StatusConflict
	case apperror.KindSupplierNotVerified:
		return http.StatusUnprocessableEntity
	case apperror.KindSplitFailed:
		if errors.Is(err, apperror.ErrConcurrentModification) {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service failure. Internal causes are logged, never returned.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)

	resp := Response{Success: false}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		resp.Code = string(appErr.Kind)
		resp.Fields = appErr.Fields
		resp.Error = appErr.Message
		if resp.Error == "" {
			resp.Error = string(appErr.Kind)
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		resp.Error = "internal error"
		if resp.Code == "" {
			resp.Code = string(apperror.KindPersistence)
		}
	}

	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
		Code:    string(apperror.KindValidation),
	})
}
