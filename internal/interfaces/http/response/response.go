package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/pkg/logger"
)

// ErrorBody is the JSON shape of every API error
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error writes err as an ErrorBody. Field validation failures become 422,
// ledger failures get the status of their kind and anything unknown is a
// 500 whose cause is logged but not returned.
func Error(c *gin.Context, err error) {
	var fieldErr *domainerrors.FieldValidationError
	if errors.As(err, &fieldErr) {
		ValidationError(c, fieldErr.Fields)
		return
	}

	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		if appErr = domainerrors.FromLedgerError(err); appErr == nil {
			appErr = domainerrors.InternalError(err)
		}
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("code", appErr.Code),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.JSON(appErr.Status, ErrorBody{
		Code:      appErr.Code,
		Message:   appErr.Message,
		RequestID: c.GetString("request_id"),
	})
}

// ValidationError sends field-level validation messages
func ValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorBody{
		Code:      domainerrors.CodeValidation,
		Message:   "validation failed",
		Errors:    fields,
		RequestID: c.GetString("request_id"),
	})
}
