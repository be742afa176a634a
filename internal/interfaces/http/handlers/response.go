// internal/interfaces/http/handlers/response.go
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/interfaces/http/middleware"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
)

// OrderNotifier sends order emails in the background
type OrderNotifier interface {
	SendOrderConfirmationEmail(ctx context.Context, o *order.Order) error
	SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order) error
	SendAsync(name string, fn func(ctx context.Context) error)
}

// respondError maps err onto the public error envelope. Expected outcomes
// keep their message; system failures are logged and masked.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			appErr = apperror.Wrap(apperror.CodeDependency, err, "request timed out")
		} else {
			appErr = apperror.Wrap(apperror.CodeInternal, err, "unexpected error")
		}
	}

	code := appErr.Code()
	meta := apperror.MetadataFor(code)

	if meta.Class == apperror.ClassSystem {
		fields := logrus.Fields{
			"code":       code,
			"request_id": c.GetString("request_id"),
			"path":       c.Request.URL.Path,
		}
		if userID, ok := middleware.GetUserIDFromContext(c); ok {
			fields["user_id"] = userID
		}
		logger.WithFields(fields).WithError(err).Error("Request failed")
		_ = c.Error(err)
		c.JSON(meta.HTTPStatus, gin.H{"error": meta.PublicMessage})
		return
	}

	body := gin.H{
		"error": appErr.Message(),
		"code":  code,
	}
	if details := appErr.Details(); details != nil {
		body["details"] = details
	}
	c.JSON(meta.HTTPStatus, body)
}

// respondBindError reports a malformed request body or query
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"code":    apperror.CodeValidation,
		"details": validationDetails(err),
	})
}

// bindOptionalJSON binds a JSON body that may be absent entirely
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// requireUserID reads the authenticated user, answering 401 when absent
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
			"code":  apperror.CodeUnauthorized,
		})
		return 0, false
	}
	return userID, true
}

// parseIDParam parses a positive numeric path parameter
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + label + " ID",
			"code":  apperror.CodeValidation,
		})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def, max int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}
