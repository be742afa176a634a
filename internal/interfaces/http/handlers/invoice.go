// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/domain/order"
	"github.com/your-org/apparel-store/internal/pkg/apperror"
)

// InvoiceRenderer turns an order into a PDF
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) ([]byte, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orderService *order.Service
	renderer     InvoiceRenderer
	logger       logrus.FieldLogger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orderService *order.Service, renderer InvoiceRenderer, logger logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: orderService,
		renderer:     renderer,
		logger:       logger,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	// Scoped to the caller; other users' orders read as not found
	o, err := h.orderService.GetForUser(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	pdfBytes, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		respondError(c, h.logger, apperror.Wrap(apperror.CodeInternal, err, "failed to generate invoice"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
