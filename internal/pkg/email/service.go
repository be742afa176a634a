// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/order"
)

var templates = map[EmailType]*template.Template{
	EmailTypeOrderConfirmation: template.Must(template.New("order_confirmation").Parse(orderConfirmationTemplate)),
	EmailTypeOrderStatusUpdate: template.Must(template.New("order_status_update").Parse(orderStatusTemplate)),
}

// EmailService sends order notifications
type EmailService struct {
	config  config.EmailConfig
	company config.CompanyConfig
	logger  *logrus.Logger
	send    func(email *Email) error
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig, company config.CompanyConfig, logger *logrus.Logger) *EmailService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &EmailService{
		config:  cfg,
		company: company,
		logger:  logger,
	}
	s.send = s.sendSMTPEmail
	return s
}

// Enabled reports whether notifications are switched on
func (s *EmailService) Enabled() bool {
	return s.config.Enabled
}

// SendEmail sends an email using SMTP. Disabled services drop mail silently.
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if !s.config.Enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.send(email)
}

// SendOrderConfirmationEmail sends order confirmation email
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, o *order.Order) error {
	data := OrderConfirmationData{
		EmailTemplateData: GetBaseTemplateData(s.company.Name, s.company.Email, o.Email),
		OrderNumber:       o.OrderNumber,
		OrderDate:         o.CreatedAt.Format("January 2, 2006"),
		PaymentMethod:     strings.ToUpper(string(o.PaymentMethod)),
		PaymentStatus:     string(o.PaymentStatus),
		Subtotal:          o.Subtotal.StringFixed(2),
		Discount:          o.Discount.StringFixed(2),
		CGST:              o.CGST.StringFixed(2),
		SGST:              o.SGST.StringFixed(2),
		GrandTotal:        o.GrandTotal.StringFixed(2),
		ShippingAddress:   o.ShippingAddress.Lines(),
	}
	if c := o.AppliedCoupon(); c != nil {
		data.CouponCode = c.Code
	}
	for _, item := range o.Items {
		data.Items = append(data.Items, OrderItem{
			Name:     item.Name,
			Size:     item.Size,
			Color:    item.Color,
			Quantity: item.Quantity,
			Total:    item.LineTotal.StringFixed(2),
		})
	}

	htmlContent, err := renderTemplate(EmailTypeOrderConfirmation, data)
	if err != nil {
		return fmt.Errorf("failed to render order confirmation template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Order Confirmation - %s", o.OrderNumber),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderConfirmation,
	})
}

// SendOrderStatusUpdateEmail tells the customer an order moved to a new status
func (s *EmailService) SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order) error {
	data := OrderStatusUpdateData{
		EmailTemplateData: GetBaseTemplateData(s.company.Name, s.company.Email, o.Email),
		OrderNumber:       o.OrderNumber,
		Status:            string(o.Status),
	}

	htmlContent, err := renderTemplate(EmailTypeOrderStatusUpdate, data)
	if err != nil {
		return fmt.Errorf("failed to render order status update template: %w", err)
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{o.Email},
		Subject:     fmt.Sprintf("Order %s is %s", o.OrderNumber, o.Status),
		HTMLContent: htmlContent,
		Type:        EmailTypeOrderStatusUpdate,
	})
}

// SendAsync sends in the background; failures are logged, never returned
func (s *EmailService) SendAsync(name string, fn func(ctx context.Context) error) {
	if !s.config.Enabled {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("email", name).Errorf("Email panic: %v", r)
			}
		}()
		if err := fn(context.Background()); err != nil {
			s.logger.WithError(err).WithField("email", name).Error("Failed to send email")
		}
	}()
}

// renderTemplate renders an email template with data
func renderTemplate(emailType EmailType, data interface{}) (string, error) {
	tmpl, exists := templates[emailType]
	if !exists {
		return "", fmt.Errorf("template %s not found", emailType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", emailType, err)
	}
	return buf.String(), nil
}

const orderConfirmationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Thank you for your order!</h2>
    <p>Your order <strong>{{.OrderNumber}}</strong> was placed on {{.OrderDate}}.</p>
    <table style="border-collapse: collapse; width: 100%;">
        {{range .Items}}
        <tr>
            <td style="padding: 6px 0;">{{.Name}} ({{.Size}}, {{.Color}}) x {{.Quantity}}</td>
            <td style="text-align: right;">Rs. {{.Total}}</td>
        </tr>
        {{end}}
    </table>
    <p>Subtotal: Rs. {{.Subtotal}}</p>
    {{if .CouponCode}}<p>Discount ({{.CouponCode}}): -Rs. {{.Discount}}</p>{{end}}
    <p>CGST: Rs. {{.CGST}} &middot; SGST: Rs. {{.SGST}}</p>
    <p><strong>Grand Total: Rs. {{.GrandTotal}}</strong></p>
    <p>Payment: {{.PaymentMethod}} ({{.PaymentStatus}})</p>
    <h4>Shipping to</h4>
    {{range .ShippingAddress}}<div>{{.}}</div>{{end}}
    <hr>
    <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}{{if .Support}} &middot; {{.Support}}{{end}}</p>
</body>
</html>
`

const orderStatusTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Order update</h2>
    <p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
    <hr>
    <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}</p>
</body>
</html>
`
