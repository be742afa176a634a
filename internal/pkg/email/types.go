// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeOrderStatusUpdate EmailType = "order_status_update"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string
	UserEmail string
	Support   string
	Year      int
}

// OrderConfirmationData contains data for order confirmation email
type OrderConfirmationData struct {
	EmailTemplateData
	OrderNumber     string
	OrderDate       string
	PaymentMethod   string
	PaymentStatus   string
	Items           []OrderItem
	Subtotal        string
	CouponCode      string
	Discount        string
	CGST            string
	SGST            string
	GrandTotal      string
	ShippingAddress []string
}

// OrderItem represents an item in the order
type OrderItem struct {
	Name     string
	Size     string
	Color    string
	Quantity int
	Total    string
}

// OrderStatusUpdateData contains data for order status updates
type OrderStatusUpdateData struct {
	EmailTemplateData
	OrderNumber string
	Status      string
}

// GetBaseTemplateData returns common template data
func GetBaseTemplateData(siteName, support, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		UserEmail: userEmail,
		Support:   support,
		Year:      time.Now().Year(),
	}
}
