// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/apparel-store/internal/config"
	"github.com/your-org/apparel-store/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": formatMoney,
	"date": func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
	"upper": strings.ToUpper,
}).Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	company config.CompanyConfig
	binPath string
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(company config.CompanyConfig, invoice config.InvoiceConfig) *Service {
	return &Service{
		company: company,
		binPath: invoice.WkhtmltopdfPath,
		now:     time.Now,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	Coupon        *order.CouponSnapshot
	Company       config.CompanyConfig
}

// RenderHTML renders the invoice markup for an order
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", strings.TrimPrefix(o.OrderNumber, "ORD-")),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Order:         o,
		Coupon:        o.AppliedCoupon(),
		Company:       s.company,
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateInvoice renders the invoice and converts it with wkhtmltopdf
func (s *Service) GenerateInvoice(o *order.Order) ([]byte, error) {
	htmlContent, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	if s.binPath != "" {
		wkhtmltopdf.SetPath(s.binPath)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

func formatMoney(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 30px; border-bottom: 2px solid #eee; padding-bottom: 20px; overflow: hidden; }
        .company-info { float: left; width: 55%; }
        .invoice-info { float: right; width: 40%; text-align: right; }
        .invoice-title { font-size: 28px; font-weight: bold; color: #2563eb; margin-bottom: 10px; }
        .section-title { font-size: 16px; font-weight: bold; margin-bottom: 10px; color: #374151; }
        .items-table { width: 100%; border-collapse: collapse; margin: 30px 0; }
        .items-table th, .items-table td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items-table th { background-color: #f8f9fa; }
        .num { text-align: right !important; }
        .totals { float: right; width: 320px; }
        .totals table { width: 100%; border-collapse: collapse; }
        .totals td { padding: 8px; border-bottom: 1px solid #eee; }
        .totals .label { text-align: right; font-weight: bold; }
        .totals .amount { text-align: right; width: 120px; }
        .total-row td { font-size: 18px; font-weight: bold; border-top: 2px solid #333; }
        .status-badge { padding: 4px 8px; border-radius: 4px; font-size: 12px; font-weight: bold; }
        .status-paid { background-color: #dcfce7; color: #166534; }
        .status-pending { background-color: #fef3c7; color: #92400e; }
        .footer { clear: both; margin-top: 50px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-info">
            <h1>{{.Company.Name}}</h1>
            <p>{{.Company.Address}}</p>
            {{if .Company.GSTIN}}<p>GSTIN: {{.Company.GSTIN}}</p>{{end}}
            <p>{{.Company.Email}} {{.Company.Phone}}</p>
        </div>
        <div class="invoice-info">
            <div class="invoice-title">TAX INVOICE</div>
            <p><strong>Invoice #:</strong> {{.InvoiceNumber}}</p>
            <p><strong>Invoice Date:</strong> {{.InvoiceDate}}</p>
            <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
            <p><strong>Order Date:</strong> {{date .Order.CreatedAt}}</p>
        </div>
    </div>

    <div class="section-title">Ship To:</div>
    {{range .Order.ShippingAddress.Lines}}<p>{{.}}</p>{{end}}
    <p>Email: {{.Order.Email}}</p>

    <p>
        <strong>Payment:</strong> {{upper (printf "%s" .Order.PaymentMethod)}}
        <span class="status-badge {{if eq (printf "%s" .Order.PaymentStatus) "paid"}}status-paid{{else}}status-pending{{end}}">{{.Order.PaymentStatus}}</span>
    </p>

    <table class="items-table">
        <thead>
            <tr>
                <th>Item</th>
                <th>Size</th>
                <th>Color</th>
                <th>SKU</th>
                <th class="num">Qty</th>
                <th class="num">Unit Price</th>
                <th class="num">Total</th>
            </tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td><strong>{{.Name}}</strong></td>
                <td>{{.Size}}</td>
                <td>{{.Color}}</td>
                <td>{{.SKU}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .Price}}</td>
                <td class="num">{{money .LineTotal}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <div class="totals">
        <table>
            <tr><td class="label">Subtotal:</td><td class="amount">{{money .Order.Subtotal}}</td></tr>
            {{if .Coupon}}
            <tr><td class="label">Discount ({{.Coupon.Code}}):</td><td class="amount">-{{money .Order.Discount}}</td></tr>
            {{end}}
            <tr><td class="label">CGST:</td><td class="amount">{{money .Order.CGST}}</td></tr>
            <tr><td class="label">SGST:</td><td class="amount">{{money .Order.SGST}}</td></tr>
            <tr><td class="label">Total Tax:</td><td class="amount">{{money .Order.TotalTax}}</td></tr>
            <tr class="total-row"><td class="label">Grand Total:</td><td class="amount">{{money .Order.GrandTotal}}</td></tr>
        </table>
    </div>

    <div class="footer">
        <p>Thank you for shopping with {{.Company.Name}}!</p>
        <p>Questions about this invoice? Contact us at {{.Company.Email}}{{if .Company.Phone}} or {{.Company.Phone}}{{end}}</p>
    </div>
</body>
</html>
`
