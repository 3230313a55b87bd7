// Package receipts renders printable receipts for completed orders.
package receipts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0

	colItem  = 95.0
	colQty   = 20.0
	colPrice = 30.0
	colTotal = 35.0
)

type orderReader interface {
	Get(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error)
}

// Renderer produces the downloadable receipt document.
type Renderer struct {
	orders orderReader
	cfg    config.ReceiptConfig
}

func NewRenderer(orders orderReader, cfg config.ReceiptConfig) (*Renderer, error) {
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	return &Renderer{orders: orders, cfg: cfg}, nil
}

// Render loads the order and writes its PDF receipt to w. The order number
// is returned for the download filename.
func (r *Renderer) Render(ctx context.Context, orderID uuid.UUID, w io.Writer) (string, error) {
	order, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if err := r.Write(order, w); err != nil {
		return "", err
	}
	return order.Number, nil
}

// Write renders an already loaded order.
func (r *Renderer) Write(order *orders.OrderDTO, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetTitle(fmt.Sprintf("Receipt %s", order.Number), true)
	pdf.SetCreator(r.cfg.StoreName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(r.cfg.StoreName+" - Receipt"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		"Order #: " + order.Number,
		"Date: " + order.CreatedAt.UTC().Format("2006-01-02 15:04"),
		"Cashier: " + order.CashierName,
		"Payment: " + strings.ToUpper(order.PaymentMethod.String()),
	} {
		pdf.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(colItem, lineHeight, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, lineHeight, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colPrice, lineHeight, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, lineHeight, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(colItem, lineHeight, tr(truncate(item.ProductName, 48)), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, lineHeight, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, lineHeight, r.amount(tr, item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, lineHeight, r.amount(tr, item.LineTotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	r.totalLine(pdf, tr, "Subtotal", order.Subtotal, false)
	if order.Discount.IsPositive() {
		label := "Discount"
		if order.PromoCode != nil {
			label += " (" + *order.PromoCode + ")"
		}
		r.totalLine(pdf, tr, label, order.Discount.Neg(), false)
	}
	r.totalLine(pdf, tr, "Total", order.Total, true)
	r.totalLine(pdf, tr, "Paid", order.AmountPaid, false)
	r.totalLine(pdf, tr, "Change", order.ChangeDue, false)

	if footer := strings.TrimSpace(r.cfg.Footer); footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, lineHeight, tr(footer), "", 1, "C", false, 0, "")
	}

	return pdf.Output(w)
}

func (r *Renderer) totalLine(pdf *fpdf.Fpdf, tr func(string) string, label string, value decimal.Decimal, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(colItem+colQty+colPrice, lineHeight, tr(label), "", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, lineHeight, r.amount(tr, value), "", 1, "R", false, 0, "")
}

// amount formats v with the currency symbol, encoded for the core fonts.
func (r *Renderer) amount(tr func(string) string, v decimal.Decimal) string {
	return tr(strings.TrimSpace(r.cfg.CurrencySymbol + " " + money.Format(v)))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
