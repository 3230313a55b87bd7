package checkout

import (
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const unknownProductName = "Unknown"

// Entry is one cart quantity resolved against the catalog. Product is nil
// when the product was deleted after it was added to the cart.
type Entry struct {
	ProductID uuid.UUID
	Product   *models.Product
	Quantity  int
}

// Totals is the settled price of a cart.
type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	ChangeDue  decimal.Decimal
}

// Subtotal checks every entry against current stock and sums price times
// quantity. Lines are not rounded individually.
func Subtotal(entries []Entry) (decimal.Decimal, error) {
	if len(entries) == 0 {
		return decimal.Zero, emptyCartError()
	}
	subtotal := decimal.Zero
	for _, entry := range entries {
		if entry.Product == nil {
			return decimal.Zero, InsufficientStockError(unknownProductName)
		}
		if entry.Product.Stock < entry.Quantity {
			return decimal.Zero, InsufficientStockError(entry.Product.Name)
		}
		subtotal = subtotal.Add(entry.Product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return subtotal, nil
}

// Settle applies the discount and the tender rules of method.
// Cash needs tendered >= total; every other method is recorded as paid in
// full with no change.
func Settle(subtotal, discount decimal.Decimal, method enums.PaymentMethod, tendered *decimal.Decimal) (Totals, error) {
	discount = money.Clamp(discount, decimal.Zero, decimal.Max(subtotal, decimal.Zero))
	total := decimal.Max(decimal.Zero, money.Round(subtotal.Sub(discount)))

	totals := Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		Total:      total,
		AmountPaid: total,
		ChangeDue:  decimal.Zero,
	}
	if !method.RequiresTender() {
		return totals, nil
	}

	if tendered == nil || tendered.LessThan(total) {
		details := map[string]string{"total": money.Format(total)}
		if tendered != nil {
			details["cash_tendered"] = money.Format(*tendered)
		}
		return Totals{}, pkgerrors.New(pkgerrors.CodeInsufficientPayment, "cash tendered is less than the total due").
			WithDetails(details)
	}
	totals.AmountPaid = *tendered
	totals.ChangeDue = money.Round(tendered.Sub(total))
	return totals, nil
}

// InsufficientStockError names the product that cannot be fulfilled.
func InsufficientStockError(productName string) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for "+productName).
		WithDetails(map[string]string{"product": productName})
}

func emptyCartError() error {
	return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
}
