package orders

import (
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the receipt-ready view of a persisted order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	Number        string              `json:"number"`
	CashierID     *uuid.UUID          `json:"cashier_id,omitempty"`
	CashierName   string              `json:"cashier_name"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	PromoCode     *string             `json:"promo_code,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	ChangeDue     decimal.Decimal     `json:"change_due"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Items         []OrderItemDTO      `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type OrderItemDTO struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderList is one page of the admin order history.
type OrderList struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:            o.ID,
		Number:        o.Number(),
		CashierID:     o.CashierID,
		CashierName:   o.CashierName,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		PromoCode:     o.PromoCode,
		Total:         o.Total,
		AmountPaid:    o.AmountPaid,
		ChangeDue:     o.ChangeDue,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		})
	}
	return dto
}
