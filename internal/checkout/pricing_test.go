package checkout

import (
	"testing"

	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func ptr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func entry(name, price string, stock, qty int) Entry {
	id := uuid.New()
	return Entry{
		ProductID: id,
		Product:   &models.Product{ID: id, Name: name, Price: dec(price), Stock: stock},
		Quantity:  qty,
	}
}

func TestSubtotal(t *testing.T) {
	got, err := Subtotal([]Entry{entry("A", "100", 5, 2), entry("B", "0.335", 9, 3)})
	require.NoError(t, err)
	require.True(t, got.Equal(dec("201.005")), "no per-line rounding, got %s", got)

	_, err = Subtotal(nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmptyCart))

	_, err = Subtotal([]Entry{entry("Soap", "10", 1, 2)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	require.Equal(t, map[string]string{"product": "Soap"}, pkgerrors.As(err).Details())

	_, err = Subtotal([]Entry{{ProductID: uuid.New(), Quantity: 1}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock))
	require.Equal(t, map[string]string{"product": "Unknown"}, pkgerrors.As(err).Details())
}

func TestSettle(t *testing.T) {
	cases := []struct {
		name       string
		subtotal   string
		discount   string
		method     enums.PaymentMethod
		tendered   *decimal.Decimal
		total      string
		amountPaid string
		change     string
	}{
		{"cash with change", "200", "0", enums.PaymentMethodCash, ptr("250"), "200", "250", "50"},
		{"percent promo", "200", "20", enums.PaymentMethodCash, ptr("180"), "180", "180", "0"},
		{"fixed promo capped", "50", "100", enums.PaymentMethodCard, nil, "0", "0", "0"},
		{"total rounds half away from zero", "10.005", "0", enums.PaymentMethodUPI, nil, "10.01", "10.01", "0"},
		{"non cash ignores tender", "99.99", "0", enums.PaymentMethodWallet, ptr("500"), "99.99", "99.99", "0"},
		{"change rounded", "10", "0", enums.PaymentMethodCash, ptr("12.345"), "10", "12.345", "2.35"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Settle(dec(tc.subtotal), dec(tc.discount), tc.method, tc.tendered)
			require.NoError(t, err)
			require.True(t, got.Total.Equal(dec(tc.total)), "total %s", got.Total)
			require.True(t, got.AmountPaid.Equal(dec(tc.amountPaid)), "paid %s", got.AmountPaid)
			require.True(t, got.ChangeDue.Equal(dec(tc.change)), "change %s", got.ChangeDue)
			require.False(t, got.Discount.GreaterThan(got.Subtotal))
		})
	}
}

func TestSettleRejectsShortCash(t *testing.T) {
	_, err := Settle(dec("200"), decimal.Zero, enums.PaymentMethodCash, ptr("199.99"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientPayment))

	_, err = Settle(dec("200"), decimal.Zero, enums.PaymentMethodCash, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientPayment))

	got, err := Settle(dec("50"), dec("100"), enums.PaymentMethodCash, ptr("0"))
	require.NoError(t, err)
	require.True(t, got.Total.IsZero())
}
