package promotions

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/mallbilling/pkg/db/dbtest"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDiscount(t *testing.T) {
	cases := []struct {
		name     string
		kind     enums.DiscountKind
		value    string
		subtotal string
		want     string
	}{
		{"percent", enums.DiscountKindPercent, "10", "200", "20"},
		{"percent rounds half up", enums.DiscountKindPercent, "12.5", "0.20", "0.03"},
		{"percent above 100 clamps", enums.DiscountKindPercent, "150", "80", "80"},
		{"fixed under subtotal", enums.DiscountKindFixed, "30", "200", "30"},
		{"fixed capped at subtotal", enums.DiscountKindFixed, "100", "50", "50"},
		{"zero subtotal", enums.DiscountKindFixed, "100", "0", "0"},
		{"unknown kind", enums.DiscountKind("bogo"), "10", "200", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Discount(tc.kind, d(tc.value), d(tc.subtotal))
			assert.True(t, got.Equal(d(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestEvaluate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePromoInput{Code: " save10 ", Kind: "percent", Value: d("10")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreatePromoInput{Code: "FLAT100", Kind: "fixed", Value: d("100")})
	require.NoError(t, err)

	got, err := svc.Evaluate(ctx, "Save10", d("200"))
	require.NoError(t, err)
	require.True(t, got.Equal(d("20")))

	again, err := svc.Evaluate(ctx, "SAVE10", d("200"))
	require.NoError(t, err)
	require.True(t, again.Equal(got))

	got, err = svc.Evaluate(ctx, "flat100", d("50"))
	require.NoError(t, err)
	require.True(t, got.Equal(d("50")))
}

func TestEvaluateRejectsUnknownInactiveAndExpired(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	inactive := false

	_, err := svc.Create(ctx, CreatePromoInput{Code: "OFF", Kind: "fixed", Value: d("5"), Active: &inactive})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreatePromoInput{Code: "OLD", Kind: "fixed", Value: d("5"), ExpiresAt: "2026-10-15"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreatePromoInput{Code: "TODAY", Kind: "fixed", Value: d("5"), ExpiresAt: "2026-10-16"})
	require.NoError(t, err)

	for _, code := range []string{"NOPE", "OFF", "OLD", ""} {
		_, err := svc.Evaluate(ctx, code, d("100"))
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidPromo), "%s -> %v", code, err)
	}

	got, err := svc.Evaluate(ctx, "today", d("100"))
	require.NoError(t, err)
	require.True(t, got.Equal(d("5")))
}

func TestCreateValidationAndConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	bad := []CreatePromoInput{
		{Code: "", Kind: "percent", Value: d("1")},
		{Code: "X", Kind: "bogo", Value: d("1")},
		{Code: "X", Kind: "fixed", Value: d("-1")},
		{Code: "X", Kind: "fixed", Value: d("1"), ExpiresAt: "16/10/2026"},
		{Code: "X", Kind: "percent", Value: d("12.345")},
	}
	for _, input := range bad {
		_, err := svc.Create(ctx, input)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%+v -> %v", input, err)
	}

	created, err := svc.Create(ctx, CreatePromoInput{Code: "DUP", Kind: "percent", Value: d("12.30")})
	require.NoError(t, err)
	require.True(t, created.Value.Equal(d("12.3")), "value %s", created.Value)
	_, err = svc.Create(ctx, CreatePromoInput{Code: "dup", Kind: "percent", Value: d("2")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestToggleAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	promo, err := svc.Create(ctx, CreatePromoInput{Code: "BETA", Kind: "fixed", Value: d("1")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreatePromoInput{Code: "ALPHA", Kind: "fixed", Value: d("1"), ExpiresAt: "2026-01-01"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, promo.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)

	_, err = svc.Evaluate(ctx, "BETA", d("10"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidPromo))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "ALPHA", list[0].Code)
	require.True(t, list[0].Expired)
	require.False(t, list[1].Active)

	_, err = svc.Toggle(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestParseExpiry(t *testing.T) {
	got, err := ParseExpiry("2026-10-16")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 10, 16, 23, 59, 59, 999999000, time.UTC), *got)

	got, err = ParseExpiry("2026-10-16T10:00:00+05:30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 10, 16, 4, 30, 0, 0, time.UTC), *got)

	got, err = ParseExpiry("  ")
	require.NoError(t, err)
	require.Nil(t, got)
}
