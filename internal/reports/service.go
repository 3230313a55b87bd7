package reports

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	// DailyWindow is the default number of days in the daily series.
	DailyWindow = 7

	weeklyWindowDays = 84
	weeklyBuckets    = 12
	monthlyBuckets   = 12

	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Bucket is one point of a sales series.
type Bucket struct {
	Label  string          `json:"label"`
	Total  decimal.Decimal `json:"total"`
	Orders int             `json:"orders"`
}

// Summary is the sales series for one range.
type Summary struct {
	Range  enums.ReportRange `json:"range"`
	Series []Bucket          `json:"series"`
}

// Dashboard holds the admin landing counters.
type Dashboard struct {
	TotalProducts   int64                         `json:"total_products"`
	TotalOrders     int64                         `json:"total_orders"`
	TotalSales      decimal.Decimal               `json:"total_sales"`
	LowStockCount   int64                         `json:"low_stock_count"`
	OrdersByPayment map[enums.PaymentMethod]int64 `json:"orders_by_payment_method"`
}

// Service builds sales series and dashboard counters.
type Service interface {
	Summary(ctx context.Context, rng enums.ReportRange) (*Summary, error)
	Daily(ctx context.Context, days int) ([]Bucket, error)
	Weekly(ctx context.Context) ([]Bucket, error)
	Monthly(ctx context.Context) ([]Bucket, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Summary(ctx context.Context, rng enums.ReportRange) (*Summary, error) {
	var (
		series []Bucket
		err    error
	)
	switch rng {
	case enums.ReportRangeWeekly:
		series, err = s.Weekly(ctx)
	case enums.ReportRangeMonthly:
		series, err = s.Monthly(ctx)
	default:
		rng = enums.ReportRangeDaily
		series, err = s.Daily(ctx, DailyWindow)
	}
	if err != nil {
		return nil, err
	}
	return &Summary{Range: rng, Series: series}, nil
}

// Daily returns days consecutive buckets ending today (UTC).
func (s *service) Daily(ctx context.Context, days int) ([]Bucket, error) {
	if days <= 0 {
		days = DailyWindow
	}
	first := today(s.now()).AddDate(0, 0, -(days - 1))
	rows, err := s.sales(ctx, first)
	if err != nil {
		return nil, err
	}
	return bucketize(rows, dayLabels(first, days), func(t time.Time) string {
		return t.Format(dayLayout)
	}), nil
}

// Weekly groups the last 84 days by ISO week and keeps the latest 12.
func (s *service) Weekly(ctx context.Context) ([]Bucket, error) {
	first := today(s.now()).AddDate(0, 0, -(weeklyWindowDays - 1))
	rows, err := s.sales(ctx, first)
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, day := range dayLabels(first, weeklyWindowDays) {
		t, _ := time.Parse(dayLayout, day)
		if label := isoWeek(t); len(labels) == 0 || labels[len(labels)-1] != label {
			labels = append(labels, label)
		}
	}
	series := bucketize(rows, labels, isoWeek)
	if len(series) > weeklyBuckets {
		series = series[len(series)-weeklyBuckets:]
	}
	return series, nil
}

// Monthly returns the last 12 calendar months including the current one.
func (s *service) Monthly(ctx context.Context) ([]Bucket, error) {
	t := today(s.now())
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthlyBuckets - 1), 0)
	rows, err := s.sales(ctx, first)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, monthlyBuckets)
	for i := range monthlyBuckets {
		labels = append(labels, first.AddDate(0, i, 0).Format(monthLayout))
	}
	return bucketize(rows, labels, func(t time.Time) string {
		return t.Format(monthLayout)
	}), nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	out := &Dashboard{OrdersByPayment: map[enums.PaymentMethod]int64{}}
	var err error
	if out.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	if out.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if out.LowStockCount, err = s.repo.CountLowStock(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count low stock")
	}
	total, err := s.repo.TotalSales(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum sales")
	}
	out.TotalSales = money.Round(total)

	for _, method := range enums.PaymentMethods() {
		out.OrdersByPayment[method] = 0
	}
	counts, err := s.repo.CountByPaymentMethod(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count payment methods")
	}
	for _, row := range counts {
		out.OrdersByPayment[row.PaymentMethod] = row.Orders
	}
	return out, nil
}

func (s *service) sales(ctx context.Context, from time.Time) ([]saleRow, error) {
	rows, err := s.repo.SalesSince(ctx, from)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sales")
	}
	return rows, nil
}

// bucketize sums rows into the ordered labels; rows outside them are ignored.
func bucketize(rows []saleRow, labels []string, labelOf func(time.Time) string) []Bucket {
	series := make([]Bucket, len(labels))
	for i, label := range labels {
		series[i] = Bucket{Label: label, Total: decimal.Zero}
	}
	for _, row := range rows {
		idx := slices.Index(labels, labelOf(row.CreatedAt.UTC()))
		if idx < 0 {
			continue
		}
		series[idx].Total = series[idx].Total.Add(row.Total)
		series[idx].Orders++
	}
	for i := range series {
		series[i].Total = money.Round(series[i].Total)
	}
	return series
}

func dayLabels(first time.Time, days int) []string {
	out := make([]string, 0, days)
	for i := range days {
		out = append(out, first.AddDate(0, 0, i).Format(dayLayout))
	}
	return out
}

func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func today(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
