package dashboard

import (
	"strconv"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

type SalesChartPoint struct {
	Label   string `json:"label"` // day / week start / month start
	Orders  int    `json:"orders"`
	Revenue string `json:"revenue"`
}

type SalesChartTotals struct {
	Orders  int    `json:"orders"`
	Revenue string `json:"revenue"`
}

type SalesChartResponse struct {
	Period      Period            `json:"period"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Points      []SalesChartPoint `json:"points"`
	GrandTotals SalesChartTotals  `json:"grand_totals"`
}

// ParsePeriod returns the period and its default bucket count. Unknown
// values fall back to daily.
func ParsePeriod(raw string) (Period, int) {
	switch Period(raw) {
	case PeriodWeekly:
		return PeriodWeekly, 8
	case PeriodMonthly:
		return PeriodMonthly, 12
	}
	return PeriodDaily, 7
}

// BucketStart truncates t to the start of its day, ISO week (Monday) or
// month in t's location.
func BucketStart(t time.Time, p Period) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return day
}

func nextBucket(t time.Time, p Period) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// ChartWindow returns the first bucket start and the exclusive end of the
// count buckets ending with the one containing now.
func ChartWindow(now time.Time, p Period, count int) (time.Time, time.Time) {
	last := BucketStart(now, p)
	end := nextBucket(last, p)
	var start time.Time
	switch p {
	case PeriodWeekly:
		start = last.AddDate(0, 0, -7*(count-1))
	case PeriodMonthly:
		start = last.AddDate(0, -(count - 1), 0)
	default:
		start = last.AddDate(0, 0, -(count - 1))
	}
	return start, end
}

// BuildSalesChart buckets priced orders into count consecutive periods
// starting at start. Empty buckets are kept so the chart has no gaps.
func BuildSalesChart(list []models.Order, totals map[uint]pricing.Breakdown, p Period, start time.Time, count int) SalesChartResponse {
	type bucketAgg struct {
		orders  int
		revenue decimal.Decimal
	}

	starts := make([]time.Time, 0, count)
	buckets := make(map[time.Time]*bucketAgg, count)
	for t, i := start, 0; i < count; t, i = nextBucket(t, p), i+1 {
		starts = append(starts, t)
		buckets[t] = &bucketAgg{revenue: decimal.Zero}
	}

	for _, o := range list {
		agg, ok := buckets[BucketStart(o.CreatedAt.In(start.Location()), p)]
		if !ok {
			continue
		}
		agg.orders++
		agg.revenue = agg.revenue.Add(totals[o.ID].Total)
	}

	res := SalesChartResponse{
		Period: p,
		From:   start.Format("2006-01-02"),
		Points: make([]SalesChartPoint, 0, count),
	}
	grandRevenue := decimal.Zero
	for _, t := range starts {
		agg := buckets[t]
		res.Points = append(res.Points, SalesChartPoint{
			Label:   t.Format("2006-01-02"),
			Orders:  agg.orders,
			Revenue: pricing.FormatMoney(agg.revenue),
		})
		res.GrandTotals.Orders += agg.orders
		grandRevenue = grandRevenue.Add(agg.revenue)
	}
	res.GrandTotals.Revenue = pricing.FormatMoney(grandRevenue)
	if len(starts) > 0 {
		res.To = nextBucket(starts[len(starts)-1], p).AddDate(0, 0, -1).Format("2006-01-02")
	}
	return res
}

// GET /dashboard/sales-chart?period=daily&count=7
func SalesChartHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period, count := ParsePeriod(c.Query("period", "daily"))
		if raw := c.Query("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 || n > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
			}
			count = n
		}

		start, end := ChartWindow(time.Now(), period, count)

		ctx := c.UserContext()
		list, err := d.Orders.ListOrders(ctx, orders.OrderFilter{
			From:            &start,
			To:              &end,
			ExcludeStatuses: []models.OrderStatus{models.OrderStatusCancelled},
		})
		if err != nil {
			logger.FromCtx(ctx).Error("sales chart orders failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Sales data could not be loaded")
		}
		totals, err := d.Orders.PriceOrders(ctx, list)
		if err != nil {
			logger.FromCtx(ctx).Error("sales chart pricing failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Sales data could not be loaded")
		}

		return c.JSON(BuildSalesChart(list, totals, period, start, count))
	}
}
