package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/database"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	list     []models.Order
	totals   map[uint]pricing.Breakdown
	priceErr error
	filter   orders.OrderFilter
}

func (s *stubOrders) ListOrders(_ context.Context, f orders.OrderFilter) ([]models.Order, error) {
	s.filter = f
	return s.list, nil
}

func (s *stubOrders) PriceOrders(context.Context, []models.Order) (map[uint]pricing.Breakdown, error) {
	return s.totals, s.priceErr
}

func total(s string) pricing.Breakdown {
	d := decimal.RequireFromString(s)
	return pricing.Breakdown{Subtotal: d, Total: d}
}

func TestParsePeriod(t *testing.T) {
	p, n := ParsePeriod("weekly")
	assert.Equal(t, PeriodWeekly, p)
	assert.Equal(t, 8, n)

	p, n = ParsePeriod("monthly")
	assert.Equal(t, PeriodMonthly, p)
	assert.Equal(t, 12, n)

	p, n = ParsePeriod("hourly")
	assert.Equal(t, PeriodDaily, p)
	assert.Equal(t, 7, n)
}

func TestBucketStart(t *testing.T) {
	// Thursday evening
	ts := time.Date(2024, 5, 16, 21, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), BucketStart(ts, PeriodDaily))
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), BucketStart(ts, PeriodWeekly))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), BucketStart(ts, PeriodMonthly))

	sunday := time.Date(2024, 5, 19, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), BucketStart(sunday, PeriodWeekly))
}

func TestChartWindow(t *testing.T) {
	now := time.Date(2024, 5, 16, 10, 0, 0, 0, time.UTC)

	start, end := ChartWindow(now, PeriodDaily, 7)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), end)

	start, end = ChartWindow(now, PeriodMonthly, 3)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestBuildSalesChart(t *testing.T) {
	start := time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC)
	list := []models.Order{
		{ID: 1, CreatedAt: time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)},
		{ID: 2, CreatedAt: time.Date(2024, 5, 14, 19, 0, 0, 0, time.UTC)},
		{ID: 3, CreatedAt: time.Date(2024, 5, 16, 20, 0, 0, 0, time.UTC)},
		{ID: 4, CreatedAt: time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)},
	}
	totals := map[uint]pricing.Breakdown{1: total("27.00"), 2: total("13.50"), 3: total("50.00"), 4: total("99.00")}

	res := BuildSalesChart(list, totals, PeriodDaily, start, 3)

	require.Len(t, res.Points, 3)
	assert.Equal(t, "2024-05-14", res.Points[0].Label)
	assert.Equal(t, 2, res.Points[0].Orders)
	assert.Equal(t, "40.50", res.Points[0].Revenue)
	assert.Equal(t, "0.00", res.Points[1].Revenue)
	assert.Equal(t, "50.00", res.Points[2].Revenue)
	assert.Equal(t, 3, res.GrandTotals.Orders)
	assert.Equal(t, "90.50", res.GrandTotals.Revenue)
	assert.Equal(t, "2024-05-14", res.From)
	assert.Equal(t, "2024-05-16", res.To)
}

func TestBuildExportWorkbook(t *testing.T) {
	completed := time.Date(2024, 5, 14, 13, 0, 0, 0, time.UTC)
	list := []models.Order{
		{
			ID: 7, TableID: 3, Status: models.OrderStatusCompleted,
			CreatedAt:   time.Date(2024, 5, 14, 12, 30, 0, 0, time.UTC),
			CompletedAt: &completed,
			Items:       []models.OrderItem{{Name: "Salmon Nigiri", Quantity: 2}, {Name: "Miso Soup", Quantity: 1}},
		},
	}
	totals := map[uint]pricing.Breakdown{7: total("16.00")}

	f, err := BuildExportWorkbook(list, totals)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Order ID", rows[0][0])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "completed", rows[1][2])
	assert.Equal(t, "2024-05-14 13:00", rows[1][4])
	assert.Equal(t, "2x Salmon Nigiri, 1x Miso Soup", rows[1][5])
	assert.Equal(t, "16", rows[1][8])
	assert.Equal(t, "Total", rows[3][0])
}

func TestComputeStats(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	mock.MatchExpectationsInOrder(false)

	db, err := database.OpenWithConn(conn)
	require.NoError(t, err)

	mock.ExpectQuery(`^SELECT count\(\*\) FROM "orders"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`^SELECT count\(\*\) FROM "orders" WHERE status IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT AVG`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	src := &stubOrders{
		list:   []models.Order{{ID: 1}, {ID: 2}},
		totals: map[uint]pricing.Breakdown{1: total("27.00"), 2: total("13.25")},
	}

	stats, err := ComputeStats(context.Background(), Deps{DB: db, Orders: src})
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.TotalOrders)
	assert.Equal(t, int64(3), stats.ActiveOrders)
	assert.Equal(t, "40.25", stats.TotalRevenue)
	assert.Equal(t, float64(DefaultAverageOrderTime), stats.AverageOrderTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeStats_RevenueFailureIsZero(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	mock.MatchExpectationsInOrder(false)

	db, err := database.OpenWithConn(conn)
	require.NoError(t, err)

	mock.ExpectQuery(`^SELECT count\(\*\) FROM "orders"$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`^SELECT count\(\*\) FROM "orders" WHERE status IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT AVG`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(22.46))

	src := &stubOrders{list: []models.Order{{ID: 1}}, priceErr: errors.New("menu unavailable")}

	stats, err := ComputeStats(context.Background(), Deps{DB: db, Orders: src})
	require.NoError(t, err)

	assert.Equal(t, "0.00", stats.TotalRevenue)
	assert.Equal(t, 22.5, stats.AverageOrderTime)
}

func TestSumRevenue_MissingTotalsCountAsZero(t *testing.T) {
	list := []models.Order{{ID: 1}, {ID: 2}}
	sum := SumRevenue(list, map[uint]pricing.Breakdown{2: total("9.99")})
	assert.Equal(t, "9.99", sum.StringFixed(2))
}
