package dashboard

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})
	app.Get("/dashboard/recent-orders", RecentOrdersHandler(d))
	app.Get("/dashboard/sales-chart", SalesChartHandler(d))
	return app
}

func TestRecentOrdersHandler(t *testing.T) {
	created := time.Date(2024, 5, 16, 19, 30, 0, 0, time.UTC)
	list := []models.Order{
		{ID: 2, TableID: 4, Status: models.OrderStatusPreparing, CreatedAt: created,
			Items: []models.OrderItem{{Quantity: 2}, {Quantity: 1}}},
		{ID: 1, TableID: 3, Status: models.OrderStatusCompleted, CreatedAt: created.Add(-time.Hour)},
	}

	t.Run("priced and capped at ten", func(t *testing.T) {
		src := &stubOrders{list: list, totals: map[uint]pricing.Breakdown{2: total("19.50"), 1: total("8.00")}}

		resp, err := newTestApp(Deps{Orders: src}).Test(httptest.NewRequest("GET", "/dashboard/recent-orders", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body []RecentOrder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 2)
		assert.Equal(t, 10, src.filter.Limit)
		assert.Equal(t, uint(2), body[0].ID)
		assert.Equal(t, 3, body[0].ItemCount)
		assert.Equal(t, "19.50", body[0].Total)
		assert.Equal(t, "2024-05-16 19:30:00", body[0].CreatedAt)
		assert.Equal(t, "8.00", body[1].Total)
	})

	t.Run("pricing failure reports zero totals", func(t *testing.T) {
		src := &stubOrders{list: list, priceErr: errors.New("menu unavailable")}

		resp, err := newTestApp(Deps{Orders: src}).Test(httptest.NewRequest("GET", "/dashboard/recent-orders", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body []RecentOrder
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 2)
		assert.Equal(t, "0.00", body[0].Total)
		assert.Equal(t, "0.00", body[1].Total)
	})
}

func TestSalesChartHandler(t *testing.T) {
	t.Run("window and cancelled orders excluded", func(t *testing.T) {
		src := &stubOrders{totals: map[uint]pricing.Breakdown{}}

		resp, err := newTestApp(Deps{Orders: src}).Test(httptest.NewRequest("GET", "/dashboard/sales-chart?period=weekly&count=4", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body SalesChartResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, PeriodWeekly, body.Period)
		assert.Len(t, body.Points, 4)
		assert.Equal(t, []models.OrderStatus{models.OrderStatusCancelled}, src.filter.ExcludeStatuses)
		require.NotNil(t, src.filter.From)
		require.NotNil(t, src.filter.To)
		assert.Equal(t, time.Monday, src.filter.From.Weekday())
	})

	for _, raw := range []string{"5abc", "0", "-1", "367"} {
		t.Run("bad count "+raw, func(t *testing.T) {
			resp, err := newTestApp(Deps{Orders: &stubOrders{}}).Test(httptest.NewRequest("GET", "/dashboard/sales-chart?count="+raw, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}

	t.Run("pricing failure is a 500", func(t *testing.T) {
		src := &stubOrders{priceErr: errors.New("menu unavailable")}
		resp, err := newTestApp(Deps{Orders: src}).Test(httptest.NewRequest("GET", "/dashboard/sales-chart", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
