package dashboard

import (
	"context"
	"database/sql"
	"math"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultAverageOrderTime is reported, in minutes, until an order has been
// completed.
const DefaultAverageOrderTime = 15

const recentOrdersLimit = 10

type StatsResponse struct {
	TotalOrders      int64   `json:"total_orders"`
	TotalRevenue     string  `json:"total_revenue"`
	AverageOrderTime float64 `json:"average_order_time"`
	ActiveOrders     int64   `json:"active_orders"`
}

type RecentOrder struct {
	ID        uint               `json:"id"`
	TableID   uint               `json:"table_id"`
	Status    models.OrderStatus `json:"status"`
	ItemCount int                `json:"item_count"`
	Total     string             `json:"total"`
	CreatedAt string             `json:"created_at"`
}

// SumRevenue adds up the totals of list. Orders missing from totals count
// as zero.
func SumRevenue(list []models.Order, totals map[uint]pricing.Breakdown) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range list {
		if b, ok := totals[o.ID]; ok {
			sum = sum.Add(b.Total)
		}
	}
	return sum
}

func averageMinutes(avg sql.NullFloat64) float64 {
	if !avg.Valid {
		return DefaultAverageOrderTime
	}
	return math.Round(avg.Float64*10) / 10
}

// ComputeStats runs the count queries and the revenue calculation
// concurrently. A failed revenue calculation is logged and reported as zero.
func ComputeStats(ctx context.Context, d Deps) (*StatsResponse, error) {
	var (
		total   int64
		active  int64
		avg     sql.NullFloat64
		revenue = decimal.Zero
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.DB.WithContext(gctx).Model(&models.Order{}).Count(&total).Error
	})
	g.Go(func() error {
		return d.DB.WithContext(gctx).Model(&models.Order{}).
			Where("status IN ?", models.ActiveOrderStatuses).
			Count(&active).Error
	})
	g.Go(func() error {
		return d.DB.WithContext(gctx).Raw(
			"SELECT AVG(EXTRACT(EPOCH FROM (completed_at - created_at)) / 60) FROM orders WHERE status = ? AND completed_at IS NOT NULL",
			models.OrderStatusCompleted,
		).Row().Scan(&avg)
	})
	g.Go(func() error {
		list, err := d.Orders.ListOrders(gctx, orders.OrderFilter{
			ExcludeStatuses: []models.OrderStatus{models.OrderStatusCancelled},
		})
		if err == nil {
			var totals map[uint]pricing.Breakdown
			totals, err = d.Orders.PriceOrders(gctx, list)
			if err == nil {
				revenue = SumRevenue(list, totals)
			}
		}
		if err != nil {
			logger.FromCtx(ctx).Warn("revenue could not be calculated", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalOrders:      total,
		TotalRevenue:     pricing.FormatMoney(revenue),
		AverageOrderTime: averageMinutes(avg),
		ActiveOrders:     active,
	}, nil
}

// GET /dashboard/stats/
func StatsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := ComputeStats(c.UserContext(), d)
		if err != nil {
			logger.FromCtx(c.UserContext()).Error("dashboard stats failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Dashboard stats could not be loaded")
		}
		return c.JSON(stats)
	}
}

// GET /dashboard/recent-orders/
func RecentOrdersHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		list, err := d.Orders.ListOrders(ctx, orders.OrderFilter{Limit: recentOrdersLimit})
		if err != nil {
			logger.FromCtx(ctx).Error("recent orders failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Recent orders could not be loaded")
		}

		totals, err := d.Orders.PriceOrders(ctx, list)
		if err != nil {
			logger.FromCtx(ctx).Warn("recent order totals failed", zap.Error(err))
			totals = nil
		}

		res := make([]RecentOrder, 0, len(list))
		for _, o := range list {
			items := 0
			for _, it := range o.Items {
				items += it.Quantity
			}
			res = append(res, RecentOrder{
				ID:        o.ID,
				TableID:   o.TableID,
				Status:    o.Status,
				ItemCount: items,
				Total:     pricing.FormatMoney(totals[o.ID].Total),
				CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
