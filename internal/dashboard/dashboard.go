// Package dashboard serves the manager overview: headline stats, recent
// orders, the sales chart and the spreadsheet export.
package dashboard

import (
	"context"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"gorm.io/gorm"
)

// OrderSource loads and prices orders. *orders.Service implements it.
type OrderSource interface {
	ListOrders(ctx context.Context, f orders.OrderFilter) ([]models.Order, error)
	PriceOrders(ctx context.Context, list []models.Order) (map[uint]pricing.Breakdown, error)
}

type Deps struct {
	DB     *gorm.DB
	Orders OrderSource
}
