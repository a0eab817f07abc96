package main

import (
	"errors"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/dashboard"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/menu"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/settings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type routeDeps struct {
	DB     *gorm.DB
	Orders *orders.Service
	Period settings.PeriodController
	Audit  audit.Recorder
}

func errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{
			"error": e.Message,
		})
	}
	logger.FromCtx(c.UserContext()).Error("unexpected error", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// registerRoutes mounts the API on api. Static segments are registered
// before the :id routes they would otherwise be captured by.
func registerRoutes(api fiber.Router, d routeDeps) {
	orderSvc := d.Orders
	menuDeps := menu.Deps{DB: d.DB, Period: d.Period, Audit: d.Audit}
	settingsDeps := settings.Deps{DB: d.DB, Period: d.Period, Audit: d.Audit}
	dashDeps := dashboard.Deps{DB: d.DB, Orders: orderSvc}

	orderRoutes := api.Group("/orders")

	// Tables
	orderRoutes.Post("/tables", orders.CreateTableHandler(orderSvc))
	orderRoutes.Get("/tables", orders.ListTablesHandler(orderSvc))
	orderRoutes.Get("/tables/:table_id", orders.GetTableHandler(orderSvc))
	orderRoutes.Put("/tables/:table_id/status", orders.UpdateTableStatusHandler(orderSvc))
	orderRoutes.Patch("/tables/:table_id/status", orders.UpdateTableStatusHandler(orderSvc))
	orderRoutes.Delete("/tables/:table_id", orders.DeleteTableHandler(orderSvc))
	orderRoutes.Post("/tables/:table_id/clear", orders.ClearTableHandler(orderSvc))
	orderRoutes.Get("/tables/:table_id/orders", orders.TableOrdersHandler(orderSvc))

	// Orders
	orderRoutes.Get("/totals", orders.TotalsHandler(orderSvc))
	orderRoutes.Post("/bulk-status", orders.BulkStatusHandler(orderSvc))
	orderRoutes.Get("/", orders.ListOrdersHandler(orderSvc))
	orderRoutes.Post("/", orders.CreateOrderHandler(orderSvc))
	orderRoutes.Get("/:order_id", orders.GetOrderHandler(orderSvc))
	orderRoutes.Put("/:order_id", orders.UpdateOrderHandler(orderSvc))
	orderRoutes.Delete("/:order_id", orders.DeleteOrderHandler(orderSvc))
	orderRoutes.Put("/:order_id/status", orders.UpdateStatusHandler(orderSvc))
	orderRoutes.Patch("/:order_id/status", orders.UpdateStatusHandler(orderSvc))
	orderRoutes.Post("/:order_id/items", orders.AddItemsHandler(orderSvc))
	orderRoutes.Delete("/:order_id/items/:item_id", orders.RemoveItemHandler(orderSvc))
	orderRoutes.Post("/:order_id/discount", orders.ApplyDiscountHandler(orderSvc))
	orderRoutes.Delete("/:order_id/discount", orders.RemoveDiscountHandler(orderSvc))
	orderRoutes.Get("/:order_id/total", orders.TotalHandler(orderSvc))

	// Menu
	menuRoutes := api.Group("/menu")

	menuRoutes.Get("/categories", menu.ListCategoriesHandler(menuDeps))
	menuRoutes.Post("/categories", menu.CreateCategoryHandler(menuDeps))
	menuRoutes.Get("/categories/:id", menu.GetCategoryHandler(menuDeps))
	menuRoutes.Put("/categories/:id", menu.UpdateCategoryHandler(menuDeps))
	menuRoutes.Patch("/categories/:id", menu.UpdateCategoryHandler(menuDeps))
	menuRoutes.Delete("/categories/:id", menu.DeleteCategoryHandler(menuDeps))

	menuRoutes.Post("/menu-items/bulk", menu.BulkMenuItemsHandler(menuDeps))
	menuRoutes.Patch("/menu-items/bulk-availability", menu.BulkAvailabilityHandler(menuDeps))
	menuRoutes.Post("/menu-items/import", menu.ImportMenuItemsHandler(menuDeps))
	menuRoutes.Get("/menu-items", menu.ListMenuItemsHandler(menuDeps))
	menuRoutes.Post("/menu-items", menu.CreateMenuItemHandler(menuDeps))
	menuRoutes.Get("/menu-items/:id", menu.GetMenuItemHandler(menuDeps))
	menuRoutes.Put("/menu-items/:id", menu.UpdateMenuItemHandler(menuDeps))
	menuRoutes.Patch("/menu-items/:id", menu.UpdateMenuItemHandler(menuDeps))
	menuRoutes.Delete("/menu-items/:id", menu.DeleteMenuItemHandler(menuDeps))

	menuRoutes.Get("/modifiers", menu.ListModifiersHandler(menuDeps))
	menuRoutes.Post("/modifiers", menu.CreateModifierHandler(menuDeps))
	menuRoutes.Get("/modifiers/:id", menu.GetModifierHandler(menuDeps))
	menuRoutes.Put("/modifiers/:id", menu.ReplaceModifierHandler(menuDeps))
	menuRoutes.Patch("/modifiers/:id", menu.UpdateModifierHandler(menuDeps))
	menuRoutes.Delete("/modifiers/:id", menu.DeleteModifierHandler(menuDeps))

	// Dashboard
	api.Get("/dashboard/stats", dashboard.StatsHandler(dashDeps))
	api.Get("/dashboard/recent-orders", dashboard.RecentOrdersHandler(dashDeps))
	api.Get("/dashboard/sales-chart", dashboard.SalesChartHandler(dashDeps))
	api.Get("/dashboard/export.xlsx", dashboard.ExportHandler(dashDeps))

	// Settings
	api.Get("/settings", settings.GetSettingsHandler(settingsDeps))
	api.Patch("/settings", settings.UpdateSettingsHandler(settingsDeps))
	api.Put("/settings", settings.UpdateSettingsHandler(settingsDeps))
	api.Patch("/settings/meal-period", settings.SetMealPeriodHandler(settingsDeps))
	api.Post("/settings/meal-period/toggle", settings.ToggleMealPeriodHandler(settingsDeps))
	api.Get("/settings/ayce-price", settings.AycePriceHandler(settingsDeps))

	// Audit
	api.Get("/audit-logs", audit.ListAuditLogsHandler(d.DB))
}
