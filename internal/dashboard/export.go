package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Orders"

var exportHeader = []any{
	"Order ID", "Table", "Status", "Created At", "Completed At",
	"Items", "Subtotal", "Discount", "Total", "AYCE", "AYCE Price",
}

// BuildExportWorkbook writes one row per order plus a totals row.
func BuildExportWorkbook(list []models.Order, totals map[uint]pricing.Breakdown) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, err
	}

	revenue := decimal.Zero
	for i, o := range list {
		b := totals[o.ID]
		revenue = revenue.Add(b.Total)

		completed := ""
		if o.CompletedAt != nil {
			completed = o.CompletedAt.Format("2006-01-02 15:04")
		}
		names := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		ayce := ""
		if o.AyceOrder {
			ayce = pricing.FormatMoney(o.AycePrice)
		}

		row := []any{
			o.ID,
			o.TableID,
			string(o.Status),
			o.CreatedAt.Format("2006-01-02 15:04"),
			completed,
			strings.Join(names, ", "),
			b.Subtotal.InexactFloat64(),
			b.DiscountAmount.InexactFloat64(),
			b.Total.InexactFloat64(),
			o.AyceOrder,
			ayce,
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cellRef, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	totalRef, _ := excelize.CoordinatesToCellName(1, len(list)+3)
	totalRow := []any{"Total", "", "", "", "", fmt.Sprintf("%d orders", len(list)), "", "", revenue.InexactFloat64()}
	if err := f.SetSheetRow(exportSheet, totalRef, &totalRow); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func parseDay(raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

// GET /dashboard/export.xlsx?from=2024-05-01&to=2024-05-31
//
// Both dates are inclusive. Defaults to the last 30 days.
func ExportHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		today := BucketStart(time.Now(), PeriodDaily)
		from, err := parseDay(c.Query("from"), today.AddDate(0, 0, -29))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		to, err := parseDay(c.Query("to"), today)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		if to.Before(from) {
			return fiber.NewError(fiber.StatusBadRequest, "to cannot be before from")
		}
		end := to.AddDate(0, 0, 1)

		ctx := c.UserContext()
		list, err := d.Orders.ListOrders(ctx, orders.OrderFilter{From: &from, To: &end})
		if err != nil {
			logger.FromCtx(ctx).Error("export orders failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Orders could not be exported")
		}
		totals, err := d.Orders.PriceOrders(ctx, list)
		if err != nil {
			logger.FromCtx(ctx).Error("export pricing failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Orders could not be exported")
		}

		f, err := BuildExportWorkbook(list, totals)
		if err != nil {
			logger.FromCtx(ctx).Error("export workbook failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Orders could not be exported")
		}
		defer f.Close()

		buf, err := f.WriteToBuffer()
		if err != nil {
			logger.FromCtx(ctx).Error("export write failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Orders could not be exported")
		}

		name := fmt.Sprintf("orders_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(buf.Bytes())
	}
}
