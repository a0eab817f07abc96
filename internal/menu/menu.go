// Package menu serves the menu catalog: categories, items and modifiers.
package menu

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const timeLayout = "2006-01-02 15:04:05"

// PeriodSource reports the meal period the restaurant is serving.
type PeriodSource interface {
	Current() models.MealPeriod
}

type Deps struct {
	DB     *gorm.DB
	Period PeriodSource
	Audit  audit.Recorder
}

func (d Deps) record(ctx context.Context, e audit.Entry) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.Record(ctx, e); err != nil {
		logger.FromCtx(ctx).Warn("audit record failed",
			zap.String("entity_type", e.EntityType),
			zap.Uint("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}

func internalError(c *fiber.Ctx, err error, msg string) error {
	logger.FromCtx(c.UserContext()).Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// loadByID loads dest by primary key. A missing row is a 404, any other
// failure a logged 500.
func loadByID(c *fiber.Ctx, db *gorm.DB, dest any, id uint, what string) error {
	if err := db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, what+" not found")
		}
		return internalError(c, err, what+" could not be loaded")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+strings.ReplaceAll(name, "_", " "))
	}
	return uint(id), nil
}

func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "Name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", fiber.NewError(fiber.StatusBadRequest, "Name cannot be longer than 100 characters")
	}
	return name, nil
}

func cleanPrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Zero, fiber.NewError(fiber.StatusBadRequest, "Price cannot be negative")
	}
	return p.Round(2), nil
}

// parseItemPeriod treats an empty value as BOTH.
func parseItemPeriod(raw string) (models.MealPeriod, error) {
	if strings.TrimSpace(raw) == "" {
		return models.MealPeriodBoth, nil
	}
	p, ok := models.ParseMealPeriod(raw)
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "meal_period must be BOTH, LUNCH or DINNER")
	}
	return p, nil
}
