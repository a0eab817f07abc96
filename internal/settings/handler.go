// Package settings serves the restaurant settings singleton and the
// meal-period switch.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/database"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/mealperiod"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PeriodController is the meal-period provider as seen by the handlers.
// It is the only writer of settings.current_meal_period.
type PeriodController interface {
	Current() models.MealPeriod
	Set(ctx context.Context, p models.MealPeriod) error
	Toggle(ctx context.Context) (models.MealPeriod, error)
}

type Deps struct {
	DB     *gorm.DB
	Period PeriodController
	Audit  audit.Recorder
}

type SettingsResponse struct {
	ID                uint              `json:"id"`
	RestaurantName    string            `json:"restaurant_name"`
	Timezone          string            `json:"timezone"`
	CurrentMealPeriod models.MealPeriod `json:"current_meal_period"`
	AyceLunchPrice    string            `json:"ayce_lunch_price"`
	AyceDinnerPrice   string            `json:"ayce_dinner_price"`
	CurrentAycePrice  string            `json:"current_ayce_price"`
	UpdatedAt         string            `json:"updated_at"`
}

type UpdateSettingsRequest struct {
	RestaurantName    *string          `json:"restaurant_name"`
	Timezone          *string          `json:"timezone"`
	CurrentMealPeriod *string          `json:"current_meal_period"`
	AyceLunchPrice    *decimal.Decimal `json:"ayce_lunch_price"`
	AyceDinnerPrice   *decimal.Decimal `json:"ayce_dinner_price"`
}

type MealPeriodResponse struct {
	CurrentMealPeriod models.MealPeriod `json:"current_meal_period"`
	AycePrice         string            `json:"ayce_price"`
}

func toResponse(s models.Settings, current models.MealPeriod) SettingsResponse {
	return SettingsResponse{
		ID:                s.ID,
		RestaurantName:    s.RestaurantName,
		Timezone:          s.Timezone,
		CurrentMealPeriod: current,
		AyceLunchPrice:    pricing.FormatMoney(s.AyceLunchPrice),
		AyceDinnerPrice:   pricing.FormatMoney(s.AyceDinnerPrice),
		CurrentAycePrice:  pricing.FormatMoney(s.AycePriceFor(current)),
		UpdatedAt:         s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func load(c *fiber.Ctx, d Deps) (*models.Settings, error) {
	s, err := database.EnsureSettings(d.DB.WithContext(c.UserContext()))
	if err != nil {
		logger.FromCtx(c.UserContext()).Error("settings could not be loaded", zap.Error(err))
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Settings could not be loaded")
	}
	return s, nil
}

func periodError(c *fiber.Ctx, err error) error {
	if errors.Is(err, mealperiod.ErrInvalidPeriod) {
		return fiber.NewError(fiber.StatusBadRequest, "meal_period must be LUNCH or DINNER")
	}
	logger.FromCtx(c.UserContext()).Error("meal period could not be saved", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "Meal period could not be saved")
}

func parseServicePeriod(raw string) (models.MealPeriod, error) {
	p, ok := models.ParseMealPeriod(raw)
	if !ok || !p.IsServicePeriod() {
		return "", fiber.NewError(fiber.StatusBadRequest, "meal_period must be LUNCH or DINNER")
	}
	return p, nil
}

// GET /settings/
func GetSettingsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := load(c, d)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*s, d.Period.Current()))
	}
}

// PATCH /settings/
func UpdateSettingsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		updates := map[string]any{}
		if body.RestaurantName != nil {
			name := strings.TrimSpace(*body.RestaurantName)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "restaurant_name cannot be empty")
			}
			updates["restaurant_name"] = name
		}
		if body.Timezone != nil {
			tz := strings.TrimSpace(*body.Timezone)
			if tz == "" {
				return fiber.NewError(fiber.StatusBadRequest, "timezone cannot be empty")
			}
			updates["timezone"] = tz
		}
		if body.AyceLunchPrice != nil {
			if body.AyceLunchPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "ayce_lunch_price cannot be negative")
			}
			updates["ayce_lunch_price"] = body.AyceLunchPrice.Round(2)
		}
		if body.AyceDinnerPrice != nil {
			if body.AyceDinnerPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "ayce_dinner_price cannot be negative")
			}
			updates["ayce_dinner_price"] = body.AyceDinnerPrice.Round(2)
		}
		var period models.MealPeriod
		if body.CurrentMealPeriod != nil {
			p, err := parseServicePeriod(*body.CurrentMealPeriod)
			if err != nil {
				return err
			}
			period = p
		}

		s, err := load(c, d)
		if err != nil {
			return err
		}
		before := *s

		if len(updates) > 0 {
			if err := d.DB.WithContext(c.UserContext()).Model(s).Updates(updates).Error; err != nil {
				logger.FromCtx(c.UserContext()).Error("settings could not be updated", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Settings could not be updated")
			}
		}
		if period != "" && period != d.Period.Current() {
			if err := d.Period.Set(c.UserContext(), period); err != nil {
				return periodError(c, err)
			}
			s.CurrentMealPeriod = period
		}

		if d.Audit != nil {
			if err := d.Audit.Record(c.UserContext(), audit.Entry{
				EntityType:  "settings",
				EntityID:    s.ID,
				Action:      models.AuditActionUpdate,
				Description: "Settings updated",
				Before:      before,
				After:       s,
			}); err != nil {
				logger.FromCtx(c.UserContext()).Warn("audit record failed", zap.Error(err))
			}
		}
		return c.JSON(toResponse(*s, d.Period.Current()))
	}
}

func mealPeriodResponse(c *fiber.Ctx, d Deps, before models.MealPeriod) error {
	s, err := load(c, d)
	if err != nil {
		return err
	}
	current := d.Period.Current()
	if d.Audit != nil && before != current {
		if err := d.Audit.Record(c.UserContext(), audit.Entry{
			EntityType:  "settings",
			EntityID:    s.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Meal period %s -> %s", before, current),
			Before:      map[string]any{"current_meal_period": before},
			After:       map[string]any{"current_meal_period": current},
		}); err != nil {
			logger.FromCtx(c.UserContext()).Warn("audit record failed", zap.Error(err))
		}
	}
	return c.JSON(MealPeriodResponse{
		CurrentMealPeriod: current,
		AycePrice:         pricing.FormatMoney(s.AycePriceFor(current)),
	})
}

// PATCH /settings/meal-period?meal_period=LUNCH
func SetMealPeriodHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := parseServicePeriod(c.Query("meal_period"))
		if err != nil {
			return err
		}
		before := d.Period.Current()
		if err := d.Period.Set(c.UserContext(), p); err != nil {
			return periodError(c, err)
		}
		return mealPeriodResponse(c, d, before)
	}
}

// POST /settings/meal-period/toggle
func ToggleMealPeriodHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		before := d.Period.Current()
		if _, err := d.Period.Toggle(c.UserContext()); err != nil {
			return periodError(c, err)
		}
		return mealPeriodResponse(c, d, before)
	}
}

// GET /settings/ayce-price
func AycePriceHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := load(c, d)
		if err != nil {
			return err
		}
		current := d.Period.Current()
		return c.JSON(MealPeriodResponse{
			CurrentMealPeriod: current,
			AycePrice:         pricing.FormatMoney(s.AycePriceFor(current)),
		})
	}
}
