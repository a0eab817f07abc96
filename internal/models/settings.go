package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the single settings row.
const SettingsID uint = 1

type Settings struct {
	ID                uint            `gorm:"primaryKey"`
	RestaurantName    string          `gorm:"size:255;not null"`
	Timezone          string          `gorm:"size:100;not null"`
	CurrentMealPeriod MealPeriod      `gorm:"size:10;not null"`
	AyceLunchPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	AyceDinnerPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func DefaultSettings() Settings {
	return Settings{
		ID:                SettingsID,
		RestaurantName:    "Sushi Restaurant",
		Timezone:          "America/New_York",
		CurrentMealPeriod: MealPeriodDinner,
		AyceLunchPrice:    decimal.RequireFromString("20.00"),
		AyceDinnerPrice:   decimal.RequireFromString("25.00"),
	}
}

// AycePriceFor returns the all-you-can-eat price for the given period.
func (s Settings) AycePriceFor(p MealPeriod) decimal.Decimal {
	if p == MealPeriodLunch {
		return s.AyceLunchPrice
	}
	return s.AyceDinnerPrice
}
