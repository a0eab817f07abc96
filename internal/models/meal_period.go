package models

import "strings"

type MealPeriod string

const (
	MealPeriodBoth   MealPeriod = "BOTH"
	MealPeriodLunch  MealPeriod = "LUNCH"
	MealPeriodDinner MealPeriod = "DINNER"
)

// ParseMealPeriod accepts any casing, so "lunch" and "LUNCH" both resolve.
func ParseMealPeriod(s string) (MealPeriod, bool) {
	switch p := MealPeriod(strings.ToUpper(strings.TrimSpace(s))); p {
	case MealPeriodBoth, MealPeriodLunch, MealPeriodDinner:
		return p, true
	}
	return "", false
}

// IsServicePeriod reports whether p can be the restaurant's current period.
// BOTH only makes sense on a menu item.
func (p MealPeriod) IsServicePeriod() bool {
	return p == MealPeriodLunch || p == MealPeriodDinner
}
