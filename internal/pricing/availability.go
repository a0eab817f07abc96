// Package pricing holds the pure rules the POS applies to menu data it has
// already loaded: whether an item can be ordered in the current meal period,
// and what an order costs.
package pricing

import "github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

const dinnerOnlyMessage = "Only available during dinner"

// itemPeriod normalizes the item's meal period. Rows written before the
// column existed may hold "" or a lowercase value; both mean BOTH.
func itemPeriod(item models.MenuItem) models.MealPeriod {
	p, ok := models.ParseMealPeriod(string(item.MealPeriod))
	if !ok {
		return models.MealPeriodBoth
	}
	return p
}

func hiddenForPeriod(item models.MenuItem, current models.MealPeriod) bool {
	return current == models.MealPeriodLunch && itemPeriod(item) == models.MealPeriodDinner
}

// IsItemAvailable reports whether item may be added to an order while the
// restaurant is serving current. Dinner-only items are hidden during lunch;
// in every other case the item's own availability flag decides.
func IsItemAvailable(item models.MenuItem, current models.MealPeriod) bool {
	if hiddenForPeriod(item, current) {
		return false
	}
	return item.IsAvailable
}

// AvailabilityMessage explains why IsItemAvailable is false. It is only
// non-empty when a dinner-only item is requested during lunch.
func AvailabilityMessage(item models.MenuItem, current models.MealPeriod) string {
	if hiddenForPeriod(item, current) {
		return dinnerOnlyMessage
	}
	return ""
}

// MealPeriodTag is the short label shown next to period-restricted items.
func MealPeriodTag(item models.MenuItem) string {
	switch itemPeriod(item) {
	case models.MealPeriodLunch:
		return "Lunch Only"
	case models.MealPeriodDinner:
		return "Dinner Only"
	}
	return ""
}
