package pricing

import (
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Catalog is the live menu keyed by menu item id.
type Catalog map[uint]models.MenuItem

func NewCatalog(items []models.MenuItem) Catalog {
	c := make(Catalog, len(items))
	for _, it := range items {
		c[it.ID] = it
	}
	return c
}

type Line struct {
	OrderItemID   uint
	MenuItemID    uint
	Name          string
	Quantity      int
	UnitPrice     decimal.Decimal
	ModifierPrice decimal.Decimal
	LineTotal     decimal.Decimal
	// Live is false when the menu item no longer resolves and the snapshot
	// stored on the order item was used instead.
	Live bool
	// Stale is true when the snapshot price differs from the live price.
	Stale bool
}

type Breakdown struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	IsAyce         bool
	AycePrice      decimal.Decimal
	Lines          []Line
	StaleItemIDs   []uint
}

// HasDiscount reports whether the discount row belongs in a rendered breakdown.
func (b Breakdown) HasDiscount() bool {
	return b.DiscountAmount.IsPositive()
}

// CalculateDiscount returns the amount d takes off subtotal. Fixed discounts
// are taken at face value; percent discounts are rounded half-up to cents.
func CalculateDiscount(subtotal decimal.Decimal, d *models.Discount) decimal.Decimal {
	if d == nil || !d.Value.IsPositive() {
		return decimal.Zero
	}
	switch d.Type {
	case models.DiscountTypeFixed:
		return d.Value.Round(2)
	case models.DiscountTypePercent:
		return subtotal.Mul(d.Value).Div(hundred).Round(2)
	}
	return decimal.Zero
}

// CalculateTotal prices order against the live catalog.
//
// Each line is quantity × (unit price + modifier prices). The unit price
// comes from the catalog when the menu item still exists and falls back to
// the order item's snapshot otherwise. The total is the subtotal minus the
// discount, never below zero. AYCE orders carry their flat price next to the
// itemized subtotal; it does not replace it.
func CalculateTotal(order models.Order, catalog Catalog) Breakdown {
	b := Breakdown{
		Subtotal: decimal.Zero,
		Lines:    make([]Line, 0, len(order.Items)),
	}

	for _, it := range order.Items {
		if it.Quantity < 1 {
			continue
		}
		line := Line{
			OrderItemID:   it.ID,
			MenuItemID:    it.MenuItemID,
			Name:          it.Name,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			ModifierPrice: decimal.Zero,
		}
		if live, ok := catalog[it.MenuItemID]; ok {
			line.Live = true
			line.UnitPrice = live.Price
			if line.Name == "" {
				line.Name = live.Name
			}
			if !live.Price.Equal(it.UnitPrice) {
				line.Stale = true
				b.StaleItemIDs = append(b.StaleItemIDs, it.ID)
			}
		}
		for _, m := range it.Modifiers {
			line.ModifierPrice = line.ModifierPrice.Add(m.Price)
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		line.LineTotal = line.UnitPrice.Add(line.ModifierPrice).Mul(qty)

		b.Subtotal = b.Subtotal.Add(line.LineTotal)
		b.Lines = append(b.Lines, line)
	}

	b.DiscountAmount = CalculateDiscount(b.Subtotal, order.Discount)
	b.Total = b.Subtotal.Sub(b.DiscountAmount)
	if b.Total.IsNegative() {
		b.Total = decimal.Zero
	}

	if order.AyceOrder {
		b.IsAyce = true
		b.AycePrice = order.AycePrice
	}
	return b
}

// FormatMoney renders d with exactly two decimals.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
