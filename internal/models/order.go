package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses is the closed set, in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// ActiveOrderStatuses are the statuses the kitchen still has to act on.
var ActiveOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusCleaning  TableStatus = "cleaning"
)

func ParseTableStatus(s string) (TableStatus, bool) {
	switch st := TableStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusCleaning:
		return st, true
	}
	return "", false
}

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// ParseDiscountType also accepts "percentage" for percent discounts.
func ParseDiscountType(s string) (DiscountType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent", "percentage":
		return DiscountTypePercent, true
	case "fixed":
		return DiscountTypeFixed, true
	}
	return "", false
}

type Table struct {
	ID              uint        `gorm:"primaryKey"`
	Number          int         `gorm:"not null;uniqueIndex"`
	Capacity        int         `gorm:"not null"`
	Status          TableStatus `gorm:"size:20;not null;default:'available'"`
	ReservationTime *time.Time
	PartySize       *int
	CustomerName    string `gorm:"size:255"`
	CustomerPhone   string `gorm:"size:20"`
	Notes           string `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Orders []Order
}

type Order struct {
	ID          uint            `gorm:"primaryKey"`
	TableID     uint            `gorm:"not null;index"`
	Status      OrderStatus     `gorm:"size:20;not null;default:'pending';index"`
	AyceOrder   bool            `gorm:"not null"`
	AycePrice   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Notes       string          `gorm:"type:text"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time

	Items    []OrderItem `gorm:"constraint:OnDelete:CASCADE"`
	Discount *Discount   `gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem keeps the name and price the item had when it was added, so the
// line still renders after the menu item changes or disappears.
type OrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	OrderID    uint            `gorm:"not null;index"`
	MenuItemID uint            `gorm:"not null;index"`
	Name       string          `gorm:"size:100;not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity   int             `gorm:"not null;check:quantity >= 1"`
	Notes      string          `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Modifiers []Modifier `gorm:"many2many:order_item_modifiers;"`
}

type Discount struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;uniqueIndex"`
	Type      DiscountType    `gorm:"size:10;not null"`
	Value     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time
}
