package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"size:100;not null;unique"`
	Description  string `gorm:"type:text"`
	DisplayOrder int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	MenuItems []MenuItem
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:100;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CategoryID  uint            `gorm:"not null;index"`
	Category    *Category
	IsAvailable bool       `gorm:"not null"`
	MealPeriod  MealPeriod `gorm:"size:20;not null;default:'BOTH'"`
	ImageURL    string     `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Modifiers []Modifier `gorm:"many2many:menu_item_modifiers;"`
}

// Modifier with a nil CategoryID applies to every category.
type Modifier struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:100;not null"`
	Description  string          `gorm:"type:text"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CategoryID   *uint           `gorm:"index"`
	DisplayOrder int             `gorm:"not null;default:0"`
	IsAvailable  bool            `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
