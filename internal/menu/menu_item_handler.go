package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MenuItemResponse struct {
	ID                  uint              `json:"id"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	Price               string            `json:"price"`
	CategoryID          uint              `json:"category_id"`
	CategoryName        string            `json:"category_name,omitempty"`
	IsAvailable         bool              `json:"is_available"`
	MealPeriod          models.MealPeriod `json:"meal_period"`
	ImageURL            string            `json:"image_url"`
	AvailableNow        bool              `json:"available_now"`
	AvailabilityMessage string            `json:"availability_message,omitempty"`
	MealPeriodTag       string            `json:"meal_period_tag,omitempty"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

type CreateMenuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  uint            `json:"category_id"`
	IsAvailable *bool           `json:"is_available"`
	MealPeriod  string          `json:"meal_period"`
	ImageURL    string          `json:"image_url"`
}

type UpdateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uint            `json:"category_id"`
	IsAvailable *bool            `json:"is_available"`
	MealPeriod  *string          `json:"meal_period"`
	ImageURL    *string          `json:"image_url"`
}

// ToMenuItemResponse renders item with its availability for the current
// meal period.
func ToMenuItemResponse(item models.MenuItem, current models.MealPeriod) MenuItemResponse {
	period := item.MealPeriod
	if p, ok := models.ParseMealPeriod(string(period)); ok {
		period = p
	} else {
		period = models.MealPeriodBoth
	}

	res := MenuItemResponse{
		ID:                  item.ID,
		Name:                item.Name,
		Description:         item.Description,
		Price:               pricing.FormatMoney(item.Price),
		CategoryID:          item.CategoryID,
		IsAvailable:         item.IsAvailable,
		MealPeriod:          period,
		ImageURL:            item.ImageURL,
		AvailableNow:        pricing.IsItemAvailable(item, current),
		AvailabilityMessage: pricing.AvailabilityMessage(item, current),
		MealPeriodTag:       pricing.MealPeriodTag(item),
		CreatedAt:           item.CreatedAt.Format(timeLayout),
		UpdatedAt:           item.UpdatedAt.Format(timeLayout),
	}
	if item.Category != nil {
		res.CategoryName = item.Category.Name
	}
	return res
}

// availableNowScope filters items by whether they can be ordered while
// serving current. It mirrors pricing.IsItemAvailable in SQL.
func availableNowScope(current models.MealPeriod, want bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		cond := "is_available = true"
		if current == models.MealPeriodLunch {
			cond = "is_available = true AND UPPER(COALESCE(meal_period, 'BOTH')) <> 'DINNER'"
		}
		if want {
			return db.Where(cond)
		}
		return db.Where("NOT (" + cond + ")")
	}
}

// GET /menu/menu-items?skip=0&limit=12&category_id=&search=&min_price=&max_price=&meal_period=&available_now=
func ListMenuItemsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 12)
		if skip < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "skip cannot be negative")
		}
		if limit < 1 || limit > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 100")
		}

		current := d.Period.Current()
		q := d.DB.WithContext(c.UserContext()).Model(&models.MenuItem{}).Preload("Category")

		if id := c.QueryInt("category_id", 0); id > 0 {
			q = q.Where("category_id = ?", id)
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			like := "%" + search + "%"
			q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
		}
		if raw := c.Query("min_price"); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "min_price must be a number")
			}
			q = q.Where("price >= ?", p)
		}
		if raw := c.Query("max_price"); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "max_price must be a number")
			}
			q = q.Where("price <= ?", p)
		}
		if raw := c.Query("meal_period"); raw != "" {
			p, ok := models.ParseMealPeriod(raw)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "meal_period must be BOTH, LUNCH or DINNER")
			}
			q = q.Where("meal_period = ?", p)
		}
		if raw := c.Query("available_now"); raw != "" {
			q = q.Scopes(availableNowScope(current, raw == "true" || raw == "1"))
		}

		var items []models.MenuItem
		if err := q.Order("name asc").Offset(skip).Limit(limit).Find(&items).Error; err != nil {
			return internalError(c, err, "Menu items could not be listed")
		}

		res := make([]MenuItemResponse, 0, len(items))
		for _, it := range items {
			res = append(res, ToMenuItemResponse(it, current))
		}
		return c.JSON(res)
	}
}

// GET /menu/menu-items/:id
func GetMenuItemHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		var item models.MenuItem
		if err := d.DB.WithContext(c.UserContext()).Preload("Category").First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Menu item not found")
			}
			return internalError(c, err, "Menu item could not be loaded")
		}
		return c.JSON(ToMenuItemResponse(item, d.Period.Current()))
	}
}

// buildMenuItem validates a create request.
func buildMenuItem(body CreateMenuItemRequest) (models.MenuItem, error) {
	name, err := cleanName(body.Name)
	if err != nil {
		return models.MenuItem{}, err
	}
	price, err := cleanPrice(body.Price)
	if err != nil {
		return models.MenuItem{}, err
	}
	period, err := parseItemPeriod(body.MealPeriod)
	if err != nil {
		return models.MenuItem{}, err
	}
	if body.CategoryID == 0 {
		return models.MenuItem{}, fiber.NewError(fiber.StatusBadRequest, "category_id is required")
	}

	available := true
	if body.IsAvailable != nil {
		available = *body.IsAvailable
	}
	return models.MenuItem{
		Name:        name,
		Description: body.Description,
		Price:       price,
		CategoryID:  body.CategoryID,
		IsAvailable: available,
		MealPeriod:  period,
		ImageURL:    strings.TrimSpace(body.ImageURL),
	}, nil
}

// applyMenuItemUpdate copies the set fields of body onto item.
func applyMenuItemUpdate(item *models.MenuItem, body UpdateMenuItemRequest) error {
	if body.Name != nil {
		name, err := cleanName(*body.Name)
		if err != nil {
			return err
		}
		item.Name = name
	}
	if body.Description != nil {
		item.Description = *body.Description
	}
	if body.Price != nil {
		price, err := cleanPrice(*body.Price)
		if err != nil {
			return err
		}
		item.Price = price
	}
	if body.CategoryID != nil {
		if *body.CategoryID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "category_id cannot be empty")
		}
		item.CategoryID = *body.CategoryID
	}
	if body.IsAvailable != nil {
		item.IsAvailable = *body.IsAvailable
	}
	if body.MealPeriod != nil {
		period, err := parseItemPeriod(*body.MealPeriod)
		if err != nil {
			return err
		}
		item.MealPeriod = period
	}
	if body.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*body.ImageURL)
	}
	return nil
}

func categoryExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func requireCategory(c *fiber.Ctx, db *gorm.DB, id uint) error {
	ok, err := categoryExists(db, id)
	if err != nil {
		return internalError(c, err, "Category could not be loaded")
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Category not found")
	}
	return nil
}

// POST /menu/menu-items
func CreateMenuItemHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		item, err := buildMenuItem(body)
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		if err := requireCategory(c, db, item.CategoryID); err != nil {
			return err
		}
		if err := db.Create(&item).Error; err != nil {
			return internalError(c, err, "Menu item could not be created")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Menu item %q created", item.Name),
			After:       item,
		})
		return c.Status(fiber.StatusCreated).JSON(ToMenuItemResponse(item, d.Period.Current()))
	}
}

// PUT|PATCH /menu/menu-items/:id, partial update either way
func UpdateMenuItemHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var item models.MenuItem
		if err := loadByID(c, db, &item, id, "Menu item"); err != nil {
			return err
		}
		before := item

		var body UpdateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := applyMenuItemUpdate(&item, body); err != nil {
			return err
		}
		if item.CategoryID != before.CategoryID {
			if err := requireCategory(c, db, item.CategoryID); err != nil {
				return err
			}
		}

		if err := db.Save(&item).Error; err != nil {
			return internalError(c, err, "Menu item could not be updated")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Menu item %q updated", item.Name),
			Before:      before,
			After:       item,
		})
		return c.JSON(ToMenuItemResponse(item, d.Period.Current()))
	}
}

// DELETE /menu/menu-items/:id
func DeleteMenuItemHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var item models.MenuItem
		if err := loadByID(c, db, &item, id, "Menu item"); err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&item).Association("Modifiers").Clear(); err != nil {
				return err
			}
			return tx.Delete(&item).Error
		})
		if err != nil {
			return internalError(c, err, "Menu item could not be deleted")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "menu_item",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Menu item %q deleted", item.Name),
			Before:      item,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
