package menu

import (
	"errors"
	"fmt"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BulkUpdateItem struct {
	ID uint `json:"id"`
	UpdateMenuItemRequest
}

type BulkMenuRequest struct {
	Create []CreateMenuItemRequest `json:"create"`
	Update []BulkUpdateItem        `json:"update"`
	Delete []uint                  `json:"delete"`
}

type BulkError struct {
	Op    string `json:"op"`
	Index int    `json:"index"`
	ID    uint   `json:"id,omitempty"`
	Error string `json:"error"`
}

type BulkMenuResponse struct {
	Created []MenuItemResponse `json:"created"`
	Updated []MenuItemResponse `json:"updated"`
	Deleted []uint             `json:"deleted"`
	Errors  []BulkError        `json:"errors"`
}

type BulkAvailabilityRequest struct {
	ItemIDs     []uint `json:"item_ids"`
	IsAvailable *bool  `json:"is_available"`
}

func errMessage(err error) string {
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Message
	}
	return err.Error()
}

func lookupMessage(err error) string {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "Menu item not found"
	}
	return "Menu item could not be loaded"
}

func checkCategory(db *gorm.DB, id uint) error {
	ok, err := categoryExists(db, id)
	if err != nil {
		return fmt.Errorf("category %d could not be checked", id)
	}
	if !ok {
		return fmt.Errorf("category %d not found", id)
	}
	return nil
}

// POST /menu/menu-items/bulk
//
// Each operation is applied on its own; a failing entry is reported in
// errors and does not stop the others.
func BulkMenuItemsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkMenuRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Create)+len(body.Update)+len(body.Delete) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Nothing to do")
		}

		ctx := c.UserContext()
		db := d.DB.WithContext(ctx)
		current := d.Period.Current()
		res := BulkMenuResponse{
			Created: []MenuItemResponse{},
			Updated: []MenuItemResponse{},
			Deleted: []uint{},
			Errors:  []BulkError{},
		}

		for i, in := range body.Create {
			item, err := buildMenuItem(in)
			if err == nil {
				err = checkCategory(db, item.CategoryID)
			}
			if err == nil {
				err = db.Create(&item).Error
			}
			if err != nil {
				res.Errors = append(res.Errors, BulkError{Op: "create", Index: i, Error: errMessage(err)})
				continue
			}
			d.record(ctx, audit.Entry{EntityType: "menu_item", EntityID: item.ID, Action: models.AuditActionCreate,
				Description: fmt.Sprintf("Menu item %q created (bulk)", item.Name), After: item})
			res.Created = append(res.Created, ToMenuItemResponse(item, current))
		}

		for i, in := range body.Update {
			var item models.MenuItem
			if err := db.First(&item, in.ID).Error; err != nil {
				res.Errors = append(res.Errors, BulkError{Op: "update", Index: i, ID: in.ID, Error: lookupMessage(err)})
				continue
			}
			before := item
			err := applyMenuItemUpdate(&item, in.UpdateMenuItemRequest)
			if err == nil && item.CategoryID != before.CategoryID {
				err = checkCategory(db, item.CategoryID)
			}
			if err == nil {
				err = db.Save(&item).Error
			}
			if err != nil {
				res.Errors = append(res.Errors, BulkError{Op: "update", Index: i, ID: in.ID, Error: errMessage(err)})
				continue
			}
			d.record(ctx, audit.Entry{EntityType: "menu_item", EntityID: item.ID, Action: models.AuditActionUpdate,
				Description: fmt.Sprintf("Menu item %q updated (bulk)", item.Name), Before: before, After: item})
			res.Updated = append(res.Updated, ToMenuItemResponse(item, current))
		}

		for i, id := range body.Delete {
			var item models.MenuItem
			if err := db.First(&item, id).Error; err != nil {
				res.Errors = append(res.Errors, BulkError{Op: "delete", Index: i, ID: id, Error: lookupMessage(err)})
				continue
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&item).Association("Modifiers").Clear(); err != nil {
					return err
				}
				return tx.Delete(&item).Error
			})
			if err != nil {
				res.Errors = append(res.Errors, BulkError{Op: "delete", Index: i, ID: id, Error: err.Error()})
				continue
			}
			d.record(ctx, audit.Entry{EntityType: "menu_item", EntityID: id, Action: models.AuditActionDelete,
				Description: fmt.Sprintf("Menu item %q deleted (bulk)", item.Name), Before: item})
			res.Deleted = append(res.Deleted, id)
		}

		return c.JSON(res)
	}
}

// PATCH /menu/menu-items/bulk-availability
func BulkAvailabilityHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkAvailabilityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.ItemIDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "item_ids is required")
		}
		if body.IsAvailable == nil {
			return fiber.NewError(fiber.StatusBadRequest, "is_available is required")
		}

		res := d.DB.WithContext(c.UserContext()).Model(&models.MenuItem{}).
			Where("id IN ?", body.ItemIDs).
			Update("is_available", *body.IsAvailable)
		if res.Error != nil {
			return internalError(c, res.Error, "Availability could not be updated")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "menu_item",
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Availability set to %t for %d menu items", *body.IsAvailable, res.RowsAffected),
			After:       body,
		})
		return c.JSON(fiber.Map{"updated": res.RowsAffected})
	}
}
