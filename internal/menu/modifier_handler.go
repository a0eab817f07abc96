package menu

import (
	"errors"
	"fmt"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ModifierResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	CategoryID   *uint  `json:"category_id"`
	DisplayOrder int    `json:"display_order"`
	IsAvailable  bool   `json:"is_available"`
	CreatedAt    string `json:"created_at"`
}

// ModifierRequest is used for create and full replace.
type ModifierRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   *uint           `json:"category_id"`
	DisplayOrder int             `json:"display_order"`
	IsAvailable  *bool           `json:"is_available"`
}

type PatchModifierRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	CategoryID   *uint            `json:"category_id"`
	DisplayOrder *int             `json:"display_order"`
	IsAvailable  *bool            `json:"is_available"`
}

func toModifierResponse(m models.Modifier) ModifierResponse {
	return ModifierResponse{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        pricing.FormatMoney(m.Price),
		CategoryID:   m.CategoryID,
		DisplayOrder: m.DisplayOrder,
		IsAvailable:  m.IsAvailable,
		CreatedAt:    m.CreatedAt.Format(timeLayout),
	}
}

// fillModifier validates body and writes it onto m.
func fillModifier(m *models.Modifier, body ModifierRequest) error {
	name, err := cleanName(body.Name)
	if err != nil {
		return err
	}
	price, err := cleanPrice(body.Price)
	if err != nil {
		return err
	}
	m.Name = name
	m.Description = body.Description
	m.Price = price
	m.CategoryID = body.CategoryID
	if m.CategoryID != nil && *m.CategoryID == 0 {
		m.CategoryID = nil
	}
	m.DisplayOrder = body.DisplayOrder
	m.IsAvailable = true
	if body.IsAvailable != nil {
		m.IsAvailable = *body.IsAvailable
	}
	return nil
}

// GET /menu/modifiers?category_id=
//
// With a category filter, modifiers of that category and global modifiers
// (no category) are returned.
func ListModifiersHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := d.DB.WithContext(c.UserContext()).Model(&models.Modifier{})
		if id := c.QueryInt("category_id", 0); id > 0 {
			q = q.Where("category_id = ? OR category_id IS NULL", id)
		}

		var mods []models.Modifier
		if err := q.Order("display_order asc").Order("name asc").Find(&mods).Error; err != nil {
			return internalError(c, err, "Modifiers could not be listed")
		}

		res := make([]ModifierResponse, 0, len(mods))
		for _, m := range mods {
			res = append(res, toModifierResponse(m))
		}
		return c.JSON(res)
	}
}

func loadModifier(c *fiber.Ctx, d Deps) (*models.Modifier, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var m models.Modifier
	if err := d.DB.WithContext(c.UserContext()).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Modifier not found")
		}
		return nil, internalError(c, err, "Modifier could not be loaded")
	}
	return &m, nil
}

// GET /menu/modifiers/:id
func GetModifierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := loadModifier(c, d)
		if err != nil {
			return err
		}
		return c.JSON(toModifierResponse(*m))
	}
}

// POST /menu/modifiers
func CreateModifierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ModifierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var m models.Modifier
		if err := fillModifier(&m, body); err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		if m.CategoryID != nil {
			if err := requireCategory(c, db, *m.CategoryID); err != nil {
				return err
			}
		}
		if err := db.Create(&m).Error; err != nil {
			return internalError(c, err, "Modifier could not be created")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "modifier",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Modifier %q created", m.Name),
			After:       m,
		})
		return c.Status(fiber.StatusCreated).JSON(toModifierResponse(m))
	}
}

// PUT /menu/modifiers/:id
func ReplaceModifierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := loadModifier(c, d)
		if err != nil {
			return err
		}
		before := *m

		var body ModifierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := fillModifier(m, body); err != nil {
			return err
		}
		return saveModifier(c, d, before, m)
	}
}

// PATCH /menu/modifiers/:id
func UpdateModifierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := loadModifier(c, d)
		if err != nil {
			return err
		}
		before := *m

		var body PatchModifierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name, err := cleanName(*body.Name)
			if err != nil {
				return err
			}
			m.Name = name
		}
		if body.Description != nil {
			m.Description = *body.Description
		}
		if body.Price != nil {
			price, err := cleanPrice(*body.Price)
			if err != nil {
				return err
			}
			m.Price = price
		}
		if body.CategoryID != nil {
			if *body.CategoryID == 0 {
				m.CategoryID = nil
			} else {
				m.CategoryID = body.CategoryID
			}
		}
		if body.DisplayOrder != nil {
			m.DisplayOrder = *body.DisplayOrder
		}
		if body.IsAvailable != nil {
			m.IsAvailable = *body.IsAvailable
		}
		return saveModifier(c, d, before, m)
	}
}

func saveModifier(c *fiber.Ctx, d Deps, before models.Modifier, m *models.Modifier) error {
	db := d.DB.WithContext(c.UserContext())
	if m.CategoryID != nil {
		if err := requireCategory(c, db, *m.CategoryID); err != nil {
			return err
		}
	}
	if err := db.Save(m).Error; err != nil {
		return internalError(c, err, "Modifier could not be updated")
	}

	d.record(c.UserContext(), audit.Entry{
		EntityType:  "modifier",
		EntityID:    m.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Modifier %q updated", m.Name),
		Before:      before,
		After:       m,
	})
	return c.JSON(toModifierResponse(*m))
}

// DELETE /menu/modifiers/:id
func DeleteModifierHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := loadModifier(c, d)
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var used int64
		if err := db.Table("order_item_modifiers").Where("modifier_id = ?", m.ID).Count(&used).Error; err != nil {
			return internalError(c, err, "Modifier could not be deleted")
		}
		if used > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Modifier is used by existing orders, mark it unavailable instead")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM menu_item_modifiers WHERE modifier_id = ?", m.ID).Error; err != nil {
				return err
			}
			return tx.Delete(m).Error
		})
		if err != nil {
			return internalError(c, err, "Modifier could not be deleted")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "modifier",
			EntityID:    m.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Modifier %q deleted", m.Name),
			Before:      m,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
