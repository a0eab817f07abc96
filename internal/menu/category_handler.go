package menu

import (
	"errors"
	"fmt"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
}

type UpdateCategoryRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
}

func toCategoryResponse(cat models.Category) CategoryResponse {
	return CategoryResponse{
		ID:           cat.ID,
		Name:         cat.Name,
		Description:  cat.Description,
		DisplayOrder: cat.DisplayOrder,
		CreatedAt:    cat.CreatedAt.Format(timeLayout),
	}
}

// GET /menu/categories
func ListCategoriesHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := d.DB.WithContext(c.UserContext()).Order("display_order asc").Order("name asc").Find(&categories).Error; err != nil {
			return internalError(c, err, "Categories could not be listed")
		}

		res := make([]CategoryResponse, 0, len(categories))
		for _, cat := range categories {
			res = append(res, toCategoryResponse(cat))
		}
		return c.JSON(res)
	}
}

// GET /menu/categories/:id
func GetCategoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		var cat models.Category
		if err := d.DB.WithContext(c.UserContext()).First(&cat, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Category not found")
			}
			return internalError(c, err, "Category could not be loaded")
		}
		return c.JSON(toCategoryResponse(cat))
	}
}

// POST /menu/categories
func CreateCategoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		name, err := cleanName(body.Name)
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var count int64
		if err := db.Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name).Count(&count).Error; err != nil {
			return internalError(c, err, "Category could not be created")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "A category with this name already exists")
		}

		cat := models.Category{
			Name:         name,
			Description:  body.Description,
			DisplayOrder: body.DisplayOrder,
		}
		if err := db.Create(&cat).Error; err != nil {
			return internalError(c, err, "Category could not be created")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "category",
			EntityID:    cat.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Category %q created", cat.Name),
			After:       cat,
		})
		return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(cat))
	}
}

// PATCH /menu/categories/:id
func UpdateCategoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var cat models.Category
		if err := loadByID(c, db, &cat, id, "Category"); err != nil {
			return err
		}
		before := cat

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name, err := cleanName(*body.Name)
			if err != nil {
				return err
			}
			cat.Name = name
		}
		if body.Description != nil {
			cat.Description = *body.Description
		}
		if body.DisplayOrder != nil {
			cat.DisplayOrder = *body.DisplayOrder
		}

		if err := db.Save(&cat).Error; err != nil {
			return internalError(c, err, "Category could not be updated")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "category",
			EntityID:    cat.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Category %q updated", cat.Name),
			Before:      before,
			After:       cat,
		})
		return c.JSON(toCategoryResponse(cat))
	}
}

// DELETE /menu/categories/:id
func DeleteCategoryHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}

		db := d.DB.WithContext(c.UserContext())
		var cat models.Category
		if err := loadByID(c, db, &cat, id, "Category"); err != nil {
			return err
		}

		var count int64
		if err := db.Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return internalError(c, err, "Category could not be deleted")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Category still has menu items, delete or move them first")
		}

		if err := db.Delete(&models.Category{}, id).Error; err != nil {
			return internalError(c, err, "Category could not be deleted")
		}

		d.record(c.UserContext(), audit.Entry{
			EntityType:  "category",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Category %q deleted", cat.Name),
			Before:      cat,
		})
		return c.SendStatus(fiber.StatusNoContent)
	}
}
