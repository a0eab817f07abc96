package menu

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ImportRow is one parsed spreadsheet line.
// Columns: name, description, price, category, meal_period.
type ImportRow struct {
	Line        int
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	MealPeriod  models.MealPeriod
}

type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isHeaderRow(row []string) bool {
	first := strings.ToUpper(cell(row, 0))
	return first == "NAME" || first == "ITEM" || first == "ITEM NAME" || first == "MENU ITEM"
}

// ParseImportRows turns sheet rows into menu rows. A header row is skipped
// when present and blank lines are ignored. Line numbers are 1-based, as in
// the spreadsheet.
func ParseImportRows(rows [][]string) ([]ImportRow, []RowError) {
	var out []ImportRow
	var errs []RowError

	for i, row := range rows {
		line := i + 1
		if i == 0 && isHeaderRow(row) {
			continue
		}
		name := cell(row, 0)
		if name == "" {
			continue
		}
		if utf8.RuneCountInString(name) > 100 {
			errs = append(errs, RowError{Line: line, Error: "name is longer than 100 characters"})
			continue
		}

		rawPrice := strings.TrimPrefix(cell(row, 2), "$")
		price, err := decimal.NewFromString(strings.ReplaceAll(rawPrice, ",", ""))
		if err != nil {
			errs = append(errs, RowError{Line: line, Error: fmt.Sprintf("invalid price %q", cell(row, 2))})
			continue
		}
		if price.IsNegative() {
			errs = append(errs, RowError{Line: line, Error: "price cannot be negative"})
			continue
		}

		category := cell(row, 3)
		if category == "" {
			errs = append(errs, RowError{Line: line, Error: "category is required"})
			continue
		}

		period := models.MealPeriodBoth
		if raw := cell(row, 4); raw != "" {
			p, ok := models.ParseMealPeriod(raw)
			if !ok {
				errs = append(errs, RowError{Line: line, Error: fmt.Sprintf("invalid meal period %q", raw)})
				continue
			}
			period = p
		}

		out = append(out, ImportRow{
			Line:        line,
			Name:        name,
			Description: cell(row, 1),
			Price:       price.Round(2),
			Category:    category,
			MealPeriod:  period,
		})
	}
	return out, errs
}

// POST /menu/menu-items/import (multipart, field "file", .xlsx)
//
// Categories are matched by name ignoring case and created when missing.
// Every row becomes a new available menu item.
func ImportMenuItemsHandler(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "File could not be uploaded: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return internalError(c, err, "File could not be opened")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file could not be read: "+err.Error())
		}
		defer excelFile.Close()

		sheets := excelFile.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file has no sheets")
		}
		rows, err := excelFile.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet could not be read: "+err.Error())
		}

		parsed, rowErrs := ParseImportRows(rows)
		if len(parsed) == 0 && len(rowErrs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file is empty")
		}

		ctx := c.UserContext()
		db := d.DB.WithContext(ctx)

		var categories []models.Category
		if err := db.Find(&categories).Error; err != nil {
			return internalError(c, err, "Categories could not be loaded")
		}
		byName := make(map[string]uint, len(categories))
		for _, cat := range categories {
			byName[strings.ToLower(cat.Name)] = cat.ID
		}

		created := 0
		for _, r := range parsed {
			key := strings.ToLower(r.Category)
			catID, ok := byName[key]
			if !ok {
				cat := models.Category{Name: r.Category}
				if err := db.Create(&cat).Error; err != nil {
					rowErrs = append(rowErrs, RowError{Line: r.Line, Error: "category could not be created"})
					continue
				}
				catID = cat.ID
				byName[key] = catID
			}

			item := models.MenuItem{
				Name:        r.Name,
				Description: r.Description,
				Price:       r.Price,
				CategoryID:  catID,
				IsAvailable: true,
				MealPeriod:  r.MealPeriod,
			}
			if err := db.Create(&item).Error; err != nil {
				logger.FromCtx(ctx).Warn("menu import row failed", zap.Int("line", r.Line), zap.Error(err))
				rowErrs = append(rowErrs, RowError{Line: r.Line, Error: "menu item could not be created"})
				continue
			}
			created++
		}

		d.record(ctx, audit.Entry{
			EntityType:  "menu_item",
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%d menu items imported from %s", created, fileHeader.Filename),
		})

		if rowErrs == nil {
			rowErrs = []RowError{}
		}
		return c.JSON(fiber.Map{
			"created": created,
			"errors":  rowErrs,
			"message": fmt.Sprintf("%d menu items imported, %d rows skipped.", created, len(rowErrs)),
		})
	}
}
