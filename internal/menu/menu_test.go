package menu

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/database"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixedPeriod models.MealPeriod

func (p fixedPeriod) Current() models.MealPeriod { return models.MealPeriod(p) }

func newTestDeps(t *testing.T, period models.MealPeriod) (Deps, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := database.OpenWithConn(conn)
	require.NoError(t, err)
	return Deps{DB: db, Period: fixedPeriod(period), Audit: audit.Nop{}}, mock
}

func newTestApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})
	app.Get("/menu/menu-items", ListMenuItemsHandler(d))
	app.Post("/menu/menu-items", CreateMenuItemHandler(d))
	app.Post("/menu/menu-items/import", ImportMenuItemsHandler(d))
	app.Get("/menu/menu-items/:id", GetMenuItemHandler(d))
	app.Put("/menu/menu-items/:id", UpdateMenuItemHandler(d))
	app.Post("/menu/menu-items/bulk", BulkMenuItemsHandler(d))
	app.Patch("/menu/menu-items/bulk-availability", BulkAvailabilityHandler(d))
	app.Post("/menu/categories", CreateCategoryHandler(d))
	app.Delete("/menu/categories/:id", DeleteCategoryHandler(d))
	app.Get("/menu/modifiers", ListModifiersHandler(d))
	app.Post("/menu/modifiers", CreateModifierHandler(d))
	app.Put("/menu/modifiers/:id", ReplaceModifierHandler(d))
	app.Patch("/menu/modifiers/:id", UpdateModifierHandler(d))
	app.Delete("/menu/modifiers/:id", DeleteModifierHandler(d))
	return app
}

func TestToMenuItemResponse_DinnerItemAtLunch(t *testing.T) {
	item := models.MenuItem{
		ID:          4,
		Name:        "Omakase",
		Price:       decimal.RequireFromString("85"),
		IsAvailable: true,
		MealPeriod:  models.MealPeriodDinner,
		Category:    &models.Category{Name: "Chef Specials"},
	}

	res := ToMenuItemResponse(item, models.MealPeriodLunch)
	assert.False(t, res.AvailableNow)
	assert.Equal(t, "Only available during dinner", res.AvailabilityMessage)
	assert.Equal(t, "Dinner Only", res.MealPeriodTag)
	assert.Equal(t, "85.00", res.Price)
	assert.Equal(t, "Chef Specials", res.CategoryName)

	res = ToMenuItemResponse(item, models.MealPeriodDinner)
	assert.True(t, res.AvailableNow)
	assert.Empty(t, res.AvailabilityMessage)
}

func TestToMenuItemResponse_LegacyPeriod(t *testing.T) {
	res := ToMenuItemResponse(models.MenuItem{Name: "Miso Soup", IsAvailable: true, MealPeriod: "both"}, models.MealPeriodLunch)
	assert.Equal(t, models.MealPeriodBoth, res.MealPeriod)
	assert.Empty(t, res.MealPeriodTag)

	res = ToMenuItemResponse(models.MenuItem{Name: "Edamame", IsAvailable: true}, models.MealPeriodLunch)
	assert.Equal(t, models.MealPeriodBoth, res.MealPeriod)
}

func TestBuildMenuItem(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		item, err := buildMenuItem(CreateMenuItemRequest{
			Name:       "  Tuna Roll ",
			Price:      decimal.RequireFromString("8.499"),
			CategoryID: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "Tuna Roll", item.Name)
		assert.Equal(t, "8.50", item.Price.StringFixed(2))
		assert.True(t, item.IsAvailable)
		assert.Equal(t, models.MealPeriodBoth, item.MealPeriod)
	})

	t.Run("explicitly unavailable", func(t *testing.T) {
		off := false
		item, err := buildMenuItem(CreateMenuItemRequest{Name: "Uni", CategoryID: 2, IsAvailable: &off, MealPeriod: "dinner"})
		require.NoError(t, err)
		assert.False(t, item.IsAvailable)
		assert.Equal(t, models.MealPeriodDinner, item.MealPeriod)
	})

	for name, req := range map[string]CreateMenuItemRequest{
		"blank name":     {Name: " ", CategoryID: 1},
		"negative price": {Name: "Ikura", CategoryID: 1, Price: decimal.RequireFromString("-1")},
		"bad period":     {Name: "Ikura", CategoryID: 1, MealPeriod: "brunch"},
		"no category":    {Name: "Ikura"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := buildMenuItem(req)
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusBadRequest, fe.Code)
		})
	}
}

func TestParseImportRows(t *testing.T) {
	rows := [][]string{
		{"Name", "Description", "Price", "Category", "Meal Period"},
		{"California Roll", "Crab, avocado", "9.5", "Rolls", ""},
		{},
		{"Omakase", "", "$85.00", "Chef Specials", "dinner"},
		{"Broken", "", "ten", "Rolls"},
		{"No Category", "", "3"},
		{"Brunch Roll", "", "4", "Rolls", "brunch"},
	}

	parsed, errs := ParseImportRows(rows)

	require.Len(t, parsed, 2)
	assert.Equal(t, "California Roll", parsed[0].Name)
	assert.Equal(t, "9.50", parsed[0].Price.StringFixed(2))
	assert.Equal(t, models.MealPeriodBoth, parsed[0].MealPeriod)
	assert.Equal(t, 4, parsed[1].Line)
	assert.Equal(t, models.MealPeriodDinner, parsed[1].MealPeriod)

	require.Len(t, errs, 3)
	assert.Equal(t, 5, errs[0].Line)
	assert.Equal(t, 6, errs[1].Line)
	assert.Equal(t, 7, errs[2].Line)
}

func TestParseImportRows_FromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Salmon Nigiri", "Two pieces", "6.50", "Nigiri", "BOTH"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Bento Box", "", "14", "Lunch", "LUNCH"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	rows, err := book.GetRows(book.GetSheetList()[0])
	require.NoError(t, err)

	parsed, errs := ParseImportRows(rows)
	assert.Empty(t, errs)
	require.Len(t, parsed, 2)
	assert.Equal(t, "Salmon Nigiri", parsed[0].Name)
	assert.Equal(t, models.MealPeriodLunch, parsed[1].MealPeriod)
}

func TestImportMenuItemsHandler_RejectsNonXLSX(t *testing.T) {
	d, _ := newTestDeps(t, models.MealPeriodDinner)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "menu.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("name,price\n"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/menu/menu-items/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := newTestApp(d).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetMenuItemHandler_NotFound(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT \* FROM "menu_items"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := newTestApp(d).Test(httptest.NewRequest("GET", "/menu/menu-items/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Menu item not found", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMenuItemsHandler_LimitValidation(t *testing.T) {
	d, _ := newTestDeps(t, models.MealPeriodDinner)

	resp, err := newTestApp(d).Test(httptest.NewRequest("GET", "/menu/menu-items?limit=101", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = newTestApp(d).Test(httptest.NewRequest("GET", "/menu/menu-items?meal_period=brunch", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListMenuItemsHandler_AvailableNowAtLunch(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodLunch)
	rows := sqlmock.NewRows([]string{"id", "name", "price", "category_id", "is_available", "meal_period"}).
		AddRow(1, "Bento Box", "14.00", 0, true, "LUNCH")
	mock.ExpectQuery(`SELECT \* FROM "menu_items" WHERE is_available = true AND UPPER\(COALESCE\(meal_period, 'BOTH'\)\) <> 'DINNER'`).
		WillReturnRows(rows)

	resp, err := newTestApp(d).Test(httptest.NewRequest("GET", "/menu/menu-items?available_now=true", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []MenuItemResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.True(t, body[0].AvailableNow)
	assert.Equal(t, "Lunch Only", body[0].MealPeriodTag)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListModifiersHandler_IncludesGlobal(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	rows := sqlmock.NewRows([]string{"id", "name", "price", "category_id", "is_available"}).
		AddRow(1, "Extra Wasabi", "0.50", nil, true).
		AddRow(2, "Spicy Mayo", "1.00", 3, true)
	mock.ExpectQuery(`SELECT \* FROM "modifiers" WHERE category_id = \$1 OR category_id IS NULL`).
		WithArgs(3).
		WillReturnRows(rows)

	resp, err := newTestApp(d).Test(httptest.NewRequest("GET", "/menu/modifiers?category_id=3", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []ModifierResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Nil(t, body[0].CategoryID)
	assert.Equal(t, "1.00", body[1].Price)
}

func TestCreateMenuItemHandler_Validation(t *testing.T) {
	d, _ := newTestDeps(t, models.MealPeriodDinner)

	req := httptest.NewRequest("POST", "/menu/menu-items", strings.NewReader(`{"name":"Tuna","price":-2,"category_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newTestApp(d).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
