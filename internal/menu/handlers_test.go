package menu

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func errorOf(t *testing.T, raw []byte) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	msg, _ := body["error"].(string)
	return msg
}

var errConnReset = errors.New("connection reset")

func TestCleanName_CountsCharacters(t *testing.T) {
	name, err := cleanName(strings.Repeat("鮪", 60))
	require.NoError(t, err)
	assert.Equal(t, 60, len([]rune(name)))

	_, err = cleanName(strings.Repeat("鮪", 101))
	assert.Error(t, err)
}

func TestParseImportRows_MultibyteName(t *testing.T) {
	rows := [][]string{{strings.Repeat("鮭", 50), "", "4.00", "Nigiri", ""}}
	parsed, errs := ParseImportRows(rows)
	assert.Empty(t, errs)
	require.Len(t, parsed, 1)
}

func TestDeleteCategoryHandler(t *testing.T) {
	t.Run("refused while items reference it", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "categories"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Rolls"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "menu_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/categories/2", "")
		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "Category still has menu items, delete or move them first", errorOf(t, raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count failure stops the delete", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "categories"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "Rolls"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "menu_items"`).WillReturnError(errConnReset)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "categories"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/categories/2", "")
		assert.Equal(t, fiber.StatusInternalServerError, code)
		assert.Equal(t, "Category could not be deleted", errorOf(t, raw))
	})

	t.Run("lookup failure is not a 404", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "categories"`).WillReturnError(errConnReset)

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/categories/2", "")
		assert.Equal(t, fiber.StatusInternalServerError, code)
		assert.Equal(t, "Category could not be loaded", errorOf(t, raw))
	})

	t.Run("missing", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "categories"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/categories/2", "")
		assert.Equal(t, fiber.StatusNotFound, code)
		assert.Equal(t, "Category not found", errorOf(t, raw))
	})
}

func TestCreateCategoryHandler_DuplicateName(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE LOWER\(name\) = LOWER\(\$1\)`).
		WithArgs("Rolls").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	code, raw := send(t, newTestApp(d), "POST", "/menu/categories", `{"name":" Rolls "}`)
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "A category with this name already exists", errorOf(t, raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenuItemHandler_CategoryCheckFailure(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).WillReturnError(errConnReset)

	code, raw := send(t, newTestApp(d), "POST", "/menu/menu-items", `{"name":"Tuna Roll","price":"8.00","category_id":1}`)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Category could not be loaded", errorOf(t, raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMenuItemHandler_LookupFailure(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT \* FROM "menu_items"`).WillReturnError(errConnReset)

	code, raw := send(t, newTestApp(d), "PUT", "/menu/menu-items/4", `{"name":"Toro"}`)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Menu item could not be loaded", errorOf(t, raw))
}

func TestBulkMenuItemsHandler_ReportsEachFailure(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	// create[1]: category 3 does not exist
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// update id 9: no such item
	mock.ExpectQuery(`SELECT \* FROM "menu_items"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// delete id 10: lookup fails
	mock.ExpectQuery(`SELECT \* FROM "menu_items"`).WillReturnError(errConnReset)

	body := `{
		"create": [{"name":" ","price":"1.00","category_id":1}, {"name":"Ikura","price":"7.00","category_id":3}],
		"update": [{"id":9,"name":"Hamachi"}],
		"delete": [10]
	}`
	code, raw := send(t, newTestApp(d), "POST", "/menu/menu-items/bulk", body)
	require.Equal(t, fiber.StatusOK, code)

	var res BulkMenuResponse
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Empty(t, res.Created)
	assert.Empty(t, res.Updated)
	assert.Empty(t, res.Deleted)
	assert.Equal(t, []BulkError{
		{Op: "create", Index: 0, Error: "Name is required"},
		{Op: "create", Index: 1, Error: "category 3 not found"},
		{Op: "update", Index: 0, ID: 9, Error: "Menu item not found"},
		{Op: "delete", Index: 0, ID: 10, Error: "Menu item could not be loaded"},
	}, res.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkMenuItemsHandler_Empty(t *testing.T) {
	d, _ := newTestDeps(t, models.MealPeriodDinner)

	code, raw := send(t, newTestApp(d), "POST", "/menu/menu-items/bulk", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Nothing to do", errorOf(t, raw))
}

func TestBulkAvailabilityHandler(t *testing.T) {
	t.Run("updates every id", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "menu_items" SET "is_available"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		code, raw := send(t, newTestApp(d), "PATCH", "/menu/menu-items/bulk-availability", `{"item_ids":[1,2,3],"is_available":false}`)
		require.Equal(t, fiber.StatusOK, code)

		var res map[string]int64
		require.NoError(t, json.Unmarshal(raw, &res))
		assert.Equal(t, int64(3), res["updated"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("flag required", func(t *testing.T) {
		d, _ := newTestDeps(t, models.MealPeriodDinner)
		code, raw := send(t, newTestApp(d), "PATCH", "/menu/menu-items/bulk-availability", `{"item_ids":[1]}`)
		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "is_available is required", errorOf(t, raw))
	})

	t.Run("ids required", func(t *testing.T) {
		d, _ := newTestDeps(t, models.MealPeriodDinner)
		code, _ := send(t, newTestApp(d), "PATCH", "/menu/menu-items/bulk-availability", `{"is_available":true}`)
		assert.Equal(t, fiber.StatusBadRequest, code)
	})
}

func modifierRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "category_id", "is_available"}).
		AddRow(5, "Extra Wasabi", "0.50", nil, true)
}

func TestCreateModifierHandler_UnknownCategory(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	code, raw := send(t, newTestApp(d), "POST", "/menu/modifiers", `{"name":"Tobiko","price":"1.50","category_id":9}`)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Category not found", errorOf(t, raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceModifierHandler_Validation(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT \* FROM "modifiers"`).WillReturnRows(modifierRow())

	code, raw := send(t, newTestApp(d), "PUT", "/menu/modifiers/5", `{"name":"","price":"1.00"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Name is required", errorOf(t, raw))
}

func TestUpdateModifierHandler_SwitchOff(t *testing.T) {
	d, mock := newTestDeps(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT \* FROM "modifiers"`).WillReturnRows(modifierRow())
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "modifiers" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	code, raw := send(t, newTestApp(d), "PATCH", "/menu/modifiers/5", `{"is_available":false}`)
	require.Equal(t, fiber.StatusOK, code)

	var res ModifierResponse
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.False(t, res.IsAvailable)
	assert.Equal(t, "0.50", res.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteModifierHandler(t *testing.T) {
	t.Run("refused while orders use it", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "modifiers"`).WillReturnRows(modifierRow())
		mock.ExpectQuery(`SELECT count\(\*\) FROM "order_item_modifiers" WHERE modifier_id = \$1`).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/modifiers/5", "")
		assert.Equal(t, fiber.StatusBadRequest, code)
		assert.Equal(t, "Modifier is used by existing orders, mark it unavailable instead", errorOf(t, raw))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		d, mock := newTestDeps(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "modifiers"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		code, raw := send(t, newTestApp(d), "DELETE", "/menu/modifiers/5", "")
		assert.Equal(t, fiber.StatusNotFound, code)
		assert.Equal(t, "Modifier not found", errorOf(t, raw))
	})
}
