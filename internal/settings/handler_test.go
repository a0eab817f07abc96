package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/database"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/mealperiod"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, initial models.MealPeriod) (*fiber.App, sqlmock.Sqlmock, *mealperiod.Provider) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := database.OpenWithConn(conn)
	require.NoError(t, err)

	provider, err := mealperiod.NewProvider(context.Background(), mealperiod.NewMemoryStore(initial))
	require.NoError(t, err)

	d := Deps{DB: db, Period: provider, Audit: audit.Nop{}}
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		},
	})
	app.Get("/settings", GetSettingsHandler(d))
	app.Patch("/settings", UpdateSettingsHandler(d))
	app.Patch("/settings/meal-period", SetMealPeriodHandler(d))
	app.Post("/settings/meal-period/toggle", ToggleMealPeriodHandler(d))
	app.Get("/settings/ayce-price", AycePriceHandler(d))
	return app, mock, provider
}

func settingsRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "restaurant_name", "timezone", "current_meal_period", "ayce_lunch_price", "ayce_dinner_price"}).
		AddRow(1, "Umi Sushi", "America/Chicago", "LUNCH", "18.00", "27.50")
}

func TestGetSettingsHandler(t *testing.T) {
	app, mock, _ := newTestApp(t, models.MealPeriodLunch)
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(settingsRows())

	resp, err := app.Test(httptest.NewRequest("GET", "/settings", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body SettingsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Umi Sushi", body.RestaurantName)
	assert.Equal(t, models.MealPeriodLunch, body.CurrentMealPeriod)
	assert.Equal(t, "18.00", body.CurrentAycePrice)
	assert.Equal(t, "27.50", body.AyceDinnerPrice)
}

func TestToggleMealPeriodHandler(t *testing.T) {
	app, mock, provider := newTestApp(t, models.MealPeriodLunch)
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(settingsRows())

	resp, err := app.Test(httptest.NewRequest("POST", "/settings/meal-period/toggle", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body MealPeriodResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, models.MealPeriodDinner, body.CurrentMealPeriod)
	assert.Equal(t, "27.50", body.AycePrice)
	assert.True(t, provider.IsDinner())
}

func TestSetMealPeriodHandler(t *testing.T) {
	t.Run("lowercase accepted", func(t *testing.T) {
		app, mock, provider := newTestApp(t, models.MealPeriodDinner)
		mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(settingsRows())

		resp, err := app.Test(httptest.NewRequest("PATCH", "/settings/meal-period?meal_period=lunch", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, provider.IsLunch())
	})

	t.Run("BOTH rejected", func(t *testing.T) {
		app, _, provider := newTestApp(t, models.MealPeriodDinner)

		resp, err := app.Test(httptest.NewRequest("PATCH", "/settings/meal-period?meal_period=BOTH", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.True(t, provider.IsDinner())
	})
}

func TestUpdateSettingsHandler_Validation(t *testing.T) {
	app, mock, _ := newTestApp(t, models.MealPeriodLunch)

	for _, raw := range []string{
		`{"restaurant_name":"   "}`,
		`{"ayce_lunch_price":-1}`,
		`{"current_meal_period":"brunch"}`,
	} {
		req := httptest.NewRequest("PATCH", "/settings", strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, raw)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAycePriceHandler(t *testing.T) {
	app, mock, _ := newTestApp(t, models.MealPeriodDinner)
	mock.ExpectQuery(`SELECT \* FROM "settings"`).WillReturnRows(settingsRows())

	resp, err := app.Test(httptest.NewRequest("GET", "/settings/ayce-price", nil))
	require.NoError(t, err)

	var body MealPeriodResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "27.50", body.AycePrice)
	assert.Equal(t, models.MealPeriodDinner, body.CurrentMealPeriod)
}
