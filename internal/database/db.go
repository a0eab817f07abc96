package database

import (
	"errors"
	"fmt"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/config"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}

	if err := migrateMealPeriodColumn(DB); err != nil {
		return err
	}

	err = DB.AutoMigrate(
		&models.Category{},
		&models.Modifier{},
		&models.MenuItem{},
		&models.Table{},
		&models.Order{},
		&models.OrderItem{},
		&models.Discount{},
		&models.Settings{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if _, err := EnsureSettings(DB); err != nil {
		return err
	}

	logger.L().Info("database connected, migrations complete")
	return nil
}

// migrateMealPeriodColumn upgrades menu_items tables created before items
// carried a meal period. Older rows were written with a lowercase 'both'
// default; values are upper-cased so they match models.MealPeriod.
func migrateMealPeriodColumn(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&models.MenuItem{}) {
		return nil
	}

	if !m.HasColumn(&models.MenuItem{}, "meal_period") {
		logger.L().Info("adding menu_items.meal_period column")
		if err := db.Exec("ALTER TABLE menu_items ADD COLUMN meal_period VARCHAR(20) NOT NULL DEFAULT 'BOTH'").Error; err != nil {
			return fmt.Errorf("could not add meal_period column: %w", err)
		}
	}

	res := db.Exec("UPDATE menu_items SET meal_period = UPPER(meal_period) WHERE meal_period <> UPPER(meal_period)")
	if res.Error != nil {
		return fmt.Errorf("could not normalize meal_period values: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		logger.L().Info("normalized menu item meal periods", zap.Int64("rows", res.RowsAffected))
	}
	return nil
}

// EnsureSettings returns the settings row, creating it with defaults when
// it does not exist yet.
func EnsureSettings(db *gorm.DB) (*models.Settings, error) {
	var s models.Settings
	err := db.First(&s, models.SettingsID).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}

	logger.L().Info("no settings found, creating default settings")
	s = models.DefaultSettings()
	if err := db.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("could not create default settings: %w", err)
	}
	return &s, nil
}
