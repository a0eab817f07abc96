package mealperiod

import (
	"context"
	"errors"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"gorm.io/gorm"
)

// SettingsStore persists the period in the settings row's
// current_meal_period column.
type SettingsStore struct {
	db *gorm.DB
}

func NewSettingsStore(db *gorm.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Load(ctx context.Context) (models.MealPeriod, error) {
	var st models.Settings
	err := s.db.WithContext(ctx).First(&st, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return st.CurrentMealPeriod, nil
}

func (s *SettingsStore) Save(ctx context.Context, p models.MealPeriod) error {
	defaults := models.DefaultSettings()
	defaults.CurrentMealPeriod = p

	var st models.Settings
	err := s.db.WithContext(ctx).
		Where(models.Settings{ID: models.SettingsID}).
		Attrs(defaults).
		FirstOrCreate(&st).Error
	if err != nil {
		return err
	}
	if st.CurrentMealPeriod == p {
		return nil
	}
	return s.db.WithContext(ctx).Model(&st).Update("current_meal_period", p).Error
}
