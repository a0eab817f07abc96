package mealperiod

import (
	"context"
	"sync"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
)

type MemoryStore struct {
	mu     sync.Mutex
	period models.MealPeriod
}

func NewMemoryStore(initial models.MealPeriod) *MemoryStore {
	return &MemoryStore{period: initial}
}

func (s *MemoryStore) Load(context.Context) (models.MealPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period, nil
}

func (s *MemoryStore) Save(_ context.Context, p models.MealPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.period = p
	return nil
}
