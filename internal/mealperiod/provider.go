// Package mealperiod owns the restaurant's current meal period (lunch or
// dinner) and where it is persisted.
package mealperiod

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
)

// DefaultPeriod is used when the store holds nothing usable.
const DefaultPeriod = models.MealPeriodLunch

var ErrInvalidPeriod = errors.New("meal period must be LUNCH or DINNER")

// Store persists the current meal period. Load returns "" and no error when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (models.MealPeriod, error)
	Save(ctx context.Context, p models.MealPeriod) error
}

// Provider caches the current period and writes every change through to its
// store. A failed save leaves the cached value unchanged.
type Provider struct {
	mu      sync.RWMutex
	store   Store
	current models.MealPeriod
}

func NewProvider(ctx context.Context, store Store) (*Provider, error) {
	p, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load meal period: %w", err)
	}
	if !p.IsServicePeriod() {
		p = DefaultPeriod
	}
	return &Provider{store: store, current: p}, nil
}

func (p *Provider) Current() models.MealPeriod {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *Provider) IsLunch() bool  { return p.Current() == models.MealPeriodLunch }
func (p *Provider) IsDinner() bool { return p.Current() == models.MealPeriodDinner }

func (p *Provider) Set(ctx context.Context, period models.MealPeriod) error {
	if !period.IsServicePeriod() {
		return ErrInvalidPeriod
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setLocked(ctx, period)
}

func (p *Provider) SwitchToLunch(ctx context.Context) error {
	return p.Set(ctx, models.MealPeriodLunch)
}

func (p *Provider) SwitchToDinner(ctx context.Context) error {
	return p.Set(ctx, models.MealPeriodDinner)
}

// Toggle flips lunch and dinner and returns the new period.
func (p *Provider) Toggle(ctx context.Context) (models.MealPeriod, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := models.MealPeriodDinner
	if p.current == models.MealPeriodDinner {
		next = models.MealPeriodLunch
	}
	if err := p.setLocked(ctx, next); err != nil {
		return p.current, err
	}
	return next, nil
}

func (p *Provider) setLocked(ctx context.Context, period models.MealPeriod) error {
	if err := p.store.Save(ctx, period); err != nil {
		return fmt.Errorf("save meal period: %w", err)
	}
	p.current = period
	return nil
}
