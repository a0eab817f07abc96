package orders

import (
	"context"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/events"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTable(ctx context.Context, t *models.Table) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Table)
	return list, args.Error(1)
}

func (m *MockRepository) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Table)
	return t, args.Error(1)
}

func (m *MockRepository) TableNumberExists(ctx context.Context, number int) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) SaveTable(ctx context.Context, t *models.Table) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) DeleteTable(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountActiveOrders(ctx context.Context, tableID uint) (int64, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ClearTable(ctx context.Context, tableID uint) (int64, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]models.Order)
	return list, args.Error(1)
}

func (m *MockRepository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *MockRepository) GetOrdersByIDs(ctx context.Context, ids []uint) ([]models.Order, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]models.Order)
	return list, args.Error(1)
}

func (m *MockRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) SaveOrder(ctx context.Context, o *models.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) DeleteOrder(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) AddItems(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	args := m.Called(ctx, o, items)
	return args.Error(0)
}

func (m *MockRepository) DeleteItem(ctx context.Context, orderID, itemID uint) (int64, error) {
	args := m.Called(ctx, orderID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreateDiscount(ctx context.Context, d *models.Discount) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRepository) DeleteDiscount(ctx context.Context, orderID uint) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) MenuItemsByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]models.MenuItem)
	return list, args.Error(1)
}

func (m *MockRepository) ModifiersByIDs(ctx context.Context, ids []uint) ([]models.Modifier, error) {
	args := m.Called(ctx, ids)
	list, _ := args.Get(0).([]models.Modifier)
	return list, args.Error(1)
}

func (m *MockRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*models.Settings)
	return s, args.Error(1)
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	events []events.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingRecorder struct {
	entries []audit.Entry
}

func (r *recordingRecorder) Record(_ context.Context, e audit.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

type fixedPeriod models.MealPeriod

func (p fixedPeriod) Current() models.MealPeriod { return models.MealPeriod(p) }
