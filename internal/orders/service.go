// Package orders manages tables, orders, their items and discounts, and
// prices orders against the live menu.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/events"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PeriodSource reports the meal period the restaurant is serving.
type PeriodSource interface {
	Current() models.MealPeriod
}

type Options struct {
	// StrictTransitions enforces CanTransition on status updates.
	StrictTransitions bool
	// DefaultAycePrice is stored on non-AYCE orders, and on AYCE orders
	// without a price when settings cannot be read.
	DefaultAycePrice decimal.Decimal
}

type Service struct {
	repo      Repository
	period    PeriodSource
	publisher events.Publisher
	recorder  audit.Recorder
	opts      Options
	now       func() time.Time
}

func NewService(repo Repository, period PeriodSource, publisher events.Publisher, recorder audit.Recorder, opts Options) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		period:    period,
		publisher: publisher,
		recorder:  recorder,
		opts:      opts,
		now:       time.Now,
	}
}

type ItemInput struct {
	MenuItemID  uint
	Quantity    int
	Notes       string
	ModifierIDs []uint
}

type CreateOrderInput struct {
	TableID   uint
	AyceOrder bool
	AycePrice *decimal.Decimal
	Notes     string
	Items     []ItemInput
}

type UpdateOrderInput struct {
	TableID   *uint
	Status    *models.OrderStatus
	AyceOrder *bool
	AycePrice *decimal.Decimal
	Notes     *string
}

type TableInput struct {
	Number   int
	Capacity int
	Notes    string
}

type DiscountInput struct {
	Type  models.DiscountType
	Value decimal.Decimal
}

type BulkStatusResult struct {
	Updated []uint          `json:"updated"`
	Failed  map[uint]string `json:"failed"`
}

// ---- tables ----

func (s *Service) CreateTable(ctx context.Context, in TableInput) (*models.Table, error) {
	if in.Number < 1 || in.Capacity < 1 {
		return nil, ErrInvalidTable
	}
	taken, err := s.repo.TableNumberExists(ctx, in.Number)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTableNumberTaken
	}

	t := &models.Table{
		Number:   in.Number,
		Capacity: in.Capacity,
		Status:   models.TableStatusAvailable,
		Notes:    in.Notes,
	}
	if err := s.repo.CreateTable(ctx, t); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "table",
		EntityID:    t.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Table %d created", t.Number),
		After:       t,
	})
	return t, nil
}

func (s *Service) ListTables(ctx context.Context) ([]models.Table, error) {
	return s.repo.ListTables(ctx)
}

func (s *Service) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	return s.repo.GetTable(ctx, id)
}

func (s *Service) UpdateTableStatus(ctx context.Context, id uint, status models.TableStatus) (*models.Table, error) {
	t, err := s.repo.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *t
	t.Status = status
	if err := s.repo.SaveTable(ctx, t); err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "table",
		EntityID:    t.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Table %d status %s -> %s", t.Number, before.Status, t.Status),
		Before:      before,
		After:       t,
	})
	return t, nil
}

// DeleteTable refuses tables that still have pending, preparing or ready
// orders.
func (s *Service) DeleteTable(ctx context.Context, id uint) error {
	t, err := s.repo.GetTable(ctx, id)
	if err != nil {
		return err
	}
	active, err := s.repo.CountActiveOrders(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrTableHasActiveOrders
	}
	if err := s.repo.DeleteTable(ctx, id); err != nil {
		return fmt.Errorf("delete table: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "table",
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Table %d deleted", t.Number),
		Before:      t,
	})
	return nil
}

// ClearTable deletes every order of the table and makes it available again.
// It returns the number of deleted orders.
func (s *Service) ClearTable(ctx context.Context, id uint) (int64, error) {
	t, err := s.repo.GetTable(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.ClearTable(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("clear table: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "table",
		EntityID:    id,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Table %d cleared, %d orders removed", t.Number, n),
		Before:      t,
	})
	return n, nil
}

func (s *Service) TableOrders(ctx context.Context, id uint) ([]models.Order, error) {
	if _, err := s.repo.GetTable(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, OrderFilter{TableID: id})
}

// ---- orders ----

func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	return s.repo.ListOrders(ctx, f)
}

func (s *Service) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if _, err := s.repo.GetTable(ctx, in.TableID); err != nil {
		return nil, err
	}

	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	aycePrice, err := s.aycePrice(ctx, in.AyceOrder, in.AycePrice)
	if err != nil {
		return nil, err
	}

	o := &models.Order{
		TableID:   in.TableID,
		Status:    models.OrderStatusPending,
		AyceOrder: in.AyceOrder,
		AycePrice: aycePrice,
		Notes:     in.Notes,
		Items:     items,
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	created, err := s.repo.GetOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    created.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Order %d created for table %d", created.ID, created.TableID),
		After:       created,
	})
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

// aycePrice resolves the price stored on a new order: an explicit price wins,
// AYCE orders fall back to the current period's settings price, and everything
// else gets the configured default. The default also covers AYCE orders when
// the settings row cannot be read.
func (s *Service) aycePrice(ctx context.Context, ayce bool, explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		if explicit.IsNegative() {
			return decimal.Zero, ErrInvalidAycePrice
		}
		return explicit.Round(2), nil
	}
	if !ayce {
		return s.opts.DefaultAycePrice, nil
	}
	st, err := s.repo.GetSettings(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("settings unavailable, using default ayce price", zap.Error(err))
		return s.opts.DefaultAycePrice, nil
	}
	return st.AycePriceFor(s.period.Current()), nil
}

func (s *Service) UpdateOrder(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *o

	if in.TableID != nil && *in.TableID != o.TableID {
		if _, err := s.repo.GetTable(ctx, *in.TableID); err != nil {
			return nil, err
		}
		o.TableID = *in.TableID
	}
	if in.Status != nil {
		if err := s.applyStatus(o, *in.Status); err != nil {
			return nil, err
		}
	}
	if in.AyceOrder != nil {
		o.AyceOrder = *in.AyceOrder
	}
	if in.AycePrice != nil {
		if in.AycePrice.IsNegative() {
			return nil, ErrInvalidAycePrice
		}
		o.AycePrice = in.AycePrice.Round(2)
	}
	if in.Notes != nil {
		o.Notes = *in.Notes
	}

	if err := s.repo.SaveOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    o.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Order %d updated", o.ID),
		Before:      before,
		After:       o,
	})
	if before.Status != o.Status {
		s.publish(ctx, events.OrderStatusChanged, o)
	}
	return o, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id uint) error {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    id,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Order %d deleted", id),
		Before:      o,
	})
	s.publish(ctx, events.OrderDeleted, o)
	return nil
}

// applyStatus sets the status on o, maintaining CompletedAt.
func (s *Service) applyStatus(o *models.Order, status models.OrderStatus) error {
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return ErrInvalidStatus
	}
	if s.opts.StrictTransitions && !CanTransition(o.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	if status == o.Status {
		return nil
	}

	o.Status = status
	if status == models.OrderStatusCompleted {
		now := s.now()
		o.CompletedAt = &now
	} else {
		o.CompletedAt = nil
	}
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	if err := s.applyStatus(o, status); err != nil {
		return nil, err
	}
	if prev == o.Status {
		return o, nil
	}

	if err := s.repo.SaveOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    o.ID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Order %d status %s -> %s", o.ID, prev, o.Status),
		Before:      map[string]any{"status": prev},
		After:       map[string]any{"status": o.Status},
	})
	s.publish(ctx, events.OrderStatusChanged, o)
	return o, nil
}

// BulkUpdateStatus applies status to each order independently. Orders that
// fail are reported in Failed and do not stop the rest.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []uint, status models.OrderStatus) (*BulkStatusResult, error) {
	if _, ok := models.ParseOrderStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}

	res := &BulkStatusResult{Updated: []uint{}, Failed: map[uint]string{}}
	for _, id := range ids {
		if _, err := s.UpdateStatus(ctx, id, status); err != nil {
			res.Failed[id] = err.Error()
			continue
		}
		res.Updated = append(res.Updated, id)
	}
	return res, nil
}

// AddItems appends items to an order. A pending order moves to preparing.
func (s *Service) AddItems(ctx context.Context, orderID uint, in []ItemInput) (*models.Order, error) {
	if len(in) == 0 {
		return nil, ErrNoItems
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == models.OrderStatusCompleted {
		return nil, ErrOrderCompleted
	}

	items, err := s.buildItems(ctx, in)
	if err != nil {
		return nil, err
	}

	prev := o.Status
	if o.Status == models.OrderStatusPending {
		o.Status = models.OrderStatusPreparing
	}
	if err := s.repo.AddItems(ctx, o, items); err != nil {
		return nil, fmt.Errorf("add order items: %w", err)
	}

	updated, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    orderID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("%d items added to order %d", len(items), orderID),
		After:       items,
	})
	s.publish(ctx, events.OrderItemsAdded, updated)
	if prev != updated.Status {
		s.publish(ctx, events.OrderStatusChanged, updated)
	}
	return updated, nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID uint) error {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == models.OrderStatusCompleted {
		return ErrOrderCompleted
	}

	var removed *models.OrderItem
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			removed = &o.Items[i]
			break
		}
	}
	if removed == nil {
		return ErrOrderItemNotFound
	}

	n, err := s.repo.DeleteItem(ctx, orderID, itemID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	if n == 0 {
		return ErrOrderItemNotFound
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    orderID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Item %d removed from order %d", itemID, orderID),
		Before:      removed,
	})
	s.publish(ctx, events.OrderItemRemoved, o)
	return nil
}

// buildItems validates item inputs and snapshots name and price from the
// menu. Items not orderable in the current meal period are rejected, as
// are switched-off modifiers.
func (s *Service) buildItems(ctx context.Context, in []ItemInput) ([]models.OrderItem, error) {
	if len(in) == 0 {
		return nil, nil
	}

	menuIDs := make([]uint, 0, len(in))
	var modIDs []uint
	for _, it := range in {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		menuIDs = append(menuIDs, it.MenuItemID)
		modIDs = append(modIDs, it.ModifierIDs...)
	}

	menuItems, err := s.repo.MenuItemsByIDs(ctx, uniqueIDs(menuIDs))
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	catalog := pricing.NewCatalog(menuItems)

	modByID := map[uint]models.Modifier{}
	if len(modIDs) > 0 {
		mods, err := s.repo.ModifiersByIDs(ctx, uniqueIDs(modIDs))
		if err != nil {
			return nil, fmt.Errorf("load modifiers: %w", err)
		}
		for _, m := range mods {
			modByID[m.ID] = m
		}
	}

	current := s.period.Current()
	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		mi, ok := catalog[it.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrMenuItemNotFound, it.MenuItemID)
		}
		if !pricing.IsItemAvailable(mi, current) {
			return nil, &ItemUnavailableError{
				MenuItemID: mi.ID,
				Name:       mi.Name,
				Reason:     pricing.AvailabilityMessage(mi, current),
			}
		}

		mods := make([]models.Modifier, 0, len(it.ModifierIDs))
		for _, mid := range it.ModifierIDs {
			m, ok := modByID[mid]
			if !ok {
				return nil, fmt.Errorf("%w: %d", ErrModifierNotFound, mid)
			}
			if !m.IsAvailable {
				return nil, &ModifierUnavailableError{ModifierID: m.ID, Name: m.Name}
			}
			mods = append(mods, m)
		}

		items = append(items, models.OrderItem{
			MenuItemID: mi.ID,
			Name:       mi.Name,
			UnitPrice:  mi.Price,
			Quantity:   it.Quantity,
			Notes:      it.Notes,
			Modifiers:  mods,
		})
	}
	return items, nil
}

// ---- discounts ----

func ValidateDiscount(in DiscountInput) error {
	switch in.Type {
	case models.DiscountTypePercent:
		if in.Value.IsNegative() || in.Value.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: percent must be between 0 and 100", ErrInvalidDiscount)
		}
	case models.DiscountTypeFixed:
		if in.Value.IsNegative() {
			return fmt.Errorf("%w: fixed amount cannot be negative", ErrInvalidDiscount)
		}
	default:
		return fmt.Errorf("%w: type must be percent or fixed", ErrInvalidDiscount)
	}
	return nil
}

func (s *Service) ApplyDiscount(ctx context.Context, orderID uint, in DiscountInput) (*models.Order, error) {
	if err := ValidateDiscount(in); err != nil {
		return nil, err
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Discount != nil {
		return nil, ErrDiscountExists
	}

	d := &models.Discount{OrderID: orderID, Type: in.Type, Value: in.Value.Round(2)}
	if err := s.repo.CreateDiscount(ctx, d); err != nil {
		return nil, fmt.Errorf("apply discount: %w", err)
	}
	o.Discount = d

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    orderID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Discount %s %s applied to order %d", d.Value.StringFixed(2), d.Type, orderID),
		After:       d,
	})
	return o, nil
}

func (s *Service) RemoveDiscount(ctx context.Context, orderID uint) error {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Discount == nil {
		return ErrDiscountNotFound
	}
	if _, err := s.repo.DeleteDiscount(ctx, orderID); err != nil {
		return fmt.Errorf("remove discount: %w", err)
	}

	s.record(ctx, audit.Entry{
		EntityType:  "order",
		EntityID:    orderID,
		Action:      models.AuditActionUpdate,
		Description: fmt.Sprintf("Discount removed from order %d", orderID),
		Before:      o.Discount,
	})
	return nil
}

// ---- totals ----

func (s *Service) Total(ctx context.Context, orderID uint) (*models.Order, pricing.Breakdown, error) {
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, pricing.Breakdown{}, err
	}
	totals, err := s.PriceOrders(ctx, []models.Order{*o})
	if err != nil {
		return nil, pricing.Breakdown{}, err
	}
	return o, totals[o.ID], nil
}

// Totals prices many orders with one orders query and one menu query.
// Unknown ids are skipped.
func (s *Service) Totals(ctx context.Context, ids []uint) ([]models.Order, map[uint]pricing.Breakdown, error) {
	list, err := s.repo.GetOrdersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, nil, fmt.Errorf("load orders: %w", err)
	}
	totals, err := s.PriceOrders(ctx, list)
	if err != nil {
		return nil, nil, err
	}
	return list, totals, nil
}

// PriceOrders prices already loaded orders against the live menu, fetched in
// a single query.
func (s *Service) PriceOrders(ctx context.Context, list []models.Order) (map[uint]pricing.Breakdown, error) {
	var ids []uint
	for _, o := range list {
		for _, it := range o.Items {
			ids = append(ids, it.MenuItemID)
		}
	}

	var catalog pricing.Catalog
	if len(ids) > 0 {
		items, err := s.repo.MenuItemsByIDs(ctx, uniqueIDs(ids))
		if err != nil {
			return nil, fmt.Errorf("load menu items: %w", err)
		}
		catalog = pricing.NewCatalog(items)
	}

	out := make(map[uint]pricing.Breakdown, len(list))
	for _, o := range list {
		out[o.ID] = pricing.CalculateTotal(o, catalog)
	}
	return out, nil
}

// ---- side effects ----

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if err := s.recorder.Record(ctx, e); err != nil {
		logger.FromCtx(ctx).Warn("audit record failed",
			zap.String("entity_type", e.EntityType),
			zap.Uint("entity_id", e.EntityID),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, t events.EventType, o *models.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, o)); err != nil {
		logger.FromCtx(ctx).Warn("order event publish failed",
			zap.String("event", string(t)),
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// IsNotFound reports whether err means a requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrOrderItemNotFound) ||
		errors.Is(err, ErrMenuItemNotFound) ||
		errors.Is(err, ErrModifierNotFound) ||
		errors.Is(err, ErrDiscountNotFound)
}
