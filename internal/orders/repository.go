package orders

import (
	"context"
	"errors"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

	"gorm.io/gorm"
)

type OrderFilter struct {
	Skip    int
	Limit   int
	Status  models.OrderStatus
	TableID uint
	From    *time.Time
	To      *time.Time
	// ExcludeStatuses drops orders in any of these statuses.
	ExcludeStatuses []models.OrderStatus
}

// Repository is the storage the order service needs. Get methods return
// ErrTableNotFound / ErrOrderNotFound when the row does not exist.
type Repository interface {
	CreateTable(ctx context.Context, t *models.Table) error
	ListTables(ctx context.Context) ([]models.Table, error)
	GetTable(ctx context.Context, id uint) (*models.Table, error)
	TableNumberExists(ctx context.Context, number int) (bool, error)
	SaveTable(ctx context.Context, t *models.Table) error
	DeleteTable(ctx context.Context, id uint) error
	CountActiveOrders(ctx context.Context, tableID uint) (int64, error)
	ClearTable(ctx context.Context, tableID uint) (int64, error)

	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrdersByIDs(ctx context.Context, ids []uint) ([]models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	SaveOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id uint) error
	AddItems(ctx context.Context, o *models.Order, items []models.OrderItem) error
	DeleteItem(ctx context.Context, orderID, itemID uint) (int64, error)
	CreateDiscount(ctx context.Context, d *models.Discount) error
	DeleteDiscount(ctx context.Context, orderID uint) (int64, error)

	MenuItemsByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error)
	ModifiersByIDs(ctx context.Context, ids []uint) ([]models.Modifier, error)
	GetSettings(ctx context.Context) (*models.Settings, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateTable(ctx context.Context, t *models.Table) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepository) ListTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := r.db.WithContext(ctx).Order("number asc").Find(&tables).Error
	return tables, err
}

func (r *gormRepository) GetTable(ctx context.Context, id uint) (*models.Table, error) {
	var t models.Table
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) TableNumberExists(ctx context.Context, number int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Table{}).Where("number = ?", number).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) SaveTable(ctx context.Context, t *models.Table) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *gormRepository) DeleteTable(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Table{}, id).Error
}

func (r *gormRepository) CountActiveOrders(ctx context.Context, tableID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("table_id = ? AND status IN ?", tableID, models.ActiveOrderStatuses).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) ClearTable(ctx context.Context, tableID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Order{}).Where("table_id = ?", tableID).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if err := deleteOrders(tx, ids); err != nil {
			return err
		}
		deleted = int64(len(ids))

		return tx.Model(&models.Table{}).Where("id = ?", tableID).Updates(map[string]any{
			"status":           models.TableStatusAvailable,
			"party_size":       nil,
			"reservation_time": nil,
			"customer_name":    "",
			"customer_phone":   "",
		}).Error
	})
	return deleted, err
}

// deleteOrders removes orders together with their items, item modifiers and
// discounts.
func deleteOrders(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Exec(
		"DELETE FROM order_item_modifiers WHERE order_item_id IN (SELECT id FROM order_items WHERE order_id IN ?)", ids,
	).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id IN ?", ids).Delete(&models.Discount{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Order{}).Error
}

func (r *gormRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id asc") }).
		Preload("Items.Modifiers").
		Preload("Discount")
}

func (r *gormRepository) ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := r.withDetails(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if len(f.ExcludeStatuses) > 0 {
		q = q.Where("status NOT IN ?", f.ExcludeStatuses)
	}
	if f.TableID != 0 {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var list []models.Order
	err := q.Order("created_at desc").Order("id desc").Find(&list).Error
	return list, err
}

func (r *gormRepository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.withDetails(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *gormRepository) GetOrdersByIDs(ctx context.Context, ids []uint) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Order
	err := r.withDetails(ctx).Where("id IN ?", ids).Order("id asc").Find(&list).Error
	return list, err
}

func (r *gormRepository) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *gormRepository) SaveOrder(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Model(o).
		Select("table_id", "status", "ayce_order", "ayce_price", "notes", "completed_at").
		Updates(o).Error
}

func (r *gormRepository) DeleteOrder(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteOrders(tx, []uint{id})
	})
}

func (r *gormRepository) AddItems(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Model(o).Select("status", "updated_at").Updates(o).Error
	})
}

func (r *gormRepository) DeleteItem(ctx context.Context, orderID, itemID uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM order_item_modifiers WHERE order_item_id = ?", itemID).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND order_id = ?", itemID, orderID).Delete(&models.OrderItem{})
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *gormRepository) CreateDiscount(ctx context.Context, d *models.Discount) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *gormRepository) DeleteDiscount(ctx context.Context, orderID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.Discount{})
	return res.RowsAffected, res.Error
}

func (r *gormRepository) MenuItemsByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.MenuItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *gormRepository) ModifiersByIDs(ctx context.Context, ids []uint) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var mods []models.Modifier
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&mods).Error
	return mods, err
}

func (r *gormRepository) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.WithContext(ctx).First(&s, models.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = models.DefaultSettings()
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
