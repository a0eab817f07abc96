package orders

import (
	"errors"
	"strconv"
	"strings"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/pricing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

type TableResponse struct {
	ID              uint               `json:"id"`
	Number          int                `json:"number"`
	Capacity        int                `json:"capacity"`
	Status          models.TableStatus `json:"status"`
	ReservationTime *string            `json:"reservation_time"`
	PartySize       *int               `json:"party_size"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	Notes           string             `json:"notes"`
	CreatedAt       string             `json:"created_at"`
}

type ModifierResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type OrderItemResponse struct {
	ID         uint               `json:"id"`
	MenuItemID uint               `json:"menu_item_id"`
	Name       string             `json:"name"`
	UnitPrice  string             `json:"unit_price"`
	Quantity   int                `json:"quantity"`
	Notes      string             `json:"notes"`
	Modifiers  []ModifierResponse `json:"modifiers"`
}

type DiscountResponse struct {
	Type  models.DiscountType `json:"type"`
	Value string              `json:"value"`
}

type TotalResponse struct {
	OrderID        uint    `json:"order_id"`
	Subtotal       string  `json:"subtotal"`
	DiscountAmount *string `json:"discount_amount,omitempty"`
	Total          string  `json:"total"`
	IsAyce         bool    `json:"is_ayce"`
	AycePrice      *string `json:"ayce_price,omitempty"`
	StaleItemIDs   []uint  `json:"stale_item_ids"`
}

type OrderResponse struct {
	ID          uint                `json:"id"`
	TableID     uint                `json:"table_id"`
	Status      models.OrderStatus  `json:"status"`
	AyceOrder   bool                `json:"ayce_order"`
	AycePrice   string              `json:"ayce_price"`
	Notes       string              `json:"notes"`
	Items       []OrderItemResponse `json:"items"`
	Discount    *DiscountResponse   `json:"discount"`
	Total       *TotalResponse      `json:"total,omitempty"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	CompletedAt *string             `json:"completed_at"`
}

type CreateTableRequest struct {
	Number   int    `json:"number"`
	Capacity int    `json:"capacity"`
	Notes    string `json:"notes"`
}

type TableStatusRequest struct {
	Status string `json:"status"`
}

type ItemRequest struct {
	MenuItemID  uint   `json:"menu_item_id"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes"`
	ModifierIDs []uint `json:"modifiers"`
}

type CreateOrderRequest struct {
	TableID   uint             `json:"table_id"`
	AyceOrder bool             `json:"ayce_order"`
	AycePrice *decimal.Decimal `json:"ayce_price"`
	Notes     string           `json:"notes"`
	Items     []ItemRequest    `json:"items"`
}

type UpdateOrderRequest struct {
	TableID   *uint            `json:"table_id"`
	Status    *string          `json:"status"`
	AyceOrder *bool            `json:"ayce_order"`
	AycePrice *decimal.Decimal `json:"ayce_price"`
	Notes     *string          `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type BulkStatusRequest struct {
	OrderIDs []uint `json:"order_ids"`
	Status   string `json:"status"`
}

type AddItemsRequest struct {
	Items []ItemRequest `json:"items"`
}

type DiscountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

func ToTableResponse(t models.Table) TableResponse {
	res := TableResponse{
		ID:            t.ID,
		Number:        t.Number,
		Capacity:      t.Capacity,
		Status:        t.Status,
		PartySize:     t.PartySize,
		CustomerName:  t.CustomerName,
		CustomerPhone: t.CustomerPhone,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt.Format(timeLayout),
	}
	if t.ReservationTime != nil {
		s := t.ReservationTime.Format(timeLayout)
		res.ReservationTime = &s
	}
	return res
}

func ToTotalResponse(orderID uint, b pricing.Breakdown) TotalResponse {
	res := TotalResponse{
		OrderID:      orderID,
		Subtotal:     pricing.FormatMoney(b.Subtotal),
		Total:        pricing.FormatMoney(b.Total),
		IsAyce:       b.IsAyce,
		StaleItemIDs: b.StaleItemIDs,
	}
	if res.StaleItemIDs == nil {
		res.StaleItemIDs = []uint{}
	}
	if b.HasDiscount() {
		s := pricing.FormatMoney(b.DiscountAmount)
		res.DiscountAmount = &s
	}
	if b.IsAyce {
		s := pricing.FormatMoney(b.AycePrice)
		res.AycePrice = &s
	}
	return res
}

// ToOrderResponse renders o. total is optional.
func ToOrderResponse(o models.Order, total *pricing.Breakdown) OrderResponse {
	res := OrderResponse{
		ID:        o.ID,
		TableID:   o.TableID,
		Status:    o.Status,
		AyceOrder: o.AyceOrder,
		AycePrice: pricing.FormatMoney(o.AycePrice),
		Notes:     o.Notes,
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: o.CreatedAt.Format(timeLayout),
		UpdatedAt: o.UpdatedAt.Format(timeLayout),
	}
	for _, it := range o.Items {
		ir := OrderItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  pricing.FormatMoney(it.UnitPrice),
			Quantity:   it.Quantity,
			Notes:      it.Notes,
			Modifiers:  make([]ModifierResponse, 0, len(it.Modifiers)),
		}
		for _, m := range it.Modifiers {
			ir.Modifiers = append(ir.Modifiers, ModifierResponse{ID: m.ID, Name: m.Name, Price: pricing.FormatMoney(m.Price)})
		}
		res.Items = append(res.Items, ir)
	}
	if o.Discount != nil {
		res.Discount = &DiscountResponse{Type: o.Discount.Type, Value: pricing.FormatMoney(o.Discount.Value)}
	}
	if o.CompletedAt != nil {
		s := o.CompletedAt.Format(timeLayout)
		res.CompletedAt = &s
	}
	if total != nil {
		tr := ToTotalResponse(o.ID, *total)
		res.Total = &tr
	}
	return res
}

// toFiberError maps service errors to HTTP errors. Anything unknown is logged
// and reported as a generic 500 with msg.
func toFiberError(c *fiber.Ctx, err error, msg string) error {
	var unavailable *ItemUnavailableError
	var modOff *ModifierUnavailableError
	switch {
	case errors.As(err, &unavailable):
		return fiber.NewError(fiber.StatusConflict, unavailable.Error())
	case errors.As(err, &modOff):
		return fiber.NewError(fiber.StatusConflict, modOff.Error())
	case IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, capitalize(err.Error()))
	case errors.Is(err, ErrTableNumberTaken), errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, capitalize(err.Error()))
	case errors.Is(err, ErrOrderCompleted),
		errors.Is(err, ErrTableHasActiveOrders),
		errors.Is(err, ErrInvalidTable),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNoItems),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrDiscountExists),
		errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrInvalidAycePrice):
		return fiber.NewError(fiber.StatusBadRequest, capitalize(err.Error()))
	}
	logger.FromCtx(c.UserContext()).Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+strings.ReplaceAll(name, "_", " "))
	}
	return uint(id), nil
}

func toItemInputs(items []ItemRequest) []ItemInput {
	out := make([]ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, ItemInput{
			MenuItemID:  it.MenuItemID,
			Quantity:    it.Quantity,
			Notes:       it.Notes,
			ModifierIDs: it.ModifierIDs,
		})
	}
	return out
}

// ParseIDList parses "1,2,3". Blank entries are ignored.
func ParseIDList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil || n == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "ids must be a comma separated list of order ids")
		}
		ids = append(ids, uint(n))
	}
	return ids, nil
}

// ---- tables ----

// POST /orders/tables
func CreateTableHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		t, err := svc.CreateTable(c.UserContext(), TableInput{Number: body.Number, Capacity: body.Capacity, Notes: body.Notes})
		if err != nil {
			return toFiberError(c, err, "Table could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(ToTableResponse(*t))
	}
}

// GET /orders/tables
func ListTablesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tables, err := svc.ListTables(c.UserContext())
		if err != nil {
			return toFiberError(c, err, "Tables could not be listed")
		}
		res := make([]TableResponse, 0, len(tables))
		for _, t := range tables {
			res = append(res, ToTableResponse(t))
		}
		return c.JSON(res)
	}
}

// GET /orders/tables/:table_id
func GetTableHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "table_id")
		if err != nil {
			return err
		}
		t, err := svc.GetTable(c.UserContext(), id)
		if err != nil {
			return toFiberError(c, err, "Table could not be loaded")
		}
		return c.JSON(ToTableResponse(*t))
	}
}

// PUT /orders/tables/:table_id/status (PATCH also accepted)
func UpdateTableStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "table_id")
		if err != nil {
			return err
		}
		var body TableStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		status, ok := models.ParseTableStatus(body.Status)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid table status")
		}
		t, err := svc.UpdateTableStatus(c.UserContext(), id, status)
		if err != nil {
			return toFiberError(c, err, "Table could not be updated")
		}
		return c.JSON(ToTableResponse(*t))
	}
}

// DELETE /orders/tables/:table_id
func DeleteTableHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "table_id")
		if err != nil {
			return err
		}
		if err := svc.DeleteTable(c.UserContext(), id); err != nil {
			return toFiberError(c, err, "Table could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /orders/tables/:table_id/clear
func ClearTableHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "table_id")
		if err != nil {
			return err
		}
		n, err := svc.ClearTable(c.UserContext(), id)
		if err != nil {
			return toFiberError(c, err, "Table could not be cleared")
		}
		return c.JSON(fiber.Map{"table_id": id, "deleted_orders": n})
	}
}

// GET /orders/tables/:table_id/orders
func TableOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "table_id")
		if err != nil {
			return err
		}
		list, err := svc.TableOrders(c.UserContext(), id)
		if err != nil {
			return toFiberError(c, err, "Orders could not be listed")
		}
		return renderOrders(c, svc, list)
	}
}

// ---- orders ----

func renderOrders(c *fiber.Ctx, svc *Service, list []models.Order) error {
	totals, err := svc.PriceOrders(c.UserContext(), list)
	if err != nil {
		return toFiberError(c, err, "Order totals could not be calculated")
	}
	res := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		b := totals[o.ID]
		res = append(res, ToOrderResponse(o, &b))
	}
	return c.JSON(res)
}

// GET /orders?skip=0&limit=100&status=pending
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := OrderFilter{
			Skip:  c.QueryInt("skip", 0),
			Limit: c.QueryInt("limit", 100),
		}
		if f.Skip < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "skip cannot be negative")
		}
		if f.Limit < 1 || f.Limit > 500 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
		}
		if raw := c.Query("status"); raw != "" {
			st, ok := models.ParseOrderStatus(raw)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid order status")
			}
			f.Status = st
		}

		list, err := svc.ListOrders(c.UserContext(), f)
		if err != nil {
			return toFiberError(c, err, "Orders could not be listed")
		}
		return renderOrders(c, svc, list)
	}
}

// GET /orders/:order_id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		o, b, err := svc.Total(c.UserContext(), id)
		if err != nil {
			return toFiberError(c, err, "Order could not be loaded")
		}
		return c.JSON(ToOrderResponse(*o, &b))
	}
}

// POST /orders
func CreateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.TableID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "table_id is required")
		}

		o, err := svc.CreateOrder(c.UserContext(), CreateOrderInput{
			TableID:   body.TableID,
			AyceOrder: body.AyceOrder,
			AycePrice: body.AycePrice,
			Notes:     body.Notes,
			Items:     toItemInputs(body.Items),
		})
		if err != nil {
			return toFiberError(c, err, "Order could not be created")
		}
		return c.Status(fiber.StatusCreated).JSON(ToOrderResponse(*o, nil))
	}
}

// PUT /orders/:order_id
func UpdateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		in := UpdateOrderInput{
			TableID:   body.TableID,
			AyceOrder: body.AyceOrder,
			AycePrice: body.AycePrice,
			Notes:     body.Notes,
		}
		if body.Status != nil {
			st, ok := models.ParseOrderStatus(*body.Status)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid order status")
			}
			in.Status = &st
		}

		o, err := svc.UpdateOrder(c.UserContext(), id, in)
		if err != nil {
			return toFiberError(c, err, "Order could not be updated")
		}
		return c.JSON(ToOrderResponse(*o, nil))
	}
}

// DELETE /orders/:order_id
func DeleteOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		if err := svc.DeleteOrder(c.UserContext(), id); err != nil {
			return toFiberError(c, err, "Order could not be deleted")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PUT /orders/:order_id/status (PATCH also accepted)
func UpdateStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		st, ok := models.ParseOrderStatus(body.Status)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order status")
		}

		o, err := svc.UpdateStatus(c.UserContext(), id, st)
		if err != nil {
			return toFiberError(c, err, "Order status could not be updated")
		}
		return c.JSON(ToOrderResponse(*o, nil))
	}
}

// POST /orders/bulk-status
func BulkStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.OrderIDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "order_ids is required")
		}
		st, ok := models.ParseOrderStatus(body.Status)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid order status")
		}

		res, err := svc.BulkUpdateStatus(c.UserContext(), body.OrderIDs, st)
		if err != nil {
			return toFiberError(c, err, "Order statuses could not be updated")
		}
		return c.JSON(res)
	}
}

// POST /orders/:order_id/items
func AddItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		var body AddItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		o, err := svc.AddItems(c.UserContext(), id, toItemInputs(body.Items))
		if err != nil {
			return toFiberError(c, err, "Items could not be added")
		}
		return c.JSON(ToOrderResponse(*o, nil))
	}
}

// DELETE /orders/:order_id/items/:item_id
func RemoveItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		itemID, err := paramID(c, "item_id")
		if err != nil {
			return err
		}
		if err := svc.RemoveItem(c.UserContext(), orderID, itemID); err != nil {
			return toFiberError(c, err, "Item could not be removed")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /orders/:order_id/discount
func ApplyDiscountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		var body DiscountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		dt, ok := models.ParseDiscountType(body.Type)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "Discount type must be percent or fixed")
		}

		o, err := svc.ApplyDiscount(c.UserContext(), id, DiscountInput{Type: dt, Value: body.Value})
		if err != nil {
			return toFiberError(c, err, "Discount could not be applied")
		}
		return c.JSON(ToOrderResponse(*o, nil))
	}
}

// DELETE /orders/:order_id/discount
func RemoveDiscountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		if err := svc.RemoveDiscount(c.UserContext(), id); err != nil {
			return toFiberError(c, err, "Discount could not be removed")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /orders/:order_id/total
func TotalHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c, "order_id")
		if err != nil {
			return err
		}
		o, b, err := svc.Total(c.UserContext(), id)
		if err != nil {
			return toFiberError(c, err, "Order total could not be calculated")
		}
		return c.JSON(ToTotalResponse(o.ID, b))
	}
}

// GET /orders/totals?ids=1,2,3
func TotalsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids, err := ParseIDList(c.Query("ids"))
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids is required")
		}

		list, totals, err := svc.Totals(c.UserContext(), ids)
		if err != nil {
			return toFiberError(c, err, "Order totals could not be calculated")
		}
		res := make([]TotalResponse, 0, len(list))
		for _, o := range list {
			res = append(res, ToTotalResponse(o.ID, totals[o.ID]))
		}
		return c.JSON(res)
	}
}
