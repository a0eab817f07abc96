// Package posclient is a small REST client for the POS API.
package posclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const DefaultTimeout = 10 * time.Second

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == fiber.StatusNotFound
}

type Client struct {
	baseURL string
	timeout time.Duration
}

// New returns a client for baseURL, e.g. http://localhost:8000/api/v1.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := *c
	cp.timeout = d
	return &cp
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends the request and decodes a 2xx body into out (when non-nil).
// The agent timeout is the smaller of the client timeout and ctx's deadline.
func (c *Client) do(ctx context.Context, a *fiber.Agent, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(a)
		return err
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	a.Timeout(timeout)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{StatusCode: code, Message: msg}
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ---- settings ----

func (c *Client) Settings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.do(ctx, fiber.Get(c.url("/settings/", nil)), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) SetMealPeriod(ctx context.Context, period string) (*MealPeriodState, error) {
	q := url.Values{"meal_period": {strings.ToUpper(period)}}
	var st MealPeriodState
	if err := c.do(ctx, fiber.Patch(c.url("/settings/meal-period", q)), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) ToggleMealPeriod(ctx context.Context) (*MealPeriodState, error) {
	var st MealPeriodState
	if err := c.do(ctx, fiber.Post(c.url("/settings/meal-period/toggle", nil)), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) AycePrice(ctx context.Context) (*MealPeriodState, error) {
	var st MealPeriodState
	if err := c.do(ctx, fiber.Get(c.url("/settings/ayce-price", nil)), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ---- menu ----

type MenuQuery struct {
	CategoryID   uint
	Search       string
	MealPeriod   string
	AvailableNow *bool
	Skip         int
	Limit        int
}

func (q MenuQuery) values() url.Values {
	v := url.Values{}
	if q.CategoryID > 0 {
		v.Set("category_id", strconv.FormatUint(uint64(q.CategoryID), 10))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MealPeriod != "" {
		v.Set("meal_period", strings.ToUpper(q.MealPeriod))
	}
	if q.AvailableNow != nil {
		v.Set("available_now", strconv.FormatBool(*q.AvailableNow))
	}
	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (c *Client) MenuItems(ctx context.Context, q MenuQuery) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.do(ctx, fiber.Get(c.url("/menu/menu-items/", q.values())), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ---- orders ----

func (c *Client) Orders(ctx context.Context, status string, limit int) ([]Order, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var list []Order
	if err := c.do(ctx, fiber.Get(c.url("/orders/", v)), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Order(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := c.do(ctx, fiber.Get(c.url(fmt.Sprintf("/orders/%d", id), nil)), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status string) (*Order, error) {
	a := fiber.Patch(c.url(fmt.Sprintf("/orders/%d/status", id), nil)).JSON(map[string]string{"status": status})
	var o Order
	if err := c.do(ctx, a, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Totals fetches the totals of many orders in one request.
func (c *Client) Totals(ctx context.Context, ids []uint) ([]Total, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	var totals []Total
	q := url.Values{"ids": {strings.Join(parts, ",")}}
	if err := c.do(ctx, fiber.Get(c.url("/orders/totals", q)), &totals); err != nil {
		return nil, err
	}
	return totals, nil
}

// ---- dashboard ----

func (c *Client) DashboardStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, fiber.Get(c.url("/dashboard/stats/", nil)), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) RecentOrders(ctx context.Context) ([]RecentOrder, error) {
	var list []RecentOrder
	if err := c.do(ctx, fiber.Get(c.url("/dashboard/recent-orders/", nil)), &list); err != nil {
		return nil, err
	}
	return list, nil
}
