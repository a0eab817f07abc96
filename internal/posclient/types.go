package posclient

// Money fields are decimal strings with two places, as sent by the API.

type Settings struct {
	ID                uint   `json:"id"`
	RestaurantName    string `json:"restaurant_name"`
	Timezone          string `json:"timezone"`
	CurrentMealPeriod string `json:"current_meal_period"`
	AyceLunchPrice    string `json:"ayce_lunch_price"`
	AyceDinnerPrice   string `json:"ayce_dinner_price"`
	CurrentAycePrice  string `json:"current_ayce_price"`
}

type MealPeriodState struct {
	CurrentMealPeriod string `json:"current_meal_period"`
	AycePrice         string `json:"ayce_price"`
}

type MenuItem struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Price               string `json:"price"`
	CategoryID          uint   `json:"category_id"`
	CategoryName        string `json:"category_name"`
	IsAvailable         bool   `json:"is_available"`
	MealPeriod          string `json:"meal_period"`
	AvailableNow        bool   `json:"available_now"`
	AvailabilityMessage string `json:"availability_message"`
	MealPeriodTag       string `json:"meal_period_tag"`
}

type OrderItem struct {
	ID         uint   `json:"id"`
	MenuItemID uint   `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes"`
}

type Total struct {
	OrderID        uint    `json:"order_id"`
	Subtotal       string  `json:"subtotal"`
	DiscountAmount *string `json:"discount_amount"`
	Total          string  `json:"total"`
	IsAyce         bool    `json:"is_ayce"`
	AycePrice      *string `json:"ayce_price"`
	StaleItemIDs   []uint  `json:"stale_item_ids"`
}

type Order struct {
	ID        uint        `json:"id"`
	TableID   uint        `json:"table_id"`
	Status    string      `json:"status"`
	AyceOrder bool        `json:"ayce_order"`
	Notes     string      `json:"notes"`
	Items     []OrderItem `json:"items"`
	Total     *Total      `json:"total"`
	CreatedAt string      `json:"created_at"`
}

type Stats struct {
	TotalOrders      int64   `json:"total_orders"`
	TotalRevenue     string  `json:"total_revenue"`
	AverageOrderTime float64 `json:"average_order_time"`
	ActiveOrders     int64   `json:"active_orders"`
}

type RecentOrder struct {
	ID        uint   `json:"id"`
	TableID   uint   `json:"table_id"`
	Status    string `json:"status"`
	ItemCount int    `json:"item_count"`
	Total     string `json:"total"`
	CreatedAt string `json:"created_at"`
}
