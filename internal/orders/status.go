package orders

import "github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/models"

// transitions lists the forward moves of the kitchen workflow. Cancellation
// is allowed from any state that is not terminal.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:   {models.OrderStatusPreparing},
	models.OrderStatusPreparing: {models.OrderStatusReady},
	models.OrderStatusReady:     {models.OrderStatusDelivered, models.OrderStatusCompleted},
	models.OrderStatusDelivered: {models.OrderStatusCompleted},
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusCompleted || s == models.OrderStatusCancelled
}

func IsActive(s models.OrderStatus) bool {
	for _, a := range models.ActiveOrderStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// CanTransition reports whether an order may move from one status to the
// other under the strict workflow. Setting the current status again is a
// no-op and always allowed.
func CanTransition(from, to models.OrderStatus) bool {
	if from == to {
		return true
	}
	if IsTerminal(from) {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
