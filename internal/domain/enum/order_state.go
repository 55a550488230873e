package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderState represents where an order sits in its lifecycle
type OrderState int

const (
	OrderStateOpen          OrderState = 0
	OrderStateInPreparation OrderState = 1
	OrderStateReady         OrderState = 2
	OrderStateClosed        OrderState = 3
	OrderStatePaid          OrderState = 4
	OrderStateCancelled     OrderState = 5
)

func (s OrderState) String() string {
	names := [...]string{"Open", "InPreparation", "Ready", "Closed", "Paid", "Cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Open"
	}
	return names[s]
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderState) IsTerminal() bool {
	return s == OrderStatePaid || s == OrderStateCancelled
}

// AllowsItemMutation reports whether items may be added, updated or removed.
func (s OrderState) AllowsItemMutation() bool {
	return s == OrderStateOpen || s == OrderStateInPreparation
}

// CanTransition reports whether moving to the target state is legal.
// Forward moves follow Open → InPreparation → Ready → Closed → Paid;
// Cancelled is reachable from every state except Paid and Cancelled.
func (s OrderState) CanTransition(to OrderState) bool {
	if to == OrderStateCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStateOpen:
		return to == OrderStateInPreparation || to == OrderStateReady || to == OrderStateClosed
	case OrderStateInPreparation:
		return to == OrderStateReady || to == OrderStateClosed
	case OrderStateReady:
		return to == OrderStateClosed
	case OrderStateClosed:
		return to == OrderStatePaid
	default:
		return false
	}
}

func (s OrderState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderState(i)
		return nil
	}
	switch str {
	case "Open":
		*s = OrderStateOpen
	case "InPreparation":
		*s = OrderStateInPreparation
	case "Ready":
		*s = OrderStateReady
	case "Closed":
		*s = OrderStateClosed
	case "Paid":
		*s = OrderStatePaid
	case "Cancelled":
		*s = OrderStateCancelled
	}
	return nil
}

func (s OrderState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderState) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStateOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderState(v)
	case int:
		*s = OrderState(v)
	}
	return nil
}
