package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// KitchenState represents the preparation status of a single order item
type KitchenState int

const (
	KitchenStatePending   KitchenState = 0
	KitchenStatePreparing KitchenState = 1
	KitchenStateReady     KitchenState = 2
)

func (s KitchenState) String() string {
	return [...]string{"Pending", "Preparing", "Ready"}[s]
}

func (s KitchenState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *KitchenState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = KitchenState(i)
		return nil
	}
	switch str {
	case "Pending":
		*s = KitchenStatePending
	case "Preparing":
		*s = KitchenStatePreparing
	case "Ready":
		*s = KitchenStateReady
	}
	return nil
}

func (s KitchenState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *KitchenState) Scan(value interface{}) error {
	if value == nil {
		*s = KitchenStatePending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = KitchenState(v)
	case int:
		*s = KitchenState(v)
	}
	return nil
}
