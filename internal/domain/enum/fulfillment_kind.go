package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// FulfillmentKind represents how an order is fulfilled
type FulfillmentKind int

const (
	FulfillmentDineIn   FulfillmentKind = 0
	FulfillmentTakeaway FulfillmentKind = 1
	FulfillmentDelivery FulfillmentKind = 2
)

func (k FulfillmentKind) String() string {
	return [...]string{"DineIn", "Takeaway", "Delivery"}[k]
}

func (k FulfillmentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *FulfillmentKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*k = FulfillmentKind(i)
		return nil
	}
	switch str {
	case "DineIn":
		*k = FulfillmentDineIn
	case "Takeaway":
		*k = FulfillmentTakeaway
	case "Delivery":
		*k = FulfillmentDelivery
	}
	return nil
}

func (k FulfillmentKind) Value() (driver.Value, error) {
	return int64(k), nil
}

func (k *FulfillmentKind) Scan(value interface{}) error {
	if value == nil {
		*k = FulfillmentDineIn
		return nil
	}
	switch v := value.(type) {
	case int64:
		*k = FulfillmentKind(v)
	case int:
		*k = FulfillmentKind(v)
	}
	return nil
}
