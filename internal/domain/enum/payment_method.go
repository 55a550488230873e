package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how a division is paid
type PaymentMethod int

const (
	PaymentMethodCash       PaymentMethod = 0
	PaymentMethodElectronic PaymentMethod = 1
)

func (m PaymentMethod) String() string {
	return [...]string{"Cash", "Electronic"}[m]
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	switch str {
	case "Cash":
		*m = PaymentMethodCash
	case "Electronic":
		*m = PaymentMethodElectronic
	}
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
